package xp

import (
	"errors"
	"fmt"
	"math"

	"lg/wellness-xp-api/internal/store"
	"lg/wellness-xp-api/internal/telemetry"
)

var (
	// ErrNegativeXP rejects awards that would lower total_xp.
	ErrNegativeXP = errors.New("base xp must not be negative")
	// ErrXPOverflow rejects awards too large to represent in total_xp or the
	// date's log entry.
	ErrXPOverflow = errors.New("xp award too large")
)

// float64(math.MaxInt) rounds up to 2^63, so anything at or above it does not
// convert back to int.
const maxScaledXP = float64(math.MaxInt)

// Award is the result of one XP-earning event.
type Award struct {
	UserID   string `json:"user_id"`
	Date     string `json:"date"`
	XPEarned int    `json:"xp_earned"`
	TotalXP  int    `json:"total_xp"`
	Message  string `json:"message"`
}

// Ledger is the single point of XP mutation.
type Ledger struct {
	store *store.Store
}

func NewLedger(s *store.Store) *Ledger {
	return &Ledger{store: s}
}

// Award applies the user's multiplier to baseXP (truncating), then adds the
// result to total_xp and to the date's log entry in one store update. Unknown
// users get store.ErrUserNotFound, awards that would overflow get
// ErrXPOverflow, and in both cases nothing changes.
func (l *Ledger) Award(userID, date string, baseXP int, source Source) (Award, error) {
	if baseXP < 0 {
		return Award{}, fmt.Errorf("%w: %d", ErrNegativeXP, baseXP)
	}

	var award Award
	err := l.store.Update(userID, func(p *store.Profile, xpLog map[string]int) error {
		scaled := float64(baseXP) * p.XPMultiplier
		if scaled >= maxScaledXP {
			return fmt.Errorf("%w: %d base at x%.1f", ErrXPOverflow, baseXP, p.XPMultiplier)
		}
		earned := int(scaled)
		if earned < 0 {
			return fmt.Errorf("%w: %d", ErrNegativeXP, earned)
		}
		if earned > math.MaxInt-p.TotalXP || earned > math.MaxInt-xpLog[date] {
			return fmt.Errorf("%w: total_xp %d + %d", ErrXPOverflow, p.TotalXP, earned)
		}
		p.TotalXP += earned
		xpLog[date] += earned

		award = Award{
			UserID:   userID,
			Date:     date,
			XPEarned: earned,
			TotalXP:  p.TotalXP,
			Message:  fmt.Sprintf("+%d XP earned!", earned),
		}
		return nil
	})
	if err != nil {
		return Award{}, err
	}

	telemetry.RecordXPAward(string(source), award.XPEarned)
	return award, nil
}

// Summary is a user's XP standing.
type Summary struct {
	UserID  string         `json:"user_id"`
	TotalXP int            `json:"total_xp"`
	DailyXP map[string]int `json:"daily_xp"`
	Level   Progress       `json:"level"`
}

// Summary reports total XP, the per-date log, and level progress.
func (l *Ledger) Summary(userID string) (Summary, error) {
	p, err := l.store.Profile(userID)
	if err != nil {
		return Summary{}, err
	}
	daily, err := l.store.XPLog(userID)
	if err != nil {
		return Summary{}, err
	}
	return Summary{
		UserID:  userID,
		TotalXP: p.TotalXP,
		DailyXP: daily,
		Level:   LevelFor(p.TotalXP),
	}, nil
}
