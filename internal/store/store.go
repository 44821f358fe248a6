// Package store owns the in-memory user state: onboarded profiles and the
// per-date XP log. All mutations go through a single lock so the
// total_xp = sum(log) invariant holds after every call.
package store

import (
	"errors"
	"maps"
	"sync"

	"github.com/sirupsen/logrus"
)

// ErrUserNotFound is returned for any operation on a user_id that was never
// onboarded.
var ErrUserNotFound = errors.New("user not found")

// Snapshot is the persisted document shape.
type Snapshot struct {
	UserProfiles map[string]Profile        `json:"user_profiles"`
	UserXPLog    map[string]map[string]int `json:"user_xp_log"`
}

// Store holds profiles and XP logs keyed by user_id.
type Store struct {
	mu       sync.RWMutex
	profiles map[string]Profile
	xpLog    map[string]map[string]int
	onChange func()
	log      logrus.FieldLogger
}

type Option func(*Store)

// WithOnChange registers fn to run after every successful mutation, outside
// the lock. It must not block.
func WithOnChange(fn func()) Option {
	return func(s *Store) { s.onChange = fn }
}

func WithLogger(l logrus.FieldLogger) Option {
	return func(s *Store) { s.log = l }
}

func New(opts ...Option) *Store {
	s := &Store{
		profiles: make(map[string]Profile),
		xpLog:    make(map[string]map[string]int),
		log:      logrus.StandardLogger(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *Store) changed() {
	if s.onChange != nil {
		s.onChange()
	}
}

// Onboard stores p, replacing any previous profile for the same user. When
// resetXP is false the existing total_xp and log carry over; when true both
// are cleared. The bool reports whether the user had onboarded before.
func (s *Store) Onboard(p Profile, resetXP bool) (Profile, bool) {
	s.mu.Lock()
	prev, existed := s.profiles[p.UserID]
	switch {
	case existed && !resetXP:
		p.TotalXP = prev.TotalXP
	default:
		p.TotalXP = 0
		delete(s.xpLog, p.UserID)
	}
	s.profiles[p.UserID] = p
	s.mu.Unlock()

	s.changed()
	return p, existed
}

// Profile returns a copy of the stored profile.
func (s *Store) Profile(userID string) (Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.profiles[userID]
	if !ok {
		return Profile{}, ErrUserNotFound
	}
	return p, nil
}

// XPLog returns a copy of the user's date → XP map. Onboarded users with no
// activity get an empty, non-nil map.
func (s *Store) XPLog(userID string) (map[string]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.profiles[userID]; !ok {
		return nil, ErrUserNotFound
	}
	out := make(map[string]int, len(s.xpLog[userID]))
	maps.Copy(out, s.xpLog[userID])
	return out, nil
}

// Update runs fn against copies of the user's profile and log while holding
// the write lock. The copies replace the stored values only if fn returns nil,
// so a failing fn leaves no partial state behind.
func (s *Store) Update(userID string, fn func(p *Profile, xpLog map[string]int) error) error {
	s.mu.Lock()
	p, ok := s.profiles[userID]
	if !ok {
		s.mu.Unlock()
		return ErrUserNotFound
	}
	logCopy := make(map[string]int, len(s.xpLog[userID]))
	maps.Copy(logCopy, s.xpLog[userID])

	if err := fn(&p, logCopy); err != nil {
		s.mu.Unlock()
		return err
	}
	s.profiles[userID] = p
	s.xpLog[userID] = logCopy
	s.mu.Unlock()

	s.changed()
	return nil
}

// Snapshot returns a deep copy of the full state for persistence.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := Snapshot{
		UserProfiles: maps.Clone(s.profiles),
		UserXPLog:    make(map[string]map[string]int, len(s.xpLog)),
	}
	for id, days := range s.xpLog {
		snap.UserXPLog[id] = maps.Clone(days)
	}
	return snap
}

// Restore replaces the state with snap. Log entries for users without a
// profile are dropped and total_xp is recomputed from the log when the two
// disagree. Restore does not trigger the change hook.
func (s *Store) Restore(snap Snapshot) {
	profiles := make(map[string]Profile, len(snap.UserProfiles))
	xpLog := make(map[string]map[string]int, len(snap.UserXPLog))

	for id, p := range snap.UserProfiles {
		p.UserID = id
		profiles[id] = p
	}
	for id, days := range snap.UserXPLog {
		if _, ok := profiles[id]; !ok {
			s.log.WithField("user_id", id).Warn("dropping xp log for user without profile")
			continue
		}
		xpLog[id] = maps.Clone(days)
	}
	for id, p := range profiles {
		sum := 0
		for _, xp := range xpLog[id] {
			sum += xp
		}
		if sum != p.TotalXP {
			s.log.WithFields(logrus.Fields{
				"user_id":  id,
				"total_xp": p.TotalXP,
				"log_sum":  sum,
			}).Warn("total_xp disagrees with xp log, using log sum")
			p.TotalXP = sum
			profiles[id] = p
		}
	}

	s.mu.Lock()
	s.profiles = profiles
	s.xpLog = xpLog
	s.mu.Unlock()
}

// Len reports the number of onboarded users.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.profiles)
}
