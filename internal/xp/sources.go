// Package xp turns logged activities into experience points and records them
// against a user's profile and per-date log.
package xp

// Source labels where an award came from. It only feeds metrics and messages.
type Source string

const (
	SourceWorkout   Source = "workout"
	SourceWalk      Source = "walk"
	SourceChallenge Source = "challenge"
)

// DefaultChallengeXP is the flat award for a completed micro-challenge when
// the caller does not supply one.
const DefaultChallengeXP = 20

const (
	workoutXPPerMinute  = 2
	workoutOutdoorBonus = 20
	walkXPPerMinute     = 1
	walkXPPerKM         = 5
	walkOutdoorBonus    = 15
)

// WorkoutXP is 2 XP per minute plus 20 for an outdoor session.
func WorkoutXP(durationMin int, isOutdoor bool) int {
	base := durationMin * workoutXPPerMinute
	if isOutdoor {
		base += workoutOutdoorBonus
	}
	return base
}

// WalkXP is 1 XP per minute plus 5 XP per km (the distance part is
// truncated) and 15 for walking outdoors.
func WalkXP(durationMin int, distanceKM float64, isOutdoor bool) int {
	base := durationMin*walkXPPerMinute + int(distanceKM*walkXPPerKM)
	if isOutdoor {
		base += walkOutdoorBonus
	}
	return base
}

// ChallengeXP passes the caller's flat value through unchanged.
func ChallengeXP(baseXP int) int {
	return baseXP
}
