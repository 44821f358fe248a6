package store

import (
	"errors"
	"fmt"
	"strings"

	"lg/wellness-xp-api/internal/fitness"
)

// ErrInvalidProfile wraps every onboarding validation failure that is not an
// enum problem (those wrap fitness.ErrInvalidEnum).
var ErrInvalidProfile = errors.New("invalid profile")

// DefaultMealsPerDay is used when onboarding leaves preferred_meals_per_day unset.
const DefaultMealsPerDay = 3

// Profile is the stored per-user record. JSON keys match the snapshot document.
type Profile struct {
	UserID               string                 `json:"user_id"`
	ChallengeLevel       fitness.ChallengeLevel `json:"challenge_level"`
	DietType             fitness.DietType       `json:"diet_type"`
	GoalType             fitness.GoalType       `json:"goal_type"`
	CurrentWeightKG      float64                `json:"current_weight_kg"`
	GoalWeightKG         float64                `json:"goal_weight_kg"`
	HeightCM             float64                `json:"height_cm"`
	Age                  int                    `json:"age"`
	Sex                  string                 `json:"sex"`
	PreferredMealsPerDay int                    `json:"preferred_meals_per_day"`

	// Derived fields, recomputed on every onboarding.
	MaintenanceCalories    int     `json:"maintenance_calories"`
	TargetCalories         int     `json:"target_calories"`
	DailyWaterTargetLiters float64 `json:"daily_water_target_liters"`
	XPMultiplier           float64 `json:"xp_multiplier"`

	TotalXP int `json:"total_xp"`
}

// NewProfile validates in and returns a profile with derived fields filled and
// TotalXP at zero.
func NewProfile(in fitness.OnboardingInput) (Profile, error) {
	in.UserID = strings.TrimSpace(in.UserID)
	if in.UserID == "" {
		return Profile{}, fmt.Errorf("%w: user_id is required", ErrInvalidProfile)
	}
	if _, err := fitness.ParseChallengeLevel(string(in.ChallengeLevel)); err != nil {
		return Profile{}, err
	}
	if _, err := fitness.ParseGoalType(string(in.GoalType)); err != nil {
		return Profile{}, err
	}
	if _, err := fitness.ParseDietType(string(in.DietType)); err != nil {
		return Profile{}, err
	}
	if in.CurrentWeightKG <= 0 || in.GoalWeightKG <= 0 {
		return Profile{}, fmt.Errorf("%w: weights must be positive", ErrInvalidProfile)
	}
	if in.HeightCM <= 0 {
		return Profile{}, fmt.Errorf("%w: height_cm must be positive", ErrInvalidProfile)
	}
	// Same plausibility window as the age guard in TDEE computation.
	if in.Age <= 0 || in.Age > 130 {
		return Profile{}, fmt.Errorf("%w: age must be between 1 and 130", ErrInvalidProfile)
	}
	if in.PreferredMealsPerDay == 0 {
		in.PreferredMealsPerDay = DefaultMealsPerDay
	}
	if in.PreferredMealsPerDay < 1 || in.PreferredMealsPerDay > 8 {
		return Profile{}, fmt.Errorf("%w: preferred_meals_per_day must be between 1 and 8", ErrInvalidProfile)
	}

	t := fitness.ComputeTargets(in)
	return Profile{
		UserID:                 in.UserID,
		ChallengeLevel:         in.ChallengeLevel,
		DietType:               in.DietType,
		GoalType:               in.GoalType,
		CurrentWeightKG:        in.CurrentWeightKG,
		GoalWeightKG:           in.GoalWeightKG,
		HeightCM:               in.HeightCM,
		Age:                    in.Age,
		Sex:                    in.Sex,
		PreferredMealsPerDay:   in.PreferredMealsPerDay,
		MaintenanceCalories:    t.MaintenanceCalories,
		TargetCalories:         t.TargetCalories,
		DailyWaterTargetLiters: t.DailyWaterTargetLiters,
		XPMultiplier:           t.XPMultiplier,
	}, nil
}
