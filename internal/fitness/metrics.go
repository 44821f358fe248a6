// Package fitness computes the derived body metrics stored on a profile:
// maintenance and target calories, the daily water target, and the XP
// multiplier for a challenge level. Everything here is a pure function.
package fitness

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// ErrInvalidEnum is returned by the Parse functions for values outside the
// allowed set. Callers validate input with it before computing anything.
var ErrInvalidEnum = errors.New("invalid enum value")

/* ─── Enums ───────────────────────────────────────────────────────────── */

type ChallengeLevel string

const (
	LevelSoft   ChallengeLevel = "soft"
	LevelMedium ChallengeLevel = "medium"
	LevelHard   ChallengeLevel = "hard"
)

type GoalType string

const (
	GoalWeightLoss  GoalType = "weight_loss"
	GoalWeightGain  GoalType = "weight_gain"
	GoalMaintenance GoalType = "maintenance"
)

// DietType is informational for the calculator; it only feeds meal plans.
type DietType string

var validDiets = map[DietType]bool{
	"mediterranean":        true,
	"vegan":                true,
	"keto":                 true,
	"plant_based":          true,
	"vegetarian":           true,
	"intermittent_fasting": true,
	"pescatarian":          true,
	"paleo":                true,
	"flexitarian":          true,
	"low_carb":             true,
}

// xpMultipliers is the single source of truth for valid challenge levels.
var xpMultipliers = map[ChallengeLevel]float64{
	LevelSoft:   1.0,
	LevelMedium: 1.2,
	LevelHard:   1.5,
}

// calorieOffsets maps goal → level → daily kcal offset from maintenance.
var calorieOffsets = map[GoalType]map[ChallengeLevel]int{
	GoalWeightLoss:  {LevelSoft: -300, LevelMedium: -500, LevelHard: -700},
	GoalWeightGain:  {LevelSoft: 250, LevelMedium: 400, LevelHard: 600},
	GoalMaintenance: {LevelSoft: 0, LevelMedium: 0, LevelHard: 0},
}

func ParseChallengeLevel(s string) (ChallengeLevel, error) {
	l := ChallengeLevel(s)
	if _, ok := xpMultipliers[l]; !ok {
		return "", fmt.Errorf("%w: challenge_level must be one of soft, medium, hard (got %q)", ErrInvalidEnum, s)
	}
	return l, nil
}

func ParseGoalType(s string) (GoalType, error) {
	g := GoalType(s)
	if _, ok := calorieOffsets[g]; !ok {
		return "", fmt.Errorf("%w: goal_type must be one of weight_loss, weight_gain, maintenance (got %q)", ErrInvalidEnum, s)
	}
	return g, nil
}

func ParseDietType(s string) (DietType, error) {
	d := DietType(s)
	if !validDiets[d] {
		return "", fmt.Errorf("%w: unknown diet_type %q", ErrInvalidEnum, s)
	}
	return d, nil
}

// Label renders the goal for user-facing text, e.g. "weight loss".
func (g GoalType) Label() string {
	return strings.ReplaceAll(string(g), "_", " ")
}

/* ─── Calculations ────────────────────────────────────────────────────── */

// lightActivityFactor scales BMR to maintenance. Every user is assumed to be
// lightly active; there is no activity level input.
const lightActivityFactor = 1.4

// waterLitersPerKG is ~35ml of water per kg of body weight.
const waterLitersPerKG = 0.035

// MaintenanceCalories estimates daily maintenance intake from the Mifflin-St
// Jeor BMR. Any sex other than "female" uses the male constant. The result is
// truncated toward zero, not rounded.
func MaintenanceCalories(weightKG, heightCM float64, age int, sex string) int {
	bmr := 10*weightKG + 6.25*heightCM - 5*float64(age)
	if strings.EqualFold(sex, "female") {
		bmr -= 161
	} else {
		bmr += 5
	}
	return int(bmr * lightActivityFactor)
}

// CalorieOffset returns the fixed surplus or deficit for a goal at a given
// challenge level. Unknown combinations return 0; inputs are validated by the
// Parse functions before reaching here.
func CalorieOffset(goal GoalType, level ChallengeLevel) int {
	return calorieOffsets[goal][level]
}

// TargetCalories is maintenance plus offset. It is not clamped, so extreme
// inputs can produce a negative target.
func TargetCalories(maintenance, offset int) int {
	return maintenance + offset
}

// WaterTargetLiters rounds weight*0.035 half-up to one decimal place.
func WaterTargetLiters(weightKG float64) float64 {
	return math.Round(weightKG*waterLitersPerKG*10) / 10
}

// XPMultiplier returns 1.0, 1.2 or 1.5 for soft, medium and hard.
// Unknown levels get the neutral 1.0.
func XPMultiplier(level ChallengeLevel) float64 {
	if m, ok := xpMultipliers[level]; ok {
		return m
	}
	return 1.0
}

/* ─── Onboarding bundle ───────────────────────────────────────────────── */

// OnboardingInput is the validated onboarding payload.
type OnboardingInput struct {
	UserID               string
	ChallengeLevel       ChallengeLevel
	DietType             DietType
	GoalType             GoalType
	CurrentWeightKG      float64
	GoalWeightKG         float64
	HeightCM             float64
	Age                  int
	Sex                  string
	PreferredMealsPerDay int
}

// Targets holds every value derived from an onboarding input.
type Targets struct {
	MaintenanceCalories    int
	TargetCalories         int
	DailyWaterTargetLiters float64
	XPMultiplier           float64
}

// ComputeTargets derives all calculated profile fields from in.
func ComputeTargets(in OnboardingInput) Targets {
	maintenance := MaintenanceCalories(in.CurrentWeightKG, in.HeightCM, in.Age, in.Sex)
	return Targets{
		MaintenanceCalories:    maintenance,
		TargetCalories:         TargetCalories(maintenance, CalorieOffset(in.GoalType, in.ChallengeLevel)),
		DailyWaterTargetLiters: WaterTargetLiters(in.CurrentWeightKG),
		XPMultiplier:           XPMultiplier(in.ChallengeLevel),
	}
}
