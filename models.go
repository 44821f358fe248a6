package main

import (
	"lg/wellness-xp-api/internal/fitness"
	"lg/wellness-xp-api/internal/store"
	"lg/wellness-xp-api/internal/xp"
)

/* ─── Onboarding ──────────────────────────────────────────────────────── */

// onboardingRequest is the request body for POST /api/onboarding. Enums
// arrive as plain strings and are parsed by the handler so unknown values
// produce a readable 400.
type onboardingRequest struct {
	UserID               string  `json:"user_id"`
	ChallengeLevel       string  `json:"challenge_level"`
	DietType             string  `json:"diet_type"`
	GoalType             string  `json:"goal_type"`
	CurrentWeightKG      float64 `json:"current_weight_kg"`
	GoalWeightKG         float64 `json:"goal_weight_kg"`
	HeightCM             float64 `json:"height_cm"`
	Age                  int     `json:"age"`
	Sex                  string  `json:"sex"`
	PreferredMealsPerDay int     `json:"preferred_meals_per_day"`
}

// onboardingResponse is the derived profile plus a confirmation message.
type onboardingResponse struct {
	store.Profile
	Message string `json:"message"`
}

/* ─── Activity logging ────────────────────────────────────────────────── */

// logWorkoutRequest is the request body for POST /api/log/workout.
type logWorkoutRequest struct {
	UserID          string `json:"user_id"`
	Date            string `json:"date"`
	Type            string `json:"type"` // "cardio", "strength", ...
	DurationMinutes int    `json:"duration_minutes"`
	IsOutdoor       bool   `json:"is_outdoor"`
}

// logWalkRequest is the request body for POST /api/log/walk. FoundItems is
// accepted for client compatibility and not scored.
type logWalkRequest struct {
	UserID          string   `json:"user_id"`
	Date            string   `json:"date"`
	DurationMinutes int      `json:"duration_minutes"`
	DistanceKM      float64  `json:"distance_km"`
	IsOutdoor       bool     `json:"is_outdoor"`
	FoundItems      []string `json:"found_items"`
}

// challengeCompleteRequest is the request body for POST /api/challenge/complete.
// BaseXP is a pointer so an omitted value can default to 20 while an explicit
// 0 stays 0.
type challengeCompleteRequest struct {
	UserID        string `json:"user_id"`
	Date          string `json:"date"`
	ChallengeType string `json:"challenge_type"` // "red_car", "park_bench", ...
	BaseXP        *int   `json:"base_xp"`
}

// xpSummaryResponse is the response for GET /api/xp/:user_id. XPEarnedToday
// is only set when the date query param is given.
type xpSummaryResponse struct {
	UserID        string         `json:"user_id"`
	TotalXP       int            `json:"total_xp"`
	DailyXP       map[string]int `json:"daily_xp"`
	Level         xp.Progress    `json:"level"`
	Date          string         `json:"date,omitempty"`
	XPEarnedToday *int           `json:"xp_earned_today,omitempty"`
}

/* ─── Meal plans ──────────────────────────────────────────────────────── */

// mealPlanInput is what the planner receives from a stored profile.
type mealPlanInput struct {
	TargetCalories int
	Goal           fitness.GoalType
	Diet           fitness.DietType
	MealsPerDay    int
}

// mealItem is one meal in a generated plan.
type mealItem struct {
	Name     string   `json:"name"`
	Calories int      `json:"calories"`
	Items    []string `json:"items"`
}

// dayPlan is one day of a weekly plan.
type dayPlan struct {
	DayIndex int        `json:"day_index"` // 1-7 within the week
	Label    string     `json:"label"`
	Meals    []mealItem `json:"meals"`
}

type dailyPlan struct {
	Meals        []mealItem `json:"meals"`
	ShoppingList []string   `json:"shopping_list"`
}

type weeklyPlan struct {
	Days         []dayPlan `json:"days"`
	ShoppingList []string  `json:"shopping_list"`
}

// dailyMealPlanRequest is the request body for POST /api/mealplan/daily.
type dailyMealPlanRequest struct {
	UserID string `json:"user_id"`
	Date   string `json:"date"`
}

type dailyMealPlanResponse struct {
	UserID         string     `json:"user_id"`
	Date           string     `json:"date"`
	TargetCalories int        `json:"target_calories"`
	Meals          []mealItem `json:"meals"`
	ShoppingList   []string   `json:"shopping_list"`
}

// weeklyMealPlanRequest is the request body for POST /api/mealplan/week.
// WeekNumber is 1-11 in the program.
type weeklyMealPlanRequest struct {
	UserID     string `json:"user_id"`
	WeekNumber int    `json:"week_number"`
}

type weeklyMealPlanResponse struct {
	UserID         string    `json:"user_id"`
	WeekNumber     int       `json:"week_number"`
	TargetCalories int       `json:"target_calories"`
	Days           []dayPlan `json:"days"`
	ShoppingList   []string  `json:"shopping_list"`
}
