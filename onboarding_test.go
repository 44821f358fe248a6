package main

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"lg/wellness-xp-api/internal/store"
)

// setupAPITest builds a router over a fresh store. planner may be nil for
// tests that never reach the meal-plan endpoints.
func setupAPITest(planner MealPlanner, resetXP bool) (*gin.Engine, *store.Store) {
	gin.SetMode(gin.TestMode)
	log := logrus.New()
	log.SetOutput(io.Discard)

	s := store.New(store.WithLogger(log))
	h := newHandler(s, planner, resetXP, log)
	router := gin.New()
	h.registerRoutes(router)
	return router, s
}

// doJSON sends a request with an optional JSON body.
func doJSON(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

const onboardAlice = `{
	"user_id": "alice",
	"challenge_level": "hard",
	"diet_type": "vegan",
	"goal_type": "weight_loss",
	"current_weight_kg": 70,
	"goal_weight_kg": 62.5,
	"height_cm": 165,
	"age": 30,
	"sex": "female"
}`

func TestOnboarding_Success(t *testing.T) {
	router, _ := setupAPITest(nil, false)

	w := doJSON(router, "POST", "/api/onboarding", onboardAlice)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp onboardingResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if resp.MaintenanceCalories != 1988 {
		t.Errorf("expected maintenance_calories 1988, got %d", resp.MaintenanceCalories)
	}
	if resp.TargetCalories != 1288 {
		t.Errorf("expected target_calories 1288, got %d", resp.TargetCalories)
	}
	if resp.DailyWaterTargetLiters != 2.5 {
		t.Errorf("expected daily_water_target_liters 2.5, got %v", resp.DailyWaterTargetLiters)
	}
	if resp.XPMultiplier != 1.5 {
		t.Errorf("expected xp_multiplier 1.5, got %v", resp.XPMultiplier)
	}
	if resp.PreferredMealsPerDay != 3 {
		t.Errorf("expected default preferred_meals_per_day 3, got %d", resp.PreferredMealsPerDay)
	}
	want := "You're set up for a hard challenge with weight loss from 70.0kg to 62.5kg."
	if resp.Message != want {
		t.Errorf("expected message %q, got %q", want, resp.Message)
	}
}

func TestOnboarding_Validation(t *testing.T) {
	router, s := setupAPITest(nil, false)

	cases := []struct {
		name string
		body string
	}{
		{"malformed json", `{"user_id":`},
		{"bad level", strings.Replace(onboardAlice, `"hard"`, `"brutal"`, 1)},
		{"bad goal", strings.Replace(onboardAlice, `"weight_loss"`, `"shred"`, 1)},
		{"bad diet", strings.Replace(onboardAlice, `"vegan"`, `"fruitarian"`, 1)},
		{"missing user", strings.Replace(onboardAlice, `"alice"`, `""`, 1)},
		{"zero height", strings.Replace(onboardAlice, `"height_cm": 165`, `"height_cm": 0`, 1)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := doJSON(router, "POST", "/api/onboarding", tc.body)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
			}
		})
	}
	if s.Len() != 0 {
		t.Errorf("rejected onboardings must not store profiles, have %d", s.Len())
	}
}

func TestOnboarding_RepeatPreservesXP(t *testing.T) {
	router, s := setupAPITest(nil, false)
	doJSON(router, "POST", "/api/onboarding", onboardAlice)
	doJSON(router, "POST", "/api/log/workout",
		`{"user_id":"alice","date":"2026-10-14","type":"cardio","duration_minutes":30,"is_outdoor":true}`)

	w := doJSON(router, "POST", "/api/onboarding", strings.Replace(onboardAlice, `"hard"`, `"soft"`, 1))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	p, err := s.Profile("alice")
	if err != nil {
		t.Fatalf("profile lookup: %v", err)
	}
	// hard: int(80 * 1.5) = 120, carried across re-onboarding
	if p.TotalXP != 120 {
		t.Errorf("expected total_xp 120 after re-onboarding, got %d", p.TotalXP)
	}
	if p.XPMultiplier != 1.0 || p.TargetCalories != 1688 {
		t.Errorf("derived fields not recomputed: %+v", p)
	}
}

func TestOnboarding_RepeatWithReset(t *testing.T) {
	router, s := setupAPITest(nil, true)
	doJSON(router, "POST", "/api/onboarding", onboardAlice)
	doJSON(router, "POST", "/api/log/workout",
		`{"user_id":"alice","date":"2026-10-14","type":"cardio","duration_minutes":30,"is_outdoor":true}`)
	doJSON(router, "POST", "/api/onboarding", onboardAlice)

	p, _ := s.Profile("alice")
	log, _ := s.XPLog("alice")
	if p.TotalXP != 0 || len(log) != 0 {
		t.Errorf("expected XP reset, got total_xp=%d log=%v", p.TotalXP, log)
	}
}

func TestGetProfile(t *testing.T) {
	router, _ := setupAPITest(nil, false)

	w := doJSON(router, "GET", "/api/profile/alice", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 before onboarding, got %d", w.Code)
	}

	doJSON(router, "POST", "/api/onboarding", onboardAlice)
	w = doJSON(router, "GET", "/api/profile/alice", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var p store.Profile
	if err := json.Unmarshal(w.Body.Bytes(), &p); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if p.UserID != "alice" || p.DietType != "vegan" {
		t.Errorf("unexpected profile: %+v", p)
	}
}

func TestHealth(t *testing.T) {
	router, _ := setupAPITest(nil, false)
	w := doJSON(router, "GET", "/health", "")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"ok"`) {
		t.Errorf("unexpected health response %d: %s", w.Code, w.Body.String())
	}
}

func TestFormatDecimal(t *testing.T) {
	cases := map[float64]string{80: "80.0", 62.5: "62.5", 3: "3.0", 62.55: "62.55", 0: "0.0"}
	for in, want := range cases {
		if got := formatDecimal(in); got != want {
			t.Errorf("formatDecimal(%v) = %q, want %q", in, got, want)
		}
	}
}
