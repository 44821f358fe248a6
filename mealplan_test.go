package main

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

// setupMealPlanTest creates a router whose planner talks to a mock OpenAI
// server, plus a function to set the mock response. The returned pointer
// holds the last request body the mock received.
func setupMealPlanTest(t *testing.T) (*gin.Engine, *httptest.Server, func(int, any), *string) {
	var mockStatus int
	var mockBody any
	var lastRequest string

	mockOpenAI := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		lastRequest = string(b)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(mockStatus)
		json.NewEncoder(w).Encode(mockBody)
	}))

	planner := newOpenAIMealPlanner(mockOpenAI.URL, "test-key", "gpt-4o-mini", 100)
	router, _ := setupAPITest(planner, false)
	if w := doJSON(router, "POST", "/api/onboarding", onboardAlice); w.Code != http.StatusOK {
		t.Fatalf("onboarding failed: %d %s", w.Code, w.Body.String())
	}

	setMock := func(status int, body any) {
		mockStatus = status
		mockBody = body
	}
	return router, mockOpenAI, setMock, &lastRequest
}

// openAIChatResponse wraps a content string in the chat completions response
// shape (choices[0].message.content).
func openAIChatResponse(content string) map[string]any {
	return map[string]any{
		"choices": []map[string]any{
			{"message": map[string]any{"content": content}},
		},
	}
}

func TestDailyMealPlan_Success(t *testing.T) {
	router, mockServer, setMock, lastRequest := setupMealPlanTest(t)
	defer mockServer.Close()

	plan := `{"meals":[{"name":"Tofu Scramble","calories":420,"items":["tofu","spinach"]}],"shopping_list":["tofu","spinach"]}`
	setMock(http.StatusOK, openAIChatResponse(plan))

	w := doJSON(router, "POST", "/api/mealplan/daily", `{"user_id":"alice","date":"2026-10-14"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp dailyMealPlanResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if resp.TargetCalories != 1288 {
		t.Errorf("expected target_calories 1288, got %d", resp.TargetCalories)
	}
	if len(resp.Meals) != 1 || resp.Meals[0].Name != "Tofu Scramble" {
		t.Errorf("unexpected meals %+v", resp.Meals)
	}
	if resp.Date != "2026-10-14" {
		t.Errorf("expected date echoed, got %q", resp.Date)
	}
	// The profile's target and diet must reach the prompt.
	if !strings.Contains(*lastRequest, "1288") || !strings.Contains(*lastRequest, "vegan") {
		t.Errorf("prompt missing profile inputs: %s", *lastRequest)
	}
}

func TestWeeklyMealPlan_Success(t *testing.T) {
	router, mockServer, setMock, _ := setupMealPlanTest(t)
	defer mockServer.Close()

	plan := `{"days":[{"day_index":1,"label":"Monday","meals":[{"name":"Oats","calories":350,"items":["oats"]}]},{"day_index":2,"label":"Tuesday"}],"shopping_list":["oats"]}`
	setMock(http.StatusOK, openAIChatResponse(plan))

	w := doJSON(router, "POST", "/api/mealplan/week", `{"user_id":"alice","week_number":3}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp weeklyMealPlanResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if resp.WeekNumber != 3 || len(resp.Days) != 2 {
		t.Errorf("unexpected weekly response %+v", resp)
	}
	// Days without meals render as [] not null.
	if !strings.Contains(w.Body.String(), `"label":"Tuesday","meals":[]`) {
		t.Errorf("expected empty meals array for Tuesday: %s", w.Body.String())
	}
}

func TestWeeklyMealPlan_WeekOutOfRange(t *testing.T) {
	router, mockServer, _, _ := setupMealPlanTest(t)
	defer mockServer.Close()

	for _, body := range []string{`{"user_id":"alice","week_number":0}`, `{"user_id":"alice","week_number":12}`} {
		if w := doJSON(router, "POST", "/api/mealplan/week", body); w.Code != http.StatusBadRequest {
			t.Errorf("expected 400 for %s, got %d", body, w.Code)
		}
	}
}

func TestMealPlan_NotOnboarded(t *testing.T) {
	router, mockServer, _, _ := setupMealPlanTest(t)
	defer mockServer.Close()

	w := doJSON(router, "POST", "/api/mealplan/daily", `{"user_id":"ghost","date":"2026-10-14"}`)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d: %s", w.Code, w.Body.String())
	}
}

func TestMealPlan_UpstreamError(t *testing.T) {
	router, mockServer, setMock, _ := setupMealPlanTest(t)
	defer mockServer.Close()

	setMock(http.StatusInternalServerError, map[string]string{"error": "server error"})

	w := doJSON(router, "POST", "/api/mealplan/daily", `{"user_id":"alice","date":"2026-10-14"}`)
	if w.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d: %s", w.Code, w.Body.String())
	}
	var resp map[string]string
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp["error"] != "meal plan generation failed" {
		t.Errorf("expected error 'meal plan generation failed', got '%s'", resp["error"])
	}
}

func TestMealPlan_MalformedContent(t *testing.T) {
	router, mockServer, setMock, _ := setupMealPlanTest(t)
	defer mockServer.Close()

	setMock(http.StatusOK, openAIChatResponse(`not valid json at all`))

	w := doJSON(router, "POST", "/api/mealplan/week", `{"user_id":"alice","week_number":1}`)
	if w.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d: %s", w.Code, w.Body.String())
	}
}

func TestMealPlan_NoChoices(t *testing.T) {
	router, mockServer, setMock, _ := setupMealPlanTest(t)
	defer mockServer.Close()

	setMock(http.StatusOK, map[string]any{"choices": []any{}})

	w := doJSON(router, "POST", "/api/mealplan/daily", `{"user_id":"alice","date":"2026-10-14"}`)
	if w.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d: %s", w.Code, w.Body.String())
	}
}

func TestMealPlan_MissingAPIKey(t *testing.T) {
	router, _ := setupAPITest(newOpenAIMealPlanner("http://127.0.0.1:0", "", "gpt-4o-mini", 1), false)
	doJSON(router, "POST", "/api/onboarding", onboardAlice)

	w := doJSON(router, "POST", "/api/mealplan/daily", `{"user_id":"alice","date":"2026-10-14"}`)
	if w.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d: %s", w.Code, w.Body.String())
	}
}
