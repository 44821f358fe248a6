package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"

	"lg/wellness-xp-api/internal/telemetry"
)

// MealPlanner generates meal plans from a profile's calorie target and
// preferences.
type MealPlanner interface {
	DailyPlan(ctx context.Context, in mealPlanInput) (dailyPlan, error)
	WeeklyPlan(ctx context.Context, in mealPlanInput) (weeklyPlan, error)
}

/* ─── Prompt constants ────────────────────────────────────────────────── */

const dailyPlanPromptTemplate = `You are a helpful nutrition assistant. Generate a daily meal plan for a user with:
- Target calories: %d
- Goal: %s
- Diet: %s
- Preferred meals per day: %d

Return a JSON object with:
- "meals": array of {"name" (string), "calories" (integer), "items" (array of strings)}
- "shopping_list": array of strings
Return only valid JSON, no explanation.`

const weeklyPlanPromptTemplate = `You are a professional dietitian. Generate a varied 7-day meal plan for a user with:
- Target calories per day: %d
- Goal: %s
- Diet: %s
- Meals per day: %d

Return a JSON object with:
- "days": array of 7 {"day_index" (integer 1-7), "label" (string), "meals": array of {"name", "calories", "items"}}
- "shopping_list": one consolidated, alphabetized, de-duplicated array of strings for all 7 days
Return only valid JSON, no explanation.`

/* ─── OpenAI-compatible client ────────────────────────────────────────── */

// openAIMessage is a single message in the chat completions request.
type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// openAIRequest is the request body for the chat completions API.
type openAIRequest struct {
	Model          string          `json:"model"`
	Messages       []openAIMessage `json:"messages"`
	Temperature    float64         `json:"temperature"`
	ResponseFormat map[string]any  `json:"response_format"`
}

// openAIMealPlanner talks to an OpenAI-compatible chat completions endpoint.
// baseURL is overridable so tests can point it at an httptest server.
type openAIMealPlanner struct {
	baseURL string
	apiKey  string
	model   string
	client  *http.Client
	limiter *rate.Limiter
}

func newOpenAIMealPlanner(baseURL, apiKey, model string, rps float64) *openAIMealPlanner {
	return &openAIMealPlanner{
		baseURL: baseURL,
		apiKey:  apiKey,
		model:   model,
		// Weekly plans are long completions; 15s is too tight for them.
		client:  &http.Client{Timeout: 60 * time.Second},
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
	}
}

func (p *openAIMealPlanner) DailyPlan(ctx context.Context, in mealPlanInput) (dailyPlan, error) {
	prompt := fmt.Sprintf(dailyPlanPromptTemplate, in.TargetCalories, in.Goal, in.Diet, in.MealsPerDay)
	var plan dailyPlan
	if err := p.complete(ctx, prompt, &plan); err != nil {
		return dailyPlan{}, err
	}
	return plan, nil
}

func (p *openAIMealPlanner) WeeklyPlan(ctx context.Context, in mealPlanInput) (weeklyPlan, error) {
	prompt := fmt.Sprintf(weeklyPlanPromptTemplate, in.TargetCalories, in.Goal, in.Diet, in.MealsPerDay)
	var plan weeklyPlan
	if err := p.complete(ctx, prompt, &plan); err != nil {
		return weeklyPlan{}, err
	}
	return plan, nil
}

// complete sends one JSON-mode chat completion and decodes the first choice's
// content into out. Calls wait on the rate limiter first.
func (p *openAIMealPlanner) complete(ctx context.Context, prompt string, out any) error {
	if p.apiKey == "" {
		return errors.New("OPENAI_API_KEY not set")
	}
	if err := p.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	reqBody := openAIRequest{
		Model: p.model,
		Messages: []openAIMessage{
			{Role: "system", Content: prompt},
			{Role: "user", Content: "Generate the plan."},
		},
		Temperature:    0.2,
		ResponseFormat: map[string]any{"type": "json_object"},
	}
	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/v1/chat/completions", bytes.NewReader(bodyBytes))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("openai returned status %d: %s", resp.StatusCode, string(respBytes))
	}

	content := gjson.GetBytes(respBytes, "choices.0.message.content")
	if !content.Exists() {
		return errors.New("no choices in response")
	}
	if err := json.Unmarshal([]byte(content.String()), out); err != nil {
		return fmt.Errorf("decode plan: %w", err)
	}
	return nil
}

/* ─── Handlers ────────────────────────────────────────────────────────── */

// planInputFor loads the profile and replies 404 when the user is unknown.
func (h *Handler) planInputFor(c *gin.Context, userID string) (mealPlanInput, int, bool) {
	p, err := h.store.Profile(userID)
	if err != nil {
		h.domainError(c, err)
		return mealPlanInput{}, 0, false
	}
	return mealPlanInput{
		TargetCalories: p.TargetCalories,
		Goal:           p.GoalType,
		Diet:           p.DietType,
		MealsPerDay:    p.PreferredMealsPerDay,
	}, p.TargetCalories, true
}

// dailyMealPlan generates one day of meals at the user's calorie target.
// POST /api/mealplan/daily.
func (h *Handler) dailyMealPlan(c *gin.Context) {
	var req dailyMealPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if !requireUserID(c, &req.UserID) {
		return
	}
	in, target, ok := h.planInputFor(c, req.UserID)
	if !ok {
		return
	}

	plan, err := h.planner.DailyPlan(c.Request.Context(), in)
	telemetry.RecordMealPlan("daily", err)
	if err != nil {
		h.log.WithError(err).WithField("user_id", req.UserID).Error("daily meal plan failed")
		apiError(c, http.StatusBadGateway, "meal plan generation failed")
		return
	}

	c.JSON(http.StatusOK, dailyMealPlanResponse{
		UserID:         req.UserID,
		Date:           req.Date,
		TargetCalories: target,
		Meals:          nonNil(plan.Meals),
		ShoppingList:   nonNil(plan.ShoppingList),
	})
}

// weeklyMealPlan generates a 7-day plan for one week of the 11-week program.
// POST /api/mealplan/week.
func (h *Handler) weeklyMealPlan(c *gin.Context) {
	var req weeklyMealPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if !requireUserID(c, &req.UserID) {
		return
	}
	in, target, ok := h.planInputFor(c, req.UserID)
	if !ok {
		return
	}
	if req.WeekNumber < 1 || req.WeekNumber > 11 {
		apiError(c, http.StatusBadRequest, "week_number must be between 1 and 11")
		return
	}

	plan, err := h.planner.WeeklyPlan(c.Request.Context(), in)
	telemetry.RecordMealPlan("weekly", err)
	if err != nil {
		h.log.WithError(err).WithField("user_id", req.UserID).Error("weekly meal plan failed")
		apiError(c, http.StatusBadGateway, "meal plan generation failed")
		return
	}

	days := nonNil(plan.Days)
	for i := range days {
		days[i].Meals = nonNil(days[i].Meals)
	}
	c.JSON(http.StatusOK, weeklyMealPlanResponse{
		UserID:         req.UserID,
		WeekNumber:     req.WeekNumber,
		TargetCalories: target,
		Days:           days,
		ShoppingList:   nonNil(plan.ShoppingList),
	})
}

// nonNil turns a nil slice into an empty one so JSON renders [] not null.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
