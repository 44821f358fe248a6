package main

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"lg/wellness-xp-api/internal/fitness"
	"lg/wellness-xp-api/internal/store"
	"lg/wellness-xp-api/internal/telemetry"
)

// onboard validates the onboarding form, computes the derived targets, and
// stores the profile, overwriting any previous one for the same user_id.
// POST /api/onboarding.
func (h *Handler) onboard(c *gin.Context) {
	var req onboardingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	// Enum parsing happens here, before the calculator sees the values.
	level, err := fitness.ParseChallengeLevel(req.ChallengeLevel)
	if err != nil {
		h.domainError(c, err)
		return
	}
	goal, err := fitness.ParseGoalType(req.GoalType)
	if err != nil {
		h.domainError(c, err)
		return
	}
	diet, err := fitness.ParseDietType(req.DietType)
	if err != nil {
		h.domainError(c, err)
		return
	}

	profile, err := store.NewProfile(fitness.OnboardingInput{
		UserID:               req.UserID,
		ChallengeLevel:       level,
		DietType:             diet,
		GoalType:             goal,
		CurrentWeightKG:      req.CurrentWeightKG,
		GoalWeightKG:         req.GoalWeightKG,
		HeightCM:             req.HeightCM,
		Age:                  req.Age,
		Sex:                  req.Sex,
		PreferredMealsPerDay: req.PreferredMealsPerDay,
	})
	if err != nil {
		h.domainError(c, err)
		return
	}

	stored, repeat := h.store.Onboard(profile, h.resetXP)
	telemetry.RecordOnboarding(repeat)

	h.log.WithFields(logrus.Fields{
		"user_id":         stored.UserID,
		"repeat":          repeat,
		"target_calories": stored.TargetCalories,
	}).Info("user onboarded")

	c.JSON(http.StatusOK, onboardingResponse{
		Profile: stored,
		Message: onboardingMessage(stored),
	})
}

// onboardingMessage renders e.g. "You're set up for a hard challenge with
// weight loss from 80.0kg to 70.5kg."
func onboardingMessage(p store.Profile) string {
	return fmt.Sprintf("You're set up for a %s challenge with %s from %skg to %skg.",
		p.ChallengeLevel, p.GoalType.Label(), formatDecimal(p.CurrentWeightKG), formatDecimal(p.GoalWeightKG))
}

// formatDecimal prints the shortest form of v that round-trips, always with at
// least one decimal place: 80 → "80.0", 62.55 → "62.55".
func formatDecimal(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// getProfile returns the stored profile for a user.
// GET /api/profile/:user_id. 404 if the user never onboarded.
func (h *Handler) getProfile(c *gin.Context) {
	p, err := h.store.Profile(strings.TrimSpace(c.Param("user_id")))
	if err != nil {
		h.domainError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}
