package main

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"lg/wellness-xp-api/internal/xp"
)

// Upper bounds on a single logged activity. They keep the base XP formulas
// far from int overflow.
const (
	maxDurationMinutes = 24 * 60
	maxDistanceKM      = 1000
)

// requireUserID trims user_id in place, the same way onboarding stores it,
// and rejects it if empty.
func requireUserID(c *gin.Context, userID *string) bool {
	*userID = strings.TrimSpace(*userID)
	if *userID == "" {
		apiError(c, http.StatusBadRequest, "user_id is required")
		return false
	}
	return true
}

// requireUserAndDate checks the two fields every activity request carries.
// Dates are opaque strings; only presence is checked.
func requireUserAndDate(c *gin.Context, userID *string, date string) bool {
	if !requireUserID(c, userID) {
		return false
	}
	if strings.TrimSpace(date) == "" {
		apiError(c, http.StatusBadRequest, "date is required")
		return false
	}
	return true
}

// award routes base XP through the ledger and replies with the award, with
// prefix prepended to the ledger's "+N XP earned!" message.
func (h *Handler) award(c *gin.Context, userID, date string, baseXP int, source xp.Source, prefix string) {
	result, err := h.ledger.Award(userID, date, baseXP, source)
	if err != nil {
		h.domainError(c, err)
		return
	}
	result.Message = prefix + " " + result.Message

	h.log.WithFields(logrus.Fields{
		"user_id":   userID,
		"date":      date,
		"source":    source,
		"xp_earned": result.XPEarned,
		"total_xp":  result.TotalXP,
	}).Info("xp awarded")

	c.JSON(http.StatusOK, result)
}

func where(isOutdoor bool) string {
	if isOutdoor {
		return "outdoor"
	}
	return "indoor"
}

// logWorkout awards 2 XP/minute (+20 outdoors) times the user's multiplier.
// POST /api/log/workout.
func (h *Handler) logWorkout(c *gin.Context) {
	var req logWorkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if !requireUserAndDate(c, &req.UserID, req.Date) {
		return
	}
	if req.DurationMinutes < 0 || req.DurationMinutes > maxDurationMinutes {
		apiError(c, http.StatusBadRequest, fmt.Sprintf("duration_minutes must be between 0 and %d", maxDurationMinutes))
		return
	}

	prefix := fmt.Sprintf("Logged %d min %s %s workout.", req.DurationMinutes, where(req.IsOutdoor), req.Type)
	h.award(c, req.UserID, req.Date, xp.WorkoutXP(req.DurationMinutes, req.IsOutdoor), xp.SourceWorkout, prefix)
}

// logWalk awards 1 XP/minute + 5 XP/km (+15 outdoors) times the multiplier.
// POST /api/log/walk.
func (h *Handler) logWalk(c *gin.Context) {
	var req logWalkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if !requireUserAndDate(c, &req.UserID, req.Date) {
		return
	}
	if req.DurationMinutes < 0 || req.DurationMinutes > maxDurationMinutes {
		apiError(c, http.StatusBadRequest, fmt.Sprintf("duration_minutes must be between 0 and %d", maxDurationMinutes))
		return
	}
	if !(req.DistanceKM >= 0 && req.DistanceKM <= maxDistanceKM) {
		apiError(c, http.StatusBadRequest, fmt.Sprintf("distance_km must be between 0 and %d", maxDistanceKM))
		return
	}

	prefix := fmt.Sprintf("Logged %d min %s walk (%s km).",
		req.DurationMinutes, where(req.IsOutdoor), formatDecimal(req.DistanceKM))
	h.award(c, req.UserID, req.Date, xp.WalkXP(req.DurationMinutes, req.DistanceKM, req.IsOutdoor), xp.SourceWalk, prefix)
}

// completeChallenge awards a flat base XP (default 20) for a micro-challenge.
// The client is trusted that the challenge happened.
// POST /api/challenge/complete.
func (h *Handler) completeChallenge(c *gin.Context) {
	var req challengeCompleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if !requireUserAndDate(c, &req.UserID, req.Date) {
		return
	}
	base := xp.DefaultChallengeXP
	if req.BaseXP != nil {
		base = *req.BaseXP
	}

	prefix := fmt.Sprintf("Challenge '%s' completed.", req.ChallengeType)
	h.award(c, req.UserID, req.Date, xp.ChallengeXP(base), xp.SourceChallenge, prefix)
}

// getXPSummary returns total XP, the per-date log, and level progress.
// GET /api/xp/:user_id?date=YYYY-MM-DD. With date, xp_earned_today is the log
// value for that date (0 if nothing was logged).
func (h *Handler) getXPSummary(c *gin.Context) {
	sum, err := h.ledger.Summary(strings.TrimSpace(c.Param("user_id")))
	if err != nil {
		h.domainError(c, err)
		return
	}

	resp := xpSummaryResponse{
		UserID:  sum.UserID,
		TotalXP: sum.TotalXP,
		DailyXP: sum.DailyXP,
		Level:   sum.Level,
	}
	if date := c.Query("date"); date != "" {
		today := sum.DailyXP[date]
		resp.Date = date
		resp.XPEarnedToday = &today
	}
	c.JSON(http.StatusOK, resp)
}
