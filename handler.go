package main

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"lg/wellness-xp-api/internal/fitness"
	"lg/wellness-xp-api/internal/store"
	"lg/wellness-xp-api/internal/telemetry"
	"lg/wellness-xp-api/internal/xp"
)

// Handler holds shared dependencies (state store, XP ledger, meal planner)
// for all route handlers.
type Handler struct {
	store   *store.Store
	ledger  *xp.Ledger
	planner MealPlanner
	resetXP bool // clear XP when a user onboards again
	log     logrus.FieldLogger
}

func newHandler(s *store.Store, planner MealPlanner, resetXP bool, log logrus.FieldLogger) *Handler {
	return &Handler{
		store:   s,
		ledger:  xp.NewLedger(s),
		planner: planner,
		resetXP: resetXP,
		log:     log,
	}
}

/* ─── Error responses ─────────────────────────────────────────────────── */

// apiError returns a consistent JSON error response: {"error": "message"}.
func apiError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}

const notOnboardedMessage = "user not found. complete onboarding first"

// domainError maps core errors onto client-facing statuses. Anything
// unrecognised is a 500 with a generic message.
func (h *Handler) domainError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, store.ErrUserNotFound):
		apiError(c, http.StatusNotFound, notOnboardedMessage)
	case errors.Is(err, fitness.ErrInvalidEnum),
		errors.Is(err, store.ErrInvalidProfile),
		errors.Is(err, xp.ErrNegativeXP),
		errors.Is(err, xp.ErrXPOverflow):
		apiError(c, http.StatusBadRequest, err.Error())
	default:
		h.log.WithError(err).WithField("path", c.FullPath()).Error("unhandled error")
		apiError(c, http.StatusInternalServerError, "internal error")
	}
}

/* ─── Server setup ────────────────────────────────────────────────────── */

// newRouter builds the engine with the shared middleware stack and all routes.
func newRouter(h *Handler, cfg config) *gin.Engine {
	router := gin.New()
	router.SetTrustedProxies(nil)
	router.Use(
		gin.Recovery(),
		requestID(),
		requestLogger(h.log),
		telemetry.GinMiddleware(),
		cors(cfg.CORSOrigins),
	)
	h.registerRoutes(router)
	return router
}

// registerRoutes registers all API routes on the router.
func (h *Handler) registerRoutes(router *gin.Engine) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(telemetry.Handler()))

	api := router.Group("/api")
	api.POST("/onboarding", h.onboard)
	api.GET("/profile/:user_id", h.getProfile)
	api.POST("/log/workout", h.logWorkout)
	api.POST("/log/walk", h.logWalk)
	api.POST("/challenge/complete", h.completeChallenge)
	api.GET("/xp/:user_id", h.getXPSummary)
	api.POST("/mealplan/daily", h.dailyMealPlan)
	api.POST("/mealplan/week", h.weeklyMealPlan)
}
