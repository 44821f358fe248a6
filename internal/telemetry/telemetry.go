// Package telemetry holds the Prometheus collectors for the service and the
// gin middleware that feeds the HTTP ones.
package telemetry

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "wellness"

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"method", "path"},
	)

	xpAwarded = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "xp_awarded_total",
			Help:      "XP awarded after multipliers, by activity source.",
		},
		[]string{"source"},
	)

	onboardings = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "onboardings_total",
			Help:      "Completed onboardings, split by first-time vs repeat.",
		},
		[]string{"kind"},
	)

	snapshotSaves = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "snapshot",
			Name:      "saves_total",
			Help:      "Snapshot save attempts by result.",
		},
		[]string{"result"},
	)

	mealPlans = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "mealplan",
			Name:      "requests_total",
			Help:      "Meal plan generations by kind and result.",
		},
		[]string{"kind", "result"},
	)
)

func init() {
	Registry.MustRegister(
		httpRequests,
		httpDuration,
		xpAwarded,
		onboardings,
		snapshotSaves,
		mealPlans,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler returns an HTTP handler exposing the registered Prometheus metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// GinMiddleware records request count and latency. The route template
// (c.FullPath) is used as the path label to keep cardinality bounded.
func GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.URL.Path == "/metrics" {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		httpRequests.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		httpDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}

func RecordXPAward(source string, xp int) {
	xpAwarded.WithLabelValues(source).Add(float64(xp))
}

func RecordOnboarding(repeat bool) {
	kind := "new"
	if repeat {
		kind = "repeat"
	}
	onboardings.WithLabelValues(kind).Inc()
}

func RecordSnapshotSave(err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	snapshotSaves.WithLabelValues(result).Inc()
}

func RecordMealPlan(kind string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	mealPlans.WithLabelValues(kind, result).Inc()
}
