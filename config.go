package main

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// config holds everything read from the environment at startup.
type config struct {
	Port                string
	SnapshotBackend     string // "file" or "postgres"
	SnapshotPath        string
	DBURL               string
	ResetXPOnOnboarding bool
	CORSOrigins         []string
	OpenAIAPIKey        string
	OpenAIBaseURL       string
	OpenAIModel         string
	MealPlanRPS         float64
	LogLevel            string
	LogFormat           string
}

// loadConfig reads .env (if present) and then the process environment,
// falling back to defaults for anything unset.
func loadConfig(log logrus.FieldLogger) config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.WithError(err).Warn("failed to read .env, using process environment only")
	}

	return config{
		Port:                getEnv("PORT", "3000"),
		SnapshotBackend:     getEnv("SNAPSHOT_BACKEND", "file"),
		SnapshotPath:        getEnv("SNAPSHOT_PATH", "data/state.json"),
		DBURL:               os.Getenv("DB_URL"),
		ResetXPOnOnboarding: getEnvBool("RESET_XP_ON_ONBOARDING", false),
		CORSOrigins:         splitList(getEnv("CORS_ORIGINS", "http://localhost:3000,http://127.0.0.1:3000")),
		OpenAIAPIKey:        os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL:       strings.TrimRight(getEnv("OPENAI_BASE_URL", "https://api.openai.com"), "/"),
		OpenAIModel:         getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		MealPlanRPS:         getEnvFloat("MEALPLAN_RPS", 1),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
		LogFormat:           getEnv("LOG_FORMAT", "text"),
	}
}

// getEnv reads an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return v
}

func getEnvFloat(key string, defaultValue float64) float64 {
	v, err := strconv.ParseFloat(os.Getenv(key), 64)
	if err != nil || v <= 0 {
		return defaultValue
	}
	return v
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// newLogger builds the process logger from LOG_LEVEL / LOG_FORMAT.
func newLogger(level, format string) *logrus.Logger {
	l := logrus.New()
	if lvl, err := logrus.ParseLevel(level); err == nil {
		l.SetLevel(lvl)
	}
	if format == "json" {
		l.SetFormatter(&logrus.JSONFormatter{})
	} else {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return l
}
