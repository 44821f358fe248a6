package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"lg/wellness-xp-api/internal/store"
)

func main() {
	cfg := loadConfig(logrus.StandardLogger())
	log := newLogger(cfg.LogLevel, cfg.LogFormat)

	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	snap, closeSnap := openSnapshotter(ctx, cfg, log)
	defer closeSnap()

	// The store's change hook needs the persister, and the persister needs the
	// store, so the hook closes over a variable assigned right after.
	var persister *store.Persister
	st := store.Open(ctx, snap, log.WithField("component", "store"),
		store.WithOnChange(func() { persister.Notify() }))
	persister = store.NewPersister(st, snap, log)

	// The persister outlives ctx so requests drained during shutdown still
	// reach storage.
	persistCtx, stopPersister := context.WithCancel(context.Background())
	persisterDone := make(chan struct{})
	go func() {
		persister.Run(persistCtx)
		close(persisterDone)
	}()

	planner := newOpenAIMealPlanner(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.MealPlanRPS)
	if cfg.OpenAIAPIKey == "" {
		log.Warn("OPENAI_API_KEY not set, meal plan endpoints will fail")
	}

	h := newHandler(st, planner, cfg.ResetXPOnOnboarding, log)
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           newRouter(h, cfg),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      90 * time.Second, // weekly meal plans are slow
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.WithField("addr", srv.Addr).Info("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Error("server stopped unexpectedly")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("graceful shutdown incomplete")
	}
	// Run flushes the final state once its context is cancelled.
	stopPersister()
	<-persisterDone
	log.Info("state flushed, bye")
}

// openSnapshotter picks the persistence backend. A Postgres backend that
// cannot connect falls back to the file backend rather than refusing to start.
func openSnapshotter(ctx context.Context, cfg config, log logrus.FieldLogger) (store.Snapshotter, func()) {
	fileSnap := store.NewFileSnapshotter(cfg.SnapshotPath)
	if cfg.SnapshotBackend != "postgres" {
		log.WithField("path", cfg.SnapshotPath).Info("using file snapshots")
		return fileSnap, func() {}
	}

	pool, err := store.NewPool(ctx, cfg.DBURL)
	if err != nil {
		log.WithError(err).WithField("path", cfg.SnapshotPath).Error("postgres unavailable, using file snapshots")
		return fileSnap, func() {}
	}
	log.Info("using postgres snapshots")
	return store.NewPostgresSnapshotter(pool), pool.Close
}
