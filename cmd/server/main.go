// Command server runs the feedback quality and rewards API.
//
// Startup order: load .env (optional), load and validate configuration, set
// up logging, open the database and migrate, configure tracing, start the
// scheduled reconciliation sweep, then serve HTTP until a shutdown signal.
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
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/FedericoTs/FeedbackforFounders-sub000/internal/config"
	httpapi "github.com/FedericoTs/FeedbackforFounders-sub000/internal/http"
	"github.com/FedericoTs/FeedbackforFounders-sub000/internal/observability"
	"github.com/FedericoTs/FeedbackforFounders-sub000/internal/repo"
	"github.com/FedericoTs/FeedbackforFounders-sub000/internal/rewards"
	"github.com/FedericoTs/FeedbackforFounders-sub000/internal/sysutil"
)

// version is stamped at build time via -ldflags.
var version = "dev"

func main() {
	// .env is a development convenience; absence is not an error.
	_ = godotenv.Load()

	cfg := config.MustLoad()

	sysutil.SetLogLevel(cfg.LogLevel)
	if cfg.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	db, err := repo.OpenSQLite(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("open database")
	}
	if err := repo.AutoMigrate(db); err != nil {
		log.Fatal().Err(err).Msg("migrate database")
	}

	shutdownOTel, err := observability.SetupOTel(context.Background(), cfg.OTEL, version)
	if err != nil {
		log.Fatal().Err(err).Msg("set up tracing")
	}

	// Scheduled reconciliation sweep over recently active users.
	reconciler := rewards.NewReconciler(db)
	sched := cron.New()
	if _, err := sched.AddFunc(cfg.Reconcile.Cron, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		res, err := reconciler.ReconcileRecent(ctx, cfg.Reconcile.Window)
		if err != nil {
			log.Error().Err(err).Msg("reconciliation sweep failed")
			return
		}
		log.Info().
			Int("users", res.Users).
			Int("corrected", res.Corrected).
			Msg("reconciliation sweep complete")
	}); err != nil {
		log.Fatal().Err(err).Str("spec", cfg.Reconcile.Cron).Msg("schedule reconciliation")
	}
	sched.Start()

	gin.SetMode(cfg.GinMode)
	r := gin.New()
	httpapi.RegisterRoutes(r, db, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Str("version", version).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	// Graceful shutdown on SIGINT/SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	// Let an in-flight sweep finish before closing the listener's backends.
	<-sched.Stop().Done()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}
	if err := shutdownOTel(ctx); err != nil {
		log.Error().Err(err).Msg("tracing shutdown")
	}
	log.Info().Msg("bye")
}
