// Command esgscoped is the esgscope platform service. It serves the REST
// API, runs schema migrations and rescoring on a schedule.
package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/greenstart/esgscope/internal/api"
	"github.com/greenstart/esgscope/internal/platform"
	"github.com/greenstart/esgscope/internal/rescore"
	"github.com/greenstart/esgscope/internal/scheduler"
	"github.com/greenstart/esgscope/internal/store"
	"github.com/greenstart/esgscope/pkg/config"
	"github.com/greenstart/esgscope/pkg/logger"
	"github.com/greenstart/esgscope/pkg/scoring"
)

func main() {
	configPath := flag.String("config", "", "Path to config file (default: .esgscope/config.yaml)")
	memory := flag.Bool("memory", false, "Use the in-memory store instead of Postgres")
	flag.Parse()

	// .env is optional
	_ = godotenv.Load()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		l := zerolog.New(os.Stderr)
		l.Fatal().Err(err).Msg("load config")
	}

	log := logger.New(logger.Config{Level: cfg.Log.Level, Pretty: cfg.Log.Pretty})
	logger.SetGlobalLogger(log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, *memory, log); err != nil {
		log.Fatal().Err(err).Msg("esgscoped exited")
	}
}

func loadConfig(path string) (*config.Config, error) {
	cwd, _ := os.Getwd()
	cfg, err := config.LoadFrom(cwd, path)
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func run(ctx context.Context, cfg *config.Config, memory bool, log zerolog.Logger) error {
	var (
		st     store.Store
		health func(context.Context) error
	)
	if memory {
		log.Warn().Msg("using in-memory store; data is lost on restart")
		st = store.NewMemory()
	} else {
		db, err := platform.Open(cfg.Server.DatabaseURL)
		if err != nil {
			return err
		}
		defer db.Close()

		if cfg.Server.Migrate {
			if err := platform.AutoMigrate(db); err != nil {
				return err
			}
			log.Info().Msg("database migrations applied")
		}
		st = store.NewPostgres(db)
		health = pingHealth(db)
	}

	reports, err := rescore.NewReportStorage(ctx, cfg.Storage)
	if err != nil {
		return err
	}

	svc := rescore.NewService(st, scoring.NewEngine(cfg.Policy()),
		rescore.WithReports(reports),
		rescore.WithLogger(logger.Component(log, "rescore")),
	)

	handler := api.NewHandler(api.Config{
		Service:  svc,
		Store:    st,
		Cache:    api.NewCardCache(cfg.Server.CacheSize),
		APIKey:   cfg.Server.APIKey,
		Industry: cfg.Scoring.Industry,
		Log:      log,
		Health:   health,
	})

	if cfg.Scoring.RescoreCron != "" {
		sched := scheduler.New(ctx, log)
		if err := sched.AddJob(cfg.Scoring.RescoreCron, scheduler.NewRescoreJob(svc, logger.Component(log, "rescore_job"))); err != nil {
			return err
		}
		sched.Start()
		defer sched.Stop()
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().
			Str("port", cfg.Server.Port).
			Str("policy", string(cfg.Policy())).
			Str("storage", cfg.Storage.Backend).
			Msg("starting esgscoped")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func pingHealth(db *sql.DB) func(context.Context) error {
	return func(ctx context.Context) error {
		return db.PingContext(ctx)
	}
}
