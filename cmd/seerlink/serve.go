package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/seerlink/seerlink/internal/api"
	"github.com/seerlink/seerlink/internal/config"
	"github.com/seerlink/seerlink/internal/database"
	"github.com/seerlink/seerlink/internal/diagnostics"
	"github.com/seerlink/seerlink/internal/extract"
	"github.com/seerlink/seerlink/internal/health"
	"github.com/seerlink/seerlink/internal/history"
	"github.com/seerlink/seerlink/internal/logger"
	"github.com/seerlink/seerlink/internal/lookup"
	"github.com/seerlink/seerlink/internal/scheduler"
	"github.com/seerlink/seerlink/internal/scheduler/tasks"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API for the browser extension",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(flags.configPath)
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg)
		},
	}
}

func serve(parent context.Context, cfg *config.Config) error {
	log := logger.New(logger.Config{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		Path:       cfg.Logging.Path,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAgeDays: cfg.Logging.MaxAgeDays,
		Compress:   cfg.Logging.Compress,
		BufferSize: 1000,
	})
	defer log.Close()

	log.Info().
		Str("address", cfg.Server.Address()).
		Str("jellyseerr", cfg.Jellyseerr.URL).
		Bool("configured", cfg.Jellyseerr.Configured()).
		Msg("starting seerlink")
	if !cfg.Jellyseerr.Configured() {
		log.Warn().Msg("jellyseerr url or api key missing, every title will show the request button")
	}

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(ctx, cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	client := newClient(cfg, log)
	lookupSvc := lookup.NewService(client, lookupConfig(cfg), log.Logger)

	historyLog := log.WithComponent("history")
	historySvc := history.NewService(db.Conn(), &historyLog)
	lookupSvc.SetHistory(historySvc)

	var traces *diagnostics.Buffer
	if cfg.Diagnostics.Enabled {
		traces = diagnostics.NewBuffer(cfg.Diagnostics.Buffer)
		lookupSvc.SetRecorder(traces)
	}

	extractLog := log.WithComponent("extract")
	extractor, err := extract.New(cfg.Extract, &extractLog)
	if err != nil {
		return fmt.Errorf("invalid extract rules: %w", err)
	}

	healthSvc := health.NewService(log.Logger)

	sched, err := scheduler.New(log.Logger)
	if err != nil {
		return err
	}
	if err := registerTasks(sched, cfg, client, db, historySvc, healthSvc, log); err != nil {
		return err
	}
	sched.Start()
	defer func() {
		if err := sched.Stop(); err != nil {
			log.Warn().Err(err).Msg("scheduler shutdown error")
		}
	}()

	server := api.NewServer(api.Deps{
		Lookup:    lookupSvc,
		Connector: client,
		Extractor: extractor,
		Health:    healthSvc,
		History:   historySvc,
		Scheduler: sched,
		Traces:    traces,
		Logs:      log,
	}, log.Logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start(cfg.Server.Address())
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server stopped: %w", err)
		}
		return nil
	case <-ctx.Done():
		log.Info().Msg("received shutdown signal")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown error")
	}

	log.Info().Msg("server stopped")
	return nil
}

func registerTasks(
	sched *scheduler.Scheduler,
	cfg *config.Config,
	connector tasks.Connector,
	db *database.DB,
	historySvc *history.Service,
	healthSvc *health.Service,
	log *logger.Logger,
) error {
	taskLog := log.WithComponent("tasks")

	if err := tasks.RegisterConnectionHealthTask(sched, connector, healthSvc, cfg.Health.Interval, &taskLog); err != nil {
		return fmt.Errorf("failed to register connection check: %w", err)
	}
	if err := tasks.RegisterStorageHealthTask(sched, db, healthSvc, cfg.Health.Interval, taskLog); err != nil {
		return fmt.Errorf("failed to register storage check: %w", err)
	}
	if err := tasks.RegisterHistoryCleanupTask(sched, historySvc, cfg.History.RetentionDays, &taskLog); err != nil {
		return fmt.Errorf("failed to register history cleanup: %w", err)
	}
	return nil
}
