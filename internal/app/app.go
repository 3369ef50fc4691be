package app

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/titulus/internal/common"
	"github.com/ternarybob/titulus/internal/interfaces"
	"github.com/ternarybob/titulus/internal/patterns"
	"github.com/ternarybob/titulus/internal/pipeline"
	"github.com/ternarybob/titulus/internal/storage/badger"
)

// App holds all application components and dependencies
type App struct {
	Config         *common.Config
	Logger         arbor.ILogger
	StorageManager interfaces.StorageManager
	Library        *patterns.Library
	Telemetry      *pipeline.Telemetry
	Pipeline       *pipeline.Pipeline

	scheduler *cron.Cron
}

// New initializes storage, loads the pattern library, and wires the
// pipeline. A store that cannot be opened or a required pattern type with
// zero active records is a config error and aborts startup.
func New(ctx context.Context, config *common.Config, logger arbor.ILogger) (*App, error) {
	storageManager, err := badger.NewManager(logger, &config.Storage.Badger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize pattern store: %w", err)
	}

	// First run against an empty store gets the curated default library.
	count, err := storageManager.PatternStorage().CountPatterns(ctx)
	if err != nil {
		storageManager.Close()
		return nil, fmt.Errorf("failed to inspect pattern store: %w", err)
	}
	if count == 0 {
		logger.Info().Msg("Pattern store is empty, seeding default library")
		if err := storageManager.SeedDefaultPatterns(ctx); err != nil {
			storageManager.Close()
			return nil, fmt.Errorf("failed to seed default patterns: %w", err)
		}
	}

	library, err := patterns.NewLibrary(ctx, logger, storageManager.PatternStorage())
	if err != nil {
		storageManager.Close()
		return nil, err
	}

	telemetry := pipeline.NewTelemetry(logger, storageManager.PatternStorage(), config.Telemetry.Enabled)

	return &App{
		Config:         config,
		Logger:         logger,
		StorageManager: storageManager,
		Library:        library,
		Telemetry:      telemetry,
		Pipeline:       pipeline.New(logger, library, &config.Pipeline, telemetry),
	}, nil
}

// StartTelemetryScheduler flushes buffered pattern counters on the
// configured cron schedule. Used by serve mode; CLI commands flush on exit.
func (a *App) StartTelemetryScheduler() error {
	if !a.Config.Telemetry.Enabled || a.Config.Telemetry.FlushSchedule == "" {
		return nil
	}

	scheduler := cron.New(cron.WithSeconds())
	_, err := scheduler.AddFunc(a.Config.Telemetry.FlushSchedule, func() {
		a.Telemetry.Flush(context.Background())
	})
	if err != nil {
		return fmt.Errorf("invalid telemetry flush schedule %q: %w", a.Config.Telemetry.FlushSchedule, err)
	}

	scheduler.Start()
	a.scheduler = scheduler

	a.Logger.Info().Str("schedule", a.Config.Telemetry.FlushSchedule).Msg("Telemetry flush scheduler started")
	return nil
}

// Close stops the scheduler, flushes remaining counters, and closes storage.
func (a *App) Close() {
	if a.scheduler != nil {
		a.scheduler.Stop()
	}

	a.Telemetry.Flush(context.Background())

	if err := a.StorageManager.Close(); err != nil {
		a.Logger.Warn().Err(err).Msg("Failed to close pattern store")
	}
}
