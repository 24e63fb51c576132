package tasks

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/seerlink/seerlink/internal/health"
	"github.com/seerlink/seerlink/internal/scheduler"
)

const (
	StorageHealthTaskID = "storage-health"
	StorageHealthItemID = "database"
)

// Store is the history database being checked.
type Store interface {
	Conn() *sql.DB
	Path() string
	Version(ctx context.Context) (int64, error)
}

// StorageHealthTask checks that the history database answers queries.
type StorageHealthTask struct {
	store  Store
	health *health.Service
	logger zerolog.Logger
}

// NewStorageHealthTask creates a new storage health check task.
func NewStorageHealthTask(store Store, healthService *health.Service, logger zerolog.Logger) *StorageHealthTask {
	healthService.RegisterItem(health.CategoryStorage, StorageHealthItemID, "Request history database")
	return &StorageHealthTask{
		store:  store,
		health: healthService,
		logger: logger.With().Str("task", StorageHealthTaskID).Logger(),
	}
}

// Run executes the storage health check. Failures are recorded in the health
// service rather than returned.
func (t *StorageHealthTask) Run(ctx context.Context) error {
	if err := t.store.Conn().PingContext(ctx); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		t.logger.Error().Err(err).Msg("Database ping failed")
		t.health.SetError(health.CategoryStorage, StorageHealthItemID, fmt.Sprintf("database unreachable: %v", err))
		return nil
	}

	version, err := t.store.Version(ctx)
	if err != nil {
		t.logger.Warn().Err(err).Msg("Failed to read schema version")
		t.health.SetWarning(health.CategoryStorage, StorageHealthItemID, fmt.Sprintf("schema version unknown: %v", err))
		return nil
	}

	details := map[string]string{
		"path":          t.store.Path(),
		"schemaVersion": strconv.FormatInt(version, 10),
	}
	if info, err := os.Stat(t.store.Path()); err == nil {
		details["sizeBytes"] = strconv.FormatInt(info.Size(), 10)
	}

	t.health.SetOK(health.CategoryStorage, StorageHealthItemID, details)
	t.logger.Debug().Int64("schemaVersion", version).Msg("Storage health check completed")
	return nil
}

// RegisterStorageHealthTask registers the storage health check task with the scheduler.
func RegisterStorageHealthTask(
	sched *scheduler.Scheduler,
	store Store,
	healthService *health.Service,
	interval time.Duration,
	logger zerolog.Logger,
) error {
	task := NewStorageHealthTask(store, healthService, logger)

	if interval == 0 {
		interval = time.Hour
	}

	return sched.RegisterTask(scheduler.TaskConfig{
		ID:          StorageHealthTaskID,
		Name:        "Storage Health Check",
		Description: "Checks that the request history database answers queries",
		Interval:    interval,
		Timeout:     30 * time.Second,
		RunOnStart:  true,
		Func:        task.Run,
	})
}
