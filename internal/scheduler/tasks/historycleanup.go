package tasks

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/seerlink/seerlink/internal/scheduler"
)

const HistoryCleanupTaskID = "history-cleanup"

// HistoryPruner deletes stored submissions past their retention.
type HistoryPruner interface {
	DeleteOlderThan(ctx context.Context, days int) (int64, error)
}

// RegisterHistoryCleanupTask registers the history cleanup task with the scheduler.
// The task runs daily at 2 AM. A retention of zero keeps history forever and
// registers nothing.
func RegisterHistoryCleanupTask(sched *scheduler.Scheduler, pruner HistoryPruner, retentionDays int, logger *zerolog.Logger) error {
	if retentionDays < 1 {
		logger.Debug().Msg("history retention disabled")
		return nil
	}

	return sched.RegisterTask(scheduler.TaskConfig{
		ID:          HistoryCleanupTaskID,
		Name:        "History Cleanup",
		Description: "Deletes request history older than the configured retention",
		Cron:        "0 2 * * *",
		Func: func(ctx context.Context) error {
			_, err := pruner.DeleteOlderThan(ctx, retentionDays)
			return err
		},
	})
}
