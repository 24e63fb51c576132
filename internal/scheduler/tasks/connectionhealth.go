package tasks

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/seerlink/seerlink/internal/health"
	"github.com/seerlink/seerlink/internal/scheduler"
	"github.com/seerlink/seerlink/internal/seerr"
)

const (
	ConnectionHealthTaskID = "jellyseerr-health"
	ConnectionHealthItemID = "connection"
)

// Connector tests the Jellyseerr connection.
type Connector interface {
	TestConnection(ctx context.Context) (*seerr.Connection, error)
}

// ConnectionHealthTask checks the Jellyseerr URL and API key and records the
// outcome in the health service.
type ConnectionHealthTask struct {
	connector Connector
	health    *health.Service
	logger    *zerolog.Logger
}

// NewConnectionHealthTask creates a new connection check task.
func NewConnectionHealthTask(connector Connector, healthService *health.Service, logger *zerolog.Logger) *ConnectionHealthTask {
	subLogger := logger.With().Str("task", ConnectionHealthTaskID).Logger()
	healthService.RegisterItem(health.CategoryJellyseerr, ConnectionHealthItemID, "Jellyseerr")
	return &ConnectionHealthTask{
		connector: connector,
		health:    healthService,
		logger:    &subLogger,
	}
}

// Run executes one connection check. Failures are recorded, not returned.
func (t *ConnectionHealthTask) Run(ctx context.Context) error {
	conn, err := t.connector.TestConnection(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		t.health.SetError(health.CategoryJellyseerr, ConnectionHealthItemID, seerr.UserMessage(err))
		t.logger.Warn().Err(err).Msg("Jellyseerr health check failed")
		return nil
	}

	t.health.SetOK(health.CategoryJellyseerr, ConnectionHealthItemID, map[string]string{
		"user":   conn.User,
		"server": conn.Server,
	})
	t.logger.Debug().Str("user", conn.User).Msg("Jellyseerr health check passed")
	return nil
}

// RegisterConnectionHealthTask registers the periodic connection check.
func RegisterConnectionHealthTask(
	sched *scheduler.Scheduler,
	connector Connector,
	healthService *health.Service,
	interval time.Duration,
	logger *zerolog.Logger,
) error {
	task := NewConnectionHealthTask(connector, healthService, logger)

	return sched.RegisterTask(scheduler.TaskConfig{
		ID:          ConnectionHealthTaskID,
		Name:        "Jellyseerr Health Check",
		Description: "Tests the Jellyseerr URL and API key",
		Interval:    interval,
		Timeout:     time.Minute,
		RunOnStart:  true,
		Func:        task.Run,
	})
}
