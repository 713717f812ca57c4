// Package jobs runs background maintenance through Asynq: purging expired
// session rows and pre-warming dashboard summary caches.
package jobs

import (
	"context"
	"log/slog"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskSessionsPurge deletes expired session rows.
	TaskSessionsPurge = "sessions:purge"
	// TaskDashboardWarmup recomputes dashboard summaries for active tenants.
	TaskDashboardWarmup = "dashboard:warmup"
)

// SessionPurger deletes expired sessions and reports how many went away.
type SessionPurger interface {
	PurgeExpiredSessions(ctx context.Context) (int64, error)
}

// SummaryWarmer recomputes cached dashboard summaries.
type SummaryWarmer interface {
	Warmup(ctx context.Context) error
}

// NewSessionsPurgeTask constructs the purge task. It carries no payload.
func NewSessionsPurgeTask() *asynq.Task {
	return asynq.NewTask(TaskSessionsPurge, nil)
}

// NewDashboardWarmupTask constructs the warmup task. It carries no payload.
func NewDashboardWarmupTask() *asynq.Task {
	return asynq.NewTask(TaskDashboardWarmup, nil)
}

// HandleSessionsPurge returns the handler for TaskSessionsPurge.
func HandleSessionsPurge(purger SessionPurger, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		removed, err := purger.PurgeExpiredSessions(ctx)
		if err != nil {
			return err
		}
		logger.Info("purged expired sessions", slog.Int64("removed", removed))
		return nil
	}
}

// HandleDashboardWarmup returns the handler for TaskDashboardWarmup.
func HandleDashboardWarmup(warmer SummaryWarmer, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		if err := warmer.Warmup(ctx); err != nil {
			return err
		}
		logger.Info("dashboard summaries warmed")
		return nil
	}
}
