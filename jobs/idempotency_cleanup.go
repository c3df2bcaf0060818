package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/odyssey-erp/odyssey-ledger/internal/jobs"
)

// DefaultIdempotencyRetention is how long processed event keys are kept.
const DefaultIdempotencyRetention = 72 * time.Hour

// IdempotencyCleaner deletes keys older than the retention window.
type IdempotencyCleaner interface {
	Cleanup(ctx context.Context, olderThan time.Duration) error
}

// IdempotencyCleanupJob purges stale Idempotency-Key rows.
type IdempotencyCleanupJob struct {
	Store   IdempotencyCleaner
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
}

func NewIdempotencyCleanupJob(store IdempotencyCleaner, logger *slog.Logger, metrics *jobmetrics.Metrics) *IdempotencyCleanupJob {
	return &IdempotencyCleanupJob{Store: store, Logger: logger, Metrics: metrics}
}

// Handle executes TaskIdempotencyCleanup.
func (j *IdempotencyCleanupJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Store == nil {
		return errors.New("idempotency cleanup: handler not configured")
	}
	var payload IdempotencyCleanupPayload
	if len(t.Payload()) > 0 {
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
	}
	if payload.Retention <= 0 {
		payload.Retention = DefaultIdempotencyRetention
	}
	tracker := j.Metrics.Track(TaskIdempotencyCleanup)
	err := j.Store.Cleanup(ctx, payload.Retention)
	if err != nil && j.Logger != nil {
		j.Logger.Error("idempotency cleanup", slog.Duration("retention", payload.Retention), slog.Any("error", err))
	}
	return tracker.End(err)
}
