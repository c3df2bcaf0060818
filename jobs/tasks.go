package jobs

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskLedgerIntegrity recomputes balances from history and reports drift.
	TaskLedgerIntegrity = "ledger:integrity"
	// TaskIdempotencyCleanup purges expired Idempotency-Key records.
	TaskIdempotencyCleanup = "ledger:idempotency-cleanup"
)

// IntegrityPayload selects the scopes to check. Scope keys use the
// "tenant:<id>" / "demo:<id>" form; an empty list checks every scope.
type IntegrityPayload struct {
	Scopes []string `json:"scopes,omitempty"`
}

// NewIntegrityTask constructs a ledger integrity task.
func NewIntegrityTask(scopes ...string) (*asynq.Task, error) {
	data, err := json.Marshal(IntegrityPayload{Scopes: scopes})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskLedgerIntegrity, data), nil
}

// IdempotencyCleanupPayload carries the key retention window.
type IdempotencyCleanupPayload struct {
	Retention time.Duration `json:"retention"`
}

func NewIdempotencyCleanupTask(retention time.Duration) (*asynq.Task, error) {
	data, err := json.Marshal(IdempotencyCleanupPayload{Retention: retention})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskIdempotencyCleanup, data), nil
}
