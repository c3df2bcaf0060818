package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/integrity"
	jobmetrics "github.com/odyssey-erp/odyssey-ledger/internal/jobs"
	"github.com/odyssey-erp/odyssey-ledger/internal/shared"
)

// ScopeLister enumerates scopes that own a chart of accounts.
type ScopeLister interface {
	Scopes(ctx context.Context) ([]shared.Scope, error)
}

// IntegrityChecker checks one scope.
type IntegrityChecker interface {
	Check(ctx context.Context, scope shared.Scope) (integrity.Report, error)
}

// ErrIntegrityViolations is returned when at least one scope failed a check.
var ErrIntegrityViolations = errors.New("ledger integrity violations found")

// IntegrityJob replays every scope's ledger and reports drift between stored
// running balances and their history.
type IntegrityJob struct {
	Checker IntegrityChecker
	Scopes  ScopeLister
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
	clock   func() time.Time
}

func NewIntegrityJob(checker IntegrityChecker, scopes ScopeLister, logger *slog.Logger, metrics *jobmetrics.Metrics) *IntegrityJob {
	return &IntegrityJob{
		Checker: checker,
		Scopes:  scopes,
		Logger:  logger,
		Metrics: metrics,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle executes TaskLedgerIntegrity. Violations are logged and counted but
// do not fail the task, so asynq does not retry a deterministic result.
func (j *IntegrityJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Checker == nil {
		return errors.New("ledger integrity: handler not configured")
	}
	var payload IntegrityPayload
	if len(t.Payload()) > 0 {
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
	}
	scopes, err := parseScopes(payload.Scopes)
	if err != nil {
		j.logger().Warn("ledger integrity payload", slog.Any("error", err))
		return asynq.SkipRetry
	}
	_, err = j.Run(ctx, scopes)
	if errors.Is(err, ErrIntegrityViolations) {
		return nil
	}
	return err
}

// Run checks the given scopes, or every known scope when none are given.
// It returns ErrIntegrityViolations alongside the reports when any check failed.
func (j *IntegrityJob) Run(ctx context.Context, scopes []shared.Scope) (reports []integrity.Report, resultErr error) {
	tracker := j.Metrics.Track(TaskLedgerIntegrity)
	defer func() {
		jobErr := resultErr
		if errors.Is(jobErr, ErrIntegrityViolations) {
			jobErr = nil
		}
		_ = tracker.End(jobErr)
	}()

	start := j.now()
	if len(scopes) == 0 {
		if j.Scopes == nil {
			return nil, errors.New("ledger integrity: no scopes to check")
		}
		listed, err := j.Scopes.Scopes(ctx)
		if err != nil {
			return nil, err
		}
		scopes = listed
	}

	logger := j.logger().With(slog.Int("scopes", len(scopes)))
	logger.Info("starting ledger integrity check")

	violations := 0
	for _, scope := range scopes {
		report, err := j.Checker.Check(ctx, scope)
		if err != nil {
			logger.Error("integrity check failed", slog.String("scope", scope.Key()), slog.Any("error", err))
			return reports, err
		}
		for _, v := range report.Violations {
			j.Metrics.AddViolations(string(v.Kind), 1)
		}
		violations += len(report.Violations)
		reports = append(reports, report)
	}

	logger.Info("completed ledger integrity check",
		slog.Int("violations", violations),
		slog.Duration("duration", j.now().Sub(start)),
	)
	if violations > 0 {
		return reports, ErrIntegrityViolations
	}
	return reports, nil
}

func (j *IntegrityJob) now() time.Time {
	if j.clock == nil {
		return time.Now().UTC()
	}
	return j.clock()
}

func (j *IntegrityJob) logger() *slog.Logger {
	if j.Logger == nil {
		return slog.Default()
	}
	return j.Logger
}

func parseScopes(keys []string) ([]shared.Scope, error) {
	out := make([]shared.Scope, 0, len(keys))
	for _, key := range keys {
		scope, err := shared.ParseScopeKey(key)
		if err != nil {
			return nil, err
		}
		out = append(out, scope)
	}
	return out, nil
}
