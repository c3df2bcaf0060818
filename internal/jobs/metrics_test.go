package jobmetrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestTrackerRecordsOutcome(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	_ = m.Track("ledger:integrity").End(nil)
	boom := errors.New("boom")
	if err := m.Track("ledger:integrity").End(boom); !errors.Is(err, boom) {
		t.Fatalf("End must return the job error, got %v", err)
	}

	if got := testutil.ToFloat64(m.runs.WithLabelValues("ledger:integrity", "success")); got != 1 {
		t.Fatalf("success runs = %v", got)
	}
	if got := testutil.ToFloat64(m.failures.WithLabelValues("ledger:integrity")); got != 1 {
		t.Fatalf("failures = %v", got)
	}
}

func TestAddViolations(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())
	m.AddViolations("account_balance", 2)
	m.AddViolations("account_balance", 0)
	if got := testutil.ToFloat64(m.violations.WithLabelValues("account_balance")); got != 2 {
		t.Fatalf("violations = %v", got)
	}

	var nilMetrics *Metrics
	nilMetrics.AddViolations("account_balance", 1)
	if err := nilMetrics.Track("x").End(nil); err != nil {
		t.Fatalf("nil tracker: %v", err)
	}
}
