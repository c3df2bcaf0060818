package perf

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/odyssey-ledger/internal/accounting"
	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/memstore"
	jobmetrics "github.com/odyssey-erp/odyssey-ledger/internal/jobs"
	"github.com/odyssey-erp/odyssey-ledger/internal/shared"
	"github.com/odyssey-erp/odyssey-ledger/jobs"
)

func TestIntegrityJobThroughputAndReliability(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := memstore.New()
	module := accounting.NewModule(accounting.MemoryStores(store), accounting.Options{Logger: logger})

	for _, scope := range []shared.Scope{shared.TenantScope("1"), shared.TenantScope("2"), shared.DemoScope("3")} {
		if _, err := module.Accounts.Initialize(ctx, scope, ""); err != nil {
			t.Fatalf("initialize %s: %v", scope, err)
		}
		customer := store.AddCustomer(scope, "Walk-in")
		for i := 0; i < 40; i++ {
			if _, err := module.Posting.PostCashSale(ctx, scope, "", decimal.NewFromInt(int64(10+i)), decimal.NewFromInt(5), nil); err != nil {
				t.Fatalf("cash sale: %v", err)
			}
			if _, err := module.Posting.PostCreditSale(ctx, scope, customer, "Walk-in", "", decimal.NewFromInt(20), decimal.Zero, nil); err != nil {
				t.Fatalf("credit sale: %v", err)
			}
		}
	}

	reg := prometheus.NewRegistry()
	job := jobs.NewIntegrityJob(module.Integrity, module.Accounts, logger, jobmetrics.NewMetrics(reg))
	for i := 0; i < 20; i++ {
		reports, err := job.Run(ctx, nil)
		if err != nil {
			t.Fatalf("integrity run %d: %v", i, err)
		}
		if len(reports) != 3 {
			t.Fatalf("expected 3 scopes, got %d", len(reports))
		}
	}

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}

	success := metricValue(t, families, "odyssey_jobs_total", map[string]string{"job": jobs.TaskLedgerIntegrity, "status": "success"})
	if success != 20 {
		t.Fatalf("expected 20 successful runs, got %f", success)
	}

	duration := histogramMean(t, families, "odyssey_job_duration_seconds", map[string]string{"job": jobs.TaskLedgerIntegrity})
	if duration > 0.5 {
		t.Fatalf("integrity duration above budget: %f", duration)
	}
}

func metricValue(t *testing.T, families []*dto.MetricFamily, name string, labels map[string]string) float64 {
	t.Helper()
	for _, fam := range families {
		if fam.GetName() != name {
			continue
		}
		for _, metric := range fam.GetMetric() {
			if hasLabels(metric, labels) {
				if fam.GetType() == dto.MetricType_COUNTER {
					return metric.GetCounter().GetValue()
				}
				if fam.GetType() == dto.MetricType_GAUGE {
					return metric.GetGauge().GetValue()
				}
			}
		}
	}
	t.Fatalf("metric %s with labels %v not found", name, labels)
	return 0
}

func histogramMean(t *testing.T, families []*dto.MetricFamily, name string, labels map[string]string) float64 {
	t.Helper()
	for _, fam := range families {
		if fam.GetName() != name {
			continue
		}
		for _, metric := range fam.GetMetric() {
			if hasLabels(metric, labels) {
				hist := metric.GetHistogram()
				if hist == nil || hist.GetSampleCount() == 0 {
					t.Fatalf("histogram %s missing samples", name)
				}
				return hist.GetSampleSum() / float64(hist.GetSampleCount())
			}
		}
	}
	t.Fatalf("histogram %s with labels %v not found", name, labels)
	return 0
}

func hasLabels(metric *dto.Metric, labels map[string]string) bool {
	for _, lp := range metric.GetLabel() {
		if val, ok := labels[lp.GetName()]; ok && lp.GetValue() != val {
			return false
		}
	}
	for key := range labels {
		found := false
		for _, lp := range metric.GetLabel() {
			if lp.GetName() == key {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
