package worker

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

// globalTestMetrics is a shared instance so repeated tests don't panic on
// duplicate promauto registration within this package's test binary.
var globalTestMetrics = NewCrawlerMetrics()

func TestNewCrawlerMetrics(t *testing.T) {
	metrics := globalTestMetrics

	if metrics.ConfigMetrics == nil {
		t.Error("ConfigMetrics is nil")
	}
	if metrics.RunsTotal == nil {
		t.Error("RunsTotal is nil")
	}
	if metrics.RunDurationSeconds == nil {
		t.Error("RunDurationSeconds is nil")
	}
	if metrics.DocumentsStoredTotal == nil {
		t.Error("DocumentsStoredTotal is nil")
	}
	if metrics.BlockedTotal == nil {
		t.Error("BlockedTotal is nil")
	}

	metrics.MustRegister()
}

func TestCrawlerMetrics_RecordCrawlRun(t *testing.T) {
	reg := prometheus.NewRegistry()

	counter := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "test_crawler_runs_total",
		Help: "Test counter",
	}, []string{"status"})
	histogram := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "test_crawler_run_duration_seconds",
		Help:    "Test histogram",
		Buckets: []float64{1, 5, 30, 60, 300, 900, 1800},
	})
	reg.MustRegister(counter, histogram)

	metrics := &CrawlerMetrics{RunsTotal: counter, RunDurationSeconds: histogram}

	metrics.RecordCrawlRun("completed", 45*time.Second)
	metrics.RecordCrawlRun("completed", 12*time.Second)
	metrics.RecordCrawlRun("blocked", 3*time.Second)

	if got := testutil.ToFloat64(metrics.RunsTotal.WithLabelValues("completed")); got != 2 {
		t.Errorf("expected 2 completed runs, got %f", got)
	}
	if got := testutil.ToFloat64(metrics.RunsTotal.WithLabelValues("blocked")); got != 1 {
		t.Errorf("expected 1 blocked run, got %f", got)
	}

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	found := false
	for _, mf := range mfs {
		if mf.GetName() == "test_crawler_run_duration_seconds" {
			found = true
			if mf.GetMetric()[0].GetHistogram().GetSampleCount() != 3 {
				t.Errorf("expected 3 duration observations, got %d", mf.GetMetric()[0].GetHistogram().GetSampleCount())
			}
		}
	}
	if !found {
		t.Error("duration histogram not found in registry")
	}
}

func TestCrawlerMetrics_RecordDocumentsStored(t *testing.T) {
	reg := prometheus.NewRegistry()
	counter := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "test_crawler_documents_stored_total",
		Help: "Test counter",
	})
	reg.MustRegister(counter)

	metrics := &CrawlerMetrics{DocumentsStoredTotal: counter}

	metrics.RecordDocumentsStored(10)
	metrics.RecordDocumentsStored(0)
	metrics.RecordDocumentsStored(-5)
	metrics.RecordDocumentsStored(3)

	if got := testutil.ToFloat64(metrics.DocumentsStoredTotal); got != 13 {
		t.Errorf("expected total 13, got %f", got)
	}
}

func TestCrawlerMetrics_RecordBlocked(t *testing.T) {
	reg := prometheus.NewRegistry()
	counter := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "test_crawler_blocked_total",
		Help: "Test counter",
	})
	reg.MustRegister(counter)

	metrics := &CrawlerMetrics{BlockedTotal: counter}

	metrics.RecordBlocked()
	metrics.RecordBlocked()

	if got := testutil.ToFloat64(metrics.BlockedTotal); got != 2 {
		t.Errorf("expected 2 blocked runs, got %f", got)
	}
}

func TestCrawlerMetrics_ConcurrentAccess(t *testing.T) {
	reg := prometheus.NewRegistry()
	counter := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "test_crawler_runs_concurrent",
		Help: "Test counter",
	}, []string{"status"})
	docs := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "test_crawler_documents_concurrent",
		Help: "Test counter",
	})
	histogram := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "test_crawler_duration_concurrent",
		Help:    "Test histogram",
		Buckets: []float64{1, 5, 30},
	})
	reg.MustRegister(counter, docs, histogram)

	metrics := &CrawlerMetrics{RunsTotal: counter, DocumentsStoredTotal: docs, RunDurationSeconds: histogram}

	done := make(chan bool)
	for i := 0; i < 10; i++ {
		go func() {
			metrics.RecordCrawlRun("completed", time.Second)
			metrics.RecordDocumentsStored(1)
			done <- true
		}()
	}
	for i := 0; i < 10; i++ {
		<-done
	}

	if got := testutil.ToFloat64(metrics.RunsTotal.WithLabelValues("completed")); got != 10 {
		t.Errorf("expected 10 completed runs, got %f", got)
	}
	if got := testutil.ToFloat64(metrics.DocumentsStoredTotal); got != 10 {
		t.Errorf("expected 10 documents stored, got %f", got)
	}
}
