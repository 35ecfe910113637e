package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	dto "github.com/prometheus/client_model/go"
)

// value gathers the registry and returns the counter or gauge value of the
// named family, optionally matching a single status label.
func value(t *testing.T, m *Metrics, name, status string) float64 {
	t.Helper()
	families, err := m.Registry().Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, metric := range mf.GetMetric() {
			if status != "" && !hasLabel(metric, "status", status) {
				continue
			}
			switch mf.GetType() {
			case dto.MetricType_COUNTER:
				return metric.GetCounter().GetValue()
			case dto.MetricType_GAUGE:
				return metric.GetGauge().GetValue()
			}
		}
	}
	return 0
}

func hasLabel(m *dto.Metric, name, val string) bool {
	for _, lp := range m.GetLabel() {
		if lp.GetName() == name && lp.GetValue() == val {
			return true
		}
	}
	return false
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.StoreProcessed()
	m.StoreFailed()
	m.RunFinished("complete", time.Second, 3, time.Now())
	if err := m.WriteTextfile(filepath.Join(t.TempDir(), "x.prom")); err != nil {
		t.Errorf("WriteTextfile on nil: %v", err)
	}
	if m.Registry() != nil {
		t.Error("nil Metrics should have no registry")
	}
}

func TestStoreCounters(t *testing.T) {
	m := New()
	m.StoreProcessed()
	m.StoreProcessed()
	m.StoreFailed()

	if got := value(t, m, "store_monitor_stores_processed_total", ""); got != 2 {
		t.Errorf("stores processed = %v, want 2", got)
	}
	if got := value(t, m, "store_monitor_stores_failed_total", ""); got != 1 {
		t.Errorf("stores failed = %v, want 1", got)
	}
}

func TestRunFinished(t *testing.T) {
	m := New()
	at := time.Date(2023, 1, 25, 12, 0, 0, 0, time.UTC)

	m.RunFinished("complete", 2*time.Second, 7, at)
	m.RunFinished("failed", time.Second, 0, at.Add(time.Hour))

	if got := value(t, m, "store_monitor_report_runs_total", "complete"); got != 1 {
		t.Errorf("complete runs = %v, want 1", got)
	}
	if got := value(t, m, "store_monitor_report_runs_total", "failed"); got != 1 {
		t.Errorf("failed runs = %v, want 1", got)
	}
	if got := value(t, m, "store_monitor_report_last_success_timestamp_seconds", ""); got != float64(at.Unix()) {
		t.Errorf("last success = %v, want %d (failed run must not move it)", got, at.Unix())
	}
	if got := value(t, m, "store_monitor_report_last_rows", ""); got != 7 {
		t.Errorf("last rows = %v, want 7", got)
	}
}

func TestWriteTextfile(t *testing.T) {
	m := New()
	m.StoreProcessed()
	path := filepath.Join(t.TempDir(), "store_monitor.prom")

	if err := m.WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.Contains(string(data), "store_monitor_stores_processed_total 1") {
		t.Errorf("textfile missing counter:\n%s", data)
	}
}

func TestWriteTextfile_EmptyPathSkipped(t *testing.T) {
	if err := New().WriteTextfile(""); err != nil {
		t.Errorf("empty path: %v", err)
	}
}
