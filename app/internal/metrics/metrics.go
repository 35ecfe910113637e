// Package metrics holds the Prometheus collectors for report runs. The job is
// short lived, so collectors live on a private registry that is written to a
// node_exporter textfile instead of being scraped.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "store_monitor"

// Metrics is safe to use as a nil pointer; every method is then a no-op.
type Metrics struct {
	registry *prometheus.Registry

	runs          *prometheus.CounterVec
	storesOK      prometheus.Counter
	storesFailed  prometheus.Counter
	runDuration   prometheus.Histogram
	lastSuccess   prometheus.Gauge
	lastStoreRows prometheus.Gauge
}

// New creates and registers the report collectors
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		runs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "report_runs_total",
				Help:      "Report runs by final status.",
			},
			[]string{"status"},
		),
		storesOK: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stores_processed_total",
			Help:      "Stores that produced a report row.",
		}),
		storesFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stores_failed_total",
			Help:      "Stores omitted from a report because processing failed.",
		}),
		runDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "report_duration_seconds",
			Help:      "Wall time of a report run.",
			Buckets:   prometheus.ExponentialBuckets(0.5, 2, 12),
		}),
		lastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "report_last_success_timestamp_seconds",
			Help:      "Unix time of the last completed report.",
		}),
		lastStoreRows: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "report_last_rows",
			Help:      "Rows in the last completed report.",
		}),
	}

	m.registry.MustRegister(m.runs, m.storesOK, m.storesFailed, m.runDuration, m.lastSuccess, m.lastStoreRows)
	return m
}

// Registry exposes the private registry for tests and custom exporters
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// StoreProcessed counts one store that produced a row
func (m *Metrics) StoreProcessed() {
	if m == nil {
		return
	}
	m.storesOK.Inc()
}

// StoreFailed counts one omitted store
func (m *Metrics) StoreFailed() {
	if m == nil {
		return
	}
	m.storesFailed.Inc()
}

// RunFinished records the outcome of a run. rows is ignored for failed runs.
func (m *Metrics) RunFinished(status string, elapsed time.Duration, rows int, at time.Time) {
	if m == nil {
		return
	}
	m.runs.WithLabelValues(status).Inc()
	m.runDuration.Observe(elapsed.Seconds())
	if status == "complete" {
		m.lastSuccess.Set(float64(at.Unix()))
		m.lastStoreRows.Set(float64(rows))
	}
}

// WriteTextfile writes all collectors in the text exposition format to path.
// The file is replaced atomically so node_exporter never reads a partial file.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil || path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
