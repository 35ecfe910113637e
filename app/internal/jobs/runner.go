// Package jobs tracks report runs through Pending, Running, Complete and
// Failed so callers can trigger a report and poll for it later.
package jobs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"storemonitor/app/internal/database"
	"storemonitor/app/internal/log"
	"storemonitor/app/internal/metrics"
	"storemonitor/app/internal/models"
)

// Store persists job records
type Store interface {
	CreateReport(ctx context.Context, id string) (*models.Report, error)
	UpdateReportStatus(ctx context.Context, id string, status models.ReportStatus, errMsg string, result *models.ReportResult) error
	GetReport(ctx context.Context, id string) (*models.Report, error)
}

// Generator builds one report
type Generator interface {
	Build(ctx context.Context) (*models.ReportResult, error)
}

// EventLog records job transitions for later inspection
type EventLog interface {
	InsertLog(ctx context.Context, level, category, report, message, details string) error
}

// Runner executes report jobs. Trigger runs them in the background; Wait
// blocks until those have finished.
type Runner struct {
	store   Store
	gen     Generator
	events  EventLog
	metrics *metrics.Metrics
	// metricsPath receives a textfile export after every run when set.
	metricsPath string

	newID func() string
	now   func() time.Time

	wg sync.WaitGroup
}

// NewRunner returns a Runner. events and m may be nil.
func NewRunner(store Store, gen Generator, events EventLog, m *metrics.Metrics) *Runner {
	return &Runner{
		store:   store,
		gen:     gen,
		events:  events,
		metrics: m,
		newID:   uuid.NewString,
		now:     time.Now,
	}
}

// ExportMetricsTo makes every finished run write the metrics textfile at path
func (r *Runner) ExportMetricsTo(path string) {
	r.metricsPath = path
}

// Create records a new Pending job and returns its id
func (r *Runner) Create(ctx context.Context) (string, error) {
	id := r.newID()
	if _, err := r.store.CreateReport(ctx, id); err != nil {
		return "", err
	}
	r.event(ctx, database.LogLevelInfo, id, "Report queued", "")
	return id, nil
}

// Trigger creates a job and runs it in the background. The run is detached
// from ctx cancellation so a caller returning early does not abort it.
func (r *Runner) Trigger(ctx context.Context) (string, error) {
	id, err := r.Create(ctx)
	if err != nil {
		return "", err
	}

	runCtx := context.WithoutCancel(ctx)
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		if _, err := r.Run(runCtx, id); err != nil {
			log.Errorw("Report failed", "report_id", id, "error", err)
		}
	}()
	return id, nil
}

// Wait blocks until every triggered job has returned
func (r *Runner) Wait() {
	r.wg.Wait()
}

// Run executes job id to completion. The job always ends Complete or Failed,
// even when ctx is canceled mid-run.
func (r *Runner) Run(ctx context.Context, id string) (*models.ReportResult, error) {
	if err := r.store.UpdateReportStatus(ctx, id, models.ReportRunning, "", nil); err != nil {
		return nil, fmt.Errorf("mark report %s running: %w", id, err)
	}
	log.Infow("Report started", "report_id", id)
	r.event(ctx, database.LogLevelInfo, id, "Report started", "")

	start := r.now()
	result, err := r.build(ctx)
	elapsed := r.now().Sub(start)
	finishCtx := context.WithoutCancel(ctx)
	defer r.exportMetrics()

	if err != nil {
		if uerr := r.store.UpdateReportStatus(finishCtx, id, models.ReportFailed, err.Error(), nil); uerr != nil {
			log.Errorw("Could not mark report failed", "report_id", id, "error", uerr)
		}
		r.metrics.RunFinished("failed", elapsed, 0, r.now())
		r.event(finishCtx, database.LogLevelError, id, "Report failed", err.Error())
		return nil, err
	}

	if err := r.store.UpdateReportStatus(finishCtx, id, models.ReportComplete, "", result); err != nil {
		r.metrics.RunFinished("failed", elapsed, 0, r.now())
		return nil, fmt.Errorf("mark report %s complete: %w", id, err)
	}
	r.metrics.RunFinished("complete", elapsed, len(result.ReportData), r.now())
	log.Infow("Report complete", "report_id", id,
		"stores_processed", result.StoresProcessed, "stores_total", result.StoresTotal,
		"file", result.Filepath, "elapsed", elapsed)
	r.event(finishCtx, database.LogLevelInfo, id, "Report complete",
		fmt.Sprintf("%d/%d stores, %s", result.StoresProcessed, result.StoresTotal, result.Filepath))
	return result, nil
}

// Status returns the stored job record
func (r *Runner) Status(ctx context.Context, id string) (*models.Report, error) {
	return r.store.GetReport(ctx, id)
}

func (r *Runner) exportMetrics() {
	if err := r.metrics.WriteTextfile(r.metricsPath); err != nil {
		log.Warnw("Failed to write metrics", "path", r.metricsPath, "error", err)
	}
}

func (r *Runner) build(ctx context.Context) (result *models.ReportResult, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("report generation panicked: %v", p)
		}
	}()
	return r.gen.Build(ctx)
}

func (r *Runner) event(ctx context.Context, level, id, message, details string) {
	if r.events == nil {
		return
	}
	if err := r.events.InsertLog(ctx, level, database.LogCategoryReport, id, message, details); err != nil {
		log.Warnw("Could not record report event", "report_id", id, "error", err)
	}
}
