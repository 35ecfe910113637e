// Package report builds the uptime/downtime report for every store over the
// last hour, day and week before the newest observation.
package report

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"storemonitor/app/internal/log"
	"storemonitor/app/internal/metrics"
	"storemonitor/app/internal/models"
	"storemonitor/app/internal/uptime"
)

const (
	DefaultBatchSize = 50
	DefaultWorkers   = 4

	locationTTL = time.Hour
)

var (
	ErrNoStores       = errors.New("no stores found")
	ErrNoObservations = errors.New("no status observations found")
	ErrNoReportData   = errors.New("no report data generated")
)

// Period is one trailing report window
type Period struct {
	Name   string
	Length time.Duration
}

// Periods are the report windows in column order
var Periods = [3]Period{
	{Name: "hour", Length: time.Hour},
	{Name: "day", Length: 24 * time.Hour},
	{Name: "week", Length: 7 * 24 * time.Hour},
}

// Windows returns the closed windows ending at ref, one per Period
func Windows(ref time.Time) [3]models.Window {
	var ws [3]models.Window
	for i, p := range Periods {
		ws[i] = models.Window{Start: ref.Add(-p.Length), End: ref}
	}
	return ws
}

// Config tunes a Builder. Zero values take the package defaults.
type Config struct {
	BatchSize int
	Workers   int
	// StoreTimeout bounds the lookups for one store; zero disables it.
	StoreTimeout time.Duration
	Metrics      *metrics.Metrics
}

// Builder runs the estimator over all stores
type Builder struct {
	src  Sources
	sink Sink
	cfg  Config
	locs *uptime.Locations

	failures *streaks
}

// NewBuilder returns a Builder reading from src and emitting to sink.
// A nil sink leaves the result's file fields empty.
func NewBuilder(src Sources, sink Sink, cfg Config) *Builder {
	if cfg.BatchSize < 1 {
		cfg.BatchSize = DefaultBatchSize
	}
	if cfg.Workers < 1 {
		cfg.Workers = DefaultWorkers
	}
	return &Builder{
		src:  src,
		sink: sink,
		cfg:  cfg,
		locs: uptime.NewLocations(locationTTL),

		failures: newStreaks(),
	}
}

// Close releases the timezone cache
func (b *Builder) Close() {
	b.locs.Close()
}

type storeResult struct {
	row models.ReportRow
	err error
}

// Build produces one row per store that could be processed. Stores that fail
// are logged and left out; the call fails only when nothing could be built.
func (b *Builder) Build(ctx context.Context) (*models.ReportResult, error) {
	ids, err := b.src.Stores.ListStoreIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("list stores: %w", err)
	}
	if len(ids) == 0 {
		return nil, ErrNoStores
	}

	ref, ok, err := b.src.Observations.LatestObservationTime(ctx)
	if err != nil {
		return nil, fmt.Errorf("latest observation: %w", err)
	}
	if !ok {
		return nil, ErrNoObservations
	}
	ref = ref.UTC()
	windows := Windows(ref)

	ids = append([]string(nil), ids...)
	sort.Strings(ids)

	log.Infow("Generating report", "stores", len(ids), "reference_time", ref)

	rows := make([]models.ReportRow, 0, len(ids))
	var failures error
	batches := (len(ids) + b.cfg.BatchSize - 1) / b.cfg.BatchSize

	for n := 0; n < batches; n++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		start := n * b.cfg.BatchSize
		end := min(start+b.cfg.BatchSize, len(ids))
		batch := ids[start:end]
		log.Infof("Processing batch %d/%d (%d stores)", n+1, batches, len(batch))

		results := make([]storeResult, len(batch))
		var g errgroup.Group
		g.SetLimit(b.cfg.Workers)
		for i, id := range batch {
			g.Go(func() error {
				row, err := b.processStore(ctx, id, windows)
				results[i] = storeResult{row: row, err: err}
				return nil
			})
		}
		_ = g.Wait()

		// Stores cut short by cancellation are not failures of their own.
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		for i, r := range results {
			streak := b.failures.record(batch[i], r.err != nil)
			if r.err != nil {
				if streak >= failingStreak {
					log.Errorw("Store failing repeatedly", "store_id", batch[i], "runs", streak, "error", r.err)
				} else {
					log.Warnw("Skipping store", "store_id", batch[i], "error", r.err)
				}
				b.cfg.Metrics.StoreFailed()
				failures = multierr.Append(failures, r.err)
				continue
			}
			b.cfg.Metrics.StoreProcessed()
			rows = append(rows, r.row)
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b.failures.retain(ids)
	if len(rows) == 0 {
		return nil, multierr.Append(ErrNoReportData, failures)
	}

	result := &models.ReportResult{
		ReportData:      rows,
		ReferenceTime:   ref,
		StoresProcessed: len(rows),
		StoresTotal:     len(ids),
	}

	if b.sink != nil {
		loc, err := b.sink.Emit(ctx, result)
		if err != nil {
			return nil, fmt.Errorf("emit report: %w", err)
		}
		result.Filename = loc.Filename
		result.Filepath = loc.Path
		log.Infow("Report saved", "path", loc.Path)
	}

	log.Infof("Successfully processed %d out of %d stores", result.StoresProcessed, result.StoresTotal)
	return result, nil
}

// processStore computes the three windows for one store. A failed hours or
// timezone lookup, or an unloadable timezone, yields an all-zero row; an
// observation lookup error zeroes only the affected window. Panics and
// context errors fail the store so it is left out.
func (b *Builder) processStore(ctx context.Context, storeID string, windows [3]models.Window) (row models.ReportRow, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("store %s: panic: %v", storeID, r)
		}
	}()

	if b.cfg.StoreTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.cfg.StoreTimeout)
		defer cancel()
	}

	empty := models.ReportRow{StoreID: storeID}
	degrade := func(what string, err error) (models.ReportRow, error) {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return row, fmt.Errorf("store %s: %w", storeID, ctxErr)
		}
		log.Warnw("Store lookup failed, reporting zero hours",
			"store_id", storeID, "lookup", what, "error", err)
		return empty, nil
	}

	hours, err := b.src.Hours.GetBusinessHours(ctx, storeID)
	if err != nil {
		return degrade("business_hours", err)
	}
	tz, err := b.src.Timezones.GetTimezone(ctx, storeID)
	if err != nil {
		return degrade("timezone", err)
	}
	loc, err := b.locs.Load(tz)
	if err != nil {
		return degrade("timezone", err)
	}

	sched := uptime.NewSchedule(storeID, hours)
	var totals [3]uptime.Totals
	for i, w := range windows {
		obs, err := b.src.Observations.GetObservations(ctx, storeID, w.Start, w.End)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return row, fmt.Errorf("store %s: %w", storeID, ctxErr)
			}
			log.Warnw("Observation lookup failed, counting window as empty",
				"store_id", storeID, "window", Periods[i].Name, "error", err)
			continue
		}
		totals[i] = sched.Estimate(w, obs, loc)
	}

	return models.ReportRow{
		StoreID:          storeID,
		UptimeLastHour:   round2(totals[0].UptimeHours),
		UptimeLastDay:    round2(totals[1].UptimeHours),
		UptimeLastWeek:   round2(totals[2].UptimeHours),
		DowntimeLastHour: round2(totals[0].DowntimeHours),
		DowntimeLastDay:  round2(totals[1].DowntimeHours),
		DowntimeLastWeek: round2(totals[2].DowntimeHours),
	}, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
