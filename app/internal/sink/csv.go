// Package sink writes finished reports to durable storage.
package sink

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"storemonitor/app/internal/models"
)

// Header is the column order of report files
var Header = []string{
	"store_id",
	"uptime_last_hour",
	"uptime_last_day",
	"uptime_last_week",
	"downtime_last_hour",
	"downtime_last_day",
	"downtime_last_week",
}

// CSVSink writes each report to store_report_YYYYMMDD_HHMMSS.csv in a
// directory. Files appear atomically and are never overwritten.
type CSVSink struct {
	dir string
	now func() time.Time

	mu sync.Mutex
}

// NewCSVSink returns a sink writing under dir, created on first use
func NewCSVSink(dir string) *CSVSink {
	return &CSVSink{dir: dir, now: time.Now}
}

// Emit writes result and returns the file name and path
func (s *CSVSink) Emit(ctx context.Context, result *models.ReportResult) (models.ReportLocation, error) {
	if err := ctx.Err(); err != nil {
		return models.ReportLocation{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return models.ReportLocation{}, fmt.Errorf("create reports dir: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, ".store_report_*.tmp")
	if err != nil {
		return models.ReportLocation{}, fmt.Errorf("create temp report: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := writeRows(tmp, result.ReportData); err != nil {
		tmp.Close()
		return models.ReportLocation{}, err
	}
	if err := tmp.Close(); err != nil {
		return models.ReportLocation{}, fmt.Errorf("close temp report: %w", err)
	}

	name, err := s.freeName()
	if err != nil {
		return models.ReportLocation{}, err
	}
	path := filepath.Join(s.dir, name)
	if err := os.Rename(tmp.Name(), path); err != nil {
		return models.ReportLocation{}, fmt.Errorf("rename report: %w", err)
	}

	return models.ReportLocation{Filename: name, Path: path}, nil
}

// freeName picks the timestamped file name, suffixed when a report from the
// same second already exists.
func (s *CSVSink) freeName() (string, error) {
	base := "store_report_" + s.now().Format("20060102_150405")
	for i := 0; ; i++ {
		name := base + ".csv"
		if i > 0 {
			name = fmt.Sprintf("%s_%d.csv", base, i)
		}
		_, err := os.Stat(filepath.Join(s.dir, name))
		if errors.Is(err, fs.ErrNotExist) {
			return name, nil
		}
		if err != nil {
			return "", fmt.Errorf("stat report: %w", err)
		}
	}
}

func writeRows(f *os.File, rows []models.ReportRow) error {
	w := csv.NewWriter(f)
	if err := w.Write(Header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, r := range rows {
		rec := []string{
			r.StoreID,
			formatHours(r.UptimeLastHour),
			formatHours(r.UptimeLastDay),
			formatHours(r.UptimeLastWeek),
			formatHours(r.DowntimeLastHour),
			formatHours(r.DowntimeLastDay),
			formatHours(r.DowntimeLastWeek),
		}
		if err := w.Write(rec); err != nil {
			return fmt.Errorf("write row %s: %w", r.StoreID, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush report: %w", err)
	}
	return nil
}

func formatHours(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
