package sink

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"storemonitor/app/internal/models"
)

func testSink(t *testing.T) *CSVSink {
	t.Helper()
	s := NewCSVSink(filepath.Join(t.TempDir(), "reports"))
	s.now = func() time.Time { return time.Date(2023, 1, 25, 9, 5, 7, 0, time.UTC) }
	return s
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer f.Close()
	recs, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	return recs
}

func TestEmit_WritesHeaderAndRows(t *testing.T) {
	s := testSink(t)
	result := &models.ReportResult{ReportData: []models.ReportRow{
		{StoreID: "a", UptimeLastHour: 0.5, UptimeLastDay: 12.25, UptimeLastWeek: 80, DowntimeLastDay: 1.1},
		{StoreID: "b"},
	}}

	loc, err := s.Emit(context.Background(), result)
	if err != nil {
		t.Fatalf("Emit: %v", err)
	}
	if loc.Filename != "store_report_20230125_090507.csv" {
		t.Errorf("filename = %q", loc.Filename)
	}
	if loc.Path != filepath.Join(s.dir, loc.Filename) {
		t.Errorf("path = %q", loc.Path)
	}

	want := [][]string{
		Header,
		{"a", "0.5", "12.25", "80", "0", "1.1", "0"},
		{"b", "0", "0", "0", "0", "0", "0"},
	}
	if got := readCSV(t, loc.Path); !reflect.DeepEqual(got, want) {
		t.Errorf("csv = %v\nwant %v", got, want)
	}
}

func TestEmit_SameSecondDoesNotOverwrite(t *testing.T) {
	s := testSink(t)
	first, err := s.Emit(context.Background(), &models.ReportResult{ReportData: []models.ReportRow{{StoreID: "first"}}})
	if err != nil {
		t.Fatalf("Emit: %v", err)
	}
	second, err := s.Emit(context.Background(), &models.ReportResult{ReportData: []models.ReportRow{{StoreID: "second"}}})
	if err != nil {
		t.Fatalf("Emit: %v", err)
	}

	if second.Filename != "store_report_20230125_090507_1.csv" {
		t.Errorf("second filename = %q", second.Filename)
	}
	if got := readCSV(t, first.Path)[1][0]; got != "first" {
		t.Errorf("first report overwritten, store = %q", got)
	}
}

func TestEmit_NoTempFilesLeft(t *testing.T) {
	s := testSink(t)
	if _, err := s.Emit(context.Background(), &models.ReportResult{}); err != nil {
		t.Fatalf("Emit: %v", err)
	}
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("dir has %d entries, want only the report", len(entries))
	}
}

func TestEmit_CanceledContext(t *testing.T) {
	s := testSink(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := s.Emit(ctx, &models.ReportResult{}); err == nil {
		t.Error("expected error for canceled context")
	}
	if _, err := os.Stat(s.dir); !os.IsNotExist(err) {
		t.Error("canceled emit should not touch the filesystem")
	}
}
