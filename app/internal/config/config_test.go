package config

import (
	"os"
	"testing"
	"time"
)

// --- helpers ---

func unsetAll(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"DB_PATH", "REPORTS_DIR", "DEFAULT_TIMEZONE", "BATCH_SIZE", "WORKERS",
		"STORE_TIMEOUT_SECONDS", "REPORT_INTERVAL_SECONDS", "LOG_KEEP",
		"METRICS_TEXTFILE", "DEBUG",
	} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

// --- getenv ---

func TestGetenv_Set(t *testing.T) {
	t.Setenv("TEST_KEY_GETENV", "hello")
	if got := getenv("TEST_KEY_GETENV", "fallback"); got != "hello" {
		t.Errorf("getenv returned %q, want %q", got, "hello")
	}
}

func TestGetenv_EmptyStringUsesDefault(t *testing.T) {
	t.Setenv("TEST_KEY_EMPTY", "")
	if got := getenv("TEST_KEY_EMPTY", "default"); got != "default" {
		t.Errorf("getenv returned %q, want %q for empty env var", got, "default")
	}
}

// --- envInt ---

func TestEnvInt_ValidNumber(t *testing.T) {
	t.Setenv("TEST_INT", "42")
	if got := envInt("TEST_INT", 0); got != 42 {
		t.Errorf("envInt returned %d, want 42", got)
	}
}

func TestEnvInt_InvalidNumber(t *testing.T) {
	t.Setenv("TEST_INT_BAD", "not_a_number")
	if got := envInt("TEST_INT_BAD", 99); got != 99 {
		t.Errorf("envInt returned %d, want default 99 for invalid input", got)
	}
}

// --- envBool ---

func TestEnvBool(t *testing.T) {
	tests := []struct {
		val  string
		def  bool
		want bool
	}{
		{"true", false, true},
		{"1", false, true},
		{"YES", false, true},
		{"false", true, false},
		{"nope", true, false},
		{"", true, true},
	}
	for _, tt := range tests {
		t.Setenv("TEST_BOOL", tt.val)
		if got := envBool("TEST_BOOL", tt.def); got != tt.want {
			t.Errorf("envBool(%q, %v) = %v, want %v", tt.val, tt.def, got, tt.want)
		}
	}
}

// --- envDurSecs ---

func TestEnvDurSecs_Set(t *testing.T) {
	t.Setenv("TEST_DUR", "15")
	if got := envDurSecs("TEST_DUR", 1); got != 15*time.Second {
		t.Errorf("envDurSecs returned %v, want 15s", got)
	}
}

// --- Load ---

func TestLoad_Defaults(t *testing.T) {
	unsetAll(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.DBPath != "./store_monitor.db" {
		t.Errorf("DBPath = %q", cfg.DBPath)
	}
	if cfg.DefaultTimezone != "America/Chicago" {
		t.Errorf("DefaultTimezone = %q, want America/Chicago", cfg.DefaultTimezone)
	}
	if cfg.BatchSize != 50 {
		t.Errorf("BatchSize = %d, want 50", cfg.BatchSize)
	}
	if cfg.Workers != 4 {
		t.Errorf("Workers = %d, want 4", cfg.Workers)
	}
	if cfg.StoreTimeout != 30*time.Second {
		t.Errorf("StoreTimeout = %v, want 30s", cfg.StoreTimeout)
	}
	if cfg.ReportInterval != time.Hour || cfg.LogKeep != 10000 {
		t.Errorf("ReportInterval = %v, LogKeep = %d", cfg.ReportInterval, cfg.LogKeep)
	}
	if cfg.Debug {
		t.Error("Debug should default to false")
	}
}

func TestLoad_ReportsDirTrailingSlash(t *testing.T) {
	unsetAll(t)
	t.Setenv("REPORTS_DIR", "/tmp/reports/")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.ReportsDir != "/tmp/reports" {
		t.Errorf("ReportsDir = %q, trailing slash should be stripped", cfg.ReportsDir)
	}
}

func TestLoad_InvalidTimezone(t *testing.T) {
	unsetAll(t)
	t.Setenv("DEFAULT_TIMEZONE", "Mars/Olympus_Mons")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for unknown default timezone")
	}
}

func TestLoad_BatchSizeTooSmall(t *testing.T) {
	unsetAll(t)
	t.Setenv("BATCH_SIZE", "0")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for BATCH_SIZE=0")
	}
}

func TestLoad_WorkersTooSmall(t *testing.T) {
	unsetAll(t)
	t.Setenv("WORKERS", "-2")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for negative WORKERS")
	}
}

func TestLoad_ReportIntervalTooShort(t *testing.T) {
	unsetAll(t)
	t.Setenv("REPORT_INTERVAL_SECONDS", "5")

	if _, err := Load(); err == nil {
		t.Error("expected error for a report interval under a minute")
	}
}
