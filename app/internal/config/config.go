package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	// Embedded zone database so DEFAULT_TIMEZONE resolves without system tzdata.
	_ "time/tzdata"
)

// Config holds all application configuration
type Config struct {
	// Storage
	DBPath     string
	ReportsDir string

	// Report generation
	DefaultTimezone string
	BatchSize       int
	Workers         int
	StoreTimeout    time.Duration

	// Scheduled mode
	ReportInterval time.Duration
	LogKeep        int

	// Observability
	MetricsTextfile string
	Debug           bool
}

// Load reads configuration from the environment, after loading .env if present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		DBPath:          getenv("DB_PATH", "./store_monitor.db"),
		ReportsDir:      strings.TrimSuffix(getenv("REPORTS_DIR", "./reports"), "/"),
		DefaultTimezone: getenv("DEFAULT_TIMEZONE", "America/Chicago"),
		BatchSize:       envInt("BATCH_SIZE", 50),
		Workers:         envInt("WORKERS", 4),
		StoreTimeout:    envDurSecs("STORE_TIMEOUT_SECONDS", 30),
		ReportInterval:  envDurSecs("REPORT_INTERVAL_SECONDS", 3600),
		LogKeep:         envInt("LOG_KEEP", 10000),
		MetricsTextfile: getenv("METRICS_TEXTFILE", ""),
		Debug:           envBool("DEBUG", false),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.BatchSize < 1 {
		return fmt.Errorf("BATCH_SIZE must be at least 1, got %d", c.BatchSize)
	}
	if c.Workers < 1 {
		return fmt.Errorf("WORKERS must be at least 1, got %d", c.Workers)
	}
	if c.ReportInterval < time.Minute {
		return fmt.Errorf("REPORT_INTERVAL_SECONDS must be at least 60, got %d", int(c.ReportInterval.Seconds()))
	}
	if c.ReportsDir == "" {
		c.ReportsDir = "."
	}
	if _, err := time.LoadLocation(c.DefaultTimezone); err != nil {
		return fmt.Errorf("DEFAULT_TIMEZONE %q: %w", c.DefaultTimezone, err)
	}
	return nil
}

// Helper functions
func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func envInt(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envBool(k string, def bool) bool {
	v := strings.ToLower(getenv(k, ""))
	if v == "" {
		return def
	}
	return v == "1" || v == "true" || v == "yes"
}

func envDurSecs(k string, def int) time.Duration {
	return time.Duration(envInt(k, def)) * time.Second
}
