package database

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// DB wraps the SQLite handle holding observations, store metadata and report jobs
type DB struct {
	conn            *sql.DB
	defaultTimezone string
}

// Open opens the database at dbPath and creates the schema.
// defaultTimezone is returned by GetTimezone for stores without a record.
func Open(dbPath, defaultTimezone string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", dbPath, err)
	}
	// One connection keeps :memory: databases shared and serializes writers.
	conn.SetMaxOpenConns(1)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("ping sqlite %s: %w", dbPath, err)
	}

	db := &DB{conn: conn, defaultTimezone: defaultTimezone}
	if err := db.EnsureSchema(context.Background()); err != nil {
		conn.Close()
		return nil, err
	}
	return db, nil
}

// Close releases the underlying connection
func (db *DB) Close() error {
	return db.conn.Close()
}

// EnsureSchema creates all necessary database tables
func (db *DB) EnsureSchema(ctx context.Context) error {
	_, err := db.conn.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS store_status (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  store_id TEXT NOT NULL,
  status TEXT NOT NULL,
  timestamp_utc INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_store_status_store ON store_status(store_id);
CREATE INDEX IF NOT EXISTS idx_store_status_ts ON store_status(timestamp_utc);
CREATE INDEX IF NOT EXISTS idx_store_timestamp ON store_status(store_id, timestamp_utc);

CREATE TABLE IF NOT EXISTS business_hours (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  store_id TEXT NOT NULL,
  day_of_week INTEGER NOT NULL,
  start_time_local TEXT NOT NULL,
  end_time_local TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_business_hours_store ON business_hours(store_id);

CREATE TABLE IF NOT EXISTS store_timezone (
  store_id TEXT PRIMARY KEY,
  timezone_str TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS reports (
  id TEXT PRIMARY KEY,
  status TEXT NOT NULL DEFAULT 'Pending',
  error TEXT,
  result TEXT,
  created_at TEXT NOT NULL,
  updated_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS system_logs (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  timestamp TEXT NOT NULL,
  level TEXT NOT NULL,
  category TEXT NOT NULL,
  report TEXT,
  message TEXT NOT NULL,
  details TEXT,
  created_at TEXT NOT NULL DEFAULT (datetime('now'))
);
CREATE INDEX IF NOT EXISTS idx_logs_timestamp ON system_logs(timestamp);
CREATE INDEX IF NOT EXISTS idx_logs_level ON system_logs(level);
CREATE INDEX IF NOT EXISTS idx_logs_report ON system_logs(report);
`)
	if err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}
