package database

import (
	"context"

	"storemonitor/app/internal/models"
)

// LogLevel constants
const (
	LogLevelDebug = "debug"
	LogLevelInfo  = "info"
	LogLevelWarn  = "warn"
	LogLevelError = "error"
)

// LogCategory constants
const (
	LogCategoryReport = "report"
	LogCategorySystem = "system"
)

// InsertLog adds a new log entry
func (db *DB) InsertLog(ctx context.Context, level, category, report, message, details string) error {
	_, err := db.conn.ExecContext(ctx, `INSERT INTO system_logs (timestamp, level, category, report, message, details)
		VALUES (strftime('%Y-%m-%dT%H:%M:%fZ', 'now'), ?, ?, ?, ?, ?)`,
		level, category, report, message, details)
	return err
}

// GetLogs retrieves logs with optional filtering, newest first
func (db *DB) GetLogs(ctx context.Context, limit int, level, category, report string) ([]models.LogEntry, error) {
	query := `SELECT id, timestamp, level, category, COALESCE(report, ''), message, COALESCE(details, '')
		FROM system_logs WHERE 1=1`
	args := []interface{}{}

	if level != "" {
		query += " AND level = ?"
		args = append(args, level)
	}
	if category != "" {
		query += " AND category = ?"
		args = append(args, category)
	}
	if report != "" {
		query += " AND report = ?"
		args = append(args, report)
	}

	query += " ORDER BY timestamp DESC, id DESC LIMIT ?"
	args = append(args, limit)

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []models.LogEntry
	for rows.Next() {
		var e models.LogEntry
		if err := rows.Scan(&e.ID, &e.Timestamp, &e.Level, &e.Category, &e.Report, &e.Message, &e.Details); err != nil {
			return nil, err
		}
		logs = append(logs, e)
	}
	return logs, rows.Err()
}

// PruneLogs removes old logs to keep the database size manageable (keeps last N logs)
func (db *DB) PruneLogs(ctx context.Context, keepCount int) error {
	_, err := db.conn.ExecContext(ctx, `DELETE FROM system_logs WHERE id NOT IN (
		SELECT id FROM system_logs ORDER BY timestamp DESC, id DESC LIMIT ?
	)`, keepCount)
	return err
}
