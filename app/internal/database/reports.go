package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"storemonitor/app/internal/models"
)

// ErrReportNotFound is returned when no report job has the requested id
var ErrReportNotFound = errors.New("report not found")

// CreateReport inserts a new report job in the Pending state
func (db *DB) CreateReport(ctx context.Context, id string) (*models.Report, error) {
	now := time.Now().UTC()
	_, err := db.conn.ExecContext(ctx, `INSERT INTO reports (id, status, created_at, updated_at)
		VALUES (?, ?, ?, ?)`,
		id, string(models.ReportPending), now.Format(time.RFC3339Nano), now.Format(time.RFC3339Nano))
	if err != nil {
		return nil, fmt.Errorf("create report %s: %w", id, err)
	}
	return &models.Report{ID: id, Status: models.ReportPending, CreatedAt: now, UpdatedAt: now}, nil
}

// UpdateReportStatus moves a job to status. errMsg and result are only written
// when non-empty, so earlier values survive later transitions.
func (db *DB) UpdateReportStatus(ctx context.Context, id string, status models.ReportStatus, errMsg string, result *models.ReportResult) error {
	var resultVal any
	if result != nil {
		b, err := json.Marshal(result)
		if err != nil {
			return fmt.Errorf("encode report result: %w", err)
		}
		resultVal = string(b)
	}
	var errVal any
	if errMsg != "" {
		errVal = errMsg
	}

	res, err := db.conn.ExecContext(ctx, `
		UPDATE reports SET
			status = ?,
			error = COALESCE(?, error),
			result = COALESCE(?, result),
			updated_at = ?
		WHERE id = ?`,
		string(status), errVal, resultVal, time.Now().UTC().Format(time.RFC3339Nano), id)
	if err != nil {
		return fmt.Errorf("update report %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrReportNotFound
	}
	return nil
}

// GetReport loads a report job by id
func (db *DB) GetReport(ctx context.Context, id string) (*models.Report, error) {
	var r models.Report
	var status, createdAt, updatedAt string
	var errMsg, result sql.NullString

	err := db.conn.QueryRowContext(ctx, `SELECT id, status, error, result, created_at, updated_at
		FROM reports WHERE id = ?`, id).Scan(&r.ID, &status, &errMsg, &result, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrReportNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get report %s: %w", id, err)
	}

	r.Status = models.ReportStatus(status)
	r.Error = errMsg.String
	r.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	r.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updatedAt)
	if result.Valid && result.String != "" {
		var rr models.ReportResult
		if err := json.Unmarshal([]byte(result.String), &rr); err != nil {
			return nil, fmt.Errorf("decode result of report %s: %w", id, err)
		}
		r.Result = &rr
	}
	return &r, nil
}
