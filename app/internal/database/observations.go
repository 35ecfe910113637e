package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"storemonitor/app/internal/models"
)

// ListStoreIDs returns every store that has at least one observation, sorted
func (db *DB) ListStoreIDs(ctx context.Context) ([]string, error) {
	rows, err := db.conn.QueryContext(ctx, `SELECT DISTINCT store_id FROM store_status ORDER BY store_id`)
	if err != nil {
		return nil, fmt.Errorf("list store ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// LatestObservationTime returns the newest observation timestamp in the dataset.
// ok is false when there are no observations at all.
func (db *DB) LatestObservationTime(ctx context.Context) (latest time.Time, ok bool, err error) {
	var micros sql.NullInt64
	err = db.conn.QueryRowContext(ctx, `SELECT MAX(timestamp_utc) FROM store_status`).Scan(&micros)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("latest observation: %w", err)
	}
	if !micros.Valid {
		return time.Time{}, false, nil
	}
	return time.UnixMicro(micros.Int64).UTC(), true, nil
}

// GetObservations returns a store's observations with start <= timestamp <= end,
// oldest first. Rows sharing a timestamp keep insertion order.
func (db *DB) GetObservations(ctx context.Context, storeID string, start, end time.Time) ([]models.Observation, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT status, timestamp_utc
		FROM store_status
		WHERE store_id = ? AND timestamp_utc >= ? AND timestamp_utc <= ?
		ORDER BY timestamp_utc, id`,
		storeID, start.UTC().UnixMicro(), end.UTC().UnixMicro())
	if err != nil {
		return nil, fmt.Errorf("observations for %s: %w", storeID, err)
	}
	defer rows.Close()

	var obs []models.Observation
	for rows.Next() {
		var status string
		var micros int64
		if err := rows.Scan(&status, &micros); err != nil {
			return nil, err
		}
		obs = append(obs, models.Observation{
			StoreID:      storeID,
			Status:       models.Status(status),
			TimestampUTC: time.UnixMicro(micros).UTC(),
		})
	}
	return obs, rows.Err()
}
