package database

import (
	"context"
	"fmt"

	"storemonitor/app/internal/models"
)

// Ingestion lives outside this module; these writers seed test databases.

// InsertObservation records a single store status poll
func (db *DB) InsertObservation(ctx context.Context, o models.Observation) error {
	_, err := db.conn.ExecContext(ctx, `INSERT INTO store_status (store_id, status, timestamp_utc)
		VALUES (?, ?, ?)`,
		o.StoreID, string(o.Status), o.TimestampUTC.UTC().UnixMicro())
	return err
}

// InsertObservations records many polls in one transaction
func (db *DB) InsertObservations(ctx context.Context, obs []models.Observation) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO store_status (store_id, status, timestamp_utc) VALUES (?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, o := range obs {
		if _, err := stmt.ExecContext(ctx, o.StoreID, string(o.Status), o.TimestampUTC.UTC().UnixMicro()); err != nil {
			return fmt.Errorf("insert observation for %s: %w", o.StoreID, err)
		}
	}
	return tx.Commit()
}

// InsertBusinessHours adds one open interval for a store
func (db *DB) InsertBusinessHours(ctx context.Context, bh models.BusinessHours) error {
	_, err := db.conn.ExecContext(ctx, `INSERT INTO business_hours (store_id, day_of_week, start_time_local, end_time_local)
		VALUES (?, ?, ?, ?)`,
		bh.StoreID, bh.DayOfWeek, bh.StartTimeLocal, bh.EndTimeLocal)
	return err
}

// SetTimezone records or replaces the timezone of a store
func (db *DB) SetTimezone(ctx context.Context, tz models.StoreTimezone) error {
	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO store_timezone (store_id, timezone_str) VALUES (?, ?)
		ON CONFLICT(store_id) DO UPDATE SET timezone_str=excluded.timezone_str`,
		tz.StoreID, tz.TimezoneStr)
	return err
}
