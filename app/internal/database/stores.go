package database

import (
	"context"
	"database/sql"
	"fmt"

	"storemonitor/app/internal/models"
)

// GetBusinessHours returns every open interval recorded for a store.
// An empty result means the store has no schedule.
func (db *DB) GetBusinessHours(ctx context.Context, storeID string) ([]models.BusinessHours, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT day_of_week, start_time_local, end_time_local
		FROM business_hours WHERE store_id = ?
		ORDER BY day_of_week, id`, storeID)
	if err != nil {
		return nil, fmt.Errorf("business hours for %s: %w", storeID, err)
	}
	defer rows.Close()

	var hours []models.BusinessHours
	for rows.Next() {
		bh := models.BusinessHours{StoreID: storeID}
		if err := rows.Scan(&bh.DayOfWeek, &bh.StartTimeLocal, &bh.EndTimeLocal); err != nil {
			return nil, err
		}
		hours = append(hours, bh)
	}
	return hours, rows.Err()
}

// GetTimezone returns the IANA timezone of a store, or the configured default
// when the store has no record.
func (db *DB) GetTimezone(ctx context.Context, storeID string) (string, error) {
	var tz string
	err := db.conn.QueryRowContext(ctx, `SELECT timezone_str FROM store_timezone WHERE store_id = ?`, storeID).Scan(&tz)
	if err == sql.ErrNoRows || (err == nil && tz == "") {
		return db.defaultTimezone, nil
	}
	if err != nil {
		return "", fmt.Errorf("timezone for %s: %w", storeID, err)
	}
	return tz, nil
}
