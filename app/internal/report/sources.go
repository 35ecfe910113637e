package report

import (
	"context"
	"time"

	"storemonitor/app/internal/models"
)

// StoreLister enumerates every store known to the dataset
type StoreLister interface {
	ListStoreIDs(ctx context.Context) ([]string, error)
}

// ObservationSource reads status polls. GetObservations returns the
// observations with start <= timestamp <= end in ascending order.
type ObservationSource interface {
	LatestObservationTime(ctx context.Context) (time.Time, bool, error)
	GetObservations(ctx context.Context, storeID string, start, end time.Time) ([]models.Observation, error)
}

// HoursSource returns a store's business hours; no rows means always open
type HoursSource interface {
	GetBusinessHours(ctx context.Context, storeID string) ([]models.BusinessHours, error)
}

// TimezoneSource returns a store's IANA timezone, already defaulted when the
// store has no record.
type TimezoneSource interface {
	GetTimezone(ctx context.Context, storeID string) (string, error)
}

// Sink persists a finished report and reports where it went
type Sink interface {
	Emit(ctx context.Context, result *models.ReportResult) (models.ReportLocation, error)
}

// Sources groups the read-only collaborators of a Builder. *database.DB
// satisfies all four.
type Sources struct {
	Stores       StoreLister
	Observations ObservationSource
	Hours        HoursSource
	Timezones    TimezoneSource
}
