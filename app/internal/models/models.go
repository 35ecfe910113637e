package models

import "time"

// Status is the state reported by a single store poll
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

// Observation is one timestamped status sample for a store
type Observation struct {
	StoreID      string
	TimestampUTC time.Time
	Status       Status
}

// BusinessHours is one local open interval for a store on a weekday.
// DayOfWeek is 0 for Monday through 6 for Sunday.
type BusinessHours struct {
	StoreID        string
	DayOfWeek      int
	StartTimeLocal string // HH:MM:SS
	EndTimeLocal   string // HH:MM:SS
}

// StoreTimezone maps a store to an IANA timezone name
type StoreTimezone struct {
	StoreID     string
	TimezoneStr string
}

// Window is a closed time range [Start, End]
type Window struct {
	Start time.Time
	End   time.Time
}

// Hours returns the window length in hours
func (w Window) Hours() float64 {
	return w.End.Sub(w.Start).Hours()
}

// ReportRow holds the uptime and downtime hours for one store
type ReportRow struct {
	StoreID          string  `json:"store_id"`
	UptimeLastHour   float64 `json:"uptime_last_hour"`
	UptimeLastDay    float64 `json:"uptime_last_day"`
	UptimeLastWeek   float64 `json:"uptime_last_week"`
	DowntimeLastHour float64 `json:"downtime_last_hour"`
	DowntimeLastDay  float64 `json:"downtime_last_day"`
	DowntimeLastWeek float64 `json:"downtime_last_week"`
}

// ReportResult is the output of one report run
type ReportResult struct {
	ReportData      []ReportRow `json:"report_data"`
	Filename        string      `json:"filename"`
	Filepath        string      `json:"filepath"`
	ReferenceTime   time.Time   `json:"reference_time"`
	StoresProcessed int         `json:"total_stores_processed"`
	StoresTotal     int         `json:"total_stores"`
}

// ReportStatus is the lifecycle state of a report job
type ReportStatus string

const (
	ReportPending  ReportStatus = "Pending"
	ReportRunning  ReportStatus = "Running"
	ReportComplete ReportStatus = "Complete"
	ReportFailed   ReportStatus = "Failed"
)

// Report is a persisted report job
type Report struct {
	ID        string        `json:"id"`
	Status    ReportStatus  `json:"status"`
	Error     string        `json:"error,omitempty"`
	Result    *ReportResult `json:"result,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// LogEntry represents a system log entry
type LogEntry struct {
	ID        int    `json:"id"`
	Timestamp string `json:"timestamp"`
	Level     string `json:"level"`
	Category  string `json:"category"`
	Report    string `json:"report"`
	Message   string `json:"message"`
	Details   string `json:"details"`
}

// ReportLocation is where a sink persisted a report
type ReportLocation struct {
	Filename string
	Path     string
}
