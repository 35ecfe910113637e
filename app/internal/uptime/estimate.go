// Package uptime estimates store uptime and downtime from sparse status polls.
//
// Each observation's status is carried forward until the next observation,
// and the last one until the end of the window. A gap counts only when the
// store is open at the gap's start; the whole gap is then attributed to that
// status, even if it crosses a closing time or midnight. Time before the first
// observation in the window is not counted.
package uptime

import (
	"time"

	"storemonitor/app/internal/log"
	"storemonitor/app/internal/models"
)

// Totals is the business-hours uptime and downtime for one window
type Totals struct {
	UptimeHours   float64
	DowntimeHours float64
}

// Estimate computes Totals for observations already filtered to w and sorted
// ascending. No observations yields zero totals.
func Estimate(storeID string, w models.Window, obs []models.Observation, hours []models.BusinessHours, loc *time.Location) Totals {
	return NewSchedule(storeID, hours).Estimate(w, obs, loc)
}

// Estimate is the package Estimate with pre-parsed business hours
func (s *Schedule) Estimate(w models.Window, obs []models.Observation, loc *time.Location) Totals {
	if len(obs) == 0 {
		log.Debugw("No status observations in window",
			"store_id", s.storeID, "start", w.Start, "end", w.End)
		return Totals{}
	}
	if loc == nil {
		loc = time.UTC
	}

	var up, down time.Duration
	credit := func(o models.Observation, local time.Time, gap time.Duration) {
		if gap < 0 {
			gap = 0
		}
		if !s.IsOpen(local) {
			return
		}
		switch o.Status {
		case models.StatusActive:
			up += gap
		case models.StatusInactive:
			down += gap
		default:
			log.Warnw("Unknown status value", "store_id", s.storeID, "status", string(o.Status))
		}
	}

	for i := 0; i < len(obs)-1; i++ {
		cur := obs[i].TimestampUTC.In(loc)
		next := obs[i+1].TimestampUTC.In(loc)
		credit(obs[i], cur, next.Sub(cur))
	}

	last := obs[len(obs)-1]
	lastLocal := last.TimestampUTC.In(loc)
	endLocal := w.End.In(loc)
	if lastLocal.Before(endLocal) {
		credit(last, lastLocal, endLocal.Sub(lastLocal))
	}

	return Totals{UptimeHours: up.Hours(), DowntimeHours: down.Hours()}
}
