package uptime

import (
	"fmt"
	"time"

	"storemonitor/app/internal/log"
	"storemonitor/app/internal/models"
)

// timeOfDayLayout is the HH:MM:SS format of business-hours rows
const timeOfDayLayout = "15:04:05"

type span struct {
	open, close time.Duration
}

// Schedule is a store's parsed weekly business hours.
// A store with no rows at all is open around the clock.
type Schedule struct {
	storeID string
	always  bool
	days    [7][]span
}

// NewSchedule parses hours once so IsOpen can be called per observation.
// Unparsable times are treated as midnight and logged.
func NewSchedule(storeID string, hours []models.BusinessHours) *Schedule {
	s := &Schedule{storeID: storeID, always: len(hours) == 0}
	for _, bh := range hours {
		if bh.DayOfWeek < 0 || bh.DayOfWeek > 6 {
			log.Warnw("Ignoring business hours with invalid weekday",
				"store_id", storeID, "day_of_week", bh.DayOfWeek)
			continue
		}
		s.days[bh.DayOfWeek] = append(s.days[bh.DayOfWeek], span{
			open:  parseOrMidnight(storeID, bh.StartTimeLocal),
			close: parseOrMidnight(storeID, bh.EndTimeLocal),
		})
	}
	return s
}

func parseOrMidnight(storeID, s string) time.Duration {
	d, err := ParseTimeOfDay(s)
	if err != nil {
		log.Warnw("Invalid time format, using 00:00:00", "store_id", storeID, "value", s, "error", err)
		return 0
	}
	return d
}

// IsOpen reports whether local falls inside any interval for its weekday.
// Both interval ends are inclusive. Intervals whose close precedes their open
// never match.
func (s *Schedule) IsOpen(local time.Time) bool {
	if s.always {
		return true
	}
	tod := TimeOfDay(local)
	for _, sp := range s.days[Weekday(local)] {
		if sp.open <= tod && tod <= sp.close {
			return true
		}
	}
	return false
}

// IsOpen is NewSchedule(hours).IsOpen(local) for one-off checks
func IsOpen(local time.Time, hours []models.BusinessHours) bool {
	return NewSchedule("", hours).IsOpen(local)
}

// ParseTimeOfDay parses "HH:MM:SS" into an offset from midnight
func ParseTimeOfDay(s string) (time.Duration, error) {
	t, err := time.Parse(timeOfDayLayout, s)
	if err != nil {
		return 0, fmt.Errorf("parse time of day %q: %w", s, err)
	}
	return TimeOfDay(t), nil
}

// TimeOfDay returns the wall-clock offset of t from its local midnight
func TimeOfDay(t time.Time) time.Duration {
	h, m, sec := t.Clock()
	return time.Duration(h)*time.Hour +
		time.Duration(m)*time.Minute +
		time.Duration(sec)*time.Second +
		time.Duration(t.Nanosecond())
}

// Weekday returns t's local weekday with Monday as 0 and Sunday as 6
func Weekday(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}
