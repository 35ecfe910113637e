package uptime

import (
	"errors"
	"fmt"
	"time"

	"storemonitor/app/internal/cache"

	// Zone database for stores whose timezone is missing from the host.
	_ "time/tzdata"
)

// ErrEmptyTimezone is returned for a blank timezone name; it is never
// silently mapped to UTC.
var ErrEmptyTimezone = errors.New("empty timezone name")

// Locations resolves IANA names to *time.Location, caching each load
type Locations struct {
	cache *cache.Cache[*time.Location]
}

// NewLocations returns a resolver whose entries live for ttl
func NewLocations(ttl time.Duration) *Locations {
	return &Locations{cache: cache.New[*time.Location](ttl)}
}

// Load returns the location for name
func (l *Locations) Load(name string) (*time.Location, error) {
	if name == "" {
		return nil, ErrEmptyTimezone
	}
	loc, err := l.cache.GetOrLoad(name, time.LoadLocation)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", name, err)
	}
	return loc, nil
}

// Close stops the cache cleanup goroutine
func (l *Locations) Close() {
	l.cache.Stop()
}
