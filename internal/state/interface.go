package state

import (
	"errors"
	"fmt"
	"time"
)

// ErrUnknownDriver is returned by Open for unsupported drivers.
var ErrUnknownDriver = errors.New("unknown state driver")

// Store persists the publish time of the last processed episode per show.
type Store interface {
	LastProcessed(showID string) (time.Time, bool, error)
	UpdateLastProcessed(showID string, publishedAt time.Time) error
	Close() error
}

// Open opens the store for driver ("json" or "sqlite") at path.
func Open(driver, path string) (Store, error) {
	switch driver {
	case "json":
		s, err := OpenJSON(path)
		if err != nil {
			return nil, err
		}
		return s, nil
	case "sqlite":
		s, err := OpenSQLite(path)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
	}
}

// markerLayouts are tried in order when reading a stored marker. Markers
// without a zone, as written by isoformat(), are read as UTC.
var markerLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02",
}

func parseMarker(raw string) (time.Time, error) {
	var firstErr error
	for _, layout := range markerLayouts {
		t, err := time.Parse(layout, raw)
		if err == nil {
			return t, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return time.Time{}, firstErr
}
