package moment

import (
	"fmt"
	"time"
)

// Converter resolves wall-clock date-times into zoned moments. The
// recurrence engine treats zone resolution as an external service; UTC is
// handled trivially and anything else is delegated to the host through this
// interface.
type Converter interface {
	// ToZone interprets the wall-clock fields of m in the named zone and
	// returns the corresponding zoned Moment.
	ToZone(m Moment, zoneID string) (Moment, error)
}

// UTCConverter handles the distinguished UTC zone and nothing else.
type UTCConverter struct{}

// ToZone implements Converter for the UTC zone only.
func (UTCConverter) ToZone(m Moment, zoneID string) (Moment, error) {
	if zoneID != "UTC" {
		return Moment{}, fmt.Errorf("utc converter cannot resolve zone %q", zoneID)
	}
	return NewUTC(m.year, m.month, m.day, m.hour, m.minute, m.second, m.milli), nil
}

// ToUTC returns the Moment expressed in UTC. A zoned moment shifts by its
// offset; a plain date or date-time is reinterpreted as UTC without
// shifting.
func (m Moment) ToUTC() Moment {
	if m.IsUTC() {
		return m
	}
	if m.kind == KindZoned && m.offset != 0 {
		m = m.Add(Duration{Minutes: -m.offset})
	}
	return NewUTC(m.year, m.month, m.day, m.hour, m.minute, m.second, m.milli)
}

// LocationConverter resolves zones through the host's IANA time zone
// database via time.LoadLocation.
type LocationConverter struct{}

// ToZone implements Converter using the Go runtime's zone database.
func (LocationConverter) ToZone(m Moment, zoneID string) (Moment, error) {
	if zoneID == "UTC" {
		return UTCConverter{}.ToZone(m, zoneID)
	}
	loc, err := time.LoadLocation(zoneID)
	if err != nil {
		return Moment{}, fmt.Errorf("loading zone %q: %w", zoneID, err)
	}
	t := time.Date(m.year, time.Month(m.month), m.day, m.hour, m.minute, m.second, m.milli*int(time.Millisecond), loc)
	_, offsetSeconds := t.Zone()
	return NewZoned(t.Year(), int(t.Month()), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond()/int(time.Millisecond), zoneID, offsetSeconds/60), nil
}
