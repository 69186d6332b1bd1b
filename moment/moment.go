// Package moment provides the calendar primitives the recurrence engine is
// built on: an immutable date/date-time/zoned value, weekday and duration
// types, and proleptic Gregorian arithmetic.
package moment

import (
	"fmt"

	"github.com/samber/mo"
)

// Kind discriminates the three Moment variants.
type Kind int

const (
	KindDate     Kind = iota // calendar date, no time of day
	KindDateTime             // wall-clock date and time, no zone
	KindZoned                // wall-clock date and time in a named zone
)

// String returns the string representation of the Kind
func (k Kind) String() string {
	switch k {
	case KindDate:
		return "date"
	case KindDateTime:
		return "date-time"
	case KindZoned:
		return "zoned-date-time"
	default:
		return "unknown"
	}
}

// Moment is an immutable point on the proleptic Gregorian calendar. It is a
// tagged union of a plain date, a plain date-time, and a zoned date-time;
// reading time fields of a plain date yields absence rather than zero.
type Moment struct {
	kind   Kind
	year   int
	month  int // 1..12
	day    int // 1..31
	hour   int
	minute int
	second int
	milli  int
	zone   string // zone identifier, "UTC" is distinguished
	offset int    // minutes east of UTC
}

// NewDate constructs a plain calendar date.
func NewDate(year, month, day int) Moment {
	return Moment{kind: KindDate, year: year, month: month, day: day}
}

// NewDateTime constructs a plain wall-clock date-time.
func NewDateTime(year, month, day, hour, minute, second, milli int) Moment {
	return Moment{
		kind: KindDateTime,
		year: year, month: month, day: day,
		hour: hour, minute: minute, second: second, milli: milli,
	}
}

// NewZoned constructs a zoned date-time in the named zone with the given UTC
// offset in minutes.
func NewZoned(year, month, day, hour, minute, second, milli int, zone string, offsetMinutes int) Moment {
	m := NewDateTime(year, month, day, hour, minute, second, milli)
	m.kind = KindZoned
	m.zone = zone
	m.offset = offsetMinutes
	return m
}

// NewUTC constructs a zoned date-time in UTC.
func NewUTC(year, month, day, hour, minute, second, milli int) Moment {
	return NewZoned(year, month, day, hour, minute, second, milli, "UTC", 0)
}

// Kind reports which variant this Moment is.
func (m Moment) Kind() Kind { return m.kind }

// Year returns the calendar year.
func (m Moment) Year() int { return m.year }

// Month returns the calendar month, 1..12.
func (m Moment) Month() int { return m.month }

// Day returns the day of month, 1..31.
func (m Moment) Day() int { return m.day }

// HasTime reports whether the Moment carries time-of-day fields.
func (m Moment) HasTime() bool { return m.kind != KindDate }

// Hour returns the hour of day, or absence on a plain date.
func (m Moment) Hour() mo.Option[int] {
	if !m.HasTime() {
		return mo.None[int]()
	}
	return mo.Some(m.hour)
}

// Minute returns the minute, or absence on a plain date.
func (m Moment) Minute() mo.Option[int] {
	if !m.HasTime() {
		return mo.None[int]()
	}
	return mo.Some(m.minute)
}

// Second returns the second, or absence on a plain date.
func (m Moment) Second() mo.Option[int] {
	if !m.HasTime() {
		return mo.None[int]()
	}
	return mo.Some(m.second)
}

// Millisecond returns the millisecond, or absence on a plain date.
func (m Moment) Millisecond() mo.Option[int] {
	if !m.HasTime() {
		return mo.None[int]()
	}
	return mo.Some(m.milli)
}

// Zone returns the zone identifier of a zoned Moment, or absence otherwise.
func (m Moment) Zone() mo.Option[string] {
	if m.kind != KindZoned {
		return mo.None[string]()
	}
	return mo.Some(m.zone)
}

// OffsetMinutes returns the UTC offset of a zoned Moment in minutes, or
// absence otherwise.
func (m Moment) OffsetMinutes() mo.Option[int] {
	if m.kind != KindZoned {
		return mo.None[int]()
	}
	return mo.Some(m.offset)
}

// IsUTC reports whether the Moment is zoned in UTC.
func (m Moment) IsUTC() bool { return m.kind == KindZoned && m.zone == "UTC" }

// Valid reports whether all fields are inside their calendar ranges.
func (m Moment) Valid() bool {
	if m.month < 1 || m.month > 12 {
		return false
	}
	if m.day < 1 || m.day > DaysInMonth(m.year, m.month) {
		return false
	}
	if !m.HasTime() {
		return true
	}
	return m.hour >= 0 && m.hour <= 23 &&
		m.minute >= 0 && m.minute <= 59 &&
		m.second >= 0 && m.second <= 59 &&
		m.milli >= 0 && m.milli <= 999
}

// WithDate returns a copy with the date fields replaced. Variant, time of
// day and zone are preserved.
func (m Moment) WithDate(year, month, day int) Moment {
	m.year, m.month, m.day = year, month, day
	return m
}

// WithYear returns a copy with the year replaced.
func (m Moment) WithYear(year int) Moment {
	m.year = year
	return m
}

// WithMonth returns a copy with the month replaced.
func (m Moment) WithMonth(month int) Moment {
	m.month = month
	return m
}

// WithDay returns a copy with the day of month replaced.
func (m Moment) WithDay(day int) Moment {
	m.day = day
	return m
}

// WithTime returns a copy with the clock fields replaced. On a plain date
// this is a no-op: a date has no time to replace.
func (m Moment) WithTime(hour, minute, second, milli int) Moment {
	if !m.HasTime() {
		return m
	}
	m.hour, m.minute, m.second, m.milli = hour, minute, second, milli
	return m
}

// StartOfDay returns a copy with the clock reset to midnight. On a plain
// date this is a no-op.
func (m Moment) StartOfDay() Moment {
	return m.WithTime(0, 0, 0, 0)
}

// String returns a human-oriented rendering; the wire encoding lives in the
// rrule package.
func (m Moment) String() string {
	switch m.kind {
	case KindDate:
		return fmt.Sprintf("%04d-%02d-%02d", m.year, m.month, m.day)
	case KindZoned:
		return fmt.Sprintf("%04d-%02d-%02d %02d:%02d:%02d %s", m.year, m.month, m.day, m.hour, m.minute, m.second, m.zone)
	default:
		return fmt.Sprintf("%04d-%02d-%02d %02d:%02d:%02d", m.year, m.month, m.day, m.hour, m.minute, m.second)
	}
}
