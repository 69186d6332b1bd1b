package moment

var monthLengths = [13]int{0, 31, 28, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}

// IsLeap reports whether the year is a proleptic Gregorian leap year.
func IsLeap(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

// DaysInMonth returns the number of days in the given month of the given
// year.
func DaysInMonth(year, month int) int {
	if month == 2 && IsLeap(year) {
		return 29
	}
	if month < 1 || month > 12 {
		return 0
	}
	return monthLengths[month]
}

// DaysInYear returns 365 or 366.
func DaysInYear(year int) int {
	if IsLeap(year) {
		return 366
	}
	return 365
}

// Weekday returns the day of week of the Moment's date.
func (m Moment) Weekday() Weekday {
	// 1970-01-01 was a Thursday.
	idx := (m.epochDays()%7 + 3 + 7) % 7
	return Weekday(idx)
}

// WeekdayOfDate returns the weekday of a raw calendar date.
func WeekdayOfDate(year, month, day int) Weekday {
	idx := (daysFromCivil(year, month, day)%7 + 3 + 7) % 7
	return Weekday(idx)
}

// DayOfYear returns the ordinal day within the year, 1..366.
func (m Moment) DayOfYear() int {
	return m.epochDays() - daysFromCivil(m.year, 1, 1) + 1
}

// ISOWeek returns the ISO-8601 week number of the Moment's date, 1..53: the
// week a date belongs to is the week of its nearest Thursday.
func (m Moment) ISOWeek() int {
	thursday := m.AddDays(3 - m.Weekday().Index())
	return (thursday.DayOfYear()-1)/7 + 1
}

// WeeksInYear returns 52 or 53: the number of numbered weeks the year has
// when weeks begin on wkst. A year has 53 weeks iff January 1 falls on wkst,
// or the year is a leap year and January 1 falls on the day before wkst.
func WeeksInYear(year int, wkst Weekday) int {
	jan1 := WeekdayOfDate(year, 1, 1)
	if jan1 == wkst {
		return 53
	}
	if IsLeap(year) && (jan1.Index()+1)%7 == wkst.Index() {
		return 53
	}
	return 52
}

// StartOfYear returns January 1 of the Moment's year, preserving the time of
// day and variant.
func (m Moment) StartOfYear() Moment {
	return m.WithDate(m.year, 1, 1)
}

// EndOfYear returns December 31 of the Moment's year, preserving the time of
// day and variant.
func (m Moment) EndOfYear() Moment {
	return m.WithDate(m.year, 12, 31)
}

// StartOfWeek returns the most recent day on or before the Moment whose
// weekday is wkst.
func (m Moment) StartOfWeek(wkst Weekday) Moment {
	back := (m.Weekday().Index() - wkst.Index() + 7) % 7
	return m.AddDays(-back)
}
