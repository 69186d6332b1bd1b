package moment

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAddMonthsConstrains(t *testing.T) {
	tests := []struct {
		name string
		from Moment
		d    Duration
		want Moment
	}{
		{"plain month step", NewDate(1997, 9, 2), Duration{Months: 1}, NewDate(1997, 10, 2)},
		{"jan 31 plus one month clamps", NewDate(2023, 1, 31), Duration{Months: 1}, NewDate(2023, 2, 28)},
		{"jan 31 plus one month leap", NewDate(2024, 1, 31), Duration{Months: 1}, NewDate(2024, 2, 29)},
		{"year rollover", NewDate(1997, 11, 15), Duration{Months: 3}, NewDate(1998, 2, 15)},
		{"negative months", NewDate(1997, 1, 31), Duration{Months: -2}, NewDate(1996, 11, 30)},
		{"feb 29 plus one year clamps", NewDate(2024, 2, 29), Duration{Years: 1}, NewDate(2025, 2, 28)},
		{"weeks and days", NewDate(1997, 9, 2), Duration{Weeks: 2, Days: 3}, NewDate(1997, 9, 19)},
		{"days across year", NewDate(1997, 12, 30), Duration{Days: 3}, NewDate(1998, 1, 2)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.Add(tt.d))
		})
	}
}

func TestAddTimeCarriesIntoDays(t *testing.T) {
	dt := NewDateTime(1997, 12, 31, 23, 30, 0, 0)
	got := dt.Add(Duration{Hours: 1})
	assert.Equal(t, NewDateTime(1998, 1, 1, 0, 30, 0, 0), got)

	back := got.Subtract(Duration{Minutes: 31})
	assert.Equal(t, NewDateTime(1997, 12, 31, 23, 59, 0, 0), back)

	ms := NewDateTime(2000, 1, 1, 0, 0, 0, 999).Add(Duration{Milliseconds: 2})
	assert.Equal(t, NewDateTime(2000, 1, 1, 0, 0, 1, 1), ms)
}

func TestAddTimeOnPlainDateIsNoop(t *testing.T) {
	date := NewDate(1997, 9, 2)
	assert.Equal(t, date, date.Add(Duration{Hours: 26}))
	assert.Equal(t, NewDate(1997, 9, 3), date.Add(Duration{Days: 1, Hours: 26}))
}

func TestCompare(t *testing.T) {
	tests := []struct {
		name string
		a, b Moment
		want int
	}{
		{"date before date", NewDate(1997, 9, 2), NewDate(1997, 9, 3), -1},
		{"date equals date", NewDate(1997, 9, 2), NewDate(1997, 9, 2), 0},
		{"date reads as midnight", NewDate(1997, 9, 2), NewDateTime(1997, 9, 2, 0, 0, 0, 0), 0},
		{"date before same-day datetime", NewDate(1997, 9, 2), NewDateTime(1997, 9, 2, 9, 0, 0, 0), -1},
		{"zoned compares by instant", NewZoned(2024, 1, 1, 9, 0, 0, 0, "America/New_York", -300), NewUTC(2024, 1, 1, 14, 0, 0, 0), 0},
		{"zoned earlier instant", NewUTC(2024, 1, 1, 13, 0, 0, 0), NewZoned(2024, 1, 1, 9, 0, 0, 0, "America/New_York", -300), -1},
		{"millisecond ordering", NewDateTime(2024, 1, 1, 0, 0, 0, 1), NewDateTime(2024, 1, 1, 0, 0, 0, 2), -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Compare(tt.a, tt.b))
			assert.Equal(t, -tt.want, Compare(tt.b, tt.a))
		})
	}

	assert.True(t, NewDate(1997, 9, 2).Before(NewDate(1997, 9, 3)))
	assert.True(t, NewDate(1997, 9, 3).After(NewDate(1997, 9, 2)))
	assert.True(t, NewDate(1997, 9, 2).Equal(NewDate(1997, 9, 2)))
}
