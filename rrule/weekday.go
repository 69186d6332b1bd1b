package rrule

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/cyp0633/librrule/moment"
)

// WeekdayTerm is a BYDAY entry: either a bare weekday or a weekday
// qualified by an ordinal. N > 0 picks the N-th occurrence counted from the
// start of the containing period, N < 0 counts from the end, and N == 0
// means no ordinal was given.
type WeekdayTerm struct {
	Weekday moment.Weekday
	N       int
}

// On builds a bare weekday term.
func On(w moment.Weekday) WeekdayTerm { return WeekdayTerm{Weekday: w} }

// Nth builds an ordinal weekday term, like the 2nd Monday or the last
// Friday of a period.
func Nth(n int, w moment.Weekday) WeekdayTerm { return WeekdayTerm{Weekday: w, N: n} }

// IsOrdinal reports whether the term carries an ordinal.
func (t WeekdayTerm) IsOrdinal() bool { return t.N != 0 }

// String returns the wire token, e.g. "MO", "+1WE" renders as "1WE",
// "-2FR".
func (t WeekdayTerm) String() string {
	if t.N == 0 {
		return t.Weekday.String()
	}
	return fmt.Sprintf("%d%s", t.N, t.Weekday)
}

var weekdayTermPattern = regexp.MustCompile(`^([+-]?\d{1,2})?(MO|TU|WE|TH|FR|SA|SU)$`)

// ParseWeekdayTerm parses a BYDAY token such as "MO", "+1WE" or "-2FR",
// case-insensitively. An ordinal of zero or of magnitude 54 or more is
// rejected.
func ParseWeekdayTerm(tok string) (WeekdayTerm, error) {
	m := weekdayTermPattern.FindStringSubmatch(strings.ToUpper(strings.TrimSpace(tok)))
	if m == nil {
		return WeekdayTerm{}, fmt.Errorf("malformed weekday token %q", tok)
	}
	var n int
	if m[1] != "" {
		var err error
		n, err = strconv.Atoi(m[1])
		if err != nil {
			return WeekdayTerm{}, fmt.Errorf("malformed weekday ordinal %q", tok)
		}
		if n == 0 {
			return WeekdayTerm{}, fmt.Errorf("weekday ordinal must not be zero in %q", tok)
		}
		if n > 53 || n < -53 {
			return WeekdayTerm{}, fmt.Errorf("weekday ordinal out of range in %q", tok)
		}
	}
	w, err := moment.ParseWeekday(m[2])
	if err != nil {
		return WeekdayTerm{}, err
	}
	return WeekdayTerm{Weekday: w, N: n}, nil
}
