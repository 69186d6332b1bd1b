package rrule

import (
	"slices"

	"github.com/cyp0633/librrule/moment"
)

// civil is a raw date candidate produced by period expansion, before time
// expansion and materialization.
type civil struct {
	year, month, day int
}

// expandDates grows the current period into date-level candidates. The
// result is unordered; the iterator sorts after time expansion.
func (it *Iterator) expandDates() []civil {
	switch it.opts.Freq {
	case Yearly:
		return it.expandYear()
	case Monthly:
		return it.expandMonth(it.cur.year, it.cur.month)
	case Weekly:
		return it.expandWeek()
	default:
		// DAILY and the sub-daily frequencies keep or drop the cursor
		// itself.
		c := civil{it.cur.year, it.cur.month, it.cur.day}
		if it.dateAllowed(c) && it.timeAllowed() {
			return []civil{c}
		}
		return nil
	}
}

// dateAllowed applies the date-level limiters to a single candidate:
// BYMONTH, BYMONTHDAY normalised against the candidate's month, and bare
// BYDAY terms. Ordinal BYDAY terms do not apply at this level.
func (it *Iterator) dateAllowed(c civil) bool {
	if len(it.opts.ByMonth) > 0 && !slices.Contains(it.opts.ByMonth, c.month) {
		return false
	}
	if len(it.opts.ByMonthDay) > 0 && !matchesMonthDay(c, it.opts.ByMonthDay) {
		return false
	}
	if len(it.bareWeekdays) > 0 &&
		!slices.Contains(it.bareWeekdays, moment.WeekdayOfDate(c.year, c.month, c.day)) {
		return false
	}
	return true
}

func matchesMonthDay(c civil, sel []int) bool {
	dim := moment.DaysInMonth(c.year, c.month)
	for _, v := range sel {
		d := v
		if v < 0 {
			d = dim + v + 1
		}
		if d == c.day {
			return true
		}
	}
	return false
}

// expandWeek enumerates the seven days of the cursor's week. A day is kept
// when its weekday is named by BYDAY (ordinals read as bare here), or when
// BYDAY is empty and the weekday matches the anchor's. BYMONTH and
// BYMONTHDAY then limit.
func (it *Iterator) expandWeek() []civil {
	start := moment.NewDate(it.cur.year, it.cur.month, it.cur.day).StartOfWeek(it.wkst)
	var out []civil
	for i := 0; i < 7; i++ {
		d := start.AddDays(i)
		wd := d.Weekday()
		if len(it.weekWeekdays) > 0 {
			if !slices.Contains(it.weekWeekdays, wd) {
				continue
			}
		} else if wd != it.anchorWeekday {
			continue
		}
		c := civil{d.Year(), d.Month(), d.Day()}
		if len(it.opts.ByMonth) > 0 && !slices.Contains(it.opts.ByMonth, c.month) {
			continue
		}
		if len(it.opts.ByMonthDay) > 0 && !matchesMonthDay(c, it.opts.ByMonthDay) {
			continue
		}
		out = append(out, c)
	}
	return out
}

// expandMonth produces the candidates of one month. BYMONTHDAY and BYDAY
// intersect when both are present; with neither, the anchor's day of month
// is used and a month too short for it yields an empty period.
func (it *Iterator) expandMonth(year, month int) []civil {
	if len(it.opts.ByMonth) > 0 && !slices.Contains(it.opts.ByMonth, month) {
		return nil
	}
	dim := moment.DaysInMonth(year, month)
	var days []int
	hasMD := len(it.opts.ByMonthDay) > 0
	hasBD := len(it.opts.ByWeekday) > 0
	switch {
	case hasMD && hasBD:
		md := make(map[int]bool)
		for _, d := range normalizedMonthDays(it.opts.ByMonthDay, year, month) {
			md[d] = true
		}
		for _, d := range expandByDayInMonth(year, month, it.opts.ByWeekday) {
			if md[d] {
				days = append(days, d)
			}
		}
	case hasMD:
		days = normalizedMonthDays(it.opts.ByMonthDay, year, month)
	case hasBD:
		days = expandByDayInMonth(year, month, it.opts.ByWeekday)
	default:
		if it.anchorDay <= dim {
			days = []int{it.anchorDay}
		}
	}
	slices.Sort(days)
	days = slices.Compact(days)
	out := make([]civil, 0, len(days))
	for _, d := range days {
		out = append(out, civil{year, month, d})
	}
	return out
}

// normalizedMonthDays resolves BYMONTHDAY against a concrete month,
// translating negative entries and dropping days the month does not have.
func normalizedMonthDays(sel []int, year, month int) []int {
	dim := moment.DaysInMonth(year, month)
	var out []int
	for _, v := range sel {
		d := v
		if v < 0 {
			d = dim + v + 1
		}
		if d >= 1 && d <= dim {
			out = append(out, d)
		}
	}
	return out
}

// expandByDayInMonth bucketises the days of a month by weekday and resolves
// each BYDAY term against its bucket: bare terms take the whole bucket,
// ordinal terms pick one element or nothing.
func expandByDayInMonth(year, month int, terms []WeekdayTerm) []int {
	dim := moment.DaysInMonth(year, month)
	var buckets [7][]int
	first := moment.WeekdayOfDate(year, month, 1).Index()
	for d := 1; d <= dim; d++ {
		idx := (first + d - 1) % 7
		buckets[idx] = append(buckets[idx], d)
	}
	var out []int
	for _, t := range terms {
		b := buckets[t.Weekday.Index()]
		switch {
		case t.N == 0:
			out = append(out, b...)
		case t.N > 0:
			if t.N <= len(b) {
				out = append(out, b[t.N-1])
			}
		default:
			if -t.N <= len(b) {
				out = append(out, b[len(b)+t.N])
			}
		}
	}
	return out
}

// expandYear evaluates the yearly precedence ladder: year-scoped ordinal
// weekdays first, then BYYEARDAY, then BYWEEKNO, and finally month
// recursion.
func (it *Iterator) expandYear() []civil {
	year := it.cur.year
	switch {
	case it.hasOrdinalWeekday && len(it.opts.ByMonth) == 0:
		return it.expandByDayInYear(year)
	case len(it.opts.ByYearDay) > 0:
		return it.expandYearDays(year)
	case len(it.opts.ByWeekNo) > 0:
		return it.expandWeekNumbers(year)
	default:
		months := it.opts.ByMonth
		if len(months) == 0 {
			if len(it.opts.ByMonthDay) > 0 || len(it.opts.ByWeekday) > 0 {
				months = []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12}
			} else {
				months = []int{it.cur.month}
			}
		}
		var out []civil
		for _, m := range months {
			out = append(out, it.expandMonth(year, m)...)
		}
		return out
	}
}

// expandByDayInYear resolves BYDAY terms against the whole year. A bare
// term contributes every matching weekday of the year; an ordinal term
// walks from the year's start (or end, when negative) to the nearest
// matching weekday and jumps whole weeks from there.
func (it *Iterator) expandByDayInYear(year int) []civil {
	jan1 := moment.NewDate(year, 1, 1)
	dec31 := moment.NewDate(year, 12, 31)
	var out []civil
	for _, t := range it.opts.ByWeekday {
		fwd := (t.Weekday.Index() - jan1.Weekday().Index() + 7) % 7
		switch {
		case t.N == 0:
			for d := jan1.AddDays(fwd); d.Year() == year; d = d.AddDays(7) {
				out = append(out, civil{d.Year(), d.Month(), d.Day()})
			}
		case t.N > 0:
			d := jan1.AddDays(fwd + 7*(t.N-1))
			if d.Year() == year {
				out = append(out, civil{d.Year(), d.Month(), d.Day()})
			}
		default:
			back := (dec31.Weekday().Index() - t.Weekday.Index() + 7) % 7
			d := dec31.AddDays(-(back + 7*(-t.N-1)))
			if d.Year() == year {
				out = append(out, civil{d.Year(), d.Month(), d.Day()})
			}
		}
	}
	return out
}

// expandYearDays resolves BYYEARDAY, translating negative ordinals against
// the year length and intersecting with BYMONTH when present.
func (it *Iterator) expandYearDays(year int) []civil {
	diy := moment.DaysInYear(year)
	var out []civil
	for _, v := range it.opts.ByYearDay {
		n := v
		if v < 0 {
			n = diy + v + 1
		}
		if n < 1 || n > diy {
			continue
		}
		d := moment.NewDate(year, 1, 1).AddDays(n - 1)
		if len(it.opts.ByMonth) > 0 && !slices.Contains(it.opts.ByMonth, d.Month()) {
			continue
		}
		out = append(out, civil{d.Year(), d.Month(), d.Day()})
	}
	return out
}

// expandWeekNumbers resolves BYWEEKNO. Week 1 is the week, per wkst, that
// contains January 4; negative numbers count back from the year's week
// count. Days spilling into a neighbouring year are dropped.
func (it *Iterator) expandWeekNumbers(year int) []civil {
	weeks := moment.WeeksInYear(year, it.wkst)
	week1 := moment.NewDate(year, 1, 4).StartOfWeek(it.wkst)
	var out []civil
	for _, v := range it.opts.ByWeekNo {
		w := v
		if v < 0 {
			w = weeks + v + 1
		}
		if w < 1 || w > weeks {
			continue
		}
		start := week1.AddDays(7 * (w - 1))
		for i := 0; i < 7; i++ {
			d := start.AddDays(i)
			if d.Year() != year {
				continue
			}
			if len(it.weekWeekdays) > 0 && !slices.Contains(it.weekWeekdays, d.Weekday()) {
				continue
			}
			out = append(out, civil{d.Year(), d.Month(), d.Day()})
		}
	}
	return out
}
