package rrule

import (
	"slices"

	"github.com/samber/mo"

	"github.com/cyp0633/librrule/moment"
)

// cursor is the iterator's position: a raw date plus a clock for the
// sub-daily frequencies. Under MONTHLY and YEARLY stepping the day stays the
// anchor's day of month and is never clamped; a month too short for it reads
// as an empty period instead.
type cursor struct {
	year, month, day     int
	hour, minute, second int
}

// Iterator walks the occurrences of a rule lazily. It is single-consumer
// and not safe for concurrent use; build one per consumer.
type Iterator struct {
	opts    Options
	cfg     Config
	dtstart moment.Moment
	wkst    moment.Weekday

	anchorDay     int
	anchorWeekday moment.Weekday

	// bareWeekdays holds BYDAY terms without ordinals, the only ones that
	// limit DAILY and sub-daily periods. weekWeekdays holds every term's
	// weekday with ordinals stripped, as WEEKLY and BYWEEKNO read them.
	bareWeekdays      []moment.Weekday
	weekWeekdays      []moment.Weekday
	hasOrdinalWeekday bool

	hoursSel, minutesSel, secondsSel []int

	cur        cursor
	queue      []moment.Moment
	emitted    int
	iterations int
	emptyRun   int
	done       bool
	err        error
}

// Iterator builds a fresh occurrence iterator positioned at the period
// containing DTSTART. It fails with a missing_dtstart error when the rule
// has no anchor.
func (r *Rule) Iterator() (*Iterator, error) {
	return r.iterator(mo.None[moment.Moment]())
}

// iterator optionally fast-forwards toward a seek target. Seeking jumps the
// cursor by whole periods, always stopping at least one period short of the
// target, and is disabled when COUNT is set because emissions before the
// target still consume the cap.
func (r *Rule) iterator(seek mo.Option[moment.Moment]) (*Iterator, error) {
	start, ok := r.opts.Dtstart.Get()
	if !ok {
		return nil, newError(ErrMissingDtstart, "DTSTART", "iteration requires an anchor")
	}
	it := &Iterator{
		opts:          r.opts,
		cfg:           r.cfg,
		dtstart:       start,
		wkst:          r.EffectiveWkst(),
		anchorDay:     start.Day(),
		anchorWeekday: start.Weekday(),
		hoursSel:      sortedCopy(r.opts.ByHour),
		minutesSel:    sortedCopy(r.opts.ByMinute),
		secondsSel:    sortedCopy(r.opts.BySecond),
	}
	for _, t := range r.opts.ByWeekday {
		it.weekWeekdays = append(it.weekWeekdays, t.Weekday)
		if t.N == 0 {
			it.bareWeekdays = append(it.bareWeekdays, t.Weekday)
		} else {
			it.hasOrdinalWeekday = true
		}
	}
	it.cur = cursor{
		year: start.Year(), month: start.Month(), day: start.Day(),
		hour:   start.Hour().OrElse(0),
		minute: start.Minute().OrElse(0),
		second: start.Second().OrElse(0),
	}
	if t, ok := seek.Get(); ok && r.opts.Count.IsAbsent() {
		it.seek(t)
	}
	return it, nil
}

// Next returns the next occurrence, or None once the sequence is exhausted.
// The only error it can surface is the max_iterations safety bound; after
// an error the iterator stays failed.
func (it *Iterator) Next() (mo.Option[moment.Moment], error) {
	none := mo.None[moment.Moment]()
	if it.err != nil {
		return none, it.err
	}
	for {
		if len(it.queue) > 0 {
			m := it.queue[0]
			it.queue = it.queue[1:]
			it.emitted++
			if c, ok := it.opts.Count.Get(); ok && it.emitted >= c {
				it.done = true
				it.queue = nil
			}
			return mo.Some(m), nil
		}
		if it.done {
			return none, nil
		}
		if err := it.fill(); err != nil {
			it.err = err
			return none, err
		}
		if it.done && len(it.queue) == 0 {
			return none, nil
		}
	}
}

// fill advances the cursor period by period until one yields survivors or
// the sequence ends. Each advance counts against MaxIterations; periods
// that stay empty before the first emission count against MaxEmptyPeriods.
func (it *Iterator) fill() error {
	for len(it.queue) == 0 && !it.done {
		it.iterations++
		if it.iterations > it.cfg.MaxIterations {
			return newError(ErrMaxIterations, "", "no occurrence within %d periods", it.cfg.MaxIterations)
		}
		ms := it.materialize(it.expandDates())
		ms = it.applySetPos(ms)
		ms = it.filterAnchors(ms)
		if len(ms) == 0 {
			if it.emitted == 0 {
				it.emptyRun++
				if it.emptyRun >= it.cfg.MaxEmptyPeriods {
					it.done = true
					return nil
				}
			}
		} else {
			it.emptyRun = 0
			it.queue = ms
		}
		if it.done {
			return nil
		}
		it.advance()
	}
	return nil
}

// materialize turns date candidates into concrete Moments carrying the
// anchor's variant and zone, expanding the clock by the time selectors. On
// a date-only anchor the clock expansion is a no-op. The result is sorted.
func (it *Iterator) materialize(dates []civil) []moment.Moment {
	if len(dates) == 0 {
		return nil
	}
	milli := it.dtstart.Millisecond().OrElse(0)
	hours, minutes, seconds := it.timeLists()
	var out []moment.Moment
	for _, c := range dates {
		if !it.dtstart.HasTime() {
			out = append(out, it.dtstart.WithDate(c.year, c.month, c.day))
			continue
		}
		base := it.dtstart.WithDate(c.year, c.month, c.day)
		for _, h := range hours {
			for _, mi := range minutes {
				for _, s := range seconds {
					out = append(out, base.WithTime(h, mi, s, milli))
				}
			}
		}
	}
	slices.SortFunc(out, moment.Compare)
	return out
}

// timeLists picks, per frequency, which clock fields expand and which stay
// pinned to the cursor. At DAILY and above all three time selectors expand;
// HOURLY pins the hour, MINUTELY the hour and minute, SECONDLY all three.
func (it *Iterator) timeLists() (hours, minutes, seconds []int) {
	hours, minutes, seconds = it.hoursSel, it.minutesSel, it.secondsSel
	switch it.opts.Freq {
	case Hourly:
		hours = nil
	case Minutely:
		hours, minutes = nil, nil
	case Secondly:
		hours, minutes, seconds = nil, nil, nil
	}
	if len(hours) == 0 {
		hours = []int{it.cur.hour}
	}
	if len(minutes) == 0 {
		minutes = []int{it.cur.minute}
	}
	if len(seconds) == 0 {
		seconds = []int{it.cur.second}
	}
	return hours, minutes, seconds
}

// timeAllowed applies the pinned time selectors as limiters on the
// sub-daily cursor.
func (it *Iterator) timeAllowed() bool {
	switch it.opts.Freq {
	case Hourly:
		return matchList(it.opts.ByHour, it.cur.hour)
	case Minutely:
		return matchList(it.opts.ByHour, it.cur.hour) &&
			matchList(it.opts.ByMinute, it.cur.minute)
	case Secondly:
		return matchList(it.opts.ByHour, it.cur.hour) &&
			matchList(it.opts.ByMinute, it.cur.minute) &&
			matchList(it.opts.BySecond, it.cur.second)
	default:
		return true
	}
}

func matchList(sel []int, v int) bool {
	return len(sel) == 0 || slices.Contains(sel, v)
}

// applySetPos keeps the listed positions of the period's sorted candidate
// set: p > 0 counts from the front, p < 0 from the back. Survivors keep
// chronological order.
func (it *Iterator) applySetPos(ms []moment.Moment) []moment.Moment {
	if len(it.opts.BySetPos) == 0 || len(ms) == 0 {
		return ms
	}
	keep := make([]bool, len(ms))
	for _, p := range it.opts.BySetPos {
		idx := p - 1
		if p < 0 {
			idx = len(ms) + p
		}
		if idx >= 0 && idx < len(ms) {
			keep[idx] = true
		}
	}
	var out []moment.Moment
	for i, m := range ms {
		if keep[i] {
			out = append(out, m)
		}
	}
	return out
}

// filterAnchors drops candidates before DTSTART and ends the sequence at
// the first candidate past UNTIL.
func (it *Iterator) filterAnchors(ms []moment.Moment) []moment.Moment {
	var out []moment.Moment
	for _, m := range ms {
		if m.Before(it.dtstart) {
			continue
		}
		if u, ok := it.opts.Until.Get(); ok && m.After(u) {
			it.done = true
			break
		}
		out = append(out, m)
	}
	return out
}

// advance moves the cursor forward by one stride of interval periods.
func (it *Iterator) advance() {
	n := it.opts.Interval
	switch it.opts.Freq {
	case Yearly:
		it.cur.year += n
	case Monthly:
		it.addMonths(n)
	case Weekly:
		it.addDays(7 * n)
	case Daily:
		it.addDays(n)
	case Hourly:
		it.addSeconds(n * 3600)
	case Minutely:
		it.addSeconds(n * 60)
	case Secondly:
		it.addSeconds(n)
	}
}

func (it *Iterator) addMonths(n int) {
	total := it.cur.month - 1 + n
	it.cur.year += total / 12
	it.cur.month = total%12 + 1
}

func (it *Iterator) addDays(n int) {
	d := moment.NewDate(it.cur.year, it.cur.month, it.cur.day).AddDays(n)
	it.cur.year, it.cur.month, it.cur.day = d.Year(), d.Month(), d.Day()
}

func (it *Iterator) addSeconds(secs int) {
	total := (it.cur.hour*60+it.cur.minute)*60 + it.cur.second + secs
	days := total / 86400
	rem := total % 86400
	it.cur.second = rem % 60
	it.cur.minute = rem / 60 % 60
	it.cur.hour = rem / 3600
	if days > 0 {
		it.addDays(days)
	}
}

// seek jumps the cursor toward t by whole strides, deliberately stopping
// one stride short so no occurrence at or after t can be skipped even when
// the arithmetic period count is off by one near boundaries. Sub-daily
// frequencies walk normally.
func (it *Iterator) seek(t moment.Moment) {
	if t.Before(it.dtstart) {
		return
	}
	var periods int
	switch it.opts.Freq {
	case Yearly:
		periods = t.Year() - it.cur.year
	case Monthly:
		periods = (t.Year()*12 + t.Month()) - (it.cur.year*12 + it.cur.month)
	case Weekly:
		start := moment.NewDate(it.cur.year, it.cur.month, it.cur.day).StartOfWeek(it.wkst)
		periods = moment.DaysBetween(start, t) / 7
	case Daily:
		periods = moment.DaysBetween(moment.NewDate(it.cur.year, it.cur.month, it.cur.day), t)
	default:
		return
	}
	strides := periods/it.opts.Interval - 1
	if strides <= 0 {
		return
	}
	n := strides * it.opts.Interval
	switch it.opts.Freq {
	case Yearly:
		it.cur.year += n
	case Monthly:
		it.addMonths(n)
	case Weekly:
		it.addDays(7 * n)
	case Daily:
		it.addDays(n)
	}
}

func sortedCopy(s []int) []int {
	if len(s) == 0 {
		return nil
	}
	out := slices.Clone(s)
	slices.Sort(out)
	return out
}
