package rrule

import (
	"log/slog"

	"github.com/samber/mo"

	"github.com/cyp0633/librrule/moment"
)

// sanitize range-checks and deduplicates every selector, injects defaults,
// and enforces the cross-field constraints. Value-level faults are filtered
// silently; structural faults are fatal.
func sanitize(opts Options) (Options, error) {
	out := opts

	if out.Freq < Yearly || out.Freq > Secondly {
		out.Freq = Yearly
	}
	if out.Interval < 1 {
		out.Interval = 1
	}
	if c, ok := out.Count.Get(); ok && c < 1 {
		logDrop(opts.Logger, "COUNT", c)
		out.Count = mo.None[int]()
	}

	out.ByMonth = filterRange(opts.Logger, "BYMONTH", opts.ByMonth, 1, 12, true)
	out.ByMonthDay = filterRange(opts.Logger, "BYMONTHDAY", opts.ByMonthDay, -31, 31, false)
	out.ByYearDay = filterRange(opts.Logger, "BYYEARDAY", opts.ByYearDay, -366, 366, false)
	out.ByWeekNo = filterRange(opts.Logger, "BYWEEKNO", opts.ByWeekNo, -53, 53, false)
	out.ByHour = filterRange(opts.Logger, "BYHOUR", opts.ByHour, 0, 23, true)
	out.ByMinute = filterRange(opts.Logger, "BYMINUTE", opts.ByMinute, 0, 59, true)
	out.BySecond = filterRange(opts.Logger, "BYSECOND", opts.BySecond, 0, 59, true)
	out.BySetPos = filterRange(opts.Logger, "BYSETPOS", opts.BySetPos, -366, 366, false)
	out.ByWeekday = filterWeekdays(opts.Logger, opts.ByWeekday)

	if out.Count.IsPresent() && out.Until.IsPresent() {
		return out, newError(ErrInvalidRule, "", "COUNT and UNTIL are mutually exclusive")
	}
	if until, ok := out.Until.Get(); ok {
		if start, ok := out.Dtstart.Get(); ok && until.Before(start) {
			return out, newError(ErrInvalidRule, "UNTIL", "must not precede DTSTART")
		}
	}
	if len(out.BySetPos) > 0 && !hasPartnerSelector(out) {
		return out, newError(ErrInvalidRule, "BYSETPOS", "requires at least one other BY selector")
	}
	return out, nil
}

// hasPartnerSelector reports whether any BY selector other than BYSETPOS is
// populated.
func hasPartnerSelector(o Options) bool {
	return len(o.ByMonth) > 0 || len(o.ByMonthDay) > 0 || len(o.ByYearDay) > 0 ||
		len(o.ByWeekNo) > 0 || len(o.ByWeekday) > 0 ||
		len(o.ByHour) > 0 || len(o.ByMinute) > 0 || len(o.BySecond) > 0
}

// filterRange keeps values inside [min, max], dropping zero unless allowed,
// and deduplicates preserving first-seen order.
func filterRange(logger *slog.Logger, key string, vals []int, min, max int, zeroAllowed bool) []int {
	if len(vals) == 0 {
		return nil
	}
	var out []int
	seen := make(map[int]bool, len(vals))
	for _, v := range vals {
		if v < min || v > max || (v == 0 && !zeroAllowed) {
			logDrop(logger, key, v)
			continue
		}
		if seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

// filterWeekdays drops terms with out-of-range ordinals and deduplicates.
func filterWeekdays(logger *slog.Logger, terms []WeekdayTerm) []WeekdayTerm {
	if len(terms) == 0 {
		return nil
	}
	var out []WeekdayTerm
	seen := make(map[WeekdayTerm]bool, len(terms))
	for _, t := range terms {
		if t.Weekday < moment.Monday || t.Weekday > moment.Sunday || t.N > 53 || t.N < -53 {
			if logger != nil {
				logger.Debug("dropping invalid BYDAY term", "term", t.String())
			}
			continue
		}
		if seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

func logDrop(logger *slog.Logger, key string, value int) {
	if logger != nil {
		logger.Debug("dropping out-of-range selector value", "key", key, "value", value)
	}
}
