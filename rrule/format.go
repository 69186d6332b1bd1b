package rrule

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/samber/mo"

	"github.com/cyp0633/librrule/moment"
)

// String renders the rule as an RRULE property value in canonical key
// order: FREQ first, INTERVAL only when it differs from 1, then COUNT,
// UNTIL, WKST and the BY selectors. DTSTART is not part of the value; see
// Text.
func (r *Rule) String() string { return formatRRule(r.opts) }

// Text renders the full textual form: a DTSTART content line when the
// anchor is set, then the RRULE content line, joined by a newline.
func (r *Rule) Text() string {
	var b strings.Builder
	if start, ok := r.opts.Dtstart.Get(); ok {
		b.WriteString(formatDtstart(start))
		b.WriteByte('\n')
	}
	b.WriteString("RRULE:")
	b.WriteString(formatRRule(r.opts))
	return b.String()
}

func formatRRule(o Options) string {
	parts := []string{"FREQ=" + o.Freq.String()}
	if o.Interval > 1 {
		parts = append(parts, "INTERVAL="+strconv.Itoa(o.Interval))
	}
	if c, ok := o.Count.Get(); ok {
		parts = append(parts, "COUNT="+strconv.Itoa(c))
	}
	if u, ok := o.Until.Get(); ok {
		parts = append(parts, "UNTIL="+formatUntil(u, o.Dtstart))
	}
	if w, ok := o.Wkst.Get(); ok {
		parts = append(parts, "WKST="+w.String())
	}
	parts = appendIntList(parts, "BYMONTH", o.ByMonth)
	parts = appendIntList(parts, "BYMONTHDAY", o.ByMonthDay)
	parts = appendIntList(parts, "BYYEARDAY", o.ByYearDay)
	parts = appendIntList(parts, "BYWEEKNO", o.ByWeekNo)
	if len(o.ByWeekday) > 0 {
		toks := make([]string, len(o.ByWeekday))
		for i, t := range o.ByWeekday {
			toks[i] = t.String()
		}
		parts = append(parts, "BYDAY="+strings.Join(toks, ","))
	}
	parts = appendIntList(parts, "BYHOUR", o.ByHour)
	parts = appendIntList(parts, "BYMINUTE", o.ByMinute)
	parts = appendIntList(parts, "BYSECOND", o.BySecond)
	parts = appendIntList(parts, "BYSETPOS", o.BySetPos)
	return strings.Join(parts, ";")
}

func appendIntList(parts []string, key string, vals []int) []string {
	if len(vals) == 0 {
		return parts
	}
	toks := make([]string, len(vals))
	for i, v := range vals {
		toks[i] = strconv.Itoa(v)
	}
	return append(parts, key+"="+strings.Join(toks, ","))
}

// formatDtstart renders the anchor as a DTSTART content line. Plain dates
// carry VALUE=DATE, UTC moments end in Z, and any other zone is named with
// a TZID parameter.
func formatDtstart(m moment.Moment) string {
	switch m.Kind() {
	case moment.KindDate:
		return "DTSTART;VALUE=DATE:" + formatDate(m)
	case moment.KindZoned:
		if m.IsUTC() {
			return "DTSTART:" + formatDateTime(m) + "Z"
		}
		return fmt.Sprintf("DTSTART;TZID=%s:%s", m.Zone().OrElse(""), formatDateTime(m))
	default:
		return "DTSTART:" + formatDateTime(m)
	}
}

// formatUntil picks the value form UNTIL must take: it follows the anchor's
// variant when one is set, else the until moment's own. When that form is
// zoned, the bound is converted to UTC and rendered with a Z suffix.
func formatUntil(u moment.Moment, anchor mo.Option[moment.Moment]) string {
	kind := u.Kind()
	if a, ok := anchor.Get(); ok {
		kind = a.Kind()
	}
	switch kind {
	case moment.KindDate:
		return formatDate(u)
	case moment.KindZoned:
		return formatDateTime(u.ToUTC()) + "Z"
	default:
		return formatDateTime(u)
	}
}

func formatDate(m moment.Moment) string {
	return fmt.Sprintf("%04d%02d%02d", m.Year(), m.Month(), m.Day())
}

func formatDateTime(m moment.Moment) string {
	return fmt.Sprintf("%04d%02d%02dT%02d%02d%02d",
		m.Year(), m.Month(), m.Day(),
		m.Hour().OrElse(0), m.Minute().OrElse(0), m.Second().OrElse(0))
}
