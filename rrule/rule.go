// Package rrule implements RFC 5545 recurrence rules: the rule model and
// sanitizer, the RRULE/DTSTART textual codec, the lazy occurrence generator
// and the query surface over it.
package rrule

import (
	"log/slog"

	"github.com/samber/mo"

	"github.com/cyp0633/librrule/moment"
)

// Options collects caller input for building a Rule. Zero values mean
// "unset": frequency defaults to YEARLY and interval to 1; selector slices
// may carry out-of-range entries, which the sanitizer filters.
type Options struct {
	Freq       Frequency
	Dtstart    mo.Option[moment.Moment]
	Interval   int
	Count      mo.Option[int]
	Until      mo.Option[moment.Moment]
	Wkst       mo.Option[moment.Weekday]
	ByMonth    []int
	ByMonthDay []int
	ByYearDay  []int
	ByWeekNo   []int
	ByWeekday  []WeekdayTerm
	ByHour     []int
	ByMinute   []int
	BySecond   []int
	BySetPos   []int

	// Config overrides the iteration safety bounds. The zero value takes
	// DefaultConfig.
	Config Config

	// Logger receives debug records about values the sanitizer and the
	// lenient parser drop. Nil disables logging.
	Logger *slog.Logger
}

// Rule is a sanitized, immutable recurrence rule. An iterator copies the
// rule's options when it is built, so setters called afterwards do not
// affect iterators already in flight.
type Rule struct {
	opts   Options
	cfg    Config
	logger *slog.Logger
}

// New sanitizes the options and builds a Rule. Out-of-range selector values
// are silently filtered; structural faults (COUNT and UNTIL both set, UNTIL
// before DTSTART, BYSETPOS without a partner selector) fail with an
// invalid_rule error.
func New(opts Options) (*Rule, error) {
	clean, err := sanitize(opts)
	if err != nil {
		return nil, err
	}
	return &Rule{
		opts:   clean,
		cfg:    clean.Config.normalized(),
		logger: clean.Logger,
	}, nil
}

// MustNew is New for rules known to be well formed; it panics on error.
func MustNew(opts Options) *Rule {
	r, err := New(opts)
	if err != nil {
		panic(err)
	}
	return r
}

// Freq returns the rule frequency.
func (r *Rule) Freq() Frequency { return r.opts.Freq }

// Dtstart returns the anchor moment, if set.
func (r *Rule) Dtstart() mo.Option[moment.Moment] { return r.opts.Dtstart }

// Interval returns the period stride, at least 1.
func (r *Rule) Interval() int { return r.opts.Interval }

// Count returns the emission cap, if set.
func (r *Rule) Count() mo.Option[int] { return r.opts.Count }

// Until returns the inclusive upper anchor, if set.
func (r *Rule) Until() mo.Option[moment.Moment] { return r.opts.Until }

// Wkst returns the explicit week start, if set.
func (r *Rule) Wkst() mo.Option[moment.Weekday] { return r.opts.Wkst }

// EffectiveWkst returns the week start used by the generator, Monday unless
// set otherwise.
func (r *Rule) EffectiveWkst() moment.Weekday { return r.opts.Wkst.OrElse(moment.Monday) }

// ByMonth returns a copy of the BYMONTH selector.
func (r *Rule) ByMonth() []int { return cloneSlice(r.opts.ByMonth) }

// ByMonthDay returns a copy of the BYMONTHDAY selector.
func (r *Rule) ByMonthDay() []int { return cloneSlice(r.opts.ByMonthDay) }

// ByYearDay returns a copy of the BYYEARDAY selector.
func (r *Rule) ByYearDay() []int { return cloneSlice(r.opts.ByYearDay) }

// ByWeekNo returns a copy of the BYWEEKNO selector.
func (r *Rule) ByWeekNo() []int { return cloneSlice(r.opts.ByWeekNo) }

// ByWeekday returns a copy of the BYDAY selector.
func (r *Rule) ByWeekday() []WeekdayTerm { return cloneSlice(r.opts.ByWeekday) }

// ByHour returns a copy of the BYHOUR selector.
func (r *Rule) ByHour() []int { return cloneSlice(r.opts.ByHour) }

// ByMinute returns a copy of the BYMINUTE selector.
func (r *Rule) ByMinute() []int { return cloneSlice(r.opts.ByMinute) }

// BySecond returns a copy of the BYSECOND selector.
func (r *Rule) BySecond() []int { return cloneSlice(r.opts.BySecond) }

// BySetPos returns a copy of the BYSETPOS selector.
func (r *Rule) BySetPos() []int { return cloneSlice(r.opts.BySetPos) }

// Options returns a deep copy of the sanitized options, suitable for
// deriving a modified rule.
func (r *Rule) Options() Options {
	o := r.opts
	o.ByMonth = cloneSlice(o.ByMonth)
	o.ByMonthDay = cloneSlice(o.ByMonthDay)
	o.ByYearDay = cloneSlice(o.ByYearDay)
	o.ByWeekNo = cloneSlice(o.ByWeekNo)
	o.ByWeekday = cloneSlice(o.ByWeekday)
	o.ByHour = cloneSlice(o.ByHour)
	o.ByMinute = cloneSlice(o.ByMinute)
	o.BySecond = cloneSlice(o.BySecond)
	o.BySetPos = cloneSlice(o.BySetPos)
	return o
}

// Clone returns an independent copy of the rule.
func (r *Rule) Clone() *Rule {
	return &Rule{opts: r.Options(), cfg: r.cfg, logger: r.logger}
}

// SetDtstart rebuilds the rule with a new anchor, re-running validation.
// In-flight iterators keep the old anchor.
func (r *Rule) SetDtstart(m moment.Moment) error {
	o := r.Options()
	o.Dtstart = mo.Some(m)
	return r.rebuild(o)
}

// SetUntil rebuilds the rule with a new upper anchor.
func (r *Rule) SetUntil(m moment.Moment) error {
	o := r.Options()
	o.Until = mo.Some(m)
	return r.rebuild(o)
}

// SetCount rebuilds the rule with a new emission cap.
func (r *Rule) SetCount(n int) error {
	o := r.Options()
	o.Count = mo.Some(n)
	return r.rebuild(o)
}

// SetFreq rebuilds the rule with a new frequency.
func (r *Rule) SetFreq(f Frequency) error {
	o := r.Options()
	o.Freq = f
	return r.rebuild(o)
}

func (r *Rule) rebuild(o Options) error {
	nr, err := New(o)
	if err != nil {
		return err
	}
	*r = *nr
	return nil
}

func cloneSlice[T any](s []T) []T {
	if s == nil {
		return nil
	}
	out := make([]T, len(s))
	copy(out, s)
	return out
}
