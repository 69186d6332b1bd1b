package rrule

import (
	"github.com/samber/mo"

	"github.com/cyp0633/librrule/moment"
)

// All collects occurrences until the sequence is exhausted or limit items
// are gathered. limit <= 0 means no limit; an unbounded rule then runs into
// the safety bounds.
func (r *Rule) All(limit int) ([]moment.Moment, error) {
	it, err := r.Iterator()
	if err != nil {
		return nil, err
	}
	var out []moment.Moment
	for {
		m, ok, err := pull(it)
		if err != nil {
			return nil, err
		}
		if !ok {
			return out, nil
		}
		out = append(out, m)
		if limit > 0 && len(out) >= limit {
			return out, nil
		}
	}
}

// Between collects the occurrences inside [start, end], or (start, end)
// when inclusive is false.
func (r *Rule) Between(start, end moment.Moment, inclusive bool) ([]moment.Moment, error) {
	it, err := r.iterator(mo.Some(start))
	if err != nil {
		return nil, err
	}
	var out []moment.Moment
	for {
		m, ok, err := pull(it)
		if err != nil {
			return nil, err
		}
		if !ok {
			return out, nil
		}
		if m.Before(start) || (!inclusive && m.Equal(start)) {
			continue
		}
		if m.After(end) || (!inclusive && m.Equal(end)) {
			return out, nil
		}
		out = append(out, m)
	}
}

// Before collects occurrences strictly before t, or up to and including t
// when inclusive. limit <= 0 means no limit.
func (r *Rule) Before(t moment.Moment, inclusive bool, limit int) ([]moment.Moment, error) {
	it, err := r.Iterator()
	if err != nil {
		return nil, err
	}
	var out []moment.Moment
	for {
		m, ok, err := pull(it)
		if err != nil {
			return nil, err
		}
		if !ok {
			return out, nil
		}
		if m.After(t) || (!inclusive && m.Equal(t)) {
			return out, nil
		}
		out = append(out, m)
		if limit > 0 && len(out) >= limit {
			return out, nil
		}
	}
}

// After collects occurrences strictly after t, or from t on when
// inclusive. limit <= 0 means no limit.
func (r *Rule) After(t moment.Moment, inclusive bool, limit int) ([]moment.Moment, error) {
	it, err := r.iterator(mo.Some(t))
	if err != nil {
		return nil, err
	}
	var out []moment.Moment
	for {
		m, ok, err := pull(it)
		if err != nil {
			return nil, err
		}
		if !ok {
			return out, nil
		}
		if m.Before(t) || (!inclusive && m.Equal(t)) {
			continue
		}
		out = append(out, m)
		if limit > 0 && len(out) >= limit {
			return out, nil
		}
	}
}

// Next returns the first occurrence after t (from t on when inclusive), or
// None when the rule never reaches it.
func (r *Rule) Next(t moment.Moment, inclusive bool) (mo.Option[moment.Moment], error) {
	ms, err := r.After(t, inclusive, 1)
	if err != nil || len(ms) == 0 {
		return mo.None[moment.Moment](), err
	}
	return mo.Some(ms[0]), nil
}

// Previous returns the last occurrence before t (up to t when inclusive),
// or None when every occurrence lies at or past t. The scan stops at the
// first occurrence past the target, so it terminates whenever the rule
// keeps producing.
func (r *Rule) Previous(t moment.Moment, inclusive bool) (mo.Option[moment.Moment], error) {
	it, err := r.Iterator()
	if err != nil {
		return mo.None[moment.Moment](), err
	}
	last := mo.None[moment.Moment]()
	for {
		m, ok, err := pull(it)
		if err != nil {
			return mo.None[moment.Moment](), err
		}
		if !ok {
			return last, nil
		}
		if m.After(t) || (!inclusive && m.Equal(t)) {
			return last, nil
		}
		last = mo.Some(m)
	}
}

func pull(it *Iterator) (moment.Moment, bool, error) {
	next, err := it.Next()
	if err != nil {
		return moment.Moment{}, false, err
	}
	m, ok := next.Get()
	return m, ok, nil
}
