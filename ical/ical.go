// Package ical bridges iCalendar components and recurrence rules: it lifts
// DTSTART and RRULE out of a go-ical component into a sanitized Rule, and
// writes a Rule back onto an event.
package ical

import (
	"fmt"
	"strings"

	ics "github.com/emersion/go-ical"
	"github.com/google/uuid"

	"github.com/cyp0633/librrule/moment"
	"github.com/cyp0633/librrule/rrule"
)

// HasRecurrence reports whether the component carries an RRULE property.
func HasRecurrence(comp *ics.Component) bool {
	p := comp.Props.Get(ics.PropRecurrenceRule)
	return p != nil && p.Value != ""
}

// RuleFromComponent builds a Rule from the component's RRULE and DTSTART
// properties, honouring TZID and VALUE=DATE parameters. Parsing follows the
// given options; the zero value means strict mode with the host zone
// database.
func RuleFromComponent(comp *ics.Component, po rrule.ParseOptions) (*rrule.Rule, error) {
	prop := comp.Props.Get(ics.PropRecurrenceRule)
	if prop == nil || prop.Value == "" {
		return nil, &rrule.Error{
			Kind:    rrule.ErrMalformedText,
			Key:     ics.PropRecurrenceRule,
			Message: "component has no recurrence rule",
		}
	}
	var b strings.Builder
	if ds := comp.Props.Get(ics.PropDateTimeStart); ds != nil && ds.Value != "" {
		b.WriteString(dtstartLine(ds))
		b.WriteByte('\n')
	}
	b.WriteString("RRULE:")
	b.WriteString(prop.Value)
	return rrule.ParseWith(b.String(), po)
}

// RuleFromEvent is RuleFromComponent on an event's inner component.
func RuleFromEvent(ev *ics.Event, po rrule.ParseOptions) (*rrule.Rule, error) {
	return RuleFromComponent(ev.Component, po)
}

// dtstartLine re-assembles the content line the recurrence codec consumes,
// carrying over only the parameters it understands.
func dtstartLine(p *ics.Prop) string {
	var b strings.Builder
	b.WriteString("DTSTART")
	if v := p.Params.Get("TZID"); v != "" {
		b.WriteString(";TZID=")
		b.WriteString(v)
	}
	if v := p.Params.Get("VALUE"); v != "" {
		b.WriteString(";VALUE=")
		b.WriteString(v)
	}
	b.WriteByte(':')
	b.WriteString(p.Value)
	return b.String()
}

// ApplyRule writes the rule's anchor and recurrence onto the component,
// replacing any existing DTSTART and RRULE properties.
func ApplyRule(comp *ics.Component, r *rrule.Rule) {
	if start, ok := r.Dtstart().Get(); ok {
		comp.Props.Set(dtstartProp(start))
	}
	rr := ics.NewProp(ics.PropRecurrenceRule)
	rr.Value = r.String()
	comp.Props.Set(rr)
}

func dtstartProp(m moment.Moment) *ics.Prop {
	p := ics.NewProp(ics.PropDateTimeStart)
	date := fmt.Sprintf("%04d%02d%02d", m.Year(), m.Month(), m.Day())
	clock := fmt.Sprintf("T%02d%02d%02d",
		m.Hour().OrElse(0), m.Minute().OrElse(0), m.Second().OrElse(0))
	switch m.Kind() {
	case moment.KindDate:
		p.Params.Set("VALUE", "DATE")
		p.Value = date
	case moment.KindZoned:
		if m.IsUTC() {
			p.Value = date + clock + "Z"
		} else {
			p.Params.Set("TZID", m.Zone().OrElse(""))
			p.Value = date + clock
		}
	default:
		p.Value = date + clock
	}
	return p
}

// NewEvent builds a VEVENT carrying the rule, with a freshly generated UID
// and an optional summary.
func NewEvent(r *rrule.Rule, summary string) *ics.Event {
	ev := ics.NewEvent()
	ev.Props.SetText(ics.PropUID, uuid.New().String())
	if summary != "" {
		ev.Props.SetText(ics.PropSummary, summary)
	}
	ApplyRule(ev.Component, r)
	return ev
}

// EnsureUID returns the component's UID, generating and setting one when it
// is absent.
func EnsureUID(comp *ics.Component) string {
	if p := comp.Props.Get(ics.PropUID); p != nil && p.Value != "" {
		return p.Value
	}
	id := uuid.New().String()
	comp.Props.SetText(ics.PropUID, id)
	return id
}
