package rrule

import (
	"log/slog"
	"strconv"
	"strings"

	"github.com/samber/mo"

	"github.com/cyp0633/librrule/moment"
)

// ParseMode selects how the codec reacts to malformed input.
type ParseMode int

const (
	// ModeStrict fails the whole parse on any malformed token or
	// out-of-range value, naming the offending key.
	ModeStrict ParseMode = iota
	// ModeLenient drops invalid values, substitutes YEARLY for an invalid
	// FREQ and ignores unknown keys. Structural faults stay fatal.
	ModeLenient
)

// ParseOptions controls parsing behaviour.
type ParseOptions struct {
	Mode ParseMode

	// Converter resolves TZID parameters on DTSTART. Nil falls back to the
	// host zone database via moment.LocationConverter.
	Converter moment.Converter

	// Logger receives debug records about values dropped in lenient mode.
	Logger *slog.Logger

	// Config carries iteration safety bounds into the parsed rule.
	Config Config
}

// Parse parses a text block containing an RRULE line and optionally a
// DTSTART line, in either order, in strict mode.
func Parse(text string) (*Rule, error) {
	return ParseWith(text, ParseOptions{})
}

// ParseWith is Parse with explicit options.
func ParseWith(text string, po ParseOptions) (*Rule, error) {
	if po.Converter == nil {
		po.Converter = moment.LocationConverter{}
	}
	opts := Options{Config: po.Config, Logger: po.Logger}
	sawRRule := false
	for _, line := range strings.Split(unfold(text), "\n") {
		line = strings.TrimSuffix(strings.TrimSpace(line), "\r")
		if line == "" {
			continue
		}
		name := propertyName(line)
		switch name {
		case "DTSTART":
			start, err := parseDtstartLine(line, po)
			if err != nil {
				return nil, err
			}
			opts.Dtstart = mo.Some(start)
		case "RRULE":
			if sawRRule && po.Mode == ModeStrict {
				return nil, newError(ErrMalformedText, "RRULE", "duplicate RRULE line")
			}
			sawRRule = true
			if err := parseRRuleLine(line, &opts, po); err != nil {
				return nil, err
			}
		default:
			if po.Mode == ModeStrict {
				return nil, newError(ErrMalformedText, name, "unrecognised content line")
			}
			logSkip(po.Logger, "line", line)
		}
	}
	if !sawRRule {
		return nil, newError(ErrMalformedText, "RRULE", "no RRULE line in input")
	}
	return New(opts)
}

// unfold collapses a line break followed by a single space or tab, the
// iCalendar continuation sequence.
func unfold(s string) string {
	r := strings.NewReplacer("\r\n ", "", "\r\n\t", "", "\n ", "", "\n\t", "")
	return r.Replace(s)
}

// propertyName extracts the upper-cased property name before the first ';'
// or ':' of a content line.
func propertyName(line string) string {
	end := len(line)
	if i := strings.IndexAny(line, ";:"); i >= 0 {
		end = i
	}
	return strings.ToUpper(strings.TrimSpace(line[:end]))
}

// parseDtstartLine handles DTSTART[;TZID=…][;VALUE=DATE|DATE-TIME]:<value>.
func parseDtstartLine(line string, po ParseOptions) (moment.Moment, error) {
	head, value, found := strings.Cut(line, ":")
	if !found || value == "" {
		return moment.Moment{}, newError(ErrMalformedText, "DTSTART", "missing value")
	}

	var tzid, valueType string
	for _, param := range strings.Split(head, ";")[1:] {
		key, val, ok := strings.Cut(param, "=")
		if !ok {
			if po.Mode == ModeStrict {
				return moment.Moment{}, newError(ErrMalformedText, "DTSTART", "malformed parameter %q", param)
			}
			logSkip(po.Logger, "DTSTART parameter", param)
			continue
		}
		switch strings.ToUpper(strings.TrimSpace(key)) {
		case "TZID":
			tzid = strings.TrimSpace(val)
		case "VALUE":
			valueType = strings.ToUpper(strings.TrimSpace(val))
		default:
			if po.Mode == ModeStrict {
				return moment.Moment{}, newError(ErrMalformedText, "DTSTART", "unknown parameter %q", key)
			}
			logSkip(po.Logger, "DTSTART parameter", param)
		}
	}

	m, err := parseMomentValue(strings.TrimSpace(value))
	if err != nil {
		return moment.Moment{}, err
	}

	if po.Mode == ModeStrict {
		if valueType == "DATE" && m.Kind() != moment.KindDate {
			return moment.Moment{}, newError(ErrMalformedText, "DTSTART", "VALUE=DATE with a date-time value")
		}
		if valueType == "DATE-TIME" && m.Kind() == moment.KindDate {
			return moment.Moment{}, newError(ErrMalformedText, "DTSTART", "VALUE=DATE-TIME with a date value")
		}
	}

	if tzid == "" {
		return m, nil
	}
	// TZID only combines with a naked date-time; a date has no clock to
	// anchor and a Z suffix already pins UTC.
	if m.Kind() != moment.KindDateTime {
		if po.Mode == ModeStrict {
			return moment.Moment{}, newError(ErrMalformedText, "DTSTART", "TZID requires a naked date-time value")
		}
		logSkip(po.Logger, "DTSTART parameter", "TZID="+tzid)
		return m, nil
	}
	zoned, err := po.Converter.ToZone(m, tzid)
	if err != nil {
		return moment.Moment{}, &Error{Kind: ErrInvalidMoment, Key: "DTSTART", Message: "cannot resolve TZID", Err: err}
	}
	return zoned, nil
}

// parseRRuleLine fills opts from RRULE:KEY=VALUE;… content.
func parseRRuleLine(line string, opts *Options, po ParseOptions) error {
	_, value, found := strings.Cut(line, ":")
	if !found || strings.TrimSpace(value) == "" {
		return newError(ErrMalformedText, "RRULE", "missing value")
	}
	sawFreq := false
	for _, pair := range strings.Split(value, ";") {
		if strings.TrimSpace(pair) == "" {
			continue
		}
		key, val, ok := strings.Cut(pair, "=")
		if !ok {
			if po.Mode == ModeStrict {
				return newError(ErrMalformedText, "RRULE", "malformed token %q", pair)
			}
			logSkip(po.Logger, "RRULE token", pair)
			continue
		}
		key = strings.ToUpper(strings.TrimSpace(key))
		val = strings.TrimSpace(val)
		if err := applyRRuleKey(key, val, opts, po, &sawFreq); err != nil {
			return err
		}
	}
	if po.Mode == ModeStrict && !sawFreq {
		return newError(ErrMalformedText, "FREQ", "required key missing")
	}
	return nil
}

func applyRRuleKey(key, val string, opts *Options, po ParseOptions, sawFreq *bool) error {
	switch key {
	case "FREQ":
		f, ok := ParseFrequency(val)
		if !ok {
			if po.Mode == ModeStrict {
				return newError(ErrMalformedText, "FREQ", "unknown frequency %q", val)
			}
			logSkip(po.Logger, "FREQ", val)
			f = Yearly
		}
		opts.Freq = f
		*sawFreq = true
	case "INTERVAL":
		n, err := strconv.Atoi(val)
		if err != nil || n < 1 {
			if po.Mode == ModeStrict {
				return newError(ErrMalformedText, "INTERVAL", "must be a positive integer, got %q", val)
			}
			logSkip(po.Logger, "INTERVAL", val)
			return nil
		}
		opts.Interval = n
	case "COUNT":
		n, err := strconv.Atoi(val)
		if err != nil || n < 1 {
			if po.Mode == ModeStrict {
				return newError(ErrMalformedText, "COUNT", "must be a positive integer, got %q", val)
			}
			logSkip(po.Logger, "COUNT", val)
			return nil
		}
		opts.Count = mo.Some(n)
	case "UNTIL":
		m, err := parseMomentValue(val)
		if err != nil {
			if po.Mode == ModeStrict {
				return err
			}
			logSkip(po.Logger, "UNTIL", val)
			return nil
		}
		opts.Until = mo.Some(m)
	case "WKST":
		w, err := moment.ParseWeekday(val)
		if err != nil {
			if po.Mode == ModeStrict {
				return newError(ErrMalformedText, "WKST", "unknown weekday %q", val)
			}
			logSkip(po.Logger, "WKST", val)
			return nil
		}
		opts.Wkst = mo.Some(w)
	case "BYDAY", "BYWEEKDAY":
		for _, tok := range strings.Split(val, ",") {
			term, err := ParseWeekdayTerm(tok)
			if err != nil {
				if po.Mode == ModeStrict {
					return &Error{Kind: ErrMalformedText, Key: "BYDAY", Message: "bad token", Err: err}
				}
				logSkip(po.Logger, "BYDAY", tok)
				continue
			}
			opts.ByWeekday = append(opts.ByWeekday, term)
		}
	case "BYMONTH":
		return parseIntList(key, val, &opts.ByMonth, 1, 12, true, po)
	case "BYMONTHDAY":
		return parseIntList(key, val, &opts.ByMonthDay, -31, 31, false, po)
	case "BYYEARDAY":
		return parseIntList(key, val, &opts.ByYearDay, -366, 366, false, po)
	case "BYWEEKNO":
		return parseIntList(key, val, &opts.ByWeekNo, -53, 53, false, po)
	case "BYHOUR":
		return parseIntList(key, val, &opts.ByHour, 0, 23, true, po)
	case "BYMINUTE":
		return parseIntList(key, val, &opts.ByMinute, 0, 59, true, po)
	case "BYSECOND":
		return parseIntList(key, val, &opts.BySecond, 0, 59, true, po)
	case "BYSETPOS":
		return parseIntList(key, val, &opts.BySetPos, -366, 366, false, po)
	default:
		if po.Mode == ModeStrict {
			return newError(ErrMalformedText, key, "unknown key")
		}
		logSkip(po.Logger, "RRULE key", key)
	}
	return nil
}

// parseIntList parses a comma-separated integer list. Malformed or
// out-of-range entries fail the parse in strict mode and are dropped in
// lenient mode.
func parseIntList(key, val string, dst *[]int, min, max int, zeroOK bool, po ParseOptions) error {
	for _, tok := range strings.Split(val, ",") {
		tok = strings.TrimSpace(tok)
		n, err := strconv.Atoi(tok)
		if err != nil {
			if po.Mode == ModeStrict {
				return newError(ErrMalformedText, key, "not an integer: %q", tok)
			}
			logSkip(po.Logger, key, tok)
			continue
		}
		if n < min || n > max || (n == 0 && !zeroOK) {
			if po.Mode == ModeStrict {
				return newError(ErrUnsupported, key, "value %d out of range [%d, %d]", n, min, max)
			}
			logSkip(po.Logger, key, tok)
			continue
		}
		*dst = append(*dst, n)
	}
	return nil
}

// parseMomentValue parses the three DTSTART/UNTIL value shapes: YYYYMMDD,
// YYYYMMDDTHHMMSS and YYYYMMDDTHHMMSSZ.
func parseMomentValue(v string) (moment.Moment, error) {
	var m moment.Moment
	switch {
	case len(v) == 8:
		y, mo1, d, err := parseDateDigits(v)
		if err != nil {
			return moment.Moment{}, err
		}
		m = moment.NewDate(y, mo1, d)
	case len(v) == 15 && v[8] == 'T':
		y, mo1, d, h, mi, s, err := parseDateTimeDigits(v)
		if err != nil {
			return moment.Moment{}, err
		}
		m = moment.NewDateTime(y, mo1, d, h, mi, s, 0)
	case len(v) == 16 && v[8] == 'T' && (v[15] == 'Z' || v[15] == 'z'):
		y, mo1, d, h, mi, s, err := parseDateTimeDigits(v[:15])
		if err != nil {
			return moment.Moment{}, err
		}
		m = moment.NewUTC(y, mo1, d, h, mi, s, 0)
	default:
		return moment.Moment{}, newError(ErrInvalidMoment, "", "malformed date-time literal %q", v)
	}
	if !m.Valid() {
		return moment.Moment{}, newError(ErrInvalidMoment, "", "no such calendar moment %q", v)
	}
	return m, nil
}

func parseDateDigits(v string) (y, m, d int, err error) {
	y, err1 := strconv.Atoi(v[0:4])
	m, err2 := strconv.Atoi(v[4:6])
	d, err3 := strconv.Atoi(v[6:8])
	if err1 != nil || err2 != nil || err3 != nil {
		return 0, 0, 0, newError(ErrInvalidMoment, "", "malformed date literal %q", v)
	}
	return y, m, d, nil
}

func parseDateTimeDigits(v string) (y, m, d, h, mi, s int, err error) {
	y, m, d, err = parseDateDigits(v[:8])
	if err != nil {
		return
	}
	h, err1 := strconv.Atoi(v[9:11])
	mi, err2 := strconv.Atoi(v[11:13])
	s, err3 := strconv.Atoi(v[13:15])
	if err1 != nil || err2 != nil || err3 != nil {
		return 0, 0, 0, 0, 0, 0, newError(ErrInvalidMoment, "", "malformed time literal %q", v)
	}
	return y, m, d, h, mi, s, nil
}

func logSkip(logger *slog.Logger, what, value string) {
	if logger != nil {
		logger.Debug("lenient parse dropping input", "what", what, "value", value)
	}
}
