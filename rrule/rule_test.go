package rrule

import (
	"testing"

	"github.com/samber/mo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cyp0633/librrule/moment"
)

func TestNew_Defaults(t *testing.T) {
	r, err := New(Options{})
	require.NoError(t, err)

	assert.Equal(t, Yearly, r.Freq())
	assert.Equal(t, 1, r.Interval())
	assert.True(t, r.Count().IsAbsent())
	assert.True(t, r.Until().IsAbsent())
	assert.Equal(t, moment.Monday, r.EffectiveWkst())
}

func TestNew_FiltersSelectorValues(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		get  func(*Rule) []int
		want []int
	}{
		{
			name: "BYMONTH out of range dropped",
			opts: Options{Freq: Yearly, ByMonth: []int{0, 1, 6, 13, -2}},
			get:  (*Rule).ByMonth,
			want: []int{1, 6},
		},
		{
			name: "BYMONTHDAY keeps negatives, drops zero",
			opts: Options{Freq: Monthly, ByMonthDay: []int{-1, 0, 15, 32}},
			get:  (*Rule).ByMonthDay,
			want: []int{-1, 15},
		},
		{
			name: "BYHOUR range",
			opts: Options{Freq: Daily, ByHour: []int{0, 9, 24, -1}},
			get:  (*Rule).ByHour,
			want: []int{0, 9},
		},
		{
			name: "duplicates collapse keeping first-seen order",
			opts: Options{Freq: Yearly, ByMonth: []int{6, 2, 6, 2}},
			get:  (*Rule).ByMonth,
			want: []int{6, 2},
		},
		{
			name: "BYYEARDAY extremes survive",
			opts: Options{Freq: Yearly, ByYearDay: []int{366, -366, 367}},
			get:  (*Rule).ByYearDay,
			want: []int{366, -366},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := New(tt.opts)
			require.NoError(t, err)
			assert.Equal(t, tt.want, tt.get(r))
		})
	}
}

func TestNew_StructuralFaults(t *testing.T) {
	start := moment.NewDateTime(2024, 1, 10, 9, 0, 0, 0)

	tests := []struct {
		name string
		opts Options
	}{
		{
			name: "COUNT and UNTIL together",
			opts: Options{
				Freq:  Daily,
				Count: mo.Some(3),
				Until: mo.Some(moment.NewDateTime(2024, 2, 1, 0, 0, 0, 0)),
			},
		},
		{
			name: "UNTIL before DTSTART",
			opts: Options{
				Freq:    Daily,
				Dtstart: mo.Some(start),
				Until:   mo.Some(moment.NewDateTime(2023, 12, 31, 0, 0, 0, 0)),
			},
		},
		{
			name: "BYSETPOS without partner selector",
			opts: Options{Freq: Monthly, BySetPos: []int{1}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.opts)
			require.Error(t, err)
			assert.True(t, IsKind(err, ErrInvalidRule))
		})
	}
}

func TestNew_InvalidCountDropped(t *testing.T) {
	r, err := New(Options{Freq: Daily, Count: mo.Some(0)})
	require.NoError(t, err)
	assert.True(t, r.Count().IsAbsent())
}

func TestRule_OptionsIsDeepCopy(t *testing.T) {
	r := MustNew(Options{Freq: Monthly, ByMonthDay: []int{5, 10}})
	o := r.Options()
	o.ByMonthDay[0] = 99
	assert.Equal(t, []int{5, 10}, r.ByMonthDay())
}

func TestRule_Setters(t *testing.T) {
	r := MustNew(Options{Freq: Daily})

	require.NoError(t, r.SetDtstart(moment.NewDateTime(2024, 3, 1, 8, 0, 0, 0)))
	require.NoError(t, r.SetCount(5))
	require.NoError(t, r.SetFreq(Weekly))

	assert.Equal(t, Weekly, r.Freq())
	assert.Equal(t, 5, r.Count().OrElse(0))

	// A rebuild that would violate validation leaves the rule untouched.
	err := r.SetUntil(moment.NewDateTime(2024, 4, 1, 0, 0, 0, 0))
	require.Error(t, err)
	assert.True(t, IsKind(err, ErrInvalidRule))
	assert.Equal(t, 5, r.Count().OrElse(0))
}

func TestRule_CloneIsIndependent(t *testing.T) {
	r := MustNew(Options{Freq: Daily, Dtstart: mo.Some(moment.NewDate(2024, 1, 1))})
	c := r.Clone()
	require.NoError(t, c.SetFreq(Monthly))
	assert.Equal(t, Daily, r.Freq())
	assert.Equal(t, Monthly, c.Freq())
}

func TestParseWeekdayTerm(t *testing.T) {
	tests := []struct {
		in      string
		want    WeekdayTerm
		wantErr bool
	}{
		{in: "MO", want: On(moment.Monday)},
		{in: "su", want: On(moment.Sunday)},
		{in: "+1WE", want: Nth(1, moment.Wednesday)},
		{in: "-2FR", want: Nth(-2, moment.Friday)},
		{in: "53SA", want: Nth(53, moment.Saturday)},
		{in: "0TU", wantErr: true},
		{in: "54MO", wantErr: true},
		{in: "XX", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseWeekdayTerm(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestWeekdayTerm_String(t *testing.T) {
	assert.Equal(t, "MO", On(moment.Monday).String())
	assert.Equal(t, "2WE", Nth(2, moment.Wednesday).String())
	assert.Equal(t, "-1FR", Nth(-1, moment.Friday).String())
}
