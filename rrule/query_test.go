package rrule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cyp0633/librrule/moment"
)

// tenDays is ten daily occurrences at 09:00 from 1997-09-02.
func tenDays(t *testing.T) *Rule {
	t.Helper()
	r, err := Parse("DTSTART:19970902T090000\nRRULE:FREQ=DAILY;COUNT=10")
	require.NoError(t, err)
	return r
}

func TestBetween(t *testing.T) {
	r := tenDays(t)

	tests := []struct {
		name      string
		start     moment.Moment
		end       moment.Moment
		inclusive bool
		want      []moment.Moment
	}{
		{
			name:      "inclusive keeps both bounds",
			start:     dt(1997, 9, 4, 9, 0, 0),
			end:       dt(1997, 9, 7, 9, 0, 0),
			inclusive: true,
			want: []moment.Moment{
				dt(1997, 9, 4, 9, 0, 0), dt(1997, 9, 5, 9, 0, 0),
				dt(1997, 9, 6, 9, 0, 0), dt(1997, 9, 7, 9, 0, 0),
			},
		},
		{
			name:      "exclusive drops both bounds",
			start:     dt(1997, 9, 4, 9, 0, 0),
			end:       dt(1997, 9, 7, 9, 0, 0),
			inclusive: false,
			want: []moment.Moment{
				dt(1997, 9, 5, 9, 0, 0), dt(1997, 9, 6, 9, 0, 0),
			},
		},
		{
			name:      "range past the sequence",
			start:     dt(1997, 9, 20, 0, 0, 0),
			end:       dt(1997, 9, 30, 0, 0, 0),
			inclusive: true,
			want:      nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.Between(tt.start, tt.end, tt.inclusive)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBefore(t *testing.T) {
	r := tenDays(t)
	target := dt(1997, 9, 5, 9, 0, 0)

	got, err := r.Before(target, false, 0)
	require.NoError(t, err)
	assert.Equal(t, []moment.Moment{
		dt(1997, 9, 2, 9, 0, 0), dt(1997, 9, 3, 9, 0, 0), dt(1997, 9, 4, 9, 0, 0),
	}, got)

	got, err = r.Before(target, true, 0)
	require.NoError(t, err)
	require.Len(t, got, 4)
	assert.Equal(t, target, got[3])

	got, err = r.Before(target, false, 2)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestAfter(t *testing.T) {
	r := tenDays(t)
	target := dt(1997, 9, 9, 9, 0, 0)

	got, err := r.After(target, false, 0)
	require.NoError(t, err)
	assert.Equal(t, []moment.Moment{
		dt(1997, 9, 10, 9, 0, 0), dt(1997, 9, 11, 9, 0, 0),
	}, got)

	got, err = r.After(target, true, 1)
	require.NoError(t, err)
	assert.Equal(t, []moment.Moment{target}, got)
}

func TestAfter_SeeksFarTargets(t *testing.T) {
	r, err := Parse("DTSTART:20240101T090000\nRRULE:FREQ=DAILY")
	require.NoError(t, err)

	got, err := r.After(dt(2030, 1, 1, 0, 0, 0), false, 2)
	require.NoError(t, err)
	assert.Equal(t, []moment.Moment{
		dt(2030, 1, 1, 9, 0, 0), dt(2030, 1, 2, 9, 0, 0),
	}, got)
}

func TestNextOccurrence(t *testing.T) {
	r := tenDays(t)

	next, err := r.Next(dt(1997, 9, 5, 10, 0, 0), false)
	require.NoError(t, err)
	assert.Equal(t, dt(1997, 9, 6, 9, 0, 0), next.OrEmpty())

	none, err := r.Next(dt(1997, 9, 30, 0, 0, 0), false)
	require.NoError(t, err)
	assert.True(t, none.IsAbsent())
}

func TestPrevious(t *testing.T) {
	r := tenDays(t)
	target := dt(1997, 9, 5, 9, 0, 0)

	prev, err := r.Previous(target, false)
	require.NoError(t, err)
	assert.Equal(t, dt(1997, 9, 4, 9, 0, 0), prev.OrEmpty())

	prev, err = r.Previous(target, true)
	require.NoError(t, err)
	assert.Equal(t, target, prev.OrEmpty())

	none, err := r.Previous(dt(1997, 9, 1, 0, 0, 0), false)
	require.NoError(t, err)
	assert.True(t, none.IsAbsent())
}

func TestQueries_MissingDtstart(t *testing.T) {
	r := MustNew(Options{Freq: Daily})

	_, err := r.All(1)
	assert.True(t, IsKind(err, ErrMissingDtstart))
	_, err = r.Between(dt(2024, 1, 1, 0, 0, 0), dt(2024, 2, 1, 0, 0, 0), true)
	assert.True(t, IsKind(err, ErrMissingDtstart))
}
