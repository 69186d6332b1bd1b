package rrule

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpansionCache_BasicOperations(t *testing.T) {
	cache := NewExpansionCache(CacheConfig{
		TTL:             5 * time.Minute,
		MaxEntries:      100,
		CleanupInterval: time.Minute,
	})
	defer cache.Close()

	r := tenDays(t)
	start := dt(1997, 9, 2, 0, 0, 0)
	end := dt(1997, 9, 30, 0, 0, 0)

	first, err := cache.Between(r, start, end, true)
	require.NoError(t, err)
	require.Len(t, first, 10)
	assert.Equal(t, 1, cache.Stats().Entries)

	second, err := cache.Between(r, start, end, true)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, cache.Stats().Entries)

	// A different boundary policy is a different entry.
	_, err = cache.Between(r, start, end, false)
	require.NoError(t, err)
	assert.Equal(t, 2, cache.Stats().Entries)
}

func TestExpansionCache_EquivalentRulesShareEntries(t *testing.T) {
	cache := NewExpansionCache(CacheConfig{})
	defer cache.Close()

	a, err := Parse("DTSTART:19970902T090000\nRRULE:FREQ=DAILY;COUNT=3")
	require.NoError(t, err)
	// Same rule assembled from options instead of text.
	b := MustNew(a.Options())

	start := dt(1997, 9, 1, 0, 0, 0)
	end := dt(1997, 9, 30, 0, 0, 0)

	_, err = cache.Between(a, start, end, true)
	require.NoError(t, err)
	_, err = cache.Between(b, start, end, true)
	require.NoError(t, err)
	assert.Equal(t, 1, cache.Stats().Entries)
}

func TestExpansionCache_Expiry(t *testing.T) {
	cache := NewExpansionCache(CacheConfig{
		TTL:             10 * time.Millisecond,
		MaxEntries:      10,
		CleanupInterval: time.Hour,
	})
	defer cache.Close()

	r := tenDays(t)
	start := dt(1997, 9, 1, 0, 0, 0)
	end := dt(1997, 9, 30, 0, 0, 0)

	_, err := cache.Between(r, start, end, true)
	require.NoError(t, err)

	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 1, cache.Stats().Expired)

	// A lookup after expiry recomputes and refreshes the entry.
	again, err := cache.Between(r, start, end, true)
	require.NoError(t, err)
	assert.Len(t, again, 10)
	assert.Equal(t, 0, cache.Stats().Expired)
}

func TestExpansionCache_EvictsOverLimit(t *testing.T) {
	cache := NewExpansionCache(CacheConfig{
		TTL:             time.Hour,
		MaxEntries:      5,
		CleanupInterval: time.Hour,
	})
	defer cache.Close()

	start := dt(1997, 9, 1, 0, 0, 0)
	for i := 0; i < 10; i++ {
		r, err := Parse(fmt.Sprintf("DTSTART:19970902T090000\nRRULE:FREQ=DAILY;COUNT=%d", i+1))
		require.NoError(t, err)
		_, err = cache.Between(r, start, dt(1997, 9, 30, 0, 0, 0), true)
		require.NoError(t, err)
	}
	assert.LessOrEqual(t, cache.Stats().Entries, 5)
}

func TestExpansionCache_ConcurrentAccess(t *testing.T) {
	cache := NewExpansionCache(CacheConfig{})
	defer cache.Close()

	r := tenDays(t)
	start := dt(1997, 9, 1, 0, 0, 0)
	end := dt(1997, 9, 30, 0, 0, 0)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				got, err := cache.Between(r, start, end, true)
				assert.NoError(t, err)
				assert.Len(t, got, 10)
			}
		}()
	}
	wg.Wait()
}

func TestExpansionCache_ErrorsNotCached(t *testing.T) {
	cache := NewExpansionCache(CacheConfig{})
	defer cache.Close()

	r := MustNew(Options{Freq: Daily})
	_, err := cache.Between(r, dt(2024, 1, 1, 0, 0, 0), dt(2024, 2, 1, 0, 0, 0), true)
	require.Error(t, err)
	assert.Equal(t, 0, cache.Stats().Entries)
}
