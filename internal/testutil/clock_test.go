package testutil

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var start = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func TestDeterministicClock_StepsAfterEachRead(t *testing.T) {
	clock := NewDeterministicClock(start, time.Second)

	assert.Equal(t, start, clock.Now())
	assert.Equal(t, start.Add(time.Second), clock.Now())
	assert.Equal(t, start.Add(2*time.Second), clock.Peek())
}

func TestDeterministicClock_ZeroStepIsFrozen(t *testing.T) {
	clock := NewDeterministicClock(start, 0)

	assert.Equal(t, start, clock.Now())
	assert.Equal(t, start, clock.Now())

	clock.Advance(72 * time.Hour)
	assert.Equal(t, start.Add(72*time.Hour), clock.Now())
}

func TestDeterministicClock_SetAndReset(t *testing.T) {
	clock := NewDeterministicClock(start, time.Minute)
	later := start.Add(24 * time.Hour)

	clock.Set(later)
	assert.Equal(t, later, clock.Peek())

	clock.Reset()
	assert.Equal(t, start, clock.Peek())
}

func TestDeterministicClock_NormalizesToUTC(t *testing.T) {
	zone := time.FixedZone("UTC+2", 2*60*60)
	clock := NewDeterministicClock(time.Date(2026, 3, 1, 11, 0, 0, 0, zone), 0)

	assert.Equal(t, time.UTC, clock.Now().Location())
	assert.True(t, start.Equal(clock.Now()))
}

func TestDeterministicClock_ConcurrentAccess(t *testing.T) {
	clock := NewDeterministicClock(start, time.Millisecond)

	const goroutines = 50
	seen := make(chan time.Time, goroutines)
	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			seen <- clock.Now()
		}()
	}
	wg.Wait()
	close(seen)

	unique := map[time.Time]bool{}
	for ts := range seen {
		unique[ts] = true
	}
	require.Len(t, unique, goroutines, "every read gets its own instant")
	assert.Equal(t, start.Add(goroutines*time.Millisecond), clock.Peek())
}
