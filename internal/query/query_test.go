package query

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/roach88/learnlog/internal/learning"
	"github.com/roach88/learnlog/internal/store"
	"github.com/roach88/learnlog/internal/testutil"
)

var t0 = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

type fixture struct {
	store  *store.Store
	log    *learning.Log
	engine *Engine
	clock  *testutil.DeterministicClock
}

// newFixture opens a temp store; writes and reads share one clock that
// ticks a second per call.
func newFixture(t *testing.T) fixture {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	clock := testutil.NewDeterministicClock(t0, time.Second)
	return fixture{
		store:  s,
		log:    learning.New(s, learning.WithClock(clock.Now)),
		engine: New(s, WithClock(clock.Now)),
		clock:  clock,
	}
}

func (f fixture) concept(t *testing.T, name, explanation string, tags ...string) int64 {
	t.Helper()
	id, err := f.log.LogConcept(context.Background(), name, explanation, "", tags)
	require.NoError(t, err)
	return id
}

func (f fixture) review(t *testing.T, id int64, at time.Time) {
	t.Helper()
	f.clock.Set(at)
	_, err := f.log.MarkReviewed(context.Background(), id)
	require.NoError(t, err)
}

func names(concepts []store.Concept) []string {
	out := make([]string, 0, len(concepts))
	for _, c := range concepts {
		out = append(out, c.Name)
	}
	return out
}
