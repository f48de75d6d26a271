package query

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/roach88/learnlog/internal/criteria"
	"github.com/roach88/learnlog/internal/learning"
	"github.com/roach88/learnlog/internal/store"
)

// TestStatsDuringLogging logs 100 concepts through one handle while
// another handle polls Stats, as the CLI does beside a capturing hook.
func TestStatsDuringLogging(t *testing.T) {
	path := filepath.Join(t.TempDir(), "learnings.db")
	ctx := context.Background()

	writerStore, err := store.Open(path)
	require.NoError(t, err)
	defer writerStore.Close()
	readerStore, err := store.Open(path)
	require.NoError(t, err)
	defer readerStore.Close()

	log := learning.New(writerStore)
	engine := New(readerStore)

	const total = 100
	done := make(chan struct{})

	var g errgroup.Group
	g.Go(func() error {
		defer close(done)
		for i := 0; i < total; i++ {
			if _, err := log.LogConcept(ctx, fmt.Sprintf("concept %d", i), "logged concurrently", "", []string{"load"}); err != nil {
				return fmt.Errorf("log concept %d: %w", i, err)
			}
		}
		return nil
	})

	polls := 0
	g.Go(func() error {
		last := 0
		for {
			st, err := engine.Stats(ctx)
			if err != nil {
				return fmt.Errorf("stats after %d polls: %w", polls, err)
			}
			polls++
			n := st.Count(criteria.Concepts)
			if n < last {
				return fmt.Errorf("concept count went backwards: %d -> %d", last, n)
			}
			last = n

			select {
			case <-done:
				return nil
			default:
			}
		}
	})

	require.NoError(t, g.Wait())
	assert.Positive(t, polls)

	st, err := engine.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, total, st.Count(criteria.Concepts))
	assert.Equal(t, total, st.PendingConcepts)
}
