package query

import (
	"context"
	"fmt"
	"time"

	"github.com/roach88/learnlog/internal/criteria"
	"github.com/roach88/learnlog/internal/store"
)

// topTagLimit is how many tags Stats reports.
const topTagLimit = 10

// Stats summarizes the store.
type Stats struct {
	Tables           []store.TableSummary `json:"tables"`
	ReviewedConcepts int                  `json:"reviewed_concepts"`
	PendingConcepts  int                  `json:"pending_concepts"`
	TopTags          []store.TagCount     `json:"top_tags"`
}

// Count returns the row count of table, or 0 if it is not summarized.
func (s Stats) Count(table criteria.Table) int {
	for _, ts := range s.Tables {
		if ts.Table == table {
			return ts.Count
		}
	}
	return 0
}

// Latest returns the newest timestamp of table, or nil when it is empty.
func (s Stats) Latest(table criteria.Table) *time.Time {
	for _, ts := range s.Tables {
		if ts.Table == table {
			return ts.Latest
		}
	}
	return nil
}

// Stats returns per-table counts and newest timestamps, how many concepts
// have been reviewed, and the most used concept tags.
func (e *Engine) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	err := e.store.View(ctx, func(tx *store.Tx) error {
		var err error
		if st.Tables, err = store.Summarize(ctx, tx); err != nil {
			return err
		}
		st.PendingConcepts, err = store.Count(ctx, tx, criteria.Query{
			Table:  criteria.Concepts,
			Filter: criteria.IsNull{Field: "last_reviewed_at"},
		})
		if err != nil {
			return err
		}
		st.ReviewedConcepts = st.Count(criteria.Concepts) - st.PendingConcepts

		st.TopTags, err = store.TagCounts(ctx, tx, criteria.Concepts, topTagLimit)
		return err
	})
	if err != nil {
		return Stats{}, fmt.Errorf("stats: %w", err)
	}
	return st, nil
}
