package query

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/roach88/learnlog/internal/criteria"
	"github.com/roach88/learnlog/internal/store"
)

// DueForReview returns concepts never reviewed or last reviewed before
// now - staleness. Never-reviewed concepts come first, then oldest review
// first, ties by oldest created.
//
// staleness 0 means DefaultStaleness; limit 0 means DefaultLimit.
func (e *Engine) DueForReview(ctx context.Context, staleness time.Duration, limit int) ([]store.Concept, error) {
	if staleness < 0 {
		return nil, fmt.Errorf("due for review: %w", errors.Join(ErrInvalidArgument, errors.New("staleness must not be negative")))
	}
	if staleness == 0 {
		staleness = DefaultStaleness
	}
	limit, err := limitOrDefault(limit)
	if err != nil {
		return nil, fmt.Errorf("due for review: %w", err)
	}

	cutoff := e.now().Add(-staleness)
	found, err := store.Find[store.Concept](ctx, e.store, criteria.Query{
		Filter: criteria.Or{Predicates: []criteria.Predicate{
			criteria.IsNull{Field: "last_reviewed_at"},
			criteria.Before{Field: "last_reviewed_at", Time: cutoff},
		}},
		Order: []criteria.Order{
			{Field: "last_reviewed_at", NullsFirst: true},
			{Field: "created_at"},
		},
		Limit: limit,
	})
	if err != nil {
		return nil, fmt.Errorf("due for review: %w", err)
	}
	return found, nil
}
