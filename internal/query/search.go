package query

import (
	"context"
	"fmt"
	"strings"

	"github.com/roach88/learnlog/internal/criteria"
	"github.com/roach88/learnlog/internal/learning"
	"github.com/roach88/learnlog/internal/store"
)

// searchFields are the concept columns covered by the full-text index.
var searchFields = []string{"name", "explanation", "code_example", "tags"}

// Search finds concepts containing every whitespace separated term of text.
//
// Results are ordered by FTS5 relevance (bm25), ties by newest first. Terms
// shorter than criteria.MinTermLength cannot use the trigram index, so such
// queries fall back to a case-insensitive substring scan ordered newest
// first. No match and blank text both return an empty slice.
func (e *Engine) Search(ctx context.Context, text string, limit int) ([]store.Concept, error) {
	limit, err := limitOrDefault(limit)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	q, ok := searchQuery(text)
	if !ok {
		return []store.Concept{}, nil
	}
	q.Limit = limit

	found, err := store.Find[store.Concept](ctx, e.store, q)
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", text, err)
	}
	e.logger.Debug("search", "text", text, "hits", len(found))
	return found, nil
}

// searchQuery builds the concept query for text. ok is false for blank text.
func searchQuery(text string) (criteria.Query, bool) {
	words := strings.Fields(text)
	if len(words) == 0 {
		return criteria.Query{}, false
	}

	if match, ok := criteria.MatchTerms(text); ok {
		return criteria.Query{
			Table:  criteria.Concepts,
			Filter: criteria.Match{Text: match},
			Order: []criteria.Order{
				{Field: criteria.Rank},
				{Field: "created_at", Desc: true},
			},
		}, true
	}

	preds := make([]criteria.Predicate, 0, len(words))
	for _, w := range words {
		preds = append(preds, criteria.Contains{Fields: searchFields, Text: w})
	}
	return criteria.Query{
		Table:  criteria.Concepts,
		Filter: criteria.AllOf(preds...),
		Order:  []criteria.Order{{Field: "created_at", Desc: true}},
	}, true
}

// ConceptsByTag returns concepts carrying tag, newest first. The tag is
// normalized the same way tags are on write.
func (e *Engine) ConceptsByTag(ctx context.Context, tag string, limit int) ([]store.Concept, error) {
	limit, err := limitOrDefault(limit)
	if err != nil {
		return nil, fmt.Errorf("concepts by tag: %w", err)
	}
	tag = learning.NormalizeTag(tag)
	if tag == "" {
		return []store.Concept{}, nil
	}

	found, err := store.Find[store.Concept](ctx, e.store, criteria.Query{
		Filter: criteria.HasTag{Tag: tag},
		Order:  []criteria.Order{{Field: "created_at", Desc: true}},
		Limit:  limit,
	})
	if err != nil {
		return nil, fmt.Errorf("concepts by tag %q: %w", tag, err)
	}
	return found, nil
}

// RecentConcepts returns the newest concepts.
func (e *Engine) RecentConcepts(ctx context.Context, limit int) ([]store.Concept, error) {
	limit, err := limitOrDefault(limit)
	if err != nil {
		return nil, fmt.Errorf("recent concepts: %w", err)
	}
	found, err := store.Find[store.Concept](ctx, e.store, criteria.Query{
		Order: []criteria.Order{{Field: "created_at", Desc: true}, {Field: "id", Desc: true}},
		Limit: limit,
	})
	if err != nil {
		return nil, fmt.Errorf("recent concepts: %w", err)
	}
	return found, nil
}
