package query

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/roach88/learnlog/internal/criteria"
	"github.com/roach88/learnlog/internal/store"
)

// Bundle is every row created inside an export window, grouped by kind and
// ordered oldest first. It carries no formatting; see package export.
type Bundle struct {
	Since time.Time `json:"since"`
	Until time.Time `json:"until"`
	Days  int       `json:"days"`

	Sessions    []store.Session    `json:"sessions"`
	Responses   []store.Response   `json:"responses"`
	CodeChanges []store.CodeChange `json:"code_changes"`
	Commands    []store.Command    `json:"commands"`
	Concepts    []store.Concept    `json:"concepts"`
	Patterns    []store.Pattern    `json:"patterns"`
	Gotchas     []store.Gotcha     `json:"gotchas"`

	// ConceptNames maps the concept ids referenced by Gotchas to names,
	// including concepts created before the window.
	ConceptNames map[int64]string `json:"concept_names"`
}

// Empty reports whether the window holds no learning records.
func (b Bundle) Empty() bool {
	return len(b.Concepts) == 0 && len(b.Patterns) == 0 && len(b.Gotchas) == 0
}

// ExportRange gathers every row created in the last sinceDays days. Sessions
// are selected by start time. All kinds come from one snapshot.
func (e *Engine) ExportRange(ctx context.Context, sinceDays int) (Bundle, error) {
	if sinceDays < 1 {
		return Bundle{}, fmt.Errorf("export: %w", errors.Join(ErrInvalidArgument, fmt.Errorf("days must be at least 1, got %d", sinceDays)))
	}

	until := e.now().UTC()
	b := Bundle{
		Since:        until.Add(-time.Duration(sinceDays) * 24 * time.Hour),
		Until:        until,
		Days:         sinceDays,
		ConceptNames: map[int64]string{},
	}

	err := e.store.View(ctx, func(tx *store.Tx) error {
		var err error
		if b.Sessions, err = window[store.Session](ctx, tx, b.Since); err != nil {
			return err
		}
		if b.Responses, err = window[store.Response](ctx, tx, b.Since); err != nil {
			return err
		}
		if b.CodeChanges, err = window[store.CodeChange](ctx, tx, b.Since); err != nil {
			return err
		}
		if b.Commands, err = window[store.Command](ctx, tx, b.Since); err != nil {
			return err
		}
		if b.Concepts, err = window[store.Concept](ctx, tx, b.Since); err != nil {
			return err
		}
		if b.Patterns, err = window[store.Pattern](ctx, tx, b.Since); err != nil {
			return err
		}
		if b.Gotchas, err = window[store.Gotcha](ctx, tx, b.Since); err != nil {
			return err
		}
		return b.resolveConceptNames(ctx, tx)
	})
	if err != nil {
		return Bundle{}, fmt.Errorf("export: %w", err)
	}

	e.logger.Debug("export range",
		"days", sinceDays,
		"concepts", len(b.Concepts),
		"patterns", len(b.Patterns),
		"gotchas", len(b.Gotchas))
	return b, nil
}

// window selects rows of T's table whose time column is at or after since.
func window[T store.Record](ctx context.Context, src store.Source, since time.Time) ([]T, error) {
	var zero T
	col := zero.Table().TimeColumn()
	return store.Find[T](ctx, src, criteria.Query{
		Filter: criteria.Since{Field: col, Time: since},
		Order:  []criteria.Order{{Field: col}},
	})
}

func (b *Bundle) resolveConceptNames(ctx context.Context, src store.Source) error {
	for _, c := range b.Concepts {
		b.ConceptNames[c.ID] = c.Name
	}
	for _, g := range b.Gotchas {
		if g.ConceptID == nil {
			continue
		}
		if _, ok := b.ConceptNames[*g.ConceptID]; ok {
			continue
		}
		c, err := store.Get[store.Concept](ctx, src, *g.ConceptID)
		if err != nil {
			return err
		}
		b.ConceptNames[c.ID] = c.Name
	}
	return nil
}
