package query

import (
	"context"
	"fmt"

	"github.com/roach88/learnlog/internal/criteria"
	"github.com/roach88/learnlog/internal/store"
)

// SessionReport is one session with its activity counts and the concepts
// learned during it.
type SessionReport struct {
	Session     store.Session   `json:"session"`
	Responses   int             `json:"responses"`
	CodeChanges int             `json:"code_changes"`
	Commands    int             `json:"commands"`
	Concepts    []store.Concept `json:"concepts"`
}

// SessionSummary reports on the session with id, or on the most recently
// started session when id is empty. A missing session, or an empty store,
// fails with store.ErrCodeNotFound.
func (e *Engine) SessionSummary(ctx context.Context, id string) (SessionReport, error) {
	var r SessionReport
	err := e.store.View(ctx, func(tx *store.Tx) error {
		sess, err := findSession(ctx, tx, id)
		if err != nil {
			return err
		}
		r.Session = sess

		bySession := criteria.Equals{Field: "session_id", Value: sess.ID}
		counts := []struct {
			table criteria.Table
			dst   *int
		}{
			{criteria.Responses, &r.Responses},
			{criteria.CodeChanges, &r.CodeChanges},
			{criteria.Commands, &r.Commands},
		}
		for _, c := range counts {
			if *c.dst, err = store.Count(ctx, tx, criteria.Query{Table: c.table, Filter: bySession}); err != nil {
				return err
			}
		}

		r.Concepts, err = store.Find[store.Concept](ctx, tx, criteria.Query{
			Filter: bySession,
			Order:  []criteria.Order{{Field: "created_at"}},
		})
		return err
	})
	if err != nil {
		return SessionReport{}, fmt.Errorf("session summary: %w", err)
	}
	return r, nil
}

func findSession(ctx context.Context, src store.Source, id string) (store.Session, error) {
	if id != "" {
		return store.Get[store.Session](ctx, src, id)
	}
	latest, err := store.Find[store.Session](ctx, src, criteria.Query{
		Order: []criteria.Order{{Field: "started_at", Desc: true}},
		Limit: 1,
	})
	if err != nil {
		return store.Session{}, err
	}
	if len(latest) == 0 {
		return store.Session{}, &store.Error{
			Code:    store.ErrCodeNotFound,
			Op:      "session summary",
			Message: "no sessions recorded",
		}
	}
	return latest[0], nil
}
