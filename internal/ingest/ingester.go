package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/roach88/learnlog/internal/store"
)

// Ingester persists inbound events.
//
// Each Ingest call is one write transaction: the event's row and any
// concepts extracted from LEARN markers commit together or not at all.
// Retried payloads are not deduplicated; every call appends new rows.
type Ingester struct {
	store   *store.Store
	decoder *Decoder
	ids     IDGenerator
	now     func() time.Time
	logger  *slog.Logger
	learn   bool
}

// Option configures an Ingester.
type Option func(*Ingester)

// WithIDGenerator sets the session id generator (default UUIDv7).
func WithIDGenerator(g IDGenerator) Option {
	return func(in *Ingester) { in.ids = g }
}

// WithClock sets the time source used for events without a timestamp.
func WithClock(now func() time.Time) Option {
	return func(in *Ingester) { in.now = now }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(in *Ingester) { in.logger = l }
}

// WithLearnMarkers turns "# LEARN:" extraction on or off (default on).
func WithLearnMarkers(enabled bool) Option {
	return func(in *Ingester) { in.learn = enabled }
}

// New creates an Ingester writing to s.
func New(s *store.Store, opts ...Option) (*Ingester, error) {
	dec, err := NewDecoder()
	if err != nil {
		return nil, err
	}
	in := &Ingester{
		store:   s,
		decoder: dec,
		ids:     UUIDv7Generator{},
		now:     time.Now,
		logger:  slog.Default(),
		learn:   true,
	}
	for _, opt := range opts {
		opt(in)
	}
	return in, nil
}

// Result describes what one Ingest call wrote.
type Result struct {
	Kind      Kind   `json:"kind"`
	SessionID string `json:"session_id"`
	// RowID is the id of the inserted row; zero for session events.
	RowID int64 `json:"row_id,omitempty"`
	// Concepts are the ids of concepts created from LEARN markers.
	Concepts []int64 `json:"concepts,omitempty"`
	// Clamped is set when a session_end time preceded the start and was
	// moved up to it.
	Clamped bool `json:"clamped,omitempty"`
}

// Ingest decodes and persists one payload.
//
// Errors: *MalformedEventError for undecodable payloads (nothing is
// written), store errors with ErrCodeNotFound or ErrCodeConstraint for
// references to unknown sessions. Failures are logged, never fatal.
func (in *Ingester) Ingest(ctx context.Context, payload []byte) (Result, error) {
	ev, err := in.decoder.Decode(payload)
	if err != nil {
		in.logger.Warn("dropping malformed event", "error", err)
		return Result{}, err
	}

	res, err := in.Apply(ctx, ev)
	if err != nil {
		in.logger.Warn("event not stored",
			"kind", ev.Kind(),
			"code", store.CodeOf(err),
			"error", err,
		)
		return Result{}, err
	}

	in.logger.Debug("event stored",
		"kind", res.Kind,
		"session", res.SessionID,
		"row", res.RowID,
		"concepts", len(res.Concepts),
	)
	return res, nil
}

// Apply persists an already decoded event in one transaction.
func (in *Ingester) Apply(ctx context.Context, ev Event) (Result, error) {
	at := ev.At()
	if at.IsZero() {
		at = in.now()
	}
	at = at.UTC()

	res := Result{Kind: ev.Kind()}
	err := in.store.Update(ctx, func(tx *store.Tx) error {
		switch e := ev.(type) {
		case SessionStart:
			id := e.SessionID
			if id == "" {
				id = in.ids.Generate()
			}
			res.SessionID = id
			return tx.CreateSession(ctx, store.Session{
				ID:          id,
				StartedAt:   at,
				Source:      e.Source,
				ProjectPath: e.ProjectPath,
			})

		case SessionEnd:
			res.SessionID = e.SessionID
			sess, err := tx.EndSession(ctx, e.SessionID, at, e.Summary)
			if err != nil {
				return err
			}
			if sess.EndedAt != nil && sess.EndedAt.After(at) {
				res.Clamped = true
				in.logger.Warn("session end before start; clamped",
					"session", e.SessionID,
					"ended_at", at,
					"started_at", sess.StartedAt,
				)
			}
			return nil

		case Response:
			res.SessionID = e.SessionID
			id, err := tx.Insert(ctx, store.Response{SessionID: e.SessionID, Text: e.Text, CreatedAt: at})
			if err != nil {
				return err
			}
			res.RowID = id
			return in.recordLearnNotes(ctx, tx, &res, e.Text, at)

		case CodeChange:
			res.SessionID = e.SessionID
			id, err := tx.Insert(ctx, store.CodeChange{
				SessionID: e.SessionID,
				FilePath:  e.FilePath,
				Diff:      e.Diff,
				OldCode:   e.OldCode,
				NewCode:   e.NewCode,
				CreatedAt: at,
			})
			if err != nil {
				return err
			}
			res.RowID = id
			return in.recordLearnNotes(ctx, tx, &res, e.NewCode, at)

		case Command:
			res.SessionID = e.SessionID
			id, err := tx.Insert(ctx, store.Command{
				SessionID:   e.SessionID,
				CommandLine: e.Command,
				ExitStatus:  e.ExitStatus,
				WorkingDir:  e.WorkingDir,
				CreatedAt:   at,
			})
			if err != nil {
				return err
			}
			res.RowID = id
			return nil

		default:
			return fmt.Errorf("unsupported event type %T", ev)
		}
	})
	if err != nil {
		return Result{}, err
	}
	return res, nil
}

func (in *Ingester) recordLearnNotes(ctx context.Context, tx *store.Tx, res *Result, text string, at time.Time) error {
	if !in.learn {
		return nil
	}
	for _, note := range ExtractLearnNotes(text) {
		id, err := tx.Insert(ctx, store.Concept{
			SessionID:   res.SessionID,
			Name:        note.Name,
			Explanation: note.Explanation,
			Tags:        []string{},
			Source:      store.SourceHook,
			CreatedAt:   at,
		})
		if err != nil {
			return fmt.Errorf("record learn note: %w", err)
		}
		res.Concepts = append(res.Concepts, id)
	}
	return nil
}
