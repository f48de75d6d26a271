package learning

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/roach88/learnlog/internal/criteria"
	"github.com/roach88/learnlog/internal/store"
)

// ErrInvalidInput is wrapped by errors for arguments the log rejects before
// touching the store, such as an empty name or an unknown severity.
var ErrInvalidInput = errors.New("invalid input")

// Log is the write API for structured learning content.
type Log struct {
	store  *store.Store
	now    func() time.Time
	source string
	logger *slog.Logger
}

// Option configures a Log.
type Option func(*Log)

// WithClock sets the time source for created and reviewed timestamps.
func WithClock(now func() time.Time) Option {
	return func(l *Log) { l.now = now }
}

// WithSource sets the source recorded on concepts (default "tool").
func WithSource(source string) Option {
	return func(l *Log) { l.source = source }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Log) { l.logger = logger }
}

// New creates a Log writing to s.
func New(s *store.Store, opts ...Option) *Log {
	l := &Log{
		store:  s,
		now:    time.Now,
		source: store.SourceTool,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// LogConcept records a concept with review count 0 and no review time.
// Names need not be unique; logging a name again adds a new row.
func (l *Log) LogConcept(ctx context.Context, name, explanation, codeExample string, tags []string) (int64, error) {
	return l.LogConceptInSession(ctx, "", name, explanation, codeExample, tags)
}

// LogConceptInSession is LogConcept for a concept taught during a captured
// session. sessionID must exist.
func (l *Log) LogConceptInSession(ctx context.Context, sessionID, name, explanation, codeExample string, tags []string) (int64, error) {
	name, explanation = strings.TrimSpace(name), strings.TrimSpace(explanation)
	if err := required("name", name); err != nil {
		return 0, fmt.Errorf("log concept: %w", err)
	}
	if err := required("explanation", explanation); err != nil {
		return 0, fmt.Errorf("log concept: %w", err)
	}

	id, err := l.store.Insert(ctx, store.Concept{
		SessionID:   sessionID,
		Name:        name,
		Explanation: explanation,
		CodeExample: codeExample,
		Tags:        NormalizeTags(tags),
		Source:      l.source,
		CreatedAt:   l.now(),
	})
	if err != nil {
		return 0, fmt.Errorf("log concept: %w", err)
	}

	l.logger.Debug("concept logged", "id", id, "name", name)
	return id, nil
}

// LogPattern records a pattern. Patterns are insert-only.
func (l *Log) LogPattern(ctx context.Context, name, description string, tags []string) (int64, error) {
	name, description = strings.TrimSpace(name), strings.TrimSpace(description)
	if err := required("name", name); err != nil {
		return 0, fmt.Errorf("log pattern: %w", err)
	}
	if err := required("description", description); err != nil {
		return 0, fmt.Errorf("log pattern: %w", err)
	}

	id, err := l.store.Insert(ctx, store.Pattern{
		Name:        name,
		Description: description,
		Tags:        NormalizeTags(tags),
		CreatedAt:   l.now(),
	})
	if err != nil {
		return 0, fmt.Errorf("log pattern: %w", err)
	}

	l.logger.Debug("pattern logged", "id", id, "name", name)
	return id, nil
}

// GotchaOption configures LogGotcha.
type GotchaOption func(*gotchaOptions)

type gotchaOptions struct {
	severity    string
	codeExample string
	conceptName string
}

// WithSeverity sets the severity: danger, warning (default) or info.
// An empty severity keeps the default.
func WithSeverity(severity string) GotchaOption {
	return func(o *gotchaOptions) {
		if s := strings.ToLower(strings.TrimSpace(severity)); s != "" {
			o.severity = s
		}
	}
}

// WithCodeExample attaches a code example.
func WithCodeExample(code string) GotchaOption {
	return func(o *gotchaOptions) { o.codeExample = code }
}

// WithConcept links the gotcha to the most recent concept with this name.
func WithConcept(name string) GotchaOption {
	return func(o *gotchaOptions) { o.conceptName = strings.TrimSpace(name) }
}

// GotchaResult is the stored gotcha plus how its concept link resolved.
type GotchaResult struct {
	store.Gotcha

	// UnresolvedConcept is the requested concept name when no concept had
	// it; the gotcha is then stored unlinked.
	UnresolvedConcept string `json:"unresolved_concept,omitempty"`
}

// LogGotcha records a pitfall. With WithConcept, the lookup and the insert
// run in one transaction.
func (l *Log) LogGotcha(ctx context.Context, description string, tags []string, opts ...GotchaOption) (GotchaResult, error) {
	o := gotchaOptions{severity: store.SeverityWarning}
	for _, opt := range opts {
		opt(&o)
	}

	description = strings.TrimSpace(description)
	if err := required("description", description); err != nil {
		return GotchaResult{}, fmt.Errorf("log gotcha: %w", err)
	}
	if !validSeverity(o.severity) {
		return GotchaResult{}, fmt.Errorf("log gotcha: %w: severity %q is not danger, warning or info", ErrInvalidInput, o.severity)
	}

	res := GotchaResult{Gotcha: store.Gotcha{
		Description: description,
		CodeExample: o.codeExample,
		Severity:    o.severity,
		Tags:        NormalizeTags(tags),
		CreatedAt:   l.now(),
	}}

	err := l.store.Update(ctx, func(tx *store.Tx) error {
		if o.conceptName != "" {
			c, found, err := latestConcept(ctx, tx, o.conceptName)
			if err != nil {
				return err
			}
			if found {
				res.ConceptID = &c.ID
			} else {
				res.UnresolvedConcept = o.conceptName
			}
		}
		id, err := tx.Insert(ctx, res.Gotcha)
		if err != nil {
			return err
		}
		res.ID = id
		return nil
	})
	if err != nil {
		return GotchaResult{}, fmt.Errorf("log gotcha: %w", err)
	}

	if res.UnresolvedConcept != "" {
		l.logger.Warn("gotcha concept not found; stored unlinked", "id", res.ID, "concept", res.UnresolvedConcept)
	}
	return res, nil
}

// MarkReviewed records a review of the concept at the current time.
// An unknown id fails with store.ErrCodeNotFound.
func (l *Log) MarkReviewed(ctx context.Context, conceptID int64) (store.Concept, error) {
	c, err := l.store.UpdateReviewMetadata(ctx, conceptID, l.now())
	if err != nil {
		return store.Concept{}, fmt.Errorf("mark reviewed: %w", err)
	}
	l.logger.Debug("concept reviewed", "id", c.ID, "count", c.ReviewCount)
	return c, nil
}

// MarkReviewedByName marks the most recent concept with this name.
func (l *Log) MarkReviewedByName(ctx context.Context, name string) (store.Concept, error) {
	name = strings.TrimSpace(name)
	if err := required("name", name); err != nil {
		return store.Concept{}, fmt.Errorf("mark reviewed: %w", err)
	}

	var reviewed store.Concept
	err := l.store.Update(ctx, func(tx *store.Tx) error {
		c, found, err := latestConcept(ctx, tx, name)
		if err != nil {
			return err
		}
		if !found {
			return &store.Error{
				Code:    store.ErrCodeNotFound,
				Op:      "mark reviewed",
				Message: fmt.Sprintf("concept %q not found", name),
			}
		}
		reviewed, err = tx.UpdateReviewMetadata(ctx, c.ID, l.now())
		return err
	})
	if err != nil {
		return store.Concept{}, fmt.Errorf("mark reviewed: %w", err)
	}
	return reviewed, nil
}

// latestConcept finds the most recently created concept with the name.
func latestConcept(ctx context.Context, src store.Source, name string) (store.Concept, bool, error) {
	found, err := store.Find[store.Concept](ctx, src, criteria.Query{
		Filter: criteria.Equals{Field: "name", Value: name},
		Order:  []criteria.Order{{Field: "created_at", Desc: true}, {Field: "id", Desc: true}},
		Limit:  1,
	})
	if err != nil {
		return store.Concept{}, false, err
	}
	if len(found) == 0 {
		return store.Concept{}, false, nil
	}
	return found[0], true, nil
}

func required(field, value string) error {
	if value == "" {
		return fmt.Errorf("%w: %s is required", ErrInvalidInput, field)
	}
	return nil
}

func validSeverity(s string) bool {
	switch s {
	case store.SeverityDanger, store.SeverityWarning, store.SeverityInfo:
		return true
	}
	return false
}
