package query

import (
	"errors"
	"log/slog"
	"time"

	"github.com/roach88/learnlog/internal/store"
)

const (
	// DefaultStaleness is how long a reviewed concept stays fresh.
	DefaultStaleness = 72 * time.Hour

	// DefaultLimit caps search and review results when the caller passes 0.
	DefaultLimit = 20
)

// ErrInvalidArgument is returned for arguments no query can satisfy, such
// as a negative window or limit.
var ErrInvalidArgument = errors.New("invalid argument")

// Engine answers read queries against a store.
type Engine struct {
	store  *store.Store
	now    func() time.Time
	logger *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock sets the time source used for review and export windows.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// New creates an Engine over s.
func New(s *store.Store, opts ...Option) *Engine {
	e := &Engine{
		store:  s,
		now:    time.Now,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// limitOrDefault maps 0 to DefaultLimit and rejects negative limits.
func limitOrDefault(limit int) (int, error) {
	switch {
	case limit < 0:
		return 0, errors.Join(ErrInvalidArgument, errors.New("limit must not be negative"))
	case limit == 0:
		return DefaultLimit, nil
	default:
		return limit, nil
	}
}
