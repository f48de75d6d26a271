package learning

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/learnlog/internal/store"
	"github.com/roach88/learnlog/internal/testutil"
)

var t0 = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func newTestLog(t *testing.T) (*Log, *store.Store, *testutil.DeterministicClock) {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	clock := testutil.NewDeterministicClock(t0, time.Minute)
	return New(s, WithClock(clock.Now)), s, clock
}

func TestLogConcept(t *testing.T) {
	l, s, _ := newTestLog(t)
	ctx := context.Background()

	id, err := l.LogConcept(ctx, " Interfaces ", "implicit satisfaction", "var _ io.Reader = (*T)(nil)", []string{"Python", "python", " SQL "})
	require.NoError(t, err)

	c, err := store.Get[store.Concept](ctx, s, id)
	require.NoError(t, err)
	assert.Equal(t, "Interfaces", c.Name)
	assert.Equal(t, []string{"python", "sql"}, c.Tags)
	assert.Equal(t, 0, c.ReviewCount)
	assert.Nil(t, c.LastReviewedAt)
	assert.Equal(t, store.SourceTool, c.Source)
	assert.True(t, c.CreatedAt.Equal(t0))
}

func TestLogConcept_NamesAreNotUnique(t *testing.T) {
	l, _, _ := newTestLog(t)
	ctx := context.Background()

	a, err := l.LogConcept(ctx, "goroutines", "first lesson", "", nil)
	require.NoError(t, err)
	b, err := l.LogConcept(ctx, "goroutines", "retaught later", "", nil)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestLogConcept_RequiresNameAndExplanation(t *testing.T) {
	l, _, _ := newTestLog(t)
	ctx := context.Background()

	_, err := l.LogConcept(ctx, "  ", "x", "", nil)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = l.LogConcept(ctx, "x", "", "", nil)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestLogConceptInSession_UnknownSession(t *testing.T) {
	l, _, _ := newTestLog(t)

	_, err := l.LogConceptInSession(context.Background(), "ghost", "x", "y", "", nil)
	assert.True(t, store.IsConstraint(err), "got %v", err)
}

func TestLogPattern(t *testing.T) {
	l, s, _ := newTestLog(t)
	ctx := context.Background()

	id, err := l.LogPattern(ctx, "functional options", "variadic Option funcs", []string{"Go", "API"})
	require.NoError(t, err)

	p, err := store.Get[store.Pattern](ctx, s, id)
	require.NoError(t, err)
	assert.Equal(t, []string{"api", "go"}, p.Tags)

	_, err = l.LogPattern(ctx, "x", " ", nil)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestLogGotcha_Defaults(t *testing.T) {
	l, _, _ := newTestLog(t)

	res, err := l.LogGotcha(context.Background(), "nil map writes panic", []string{"Maps"})
	require.NoError(t, err)
	assert.NotZero(t, res.ID)
	assert.Equal(t, store.SeverityWarning, res.Severity)
	assert.Nil(t, res.ConceptID)
	assert.Empty(t, res.UnresolvedConcept)
	assert.Equal(t, []string{"maps"}, res.Tags)
}

func TestLogGotcha_LinksLatestConcept(t *testing.T) {
	l, s, _ := newTestLog(t)
	ctx := context.Background()

	_, err := l.LogConcept(ctx, "maps", "old", "", nil)
	require.NoError(t, err)
	latest, err := l.LogConcept(ctx, "maps", "new", "", nil)
	require.NoError(t, err)

	res, err := l.LogGotcha(ctx, "iteration order is random", nil,
		WithConcept("maps"), WithSeverity("DANGER"), WithCodeExample("for k := range m {}"))
	require.NoError(t, err)
	require.NotNil(t, res.ConceptID)
	assert.Equal(t, latest, *res.ConceptID)
	assert.Equal(t, store.SeverityDanger, res.Severity)

	g, err := store.Get[store.Gotcha](ctx, s, res.ID)
	require.NoError(t, err)
	assert.Equal(t, "for k := range m {}", g.CodeExample)
	require.NotNil(t, g.ConceptID)
	assert.Equal(t, latest, *g.ConceptID)
}

func TestLogGotcha_UnknownConceptIsStoredUnlinked(t *testing.T) {
	l, s, _ := newTestLog(t)
	ctx := context.Background()

	res, err := l.LogGotcha(ctx, "shadowed err", nil, WithConcept("no such concept"))
	require.NoError(t, err)
	assert.Nil(t, res.ConceptID)
	assert.Equal(t, "no such concept", res.UnresolvedConcept)

	_, err = store.Get[store.Gotcha](ctx, s, res.ID)
	require.NoError(t, err)
}

func TestLogGotcha_InvalidSeverity(t *testing.T) {
	l, _, _ := newTestLog(t)

	_, err := l.LogGotcha(context.Background(), "x", nil, WithSeverity("fatal"))
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestMarkReviewed(t *testing.T) {
	l, _, clock := newTestLog(t)
	ctx := context.Background()

	id, err := l.LogConcept(ctx, "select", "waits on channels", "", nil)
	require.NoError(t, err)

	clock.Set(t0.Add(48 * time.Hour))
	c, err := l.MarkReviewed(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 1, c.ReviewCount)
	require.NotNil(t, c.LastReviewedAt)
	assert.True(t, c.LastReviewedAt.Equal(t0.Add(48*time.Hour)))

	c, err = l.MarkReviewed(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 2, c.ReviewCount)
}

func TestMarkReviewed_NotFound(t *testing.T) {
	l, _, _ := newTestLog(t)

	_, err := l.MarkReviewed(context.Background(), 404)
	assert.True(t, store.IsNotFound(err), "got %v", err)
}

func TestMarkReviewedByName(t *testing.T) {
	l, s, _ := newTestLog(t)
	ctx := context.Background()

	older, err := l.LogConcept(ctx, "generics", "type parameters", "", nil)
	require.NoError(t, err)
	newer, err := l.LogConcept(ctx, "generics", "constraints", "", nil)
	require.NoError(t, err)

	c, err := l.MarkReviewedByName(ctx, "generics")
	require.NoError(t, err)
	assert.Equal(t, newer, c.ID)

	untouched, err := store.Get[store.Concept](ctx, s, older)
	require.NoError(t, err)
	assert.Equal(t, 0, untouched.ReviewCount)

	_, err = l.MarkReviewedByName(ctx, "missing")
	assert.True(t, store.IsNotFound(err), "got %v", err)
}
