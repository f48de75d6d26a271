package query

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedSearch(t *testing.T, f fixture) {
	t.Helper()
	f.concept(t, "Goroutine leaks", "A blocked goroutine is never collected", "concurrency")
	f.concept(t, "Slices", "Slices share backing arrays", "slices")
}

func TestSearch(t *testing.T) {
	testCases := []struct {
		name string
		text string
		want []string
	}{
		{name: "substring hit", text: "goroutine", want: []string{"Goroutine leaks"}},
		{name: "case insensitive", text: "GOROUTINE", want: []string{"Goroutine leaks"}},
		{name: "inside word", text: "backing", want: []string{"Slices"}},
		{name: "all terms required", text: "blocked collected", want: []string{"Goroutine leaks"}},
		{name: "tags indexed", text: "concurrency", want: []string{"Goroutine leaks"}},
		{name: "miss", text: "kubernetes", want: []string{}},
		{name: "short term falls back to scan", text: "go", want: []string{"Goroutine leaks"}},
		{name: "short term miss", text: "zq", want: []string{}},
		{name: "blank", text: "   ", want: []string{}},
		{name: "query syntax is literal", text: `"arrays OR`, want: []string{}},
	}

	f := newFixture(t)
	seedSearch(t, f)

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			found, err := f.engine.Search(context.Background(), tc.text, 0)
			require.NoError(t, err)
			require.NotNil(t, found)
			assert.Equal(t, tc.want, names(found))
		})
	}
}

func TestSearch_TiesNewestFirst(t *testing.T) {
	f := newFixture(t)
	older := f.concept(t, "defer", "defer runs at function exit")
	newer := f.concept(t, "defer", "defer runs at function exit")

	found, err := f.engine.Search(context.Background(), "defer", 0)
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, newer, found[0].ID)
	assert.Equal(t, older, found[1].ID)
}

func TestSearch_Limit(t *testing.T) {
	f := newFixture(t)
	for i := 0; i < 5; i++ {
		f.concept(t, "channels", "unbuffered channels synchronize")
	}

	found, err := f.engine.Search(context.Background(), "channels", 2)
	require.NoError(t, err)
	assert.Len(t, found, 2)

	_, err = f.engine.Search(context.Background(), "channels", -1)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestConceptsByTag(t *testing.T) {
	f := newFixture(t)
	f.concept(t, "list comprehension", "builds lists", "Python")
	f.concept(t, "joins", "combine tables", "sql", "python")
	f.concept(t, "interfaces", "implicit", "go")

	found, err := f.engine.ConceptsByTag(context.Background(), " PYTHON ", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"joins", "list comprehension"}, names(found))

	found, err = f.engine.ConceptsByTag(context.Background(), "pyth", 0)
	require.NoError(t, err)
	assert.Empty(t, found, "tag match must be exact")
}

func TestRecentConcepts(t *testing.T) {
	f := newFixture(t)
	f.concept(t, "first", "x")
	f.concept(t, "second", "x")
	f.concept(t, "third", "x")

	found, err := f.engine.RecentConcepts(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"third", "second"}, names(found))
}

func TestSearch_EmbeddedQuotes(t *testing.T) {
	f := newFixture(t)
	f.concept(t, "Struct tags", `Go struct tags look like json:"name"`)
	f.concept(t, "Odd token", `The lexer emits a"bc for this input`)
	f.concept(t, "Unquoted", "json:name without quotes")

	testCases := []struct {
		name string
		text string
		want []string
	}{
		{name: "struct tag", text: `json:"name"`, want: []string{"Struct tags"}},
		{name: "quote inside term", text: `a"bc`, want: []string{"Odd token"}},
		{name: "quote with other terms", text: `tags json:"name"`, want: []string{"Struct tags"}},
		{name: "quote not in text", text: `lexer "emits"`, want: []string{}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			found, err := f.engine.Search(context.Background(), tc.text, 0)
			require.NoError(t, err)
			assert.Equal(t, tc.want, names(found))
		})
	}
}
