package querysql

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/learnlog/internal/criteria"
)

func TestCompile_SimpleSelect(t *testing.T) {
	sql, params, err := Compile(criteria.Query{
		Table:  criteria.Patterns,
		Filter: criteria.Equals{Field: "name", Value: "table-driven tests"},
	})
	require.NoError(t, err)

	assert.Equal(t,
		"SELECT t.id, t.name, t.description, t.tags, t.created_at FROM patterns AS t"+
			" WHERE t.name = ? ORDER BY t.id ASC",
		sql)
	assert.NotContains(t, sql, "table-driven")
	assert.Equal(t, []any{"table-driven tests"}, params)
}

func TestCompile_OrderAlwaysEndsWithID(t *testing.T) {
	testCases := []struct {
		name  string
		order []criteria.Order
		want  string
	}{
		{name: "no order", want: " ORDER BY t.id ASC"},
		{
			name:  "time desc",
			order: []criteria.Order{{Field: "created_at", Desc: true}},
			want:  " ORDER BY t.created_at DESC, t.id ASC",
		},
		{
			name:  "explicit id is not repeated",
			order: []criteria.Order{{Field: "id", Desc: true}},
			want:  " ORDER BY t.id DESC",
		},
		{
			name: "nulls first",
			order: []criteria.Order{
				{Field: "last_reviewed_at", NullsFirst: true},
				{Field: "created_at"},
			},
			want: " ORDER BY t.last_reviewed_at ASC NULLS FIRST, t.created_at ASC, t.id ASC",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			sql, _, err := Compile(criteria.Query{Table: criteria.Concepts, Order: tc.order})
			require.NoError(t, err)
			assert.Contains(t, sql, tc.want)
		})
	}
}

func TestCompile_Limit(t *testing.T) {
	sql, params, err := Compile(criteria.Query{
		Table:  criteria.Concepts,
		Filter: criteria.HasTag{Tag: "go"},
		Limit:  20,
	})
	require.NoError(t, err)

	assert.Contains(t, sql, " ORDER BY t.id ASC LIMIT ?")
	assert.Equal(t, []any{`%"go"%`, 20}, params)
}

func TestCompile_TimeRange(t *testing.T) {
	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	to := from.Add(24 * time.Hour)

	sql, params, err := Compile(criteria.Query{
		Table: criteria.Sessions,
		Filter: criteria.AllOf(
			criteria.Since{Field: "started_at", Time: from},
			criteria.Before{Field: "started_at", Time: to},
		),
	})
	require.NoError(t, err)

	assert.Contains(t, sql, "WHERE (t.started_at >= ? AND t.started_at < ?)")
	assert.Equal(t, []any{"2026-01-01T00:00:00.000000Z", "2026-01-02T00:00:00.000000Z"}, params)
}

func TestCompile_OrAndNull(t *testing.T) {
	cutoff := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

	sql, params, err := Compile(criteria.Query{
		Table: criteria.Concepts,
		Filter: criteria.Or{Predicates: []criteria.Predicate{
			criteria.IsNull{Field: "last_reviewed_at"},
			criteria.Before{Field: "last_reviewed_at", Time: cutoff},
		}},
	})
	require.NoError(t, err)

	assert.Contains(t, sql, "WHERE (t.last_reviewed_at IS NULL OR t.last_reviewed_at < ?)")
	assert.Equal(t, []any{"2026-05-01T00:00:00.000000Z"}, params)
}

func TestCompile_EmptyJunctions(t *testing.T) {
	sql, params, err := Compile(criteria.Query{Table: criteria.Concepts, Filter: criteria.And{}})
	require.NoError(t, err)
	assert.Contains(t, sql, "WHERE 1 = 1")
	assert.Empty(t, params)

	sql, _, err = Compile(criteria.Query{Table: criteria.Concepts, Filter: criteria.Or{}})
	require.NoError(t, err)
	assert.Contains(t, sql, "WHERE 1 = 0")
}

func TestCompile_Contains(t *testing.T) {
	sql, params, err := Compile(criteria.Query{
		Table:  criteria.Concepts,
		Filter: criteria.Contains{Fields: []string{"name", "explanation"}, Text: "50%"},
	})
	require.NoError(t, err)

	assert.Contains(t, sql, `WHERE (t.name LIKE ? ESCAPE '\' OR t.explanation LIKE ? ESCAPE '\')`)
	assert.Equal(t, []any{`%50\%%`, `%50\%%`}, params)
}

func TestCompile_MatchJoinsIndex(t *testing.T) {
	sql, params, err := Compile(criteria.Query{
		Table: criteria.Concepts,
		Filter: criteria.AllOf(
			criteria.Match{Text: `"closure"`},
			criteria.HasTag{Tag: "go"},
		),
		Order: []criteria.Order{{Field: criteria.Rank}, {Field: "created_at", Desc: true}},
		Limit: 5,
	})
	require.NoError(t, err)

	assert.Contains(t, sql, "FROM concepts AS t JOIN concepts_fts ON concepts_fts.rowid = t.id")
	assert.Contains(t, sql, "WHERE (concepts_fts MATCH ? AND t.tags LIKE ? ESCAPE '\\')")
	assert.Contains(t, sql, "ORDER BY concepts_fts.rank ASC, t.created_at DESC, t.id ASC LIMIT ?")
	assert.Equal(t, []any{`"closure"`, `%"go"%`, 5}, params)
}

func TestCompile_EqualsValueConversion(t *testing.T) {
	ts := time.Date(2026, 2, 3, 4, 5, 6, 0, time.UTC)

	testCases := []struct {
		name  string
		field string
		value any
		want  any
	}{
		{name: "string", field: "source", value: "hook", want: "hook"},
		{name: "int", field: "review_count", value: 3, want: int64(3)},
		{name: "int64", field: "session_id", value: int64(9), want: int64(9)},
		{name: "bool", field: "review_count", value: true, want: int64(1)},
		{name: "time", field: "created_at", value: ts, want: "2026-02-03T04:05:06.000000Z"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, params, err := Compile(criteria.Query{
				Table:  criteria.Concepts,
				Filter: criteria.Equals{Field: tc.field, Value: tc.value},
			})
			require.NoError(t, err)
			assert.Equal(t, []any{tc.want}, params)
		})
	}
}

func TestCompile_UnsupportedValue(t *testing.T) {
	_, _, err := Compile(criteria.Query{
		Table:  criteria.Concepts,
		Filter: criteria.Equals{Field: "name", Value: []string{"x"}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported value type")
}

func TestCompile_RejectsInvalidQuery(t *testing.T) {
	_, _, err := Compile(criteria.Query{
		Table:  criteria.Concepts,
		Filter: criteria.Equals{Field: "name; DROP TABLE concepts", Value: "x"},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid query")
}

func TestCompileCount(t *testing.T) {
	sql, params, err := CompileCount(criteria.Query{
		Table:  criteria.Gotchas,
		Filter: criteria.Equals{Field: "severity", Value: "danger"},
		Order:  []criteria.Order{{Field: "created_at"}},
		Limit:  3,
	})
	require.NoError(t, err)

	assert.Equal(t, "SELECT COUNT(*) FROM gotchas AS t WHERE t.severity = ?", sql)
	assert.Equal(t, []any{"danger"}, params)
}

func TestCompileCount_NoFilter(t *testing.T) {
	sql, params, err := CompileCount(criteria.Query{Table: criteria.Sessions})
	require.NoError(t, err)
	assert.Equal(t, "SELECT COUNT(*) FROM sessions AS t", sql)
	assert.Empty(t, params)
}

func TestCompile_Deterministic(t *testing.T) {
	q := criteria.Query{
		Table: criteria.Concepts,
		Filter: criteria.AllOf(
			criteria.HasTag{Tag: "go"},
			criteria.IsNull{Field: "session_id"},
		),
		Order: []criteria.Order{{Field: "created_at", Desc: true}},
	}

	first, _, err := Compile(q)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, _, err := Compile(q)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}
