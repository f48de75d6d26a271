package criteria

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_SimpleQuery(t *testing.T) {
	q := Query{
		Table:  Concepts,
		Filter: Equals{Field: "name", Value: "closures"},
		Order:  []Order{{Field: "created_at", Desc: true}},
		Limit:  10,
	}

	assert.NoError(t, Validate(q))
}

func TestValidate_NilFilter(t *testing.T) {
	assert.NoError(t, Validate(Query{Table: Sessions}))
}

func TestValidate_UnknownTable(t *testing.T) {
	err := Validate(Query{Table: "learnings"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown table "learnings"`)
}

func TestValidate_UnknownColumn(t *testing.T) {
	err := Validate(Query{
		Table:  Patterns,
		Filter: Equals{Field: "severity", Value: "danger"},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `no column "severity"`)
}

func TestValidate_UnknownOrderColumn(t *testing.T) {
	err := Validate(Query{
		Table: Commands,
		Order: []Order{{Field: "started_at"}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `no column "started_at"`)
}

func TestValidate_EqualsNilValue(t *testing.T) {
	err := Validate(Query{
		Table:  Sessions,
		Filter: Equals{Field: "ended_at", Value: nil},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "use IsNull")
}

func TestValidate_TimeRangeNeedsTimestamp(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	assert.NoError(t, Validate(Query{
		Table:  Sessions,
		Filter: AllOf(Since{Field: "started_at", Time: now}, Before{Field: "started_at", Time: now}),
	}))

	err := Validate(Query{
		Table:  Concepts,
		Filter: Since{Field: "name", Time: now},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `column "name" is not a timestamp`)
}

func TestValidate_HasTag(t *testing.T) {
	assert.NoError(t, Validate(Query{Table: Gotchas, Filter: HasTag{Tag: "go"}}))

	err := Validate(Query{Table: Responses, Filter: HasTag{Tag: "go"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "has no tags")

	err = Validate(Query{Table: Concepts, Filter: HasTag{}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty tag")
}

func TestValidate_Contains(t *testing.T) {
	assert.NoError(t, Validate(Query{
		Table:  Concepts,
		Filter: Contains{Fields: []string{"name", "explanation"}, Text: "go"},
	}))

	err := Validate(Query{Table: Concepts, Filter: Contains{Text: "go"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "contains without fields")
}

func TestValidate_MatchPlacement(t *testing.T) {
	testCases := []struct {
		name    string
		query   Query
		wantErr string
	}{
		{
			name:  "top level",
			query: Query{Table: Concepts, Filter: Match{Text: `"auth"`}, Order: []Order{{Field: Rank}}},
		},
		{
			name: "inside top-level and",
			query: Query{
				Table:  Concepts,
				Filter: And{Predicates: []Predicate{Match{Text: `"auth"`}, HasTag{Tag: "go"}}},
			},
		},
		{
			name:    "under or",
			query:   Query{Table: Concepts, Filter: Or{Predicates: []Predicate{Match{Text: `"auth"`}, HasTag{Tag: "go"}}}},
			wantErr: "cannot appear under OR",
		},
		{
			name:    "wrong table",
			query:   Query{Table: Patterns, Filter: Match{Text: `"auth"`}},
			wantErr: "only indexed for concepts",
		},
		{
			name:    "empty text",
			query:   Query{Table: Concepts, Filter: Match{}},
			wantErr: "empty full-text match",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := Validate(tc.query)
			if tc.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestValidate_RankNeedsMatch(t *testing.T) {
	err := Validate(Query{Table: Concepts, Order: []Order{{Field: Rank}}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "order by rank requires a full-text match")
}

func TestValidate_NegativeLimit(t *testing.T) {
	err := Validate(Query{Table: Concepts, Limit: -1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "negative limit")
}

func TestValidate_CollectsAllProblems(t *testing.T) {
	err := Validate(Query{
		Table:  Patterns,
		Filter: AllOf(Equals{Field: "bogus", Value: 1}, IsNull{Field: "other"}),
		Limit:  -5,
	})
	require.Error(t, err)

	msg := err.Error()
	assert.Contains(t, msg, `"bogus"`)
	assert.Contains(t, msg, `"other"`)
	assert.Contains(t, msg, "negative limit")
}
