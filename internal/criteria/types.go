package criteria

import "time"

// Query selects rows of one table.
//
// Semantics:
//
//	SELECT <table columns> FROM <table> WHERE <filter> ORDER BY <order>, id LIMIT <limit>
//
// Results always end with an id tiebreaker so equal sort keys come back in
// a stable order. Limit 0 means no limit.
type Query struct {
	Table  Table
	Filter Predicate // nil = all rows
	Order  []Order
	Limit  int
}

// Order is one ORDER BY key.
//
// Field may be a catalog column or Rank. NullsFirst only matters for
// nullable columns such as last_reviewed_at.
type Order struct {
	Field      string
	Desc       bool
	NullsFirst bool
}

// Rank orders by full-text relevance (best first). Only valid when the
// query carries a Match predicate.
const Rank = "rank"

// Predicate is a filter condition.
//
// This is a sealed interface: only types in this package implement it.
type Predicate interface {
	predicateNode()
}

// Equals matches rows whose field equals Value.
//
// Value may be a string, an integer, a bool or a time.Time (formatted with
// TimeLayout). Use IsNull to match NULL.
type Equals struct {
	Field string
	Value any
}

func (Equals) predicateNode() {}

// Since matches rows whose timestamp field is at or after Time.
type Since struct {
	Field string
	Time  time.Time
}

func (Since) predicateNode() {}

// Before matches rows whose timestamp field is strictly before Time.
type Before struct {
	Field string
	Time  time.Time
}

func (Before) predicateNode() {}

// IsNull matches rows where field is NULL.
type IsNull struct {
	Field string
}

func (IsNull) predicateNode() {}

// And is true when every predicate is true. Empty And is always true.
type And struct {
	Predicates []Predicate
}

func (And) predicateNode() {}

// Or is true when any predicate is true. Empty Or is always false.
type Or struct {
	Predicates []Predicate
}

func (Or) predicateNode() {}

// HasTag matches rows whose tag set contains Tag exactly.
// Tag must already be normalized; the store keeps tags lower-case.
type HasTag struct {
	Tag string
}

func (HasTag) predicateNode() {}

// Contains matches rows where any of Fields contains Text,
// ignoring ASCII case. This is a linear scan.
type Contains struct {
	Fields []string
	Text   string
}

func (Contains) predicateNode() {}

// Match is a full-text query over the concepts index.
//
// Text is passed to FTS5 verbatim; callers build it with MatchTerms.
type Match struct {
	Text string
}

func (Match) predicateNode() {}

// AllOf is a convenience constructor for And that drops nil predicates.
func AllOf(preds ...Predicate) Predicate {
	var kept []Predicate
	for _, p := range preds {
		if p != nil {
			kept = append(kept, p)
		}
	}
	switch len(kept) {
	case 0:
		return nil
	case 1:
		return kept[0]
	default:
		return And{Predicates: kept}
	}
}
