package criteria

import (
	"errors"
	"fmt"
)

// Validate checks a query against the catalog.
//
// Rules:
//  1. Table must be a catalog table.
//  2. Every field named by a predicate or order key must be a column of it.
//  3. Since/Before only apply to timestamp columns.
//  4. HasTag needs a table with tags; Match needs the concepts table and
//     may only appear at the top level or inside a top-level And.
//  5. Ordering by Rank needs a Match predicate.
//  6. Limit is not negative.
//
// Validate is a pure function; all problems are joined into one error.
func Validate(q Query) error {
	v := &validator{table: q.Table}
	if !q.Table.Valid() {
		return fmt.Errorf("unknown table %q", q.Table)
	}
	v.validatePredicate(q.Filter, true)
	for _, o := range q.Order {
		if o.Field == Rank {
			if !v.hasMatch {
				v.addf("order by rank requires a full-text match")
			}
			continue
		}
		v.checkField(o.Field)
	}
	if q.Limit < 0 {
		v.addf("negative limit %d", q.Limit)
	}
	return errors.Join(v.errs...)
}

// validator accumulates problems during traversal.
type validator struct {
	table    Table
	hasMatch bool
	errs     []error
}

func (v *validator) addf(format string, args ...any) {
	v.errs = append(v.errs, fmt.Errorf(format, args...))
}

func (v *validator) checkField(field string) {
	if !v.table.HasColumn(field) {
		v.addf("table %s has no column %q", v.table, field)
	}
}

func (v *validator) checkTimeField(field string) {
	v.checkField(field)
	if !IsTimeColumn(field) {
		v.addf("column %q is not a timestamp", field)
	}
}

// validatePredicate walks the tree. matchOK is true while we are still at
// a position where SQLite accepts MATCH.
func (v *validator) validatePredicate(p Predicate, matchOK bool) {
	switch pred := p.(type) {
	case nil:
	case Equals:
		v.checkField(pred.Field)
		if pred.Value == nil {
			v.addf("equals on %q with nil value; use IsNull", pred.Field)
		}
	case Since:
		v.checkTimeField(pred.Field)
	case Before:
		v.checkTimeField(pred.Field)
	case IsNull:
		v.checkField(pred.Field)
	case And:
		for _, sub := range pred.Predicates {
			v.validatePredicate(sub, matchOK)
		}
	case Or:
		for _, sub := range pred.Predicates {
			v.validatePredicate(sub, false)
		}
	case HasTag:
		if !v.table.HasTags() {
			v.addf("table %s has no tags", v.table)
		}
		if pred.Tag == "" {
			v.addf("empty tag")
		}
	case Contains:
		if len(pred.Fields) == 0 {
			v.addf("contains without fields")
		}
		for _, f := range pred.Fields {
			v.checkField(f)
		}
	case Match:
		if v.table != Concepts {
			v.addf("full-text match is only indexed for %s", Concepts)
		}
		if !matchOK {
			v.addf("full-text match cannot appear under OR or nested AND")
		}
		if pred.Text == "" {
			v.addf("empty full-text match")
		}
		v.hasMatch = true
	default:
		v.addf("unsupported predicate type %T", p)
	}
}
