package harness

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/roach88/learnlog/internal/criteria"
	"github.com/roach88/learnlog/internal/store"
)

// assertionLimit bounds list queries made by assertions.
const assertionLimit = 1000

// AssertionError is returned when an assertion fails.
type AssertionError struct {
	Type   string // Assertion type for categorization
	Detail string // What was checked
	Diff   string // cmp.Diff output (-want +got), or a one-line mismatch
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "Assertion failed: %s", e.Type)
	if e.Detail != "" {
		fmt.Fprintf(&buf, " (%s)", e.Detail)
	}
	fmt.Fprintf(&buf, "\n%s", e.Diff)
	return buf.String()
}

// evaluate checks every assertion and returns one message per failure.
func (h *Harness) evaluate(ctx context.Context, assertions []Assertion, result *Result) []string {
	var errs []string
	for i, a := range assertions {
		if err := h.check(ctx, a, result); err != nil {
			errs = append(errs, fmt.Sprintf("assertions[%d]: %v", i, err))
		}
	}
	return errs
}

func (h *Harness) check(ctx context.Context, a Assertion, result *Result) error {
	switch a.Type {
	case AssertCount:
		got := result.Count(criteria.Table(a.Table))
		return compareCount(a.Type, a.Table, a.Count, got)

	case AssertPending:
		return compareCount(a.Type, "never reviewed", a.Count, result.Stats.PendingConcepts)

	case AssertDue:
		due, err := h.engine.DueForReview(ctx, time.Duration(a.Staleness), assertionLimit)
		if err != nil {
			return err
		}
		return compareNames(a.Type, "", a.Names, names(due), false)

	case AssertSearch:
		hits, err := h.engine.Search(ctx, a.Text, assertionLimit)
		if err != nil {
			return err
		}
		return compareNames(a.Type, fmt.Sprintf("%q", a.Text), a.Names, names(hits), true)

	case AssertTag:
		hits, err := h.engine.ConceptsByTag(ctx, a.Tag, assertionLimit)
		if err != nil {
			return err
		}
		return compareNames(a.Type, a.Tag, a.Names, names(hits), true)
	}
	return fmt.Errorf("unknown assertion type %q", a.Type)
}

func compareCount(typ, detail string, want, got int) error {
	if want == got {
		return nil
	}
	return &AssertionError{Type: typ, Detail: detail, Diff: fmt.Sprintf("want %d, got %d", want, got)}
}

// compareNames diffs concept names. Nil and empty lists are equal.
func compareNames(typ, detail string, want, got []string, anyOrder bool) error {
	opts := []cmp.Option{cmpopts.EquateEmpty()}
	if anyOrder {
		opts = append(opts, cmpopts.SortSlices(func(a, b string) bool { return a < b }))
	}
	if diff := cmp.Diff(want, got, opts...); diff != "" {
		return &AssertionError{Type: typ, Detail: detail, Diff: "(-want +got):\n" + diff}
	}
	return nil
}

func names(concepts []store.Concept) []string {
	out := make([]string, len(concepts))
	for i, c := range concepts {
		out[i] = c.Name
	}
	return out
}
