package harness

import (
	"github.com/roach88/learnlog/internal/criteria"
	"github.com/roach88/learnlog/internal/query"
)

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true when every step and assertion held.
	Pass bool `json:"pass"`

	// Errors describes each failed step or assertion.
	Errors []string `json:"errors,omitempty"`

	// Log records what each step did, in order.
	Log []StepOutcome `json:"log"`

	// Stats is the final state of the store.
	Stats query.Stats `json:"stats"`

	// Markdown is the exported review for the scenario window.
	Markdown string `json:"markdown"`
}

// StepOutcome records one executed step.
type StepOutcome struct {
	Index int    `json:"index"`
	Kind  string `json:"kind"`
	// Code is the error code the step failed with, if any.
	Code string `json:"code,omitempty"`
	// SessionID is set for ingested events.
	SessionID string `json:"session_id,omitempty"`
	// ID is the row written, if any.
	ID int64 `json:"id,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Errors: []string{},
		Log:    []StepOutcome{},
	}
}

// AddError records a failure and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// Count returns the final row count of table.
func (r *Result) Count(table criteria.Table) int {
	return r.Stats.Count(table)
}
