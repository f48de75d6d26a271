package harness

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/roach88/learnlog/internal/cli"
	"github.com/roach88/learnlog/internal/export"
	"github.com/roach88/learnlog/internal/ingest"
	"github.com/roach88/learnlog/internal/learning"
	"github.com/roach88/learnlog/internal/query"
	"github.com/roach88/learnlog/internal/store"
	"github.com/roach88/learnlog/internal/testutil"
)

// Harness holds the components a scenario drives. They share one store
// and one clock.
type Harness struct {
	store    *store.Store
	clock    *testutil.DeterministicClock
	ingester *ingest.Ingester
	log      *learning.Log
	engine   *query.Engine
}

// Run executes a scenario against a fresh in-memory store.
//
// Execution flow:
//  1. Open an in-memory store and wire the components to a deterministic clock
//  2. Execute steps in order, checking expect_error on each
//  3. Collect stats and the exported review
//  4. Evaluate assertions
//
// A returned error means the harness itself could not run; scenario
// failures are reported in Result.Errors.
func Run(scenario *Scenario) (*Result, error) {
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	st, err := store.Open(":memory:", store.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	clock := testutil.NewDeterministicClock(scenario.start(), scenario.step())
	in, err := ingest.New(st,
		ingest.WithIDGenerator(testutil.NewSequenceGenerator("session")),
		ingest.WithClock(clock.Now),
		ingest.WithLogger(logger),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create ingester: %w", err)
	}

	h := &Harness{
		store:    st,
		clock:    clock,
		ingester: in,
		log: learning.New(st,
			learning.WithClock(clock.Now),
			learning.WithSource(store.SourceTool),
			learning.WithLogger(logger),
		),
		engine: query.New(st, query.WithClock(clock.Now), query.WithLogger(logger)),
	}

	result := NewResult()
	for i, step := range scenario.Steps {
		h.executeStep(ctx, i, step, result)
	}

	if result.Stats, err = h.engine.Stats(ctx); err != nil {
		return nil, fmt.Errorf("failed to collect stats: %w", err)
	}

	bundle, err := h.engine.ExportRange(ctx, scenario.exportDays())
	if err != nil {
		return nil, fmt.Errorf("failed to export: %w", err)
	}
	var md bytes.Buffer
	if err := export.Markdown(&md, bundle, export.Options{}); err != nil {
		return nil, fmt.Errorf("failed to render export: %w", err)
	}
	result.Markdown = md.String()

	for _, msg := range h.evaluate(ctx, scenario.Assertions, result) {
		result.AddError(msg)
	}
	return result, nil
}

// executeStep runs one step and records its outcome. A failure that the
// step does not expect, or an expected failure that does not happen, is
// added to the result.
func (h *Harness) executeStep(ctx context.Context, index int, step Step, result *Result) {
	out := StepOutcome{Index: index, Kind: step.Kind()}
	err := h.apply(ctx, step, &out)
	if err != nil {
		out.Code = cli.ErrorCode(err)
	}
	result.Log = append(result.Log, out)

	switch {
	case err != nil && step.ExpectError == "":
		result.AddError(fmt.Sprintf("steps[%d] %s: unexpected error [%s]: %v", index, out.Kind, out.Code, err))
	case step.ExpectError != "" && err == nil:
		result.AddError(fmt.Sprintf("steps[%d] %s: expected error %s, got success", index, out.Kind, step.ExpectError))
	case step.ExpectError != "" && out.Code != step.ExpectError:
		result.AddError(fmt.Sprintf("steps[%d] %s: expected error %s, got %s: %v", index, out.Kind, step.ExpectError, out.Code, err))
	}
}

func (h *Harness) apply(ctx context.Context, step Step, out *StepOutcome) error {
	switch out.Kind {
	case StepEvent, StepRaw:
		payload := []byte(step.Raw)
		if out.Kind == StepEvent {
			var err error
			if payload, err = json.Marshal(step.Event); err != nil {
				return fmt.Errorf("marshal event: %w", err)
			}
		}
		res, err := h.ingester.Ingest(ctx, payload)
		if err != nil {
			return err
		}
		out.SessionID, out.ID = res.SessionID, res.RowID
		return nil

	case StepConcept:
		c := step.Concept
		id, err := h.log.LogConceptInSession(ctx, c.Session, c.Name, c.Explanation, c.Code, c.Tags)
		out.ID = id
		return err

	case StepPattern:
		p := step.Pattern
		id, err := h.log.LogPattern(ctx, p.Name, p.Description, p.Tags)
		out.ID = id
		return err

	case StepGotcha:
		g := step.Gotcha
		res, err := h.log.LogGotcha(ctx, g.Description, g.Tags,
			learning.WithSeverity(g.Severity),
			learning.WithCodeExample(g.Code),
			learning.WithConcept(g.Concept),
		)
		out.ID = res.ID
		return err

	case StepReview:
		c, err := h.log.MarkReviewedByName(ctx, step.Review)
		out.ID = c.ID
		return err

	case StepAdvance:
		h.clock.Advance(time.Duration(step.Advance))
		return nil
	}
	return fmt.Errorf("unknown step kind %q", out.Kind)
}
