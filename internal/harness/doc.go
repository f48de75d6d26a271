// Package harness runs end-to-end scenarios against the capture pipeline.
//
// A scenario is a YAML file that replays editor events and explicit log
// calls against a fresh in-memory store, then checks counts, the review
// queue and search results, and snapshots the exported review.
//
// # Scenario Format
//
//	name: learn_markers
//	description: "LEARN notes in responses become concepts"
//	start: 2026-01-05T09:00:00Z
//	step: 1m
//	steps:
//	  - event: { kind: session_start, project_path: /src/app }
//	  - event: { kind: response, session_id: session-0001, text: "# LEARN: ..." }
//	  - raw: '{"kind":'
//	    expect_error: MALFORMED_EVENT
//	  - concept: { name: iota, explanation: "...", tags: [go] }
//	  - gotcha: { description: "...", severity: danger, concept: iota }
//	  - review: iota
//	  - advance: 96h
//	assertions:
//	  - type: count
//	    table: concepts
//	    count: 2
//	  - type: due
//	    names: [iota]
//
// # Step Types
//
// Exactly one of these keys is set per step:
//
//   - event: a payload for the ingester, marshaled to JSON
//   - raw: a payload passed to the ingester verbatim
//   - concept, pattern, gotcha: explicit log calls (source "tool")
//   - review: mark the named concept reviewed
//   - advance: move the clock forward
//
// expect_error names the error code a step must fail with, using the codes
// printed by the CLI (MALFORMED_EVENT, CONSTRAINT, NOT_FOUND, ...).
//
// # Assertion Types
//
//   - count: rows in table
//   - pending: concepts never reviewed
//   - due: names returned by the review queue, in order
//   - search: names matching text, in any order
//   - tag: names carrying tag, in any order
//
// # Determinism
//
// Session ids come from testutil.SequenceGenerator ("session-0001", ...)
// and every component reads the same testutil.DeterministicClock, so the
// same scenario always yields byte-identical exports for golden comparison.
package harness
