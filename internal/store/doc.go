// Package store provides SQLite-backed durable storage for learnlog.
//
// The store holds two families of rows:
//   - Captured events: sessions, responses, code changes, commands
//   - Learning records: concepts, patterns, gotchas
//
// plus a schema_version row and an FTS5 index over concepts.
//
// # Invariants
//
// Referential integrity: responses, code changes and commands reference an
// existing session; concepts may reference a session and gotchas a
// concept. Violations fail with ErrCodeConstraint.
//
// Review metadata: review_count starts at 0 and only grows;
// last_reviewed_at stays NULL until the first review.
//
// Index consistency: triggers update concepts_fts in the same statement as
// the concept write, so a committed concept is always searchable.
//
// Deterministic reads: every query ends with an id tiebreaker.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//
// Write transactions (Update) begin IMMEDIATE so a second writer waits for
// the lock instead of failing mid-transaction. Retried writes are not
// deduplicated: each call appends a new row.
package store
