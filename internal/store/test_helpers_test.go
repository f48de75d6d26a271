package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

// t0 is the base time for test rows.
var t0 = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

// createTestStore creates a new file-backed store for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestSession inserts a session started at t0.
func createTestSession(t *testing.T, s *Store, id string) Session {
	t.Helper()
	sess := Session{ID: id, StartedAt: t0, Source: "test"}
	if err := s.CreateSession(context.Background(), sess); err != nil {
		t.Fatalf("CreateSession(%s) failed: %v", id, err)
	}
	return sess
}

// insertTestConcept inserts a concept created at t0+offset.
func insertTestConcept(t *testing.T, s *Store, name, explanation string, offset time.Duration, tags ...string) int64 {
	t.Helper()
	id, err := s.Insert(context.Background(), Concept{
		Name:        name,
		Explanation: explanation,
		Tags:        tags,
		CreatedAt:   t0.Add(offset),
	})
	if err != nil {
		t.Fatalf("Insert(concept %q) failed: %v", name, err)
	}
	return id
}

// countRows counts rows of a table directly.
func countRows(t *testing.T, s *Store, table string) int {
	t.Helper()
	var n int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&n); err != nil {
		t.Fatalf("count %s: %v", table, err)
	}
	return n
}
