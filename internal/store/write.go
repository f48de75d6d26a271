package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/roach88/learnlog/internal/criteria"
)

// Insert appends one row and returns its id. A zero CreatedAt is set to
// the current time. Session is rejected; use CreateSession.
//
// A reference to a missing session or concept fails with ErrCodeConstraint.
func (s *Store) Insert(ctx context.Context, rec Record) (int64, error) {
	return insert(ctx, s.db, rec)
}

// Insert is Store.Insert inside a transaction.
func (tx *Tx) Insert(ctx context.Context, rec Record) (int64, error) {
	return insert(ctx, tx.c, rec)
}

// CreateSession inserts a session row. A duplicate id fails with
// ErrCodeConstraint.
func (s *Store) CreateSession(ctx context.Context, sess Session) error {
	return createSession(ctx, s.db, sess)
}

// CreateSession is Store.CreateSession inside a transaction.
func (tx *Tx) CreateSession(ctx context.Context, sess Session) error {
	return createSession(ctx, tx.c, sess)
}

// EndSession sets a session's end time and, when summary is not empty,
// its summary. An end time before the start is clamped to the start.
// Returns the updated session; an unknown id fails with ErrCodeNotFound.
func (s *Store) EndSession(ctx context.Context, id string, endedAt time.Time, summary string) (Session, error) {
	return endSession(ctx, s.db, id, endedAt, summary)
}

// EndSession is Store.EndSession inside a transaction.
func (tx *Tx) EndSession(ctx context.Context, id string, endedAt time.Time, summary string) (Session, error) {
	return endSession(ctx, tx.c, id, endedAt, summary)
}

// UpdateReviewMetadata records one review of a concept: review_count is
// incremented and last_reviewed_at set in a single statement. Returns the
// updated concept; an unknown id fails with ErrCodeNotFound.
func (s *Store) UpdateReviewMetadata(ctx context.Context, conceptID int64, reviewedAt time.Time) (Concept, error) {
	return updateReviewMetadata(ctx, s.db, conceptID, reviewedAt)
}

// UpdateReviewMetadata is Store.UpdateReviewMetadata inside a transaction.
func (tx *Tx) UpdateReviewMetadata(ctx context.Context, conceptID int64, reviewedAt time.Time) (Concept, error) {
	return updateReviewMetadata(ctx, tx.c, conceptID, reviewedAt)
}

func insert(ctx context.Context, c execer, rec Record) (int64, error) {
	var (
		query string
		args  []any
	)

	switch r := rec.(type) {
	case Response:
		query = `INSERT INTO responses (session_id, text, created_at) VALUES (?, ?, ?)`
		args = []any{r.SessionID, r.Text, stamp(r.CreatedAt)}
	case CodeChange:
		query = `
			INSERT INTO code_changes (session_id, file_path, diff, old_code, new_code, created_at)
			VALUES (?, ?, ?, ?, ?, ?)`
		args = []any{r.SessionID, r.FilePath, r.Diff, r.OldCode, r.NewCode, stamp(r.CreatedAt)}
	case Command:
		query = `
			INSERT INTO commands (session_id, command_line, exit_status, working_dir, created_at)
			VALUES (?, ?, ?, ?, ?)`
		args = []any{r.SessionID, r.CommandLine, nullInt(r.ExitStatus), r.WorkingDir, stamp(r.CreatedAt)}
	case Concept:
		source := r.Source
		if source == "" {
			source = SourceTool
		}
		query = `
			INSERT INTO concepts (session_id, name, explanation, code_example, tags, source, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)`
		args = []any{
			nullString(r.SessionID), r.Name, r.Explanation, r.CodeExample,
			criteria.EncodeTags(r.Tags), source, stamp(r.CreatedAt),
		}
	case Pattern:
		query = `INSERT INTO patterns (name, description, tags, created_at) VALUES (?, ?, ?, ?)`
		args = []any{r.Name, r.Description, criteria.EncodeTags(r.Tags), stamp(r.CreatedAt)}
	case Gotcha:
		severity := r.Severity
		if severity == "" {
			severity = SeverityWarning
		}
		query = `
			INSERT INTO gotchas (concept_id, description, code_example, severity, tags, created_at)
			VALUES (?, ?, ?, ?, ?, ?)`
		args = []any{
			nullInt64(r.ConceptID), r.Description, r.CodeExample, severity,
			criteria.EncodeTags(r.Tags), stamp(r.CreatedAt),
		}
	case Session:
		return 0, fmt.Errorf("insert: sessions are created with CreateSession")
	default:
		return 0, fmt.Errorf("insert: unsupported record type %T", rec)
	}

	op := fmt.Sprintf("insert %s", rec.Table())
	res, err := c.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, classify(op, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("%s: last insert id: %w", op, err)
	}
	return id, nil
}

func createSession(ctx context.Context, c execer, sess Session) error {
	if sess.ID == "" {
		return fmt.Errorf("create session: empty id")
	}
	_, err := c.ExecContext(ctx, `
		INSERT INTO sessions (id, started_at, ended_at, source, project_path, summary)
		VALUES (?, ?, ?, ?, ?, ?)
	`,
		sess.ID,
		stamp(sess.StartedAt),
		nullTime(sess.EndedAt),
		sess.Source,
		sess.ProjectPath,
		sess.Summary,
	)
	return classify("create session", err)
}

func endSession(ctx context.Context, c execer, id string, endedAt time.Time, summary string) (Session, error) {
	end := stamp(endedAt)
	row := c.QueryRowContext(ctx, `
		UPDATE sessions
		SET ended_at = CASE WHEN ? < started_at THEN started_at ELSE ? END,
		    summary = CASE WHEN ? = '' THEN summary ELSE ? END
		WHERE id = ?
		RETURNING id, started_at, ended_at, source, project_path, summary
	`, end, end, summary, summary, id)

	sess, err := scanSession(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Session{}, notFound("end session", "session", id)
		}
		return Session{}, fmt.Errorf("end session: %w", err)
	}
	return sess, nil
}

func updateReviewMetadata(ctx context.Context, c execer, conceptID int64, reviewedAt time.Time) (Concept, error) {
	row := c.QueryRowContext(ctx, `
		UPDATE concepts
		SET review_count = review_count + 1,
		    last_reviewed_at = ?
		WHERE id = ?
		RETURNING `+columnList(criteria.Concepts),
		stamp(reviewedAt), conceptID)

	concept, err := scanConcept(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Concept{}, notFound("update review metadata", "concept", conceptID)
		}
		return Concept{}, fmt.Errorf("update review metadata: %w", err)
	}
	return concept, nil
}
