package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/roach88/learnlog/internal/criteria"
	"github.com/roach88/learnlog/internal/querysql"
)

// Find returns the rows of T's table matching q, in q's order with an id
// tiebreaker. q.Table may be left empty; if set it must be T's table.
//
// Returns an empty slice (not nil) when nothing matches.
func Find[T Record](ctx context.Context, src Source, q criteria.Query) ([]T, error) {
	var zero T
	table := zero.Table()
	if q.Table == "" {
		q.Table = table
	} else if q.Table != table {
		return nil, fmt.Errorf("find %s: query targets %s", table, q.Table)
	}

	query, args, err := querysql.Compile(q)
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", table, err)
	}

	rows, err := src.conn().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", table, err)
	}
	defer rows.Close()

	results := []T{}
	for rows.Next() {
		rec, err := scanRecord(table, rows)
		if err != nil {
			return nil, err
		}
		results = append(results, rec.(T))
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", table, err)
	}

	return results, nil
}

// Get returns the row of T's table with the given id.
// A missing row fails with ErrCodeNotFound.
func Get[T Record](ctx context.Context, src Source, id any) (T, error) {
	var zero T
	found, err := Find[T](ctx, src, criteria.Query{
		Filter: criteria.Equals{Field: "id", Value: id},
		Limit:  1,
	})
	if err != nil {
		return zero, err
	}
	if len(found) == 0 {
		return zero, notFound("get", singular(zero.Table()), id)
	}
	return found[0], nil
}

// Count returns how many rows match q. Order and Limit are ignored.
func Count(ctx context.Context, src Source, q criteria.Query) (int, error) {
	query, args, err := querysql.CompileCount(q)
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", q.Table, err)
	}
	var n int
	if err := src.conn().QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s: %w", q.Table, err)
	}
	return n, nil
}

// TableSummary is the row count and newest timestamp of one table.
// Latest is nil for an empty table.
type TableSummary struct {
	Table  criteria.Table `json:"table"`
	Count  int            `json:"count"`
	Latest *time.Time     `json:"latest,omitempty"`
}

// Summarize returns a TableSummary for every record table, in
// criteria.Tables order, computed by a single statement so all counts
// come from one snapshot.
func Summarize(ctx context.Context, src Source) ([]TableSummary, error) {
	var query string
	for i, t := range criteria.Tables {
		if i > 0 {
			query += " UNION ALL "
		}
		query += fmt.Sprintf("SELECT '%s', COUNT(*), MAX(%s) FROM %s", t, t.TimeColumn(), t)
	}

	rows, err := src.conn().QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("summarize: %w", err)
	}
	defer rows.Close()

	byTable := make(map[criteria.Table]TableSummary, len(criteria.Tables))
	for rows.Next() {
		var (
			name   string
			count  int
			latest sql.NullString
		)
		if err := rows.Scan(&name, &count, &latest); err != nil {
			return nil, fmt.Errorf("scan summary: %w", err)
		}
		ts, err := parseNullTime(latest)
		if err != nil {
			return nil, fmt.Errorf("scan summary: %w", err)
		}
		byTable[criteria.Table(name)] = TableSummary{Table: criteria.Table(name), Count: count, Latest: ts}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate summary: %w", err)
	}

	summaries := make([]TableSummary, 0, len(criteria.Tables))
	for _, t := range criteria.Tables {
		summaries = append(summaries, byTable[t])
	}
	return summaries, nil
}

// TagCount is how many rows carry a tag.
type TagCount struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

// TagCounts returns the most used tags of a table, most used first, ties
// by tag. limit <= 0 returns every tag.
func TagCounts(ctx context.Context, src Source, table criteria.Table, limit int) ([]TagCount, error) {
	if !table.HasTags() {
		return nil, fmt.Errorf("tag counts: table %q has no tags", table)
	}
	if limit <= 0 {
		limit = -1
	}

	rows, err := src.conn().QueryContext(ctx, fmt.Sprintf(`
		SELECT j.value, COUNT(*) AS n
		FROM %s AS t, json_each(t.tags) AS j
		GROUP BY j.value
		ORDER BY n DESC, j.value ASC
		LIMIT ?
	`, table), limit)
	if err != nil {
		return nil, fmt.Errorf("tag counts: %w", err)
	}
	defer rows.Close()

	counts := []TagCount{}
	for rows.Next() {
		var tc TagCount
		if err := rows.Scan(&tc.Tag, &tc.Count); err != nil {
			return nil, fmt.Errorf("scan tag count: %w", err)
		}
		counts = append(counts, tc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tag counts: %w", err)
	}
	return counts, nil
}

// rowScanner is implemented by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(table criteria.Table, rs rowScanner) (Record, error) {
	switch table {
	case criteria.Sessions:
		return scanSession(rs)
	case criteria.Responses:
		return scanResponse(rs)
	case criteria.CodeChanges:
		return scanCodeChange(rs)
	case criteria.Commands:
		return scanCommand(rs)
	case criteria.Concepts:
		return scanConcept(rs)
	case criteria.Patterns:
		return scanPattern(rs)
	case criteria.Gotchas:
		return scanGotcha(rs)
	default:
		return nil, fmt.Errorf("scan: unknown table %q", table)
	}
}

func scanSession(rs rowScanner) (Session, error) {
	var (
		sess      Session
		startedAt string
		endedAt   sql.NullString
	)
	if err := rs.Scan(&sess.ID, &startedAt, &endedAt, &sess.Source, &sess.ProjectPath, &sess.Summary); err != nil {
		return Session{}, fmt.Errorf("scan session: %w", err)
	}
	var err error
	if sess.StartedAt, err = parseTime(startedAt); err != nil {
		return Session{}, fmt.Errorf("scan session %s: %w", sess.ID, err)
	}
	if sess.EndedAt, err = parseNullTime(endedAt); err != nil {
		return Session{}, fmt.Errorf("scan session %s: %w", sess.ID, err)
	}
	return sess, nil
}

func scanResponse(rs rowScanner) (Response, error) {
	var (
		r         Response
		createdAt string
	)
	if err := rs.Scan(&r.ID, &r.SessionID, &r.Text, &createdAt); err != nil {
		return Response{}, fmt.Errorf("scan response: %w", err)
	}
	var err error
	if r.CreatedAt, err = parseTime(createdAt); err != nil {
		return Response{}, fmt.Errorf("scan response %d: %w", r.ID, err)
	}
	return r, nil
}

func scanCodeChange(rs rowScanner) (CodeChange, error) {
	var (
		cc        CodeChange
		createdAt string
	)
	if err := rs.Scan(&cc.ID, &cc.SessionID, &cc.FilePath, &cc.Diff, &cc.OldCode, &cc.NewCode, &createdAt); err != nil {
		return CodeChange{}, fmt.Errorf("scan code change: %w", err)
	}
	var err error
	if cc.CreatedAt, err = parseTime(createdAt); err != nil {
		return CodeChange{}, fmt.Errorf("scan code change %d: %w", cc.ID, err)
	}
	return cc, nil
}

func scanCommand(rs rowScanner) (Command, error) {
	var (
		cmd        Command
		exitStatus sql.NullInt64
		createdAt  string
	)
	if err := rs.Scan(&cmd.ID, &cmd.SessionID, &cmd.CommandLine, &exitStatus, &cmd.WorkingDir, &createdAt); err != nil {
		return Command{}, fmt.Errorf("scan command: %w", err)
	}
	if exitStatus.Valid {
		status := int(exitStatus.Int64)
		cmd.ExitStatus = &status
	}
	var err error
	if cmd.CreatedAt, err = parseTime(createdAt); err != nil {
		return Command{}, fmt.Errorf("scan command %d: %w", cmd.ID, err)
	}
	return cmd, nil
}

func scanConcept(rs rowScanner) (Concept, error) {
	var (
		c          Concept
		sessionID  sql.NullString
		tags       string
		createdAt  string
		reviewedAt sql.NullString
	)
	if err := rs.Scan(
		&c.ID, &sessionID, &c.Name, &c.Explanation, &c.CodeExample, &tags, &c.Source,
		&createdAt, &reviewedAt, &c.ReviewCount,
	); err != nil {
		return Concept{}, fmt.Errorf("scan concept: %w", err)
	}
	c.SessionID = sessionID.String

	var err error
	if c.Tags, err = unmarshalTags(tags); err != nil {
		return Concept{}, fmt.Errorf("scan concept %d: %w", c.ID, err)
	}
	if c.CreatedAt, err = parseTime(createdAt); err != nil {
		return Concept{}, fmt.Errorf("scan concept %d: %w", c.ID, err)
	}
	if c.LastReviewedAt, err = parseNullTime(reviewedAt); err != nil {
		return Concept{}, fmt.Errorf("scan concept %d: %w", c.ID, err)
	}
	return c, nil
}

func scanPattern(rs rowScanner) (Pattern, error) {
	var (
		p         Pattern
		tags      string
		createdAt string
	)
	if err := rs.Scan(&p.ID, &p.Name, &p.Description, &tags, &createdAt); err != nil {
		return Pattern{}, fmt.Errorf("scan pattern: %w", err)
	}
	var err error
	if p.Tags, err = unmarshalTags(tags); err != nil {
		return Pattern{}, fmt.Errorf("scan pattern %d: %w", p.ID, err)
	}
	if p.CreatedAt, err = parseTime(createdAt); err != nil {
		return Pattern{}, fmt.Errorf("scan pattern %d: %w", p.ID, err)
	}
	return p, nil
}

func scanGotcha(rs rowScanner) (Gotcha, error) {
	var (
		g         Gotcha
		conceptID sql.NullInt64
		tags      string
		createdAt string
	)
	if err := rs.Scan(&g.ID, &conceptID, &g.Description, &g.CodeExample, &g.Severity, &tags, &createdAt); err != nil {
		return Gotcha{}, fmt.Errorf("scan gotcha: %w", err)
	}
	if conceptID.Valid {
		id := conceptID.Int64
		g.ConceptID = &id
	}
	var err error
	if g.Tags, err = unmarshalTags(tags); err != nil {
		return Gotcha{}, fmt.Errorf("scan gotcha %d: %w", g.ID, err)
	}
	if g.CreatedAt, err = parseTime(createdAt); err != nil {
		return Gotcha{}, fmt.Errorf("scan gotcha %d: %w", g.ID, err)
	}
	return g, nil
}

func singular(t criteria.Table) string {
	switch t {
	case criteria.Sessions:
		return "session"
	case criteria.Responses:
		return "response"
	case criteria.CodeChanges:
		return "code change"
	case criteria.Commands:
		return "command"
	case criteria.Concepts:
		return "concept"
	case criteria.Patterns:
		return "pattern"
	case criteria.Gotchas:
		return "gotcha"
	default:
		return string(t)
	}
}
