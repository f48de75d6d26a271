package criteria

import (
	"fmt"
	"slices"
	"time"
)

// Table names one table of the learning store.
type Table string

// Store tables.
const (
	Sessions    Table = "sessions"
	Responses   Table = "responses"
	CodeChanges Table = "code_changes"
	Commands    Table = "commands"
	Concepts    Table = "concepts"
	Patterns    Table = "patterns"
	Gotchas     Table = "gotchas"
)

// FTSTable is the full-text index over concepts.
const FTSTable = "concepts_fts"

// Tables lists every record table in export order.
var Tables = []Table{Sessions, Responses, CodeChanges, Commands, Concepts, Patterns, Gotchas}

// columns holds each table's columns in scan order.
// Scanners in internal/store depend on this order.
var columns = map[Table][]string{
	Sessions:    {"id", "started_at", "ended_at", "source", "project_path", "summary"},
	Responses:   {"id", "session_id", "text", "created_at"},
	CodeChanges: {"id", "session_id", "file_path", "diff", "old_code", "new_code", "created_at"},
	Commands:    {"id", "session_id", "command_line", "exit_status", "working_dir", "created_at"},
	Concepts: {
		"id", "session_id", "name", "explanation", "code_example", "tags", "source",
		"created_at", "last_reviewed_at", "review_count",
	},
	Patterns: {"id", "name", "description", "tags", "created_at"},
	Gotchas:  {"id", "concept_id", "description", "code_example", "severity", "tags", "created_at"},
}

// timeColumns are the columns holding TimeLayout text.
var timeColumns = map[string]bool{
	"started_at":       true,
	"ended_at":         true,
	"created_at":       true,
	"last_reviewed_at": true,
}

// Valid reports whether t is a catalog table.
func (t Table) Valid() bool {
	_, ok := columns[t]
	return ok
}

// Columns returns the table's columns in scan order.
func (t Table) Columns() []string {
	return slices.Clone(columns[t])
}

// HasColumn reports whether the table has the named column.
func (t Table) HasColumn(name string) bool {
	return slices.Contains(columns[t], name)
}

// TimeColumn is the column recording when a row was created.
func (t Table) TimeColumn() string {
	if t == Sessions {
		return "started_at"
	}
	return "created_at"
}

// HasTags reports whether rows of the table carry a tag set.
func (t Table) HasTags() bool {
	return t.HasColumn("tags")
}

// IsTimeColumn reports whether the column stores TimeLayout text.
func IsTimeColumn(name string) bool {
	return timeColumns[name]
}

// TimeLayout is the on-disk timestamp format: UTC, fixed width, microseconds.
const TimeLayout = "2006-01-02T15:04:05.000000Z"

// FormatTime renders t in TimeLayout.
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

// ParseTime parses a TimeLayout string.
func ParseTime(s string) (time.Time, error) {
	t, err := time.Parse(TimeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse time %q: %w", s, err)
	}
	return t, nil
}
