package store

import (
	"time"

	"github.com/roach88/learnlog/internal/criteria"
)

// Record is one row kind of the store.
//
// This is a sealed interface: only the types in this file implement it.
// Insert accepts every Record except Session, which has a caller-chosen
// id and its own lifecycle (CreateSession, EndSession).
type Record interface {
	Table() criteria.Table
	record()
}

// Session is one bounded coding interaction.
type Session struct {
	ID          string     `json:"id"`
	StartedAt   time.Time  `json:"started_at"`
	EndedAt     *time.Time `json:"ended_at,omitempty"`
	Source      string     `json:"source,omitempty"`
	ProjectPath string     `json:"project_path,omitempty"`
	Summary     string     `json:"summary,omitempty"`
}

// Response is one assistant explanation.
type Response struct {
	ID        int64     `json:"id"`
	SessionID string    `json:"session_id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// CodeChange is one edit made during a session.
type CodeChange struct {
	ID        int64     `json:"id"`
	SessionID string    `json:"session_id"`
	FilePath  string    `json:"file_path"`
	Diff      string    `json:"diff,omitempty"`
	OldCode   string    `json:"old_code,omitempty"`
	NewCode   string    `json:"new_code,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Command is one shell command run during a session.
// ExitStatus is nil when the event source did not report one.
type Command struct {
	ID          int64     `json:"id"`
	SessionID   string    `json:"session_id"`
	CommandLine string    `json:"command_line"`
	ExitStatus  *int      `json:"exit_status,omitempty"`
	WorkingDir  string    `json:"working_dir,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Concept is a named idea that was taught.
// SessionID is empty for concepts logged outside a captured session.
type Concept struct {
	ID             int64      `json:"id"`
	SessionID      string     `json:"session_id,omitempty"`
	Name           string     `json:"name"`
	Explanation    string     `json:"explanation"`
	CodeExample    string     `json:"code_example,omitempty"`
	Tags           []string   `json:"tags"`
	Source         string     `json:"source"`
	CreatedAt      time.Time  `json:"created_at"`
	LastReviewedAt *time.Time `json:"last_reviewed_at,omitempty"`
	ReviewCount    int        `json:"review_count"`
}

// Pattern is a named design or coding pattern.
type Pattern struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Tags        []string  `json:"tags"`
	CreatedAt   time.Time `json:"created_at"`
}

// Gotcha is a pitfall, optionally attached to a concept.
type Gotcha struct {
	ID          int64     `json:"id"`
	ConceptID   *int64    `json:"concept_id,omitempty"`
	Description string    `json:"description"`
	CodeExample string    `json:"code_example,omitempty"`
	Severity    string    `json:"severity"`
	Tags        []string  `json:"tags"`
	CreatedAt   time.Time `json:"created_at"`
}

// Gotcha severities.
const (
	SeverityDanger  = "danger"
	SeverityWarning = "warning"
	SeverityInfo    = "info"
)

// Concept sources.
const (
	SourceTool = "tool"
	SourceHook = "hook"
	SourceCLI  = "cli"
)

func (Session) Table() criteria.Table    { return criteria.Sessions }
func (Response) Table() criteria.Table   { return criteria.Responses }
func (CodeChange) Table() criteria.Table { return criteria.CodeChanges }
func (Command) Table() criteria.Table    { return criteria.Commands }
func (Concept) Table() criteria.Table    { return criteria.Concepts }
func (Pattern) Table() criteria.Table    { return criteria.Patterns }
func (Gotcha) Table() criteria.Table     { return criteria.Gotchas }

func (Session) record()    {}
func (Response) record()   {}
func (CodeChange) record() {}
func (Command) record()    {}
func (Concept) record()    {}
func (Pattern) record()    {}
func (Gotcha) record()     {}
