package ingest

import "time"

// Kind is the discriminant of an inbound event.
type Kind string

// Event kinds.
const (
	KindSessionStart Kind = "session_start"
	KindSessionEnd   Kind = "session_end"
	KindResponse     Kind = "response"
	KindCodeChange   Kind = "code_change"
	KindCommand      Kind = "command"
)

// Kinds lists every event kind.
var Kinds = []Kind{KindSessionStart, KindSessionEnd, KindResponse, KindCodeChange, KindCommand}

// Event is one decoded inbound event.
//
// This is a sealed interface: only the types in this file implement it.
// Consumers switch over the concrete types.
type Event interface {
	Kind() Kind
	// At is the event time, zero when the payload carried none.
	At() time.Time
	event()
}

// SessionStart opens a session. SessionID is empty when the source wants
// one generated.
type SessionStart struct {
	SessionID   string
	Timestamp   time.Time
	Source      string
	ProjectPath string
}

// SessionEnd closes a session.
type SessionEnd struct {
	SessionID string
	Timestamp time.Time
	Summary   string
}

// Response is one assistant explanation.
type Response struct {
	SessionID string
	Timestamp time.Time
	Text      string
}

// CodeChange is one edit.
type CodeChange struct {
	SessionID string
	Timestamp time.Time
	FilePath  string
	Diff      string
	OldCode   string
	NewCode   string
}

// Command is one shell command.
type Command struct {
	SessionID  string
	Timestamp  time.Time
	Command    string
	ExitStatus *int
	WorkingDir string
}

func (SessionStart) Kind() Kind { return KindSessionStart }
func (SessionEnd) Kind() Kind   { return KindSessionEnd }
func (Response) Kind() Kind     { return KindResponse }
func (CodeChange) Kind() Kind   { return KindCodeChange }
func (Command) Kind() Kind      { return KindCommand }

func (e SessionStart) At() time.Time { return e.Timestamp }
func (e SessionEnd) At() time.Time   { return e.Timestamp }
func (e Response) At() time.Time     { return e.Timestamp }
func (e CodeChange) At() time.Time   { return e.Timestamp }
func (e Command) At() time.Time      { return e.Timestamp }

func (SessionStart) event() {}
func (SessionEnd) event()   {}
func (Response) event()     {}
func (CodeChange) event()   {}
func (Command) event()      {}
