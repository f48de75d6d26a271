package ingest

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cuejson "cuelang.org/go/encoding/json"
)

//go:embed events.cue
var eventsCUE string

// definitions maps each kind to its schema definition.
var definitions = map[Kind]string{
	KindSessionStart: "#SessionStart",
	KindSessionEnd:   "#SessionEnd",
	KindResponse:     "#Response",
	KindCodeChange:   "#CodeChange",
	KindCommand:      "#Command",
}

// timestampLayouts are the ISO-8601 forms accepted for the timestamp field.
// A timestamp without a zone is read as UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
}

// Decoder validates payloads against the embedded event schema and decodes
// them into Events.
//
// Thread-safety: Decode is safe for concurrent use; calls are serialized
// because a cue.Context is not.
type Decoder struct {
	mu     sync.Mutex
	ctx    *cue.Context
	schema cue.Value
}

// NewDecoder compiles the embedded schema.
func NewDecoder() (*Decoder, error) {
	ctx := cuecontext.New()
	schema := ctx.CompileString(eventsCUE, cue.Filename("events.cue"))
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("compile event schema: %w", err)
	}
	return &Decoder{ctx: ctx, schema: schema}, nil
}

var (
	defaultDecoder     *Decoder
	defaultDecoderErr  error
	defaultDecoderOnce sync.Once
)

// Decode decodes one payload with a shared Decoder.
func Decode(payload []byte) (Event, error) {
	defaultDecoderOnce.Do(func() {
		defaultDecoder, defaultDecoderErr = NewDecoder()
	})
	if defaultDecoderErr != nil {
		return nil, defaultDecoderErr
	}
	return defaultDecoder.Decode(payload)
}

// wireEvent is the JSON shape shared by every kind. The schema has already
// checked which fields each kind requires.
type wireEvent struct {
	Kind        Kind   `json:"kind"`
	SessionID   string `json:"session_id"`
	Timestamp   string `json:"timestamp"`
	Source      string `json:"source"`
	ProjectPath string `json:"project_path"`
	Summary     string `json:"summary"`
	Text        string `json:"text"`
	FilePath    string `json:"file_path"`
	Diff        string `json:"diff"`
	OldCode     string `json:"old_code"`
	NewCode     string `json:"new_code"`
	Command     string `json:"command"`
	ExitStatus  *int   `json:"exit_status"`
	WorkingDir  string `json:"working_dir"`
}

// Decode validates payload and returns the concrete event for its kind.
// Every failure is a *MalformedEventError.
func (d *Decoder) Decode(payload []byte) (Event, error) {
	kind, err := d.validate(payload)
	if err != nil {
		return nil, err
	}

	var w wireEvent
	if err := json.Unmarshal(payload, &w); err != nil {
		return nil, malformed(string(kind), "decode fields", err)
	}

	ts, err := parseTimestamp(w.Timestamp)
	if err != nil {
		return nil, malformed(string(kind), "invalid timestamp", err)
	}

	switch kind {
	case KindSessionStart:
		return SessionStart{SessionID: w.SessionID, Timestamp: ts, Source: w.Source, ProjectPath: w.ProjectPath}, nil
	case KindSessionEnd:
		return SessionEnd{SessionID: w.SessionID, Timestamp: ts, Summary: w.Summary}, nil
	case KindResponse:
		return Response{SessionID: w.SessionID, Timestamp: ts, Text: w.Text}, nil
	case KindCodeChange:
		return CodeChange{
			SessionID: w.SessionID, Timestamp: ts, FilePath: w.FilePath,
			Diff: w.Diff, OldCode: w.OldCode, NewCode: w.NewCode,
		}, nil
	case KindCommand:
		return Command{
			SessionID: w.SessionID, Timestamp: ts, Command: w.Command,
			ExitStatus: w.ExitStatus, WorkingDir: w.WorkingDir,
		}, nil
	default:
		return nil, malformed(string(kind), "unknown kind", nil)
	}
}

// validate checks payload against the schema definition for its kind and
// returns the kind.
func (d *Decoder) validate(payload []byte) (Kind, error) {
	if !json.Valid(payload) {
		return "", malformed("", "invalid JSON", nil)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	expr, err := cuejson.Extract("event", payload)
	if err != nil {
		return "", malformed("", "invalid JSON", err)
	}
	v := d.ctx.BuildExpr(expr)
	if err := v.Err(); err != nil {
		return "", malformed("", "invalid JSON", err)
	}
	if v.IncompleteKind() != cue.StructKind {
		return "", malformed("", "payload is not an object", nil)
	}

	kindVal := v.LookupPath(cue.ParsePath("kind"))
	if !kindVal.Exists() {
		return "", malformed("", "missing kind", nil)
	}
	raw, err := kindVal.String()
	if err != nil {
		return "", malformed("", "kind must be a string", err)
	}

	kind := Kind(raw)
	def, ok := definitions[kind]
	if !ok {
		return kind, malformed(raw, "unknown kind", nil)
	}

	unified := d.schema.LookupPath(cue.ParsePath(def)).Unify(v)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return kind, malformed(raw, "payload does not match schema", err)
	}
	return kind, nil
}

func parseTimestamp(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	var firstErr error
	for _, layout := range timestampLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t.UTC(), nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return time.Time{}, firstErr
}
