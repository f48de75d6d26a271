// Package ingest turns inbound session events into store rows.
//
// A payload is one JSON object with a kind discriminant:
//
//	{"kind": "session_start", "source": "windsurf", "project_path": "/src/app"}
//	{"kind": "response", "session_id": "…", "text": "…"}
//	{"kind": "code_change", "session_id": "…", "file_path": "main.go", "diff": "…"}
//	{"kind": "command", "session_id": "…", "command": "go test ./...", "exit_status": 0}
//	{"kind": "session_end", "session_id": "…", "summary": "…"}
//
// Payloads are validated against the CUE schema in events.cue, then decoded
// into one concrete Event type per kind. An optional ISO-8601 timestamp
// field sets the event time; without it the ingester's clock is used.
//
// The caller keeps the session id returned for session_start and sends it
// with every later event; sessions are never inferred.
//
// Lines of the form "# LEARN: <text>" in response text or new code also
// become concepts with source "hook", in the same transaction as the event.
package ingest
