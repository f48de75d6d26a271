package mcp

import (
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	mcpgo "github.com/mark3labs/mcp-go/mcp"

	"github.com/roach88/learnlog/internal/export"
	"github.com/roach88/learnlog/internal/learning"
	"github.com/roach88/learnlog/internal/query"
	"github.com/roach88/learnlog/internal/store"
)

// argumentError reports tool arguments that are missing or malformed.
type argumentError struct {
	msg string
	err error
}

func (e *argumentError) Error() string {
	if e.err != nil {
		return e.msg + ": " + e.err.Error()
	}
	return e.msg
}

func (e *argumentError) Unwrap() error { return e.err }

// bind decodes the arguments into A and renders fn's result: strings as
// text, anything else as indented JSON.
func bind[A any](fn func(ctx context.Context, args A) (any, error)) func(context.Context, json.RawMessage) (string, error) {
	return func(ctx context.Context, raw json.RawMessage) (string, error) {
		var args A
		if err := json.Unmarshal(raw, &args); err != nil {
			return "", &argumentError{msg: "invalid arguments", err: err}
		}
		out, err := fn(ctx, args)
		if err != nil {
			if errors.Is(err, learning.ErrInvalidInput) || errors.Is(err, query.ErrInvalidArgument) {
				return "", &argumentError{msg: "invalid arguments", err: err}
			}
			return "", err
		}
		if text, ok := out.(string); ok {
			return text, nil
		}
		data, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return "", fmt.Errorf("encode result: %w", err)
		}
		return string(data), nil
	}
}

// tagList accepts tags as a JSON array or a comma-separated string.
type tagList []string

func (t *tagList) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*t = learning.NormalizeTags(list)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("tags must be an array of strings or a comma-separated string")
	}
	*t = learning.ParseTags(s)
	return nil
}

func (s *Server) register(tool mcpgo.Tool, call func(context.Context, json.RawMessage) (string, error)) {
	s.mcp.AddTool(tool, s.toolHandler(tool.Name, call))
}

func tagsParam() mcpgo.ToolOption {
	return mcpgo.WithArray("tags",
		mcpgo.Description("Tags; lower-cased and de-duplicated. A comma-separated string is also accepted"),
		mcpgo.Items(map[string]any{"type": "string"}),
	)
}

func (s *Server) registerTools() {
	s.register(mcpgo.NewTool("log_concept",
		mcpgo.WithDescription("Record a concept the user just learned. Call query_concepts first to avoid duplicates."),
		mcpgo.WithString("name", mcpgo.Required(), mcpgo.Description("Short concept name")),
		mcpgo.WithString("explanation", mcpgo.Required(), mcpgo.Description("Plain explanation")),
		mcpgo.WithString("code_example", mcpgo.Description("Optional code illustrating the concept")),
		tagsParam(),
		mcpgo.WithString("session_id", mcpgo.Description("Optional session the concept was learned in")),
	), bind(s.logConcept))

	s.register(mcpgo.NewTool("log_pattern",
		mcpgo.WithDescription("Record a recurring coding pattern."),
		mcpgo.WithString("name", mcpgo.Required(), mcpgo.Description("Pattern name")),
		mcpgo.WithString("description", mcpgo.Required(), mcpgo.Description("What the pattern is and when to use it")),
		tagsParam(),
	), bind(s.logPattern))

	s.register(mcpgo.NewTool("log_gotcha",
		mcpgo.WithDescription("Record a pitfall, optionally linked to the latest concept with concept_name."),
		mcpgo.WithString("description", mcpgo.Required(), mcpgo.Description("What goes wrong")),
		mcpgo.WithString("code_example", mcpgo.Description("Optional code showing the pitfall")),
		mcpgo.WithString("severity",
			mcpgo.Enum(store.SeverityDanger, store.SeverityWarning, store.SeverityInfo),
			mcpgo.Description("Default warning")),
		mcpgo.WithString("concept_name", mcpgo.Description("Concept to link")),
		tagsParam(),
	), bind(s.logGotcha))

	s.register(mcpgo.NewTool("get_learning_gaps",
		mcpgo.WithDescription("List concepts due for review: never reviewed, or not reviewed within the staleness window. Never-reviewed first."),
		mcpgo.WithNumber("days", mcpgo.Description("Staleness in days (default 3)"), mcpgo.Max(maxStalenessDays)),
		mcpgo.WithNumber("limit", mcpgo.Description("Maximum results")),
	), bind(s.learningGaps))

	s.register(mcpgo.NewTool("get_stats",
		mcpgo.WithDescription("Counts and latest timestamps per record kind, review progress and top tags. Read-only."),
	), bind(s.stats))

	s.register(mcpgo.NewTool("query_concepts",
		mcpgo.WithDescription("Full-text search over concepts, or filter by tags. Returns recent concepts when no filter is given."),
		mcpgo.WithString("search", mcpgo.Description("Text to search for")),
		tagsParam(),
		mcpgo.WithNumber("limit", mcpgo.Description("Maximum results (default 20)")),
	), bind(s.queryConcepts))

	s.register(mcpgo.NewTool("mark_reviewed",
		mcpgo.WithDescription("Mark a concept reviewed after the user answers correctly. concept_id wins over concept_name."),
		mcpgo.WithNumber("concept_id", mcpgo.Description("Concept id")),
		mcpgo.WithString("concept_name", mcpgo.Description("Concept name; the most recent match is used")),
	), bind(s.markReviewed))

	s.register(mcpgo.NewTool("get_session_summary",
		mcpgo.WithDescription("Activity counts and concepts for a session, or the most recent session."),
		mcpgo.WithString("session_id", mcpgo.Description("Session id; omit for the latest")),
	), bind(s.sessionSummary))

	s.register(mcpgo.NewTool("export_review",
		mcpgo.WithDescription("Markdown review of recent concepts, patterns and gotchas."),
		mcpgo.WithNumber("days", mcpgo.Description("Window in days (default 7)")),
	), bind(s.exportReview))
}

type logConceptArgs struct {
	Name        string  `json:"name"`
	Explanation string  `json:"explanation"`
	CodeExample string  `json:"code_example"`
	Tags        tagList `json:"tags"`
	SessionID   string  `json:"session_id"`
}

type loggedRecord struct {
	ID   int64    `json:"id"`
	Name string   `json:"name"`
	Tags []string `json:"tags"`
}

func (s *Server) logConcept(ctx context.Context, args logConceptArgs) (any, error) {
	id, err := s.log.LogConceptInSession(ctx, args.SessionID, args.Name, args.Explanation, args.CodeExample, args.Tags)
	if err != nil {
		return nil, err
	}
	return loggedRecord{ID: id, Name: strings.TrimSpace(args.Name), Tags: learning.NormalizeTags(args.Tags)}, nil
}

type logPatternArgs struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Tags        tagList `json:"tags"`
}

func (s *Server) logPattern(ctx context.Context, args logPatternArgs) (any, error) {
	id, err := s.log.LogPattern(ctx, args.Name, args.Description, args.Tags)
	if err != nil {
		return nil, err
	}
	return loggedRecord{ID: id, Name: strings.TrimSpace(args.Name), Tags: learning.NormalizeTags(args.Tags)}, nil
}

type logGotchaArgs struct {
	Description string  `json:"description"`
	CodeExample string  `json:"code_example"`
	Severity    string  `json:"severity"`
	ConceptName string  `json:"concept_name"`
	Tags        tagList `json:"tags"`
}

type loggedGotcha struct {
	store.Gotcha
	Warning string `json:"warning,omitempty"`
}

func (s *Server) logGotcha(ctx context.Context, args logGotchaArgs) (any, error) {
	res, err := s.log.LogGotcha(ctx, args.Description, args.Tags,
		learning.WithSeverity(args.Severity),
		learning.WithCodeExample(args.CodeExample),
		learning.WithConcept(args.ConceptName))
	if err != nil {
		return nil, err
	}
	out := loggedGotcha{Gotcha: res.Gotcha}
	if res.UnresolvedConcept != "" {
		out.Warning = fmt.Sprintf("concept %q not found; gotcha stored without a link", res.UnresolvedConcept)
	}
	return out, nil
}

// maxStalenessDays bounds get_learning_gaps days so the window fits in a
// time.Duration.
const maxStalenessDays = 36500

type learningGapsArgs struct {
	Days  float64 `json:"days"`
	Limit int     `json:"limit"`
}

type conceptList struct {
	Count    int             `json:"count"`
	Concepts []store.Concept `json:"concepts"`
}

func (s *Server) learningGaps(ctx context.Context, args learningGapsArgs) (any, error) {
	staleness := s.defaults.Staleness
	switch {
	case args.Days > maxStalenessDays:
		return nil, &argumentError{msg: fmt.Sprintf("days must be at most %d, got %g", maxStalenessDays, args.Days)}
	case args.Days > 0:
		staleness = time.Duration(args.Days * float64(24*time.Hour))
	}
	limit := cmp.Or(args.Limit, s.defaults.ReviewLimit)

	due, err := s.engine.DueForReview(ctx, staleness, limit)
	if err != nil {
		return nil, err
	}
	return conceptList{Count: len(due), Concepts: due}, nil
}

func (s *Server) stats(ctx context.Context, _ struct{}) (any, error) {
	return s.engine.Stats(ctx)
}

type queryConceptsArgs struct {
	Search string  `json:"search"`
	Tags   tagList `json:"tags"`
	Limit  int     `json:"limit"`
}

func (s *Server) queryConcepts(ctx context.Context, args queryConceptsArgs) (any, error) {
	var (
		found []store.Concept
		err   error
	)
	switch {
	case strings.TrimSpace(args.Search) != "":
		found, err = s.engine.Search(ctx, args.Search, args.Limit)
	case len(args.Tags) > 0:
		found, err = s.conceptsByAnyTag(ctx, args.Tags, args.Limit)
	default:
		found, err = s.engine.RecentConcepts(ctx, args.Limit)
	}
	if err != nil {
		return nil, err
	}
	return conceptList{Count: len(found), Concepts: found}, nil
}

// conceptsByAnyTag returns concepts carrying at least one of tags, newest
// first.
func (s *Server) conceptsByAnyTag(ctx context.Context, tags []string, limit int) ([]store.Concept, error) {
	limit = cmp.Or(limit, query.DefaultLimit)
	seen := make(map[int64]bool)
	var merged []store.Concept
	for _, tag := range tags {
		found, err := s.engine.ConceptsByTag(ctx, tag, limit)
		if err != nil {
			return nil, err
		}
		for _, c := range found {
			if !seen[c.ID] {
				seen[c.ID] = true
				merged = append(merged, c)
			}
		}
	}
	slices.SortFunc(merged, func(a, b store.Concept) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})
	if len(merged) > limit {
		merged = merged[:limit]
	}
	return merged, nil
}

type markReviewedArgs struct {
	ConceptID   int64  `json:"concept_id"`
	ConceptName string `json:"concept_name"`
}

func (s *Server) markReviewed(ctx context.Context, args markReviewedArgs) (any, error) {
	switch {
	case args.ConceptID != 0:
		return s.log.MarkReviewed(ctx, args.ConceptID)
	case strings.TrimSpace(args.ConceptName) != "":
		return s.log.MarkReviewedByName(ctx, args.ConceptName)
	default:
		return nil, &argumentError{msg: "provide concept_id or concept_name"}
	}
}

type sessionSummaryArgs struct {
	SessionID string `json:"session_id"`
}

func (s *Server) sessionSummary(ctx context.Context, args sessionSummaryArgs) (any, error) {
	return s.engine.SessionSummary(ctx, strings.TrimSpace(args.SessionID))
}

type exportReviewArgs struct {
	Days int `json:"days"`
}

func (s *Server) exportReview(ctx context.Context, args exportReviewArgs) (any, error) {
	b, err := s.engine.ExportRange(ctx, cmp.Or(args.Days, s.defaults.ExportDays))
	if err != nil {
		return nil, err
	}
	var sb strings.Builder
	if err := export.Markdown(&sb, b, export.Options{MaxPerKind: s.defaults.MaxPerKind}); err != nil {
		return nil, err
	}
	return sb.String(), nil
}
