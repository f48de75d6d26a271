package export

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/roach88/learnlog/internal/query"
	"github.com/roach88/learnlog/internal/store"
)

// DefaultMaxPerKind caps how many records of each kind are listed.
const DefaultMaxPerKind = 50

// EmptyMessage is written when the bundle holds no learning records.
const EmptyMessage = "No learnings found for this period.\n"

const dateLayout = "2006-01-02"

// Options controls markdown output.
type Options struct {
	// MaxPerKind caps each section; 0 means DefaultMaxPerKind.
	MaxPerKind int
}

func (o Options) maxPerKind() int {
	if o.MaxPerKind <= 0 {
		return DefaultMaxPerKind
	}
	return o.MaxPerKind
}

// Markdown writes b as a review document, newest records first.
func Markdown(w io.Writer, b query.Bundle, opts Options) error {
	if b.Empty() {
		_, err := io.WriteString(w, EmptyMessage)
		return err
	}

	var sb strings.Builder
	limit := opts.maxPerKind()

	fmt.Fprintf(&sb, "# Learning Review: Last %d Days\n\n", b.Days)
	fmt.Fprintf(&sb, "_%s to %s_\n\n", b.Since.Format(dateLayout), b.Until.Format(dateLayout))
	fmt.Fprintf(&sb, "Activity: %d sessions, %d responses, %d code changes, %d commands\n",
		len(b.Sessions), len(b.Responses), len(b.CodeChanges), len(b.Commands))

	if len(b.Concepts) > 0 {
		sb.WriteString(sectionHeader("Concepts", len(b.Concepts), limit))
		for _, c := range newestFirst(b.Concepts, limit) {
			writeConcept(&sb, c)
		}
	}

	if len(b.Patterns) > 0 {
		sb.WriteString(sectionHeader("Patterns", len(b.Patterns), limit))
		sb.WriteString("\n")
		for _, p := range newestFirst(b.Patterns, limit) {
			fmt.Fprintf(&sb, "- **%s**: %s%s\n", p.Name, oneLine(p.Description), tagSuffix(p.Tags))
		}
	}

	if len(b.Gotchas) > 0 {
		sb.WriteString(sectionHeader("Gotchas", len(b.Gotchas), limit))
		sb.WriteString("\n")
		for _, g := range newestFirst(b.Gotchas, limit) {
			ref := ""
			if g.ConceptID != nil {
				if name, ok := b.ConceptNames[*g.ConceptID]; ok {
					ref = fmt.Sprintf(" (re: %s)", name)
				}
			}
			fmt.Fprintf(&sb, "- [%s] %s%s\n", g.Severity, oneLine(g.Description), ref)
		}
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

func writeConcept(sb *strings.Builder, c store.Concept) {
	fmt.Fprintf(sb, "\n### %s\n\n", c.Name)
	fmt.Fprintf(sb, "*%s* | source: %s | reviewed %dx\n", c.CreatedAt.Format(dateLayout), c.Source, c.ReviewCount)
	if len(c.Tags) > 0 {
		fmt.Fprintf(sb, "Tags: %s\n", strings.Join(c.Tags, ", "))
	}
	fmt.Fprintf(sb, "\n%s\n", strings.TrimSpace(c.Explanation))
	if code := strings.TrimRight(c.CodeExample, "\n"); code != "" {
		fence := codeFence(code)
		fmt.Fprintf(sb, "\n%s\n%s\n%s\n", fence, code, fence)
	}
}

func sectionHeader(title string, total, limit int) string {
	if total > limit {
		return fmt.Sprintf("\n## %s (%d, showing newest %d)\n", title, total, limit)
	}
	return fmt.Sprintf("\n## %s (%d)\n", title, total)
}

// newestFirst reverses the oldest-first bundle order and keeps limit rows.
func newestFirst[T any](rows []T, limit int) []T {
	out := slices.Clone(rows)
	slices.Reverse(out)
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// codeFence returns a backtick fence longer than any backtick run in code.
func codeFence(code string) string {
	longest, run := 0, 0
	for _, r := range code {
		if r == '`' {
			run++
			longest = max(longest, run)
		} else {
			run = 0
		}
	}
	return strings.Repeat("`", max(3, longest+1))
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func tagSuffix(tags []string) string {
	if len(tags) == 0 {
		return ""
	}
	return " [" + strings.Join(tags, ", ") + "]"
}
