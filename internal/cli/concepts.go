package cli

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/roach88/learnlog/internal/store"
)

// conceptsView lists concepts one per line in text mode.
type conceptsView []store.Concept

func (v conceptsView) String() string {
	if len(v) == 0 {
		return "No concepts found."
	}
	var sb strings.Builder
	for i, c := range v {
		if i > 0 {
			sb.WriteByte('\n')
		}
		fmt.Fprintf(&sb, "[%d] %s", c.ID, c.Name)
		if len(c.Tags) > 0 {
			fmt.Fprintf(&sb, " [%s]", strings.Join(c.Tags, ", "))
		}
		fmt.Fprintf(&sb, ": %s", truncate(oneLine(c.Explanation), 100))
		if c.LastReviewedAt == nil {
			sb.WriteString(" (never reviewed)")
		} else {
			fmt.Fprintf(&sb, " (reviewed %dx, last %s)", c.ReviewCount, c.LastReviewedAt.Local().Format("2006-01-02"))
		}
	}
	return sb.String()
}

// conceptView shows one concept after a write.
type conceptView store.Concept

func (v conceptView) String() string {
	return fmt.Sprintf("concept %d %q reviewed %dx", v.ID, v.Name, v.ReviewCount)
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n-1]) + "…"
}
