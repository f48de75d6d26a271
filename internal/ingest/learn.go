package ingest

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// learnMarker matches "# LEARN: <text>" anywhere on a line. The marker
// never spans lines.
var learnMarker = regexp.MustCompile(`#[ \t]*LEARN:[ \t]*(.+)`)

// maxLearnNameRunes bounds the concept name derived from a marker.
const maxLearnNameRunes = 80

// LearnNote is one "# LEARN:" marker found in captured text.
type LearnNote struct {
	Name        string
	Explanation string
}

// ExtractLearnNotes returns every LEARN marker in text, in order. The full
// marker text is the explanation; its first 80 characters are the name.
func ExtractLearnNotes(text string) []LearnNote {
	var notes []LearnNote
	for _, m := range learnMarker.FindAllStringSubmatch(text, -1) {
		body := strings.TrimSpace(m[1])
		if body == "" {
			continue
		}
		notes = append(notes, LearnNote{Name: truncateRunes(body, maxLearnNameRunes), Explanation: body})
	}
	return notes
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return strings.TrimSpace(string([]rune(s)[:n]))
}
