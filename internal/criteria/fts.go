package criteria

import (
	"strings"
	"unicode/utf8"
)

// MinTermLength is the shortest term the trigram index can answer.
// Shorter terms match nothing under MATCH.
const MinTermLength = 3

// MatchTerms turns free text into an FTS5 query: every whitespace separated
// term is quoted so punctuation is never read as query syntax, and the terms
// are ANDed. Embedded double quotes are doubled, FTS5's string escape, so
// they stay part of the term. With the trigram tokenizer each quoted term
// matches as a substring.
//
// ok is false when the text has no terms or a term is shorter than
// MinTermLength; callers fall back to Contains in that case.
//
//	"fix auth bug" → `"fix" "auth" "bug"`
//	`json:"name"`  → `"json:""name"""`
func MatchTerms(text string) (query string, ok bool) {
	words := strings.Fields(text)
	if len(words) == 0 {
		return "", false
	}
	quoted := make([]string, 0, len(words))
	for _, w := range words {
		if utf8.RuneCountInString(w) < MinTermLength {
			return "", false
		}
		quoted = append(quoted, `"`+strings.ReplaceAll(w, `"`, `""`)+`"`)
	}
	return strings.Join(quoted, " "), true
}
