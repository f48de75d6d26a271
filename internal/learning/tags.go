package learning

import (
	"slices"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// NormalizeTags returns the canonical form of a tag list: each tag trimmed,
// NFC normalized and lower-cased, empties dropped, duplicates removed,
// sorted. The result is never nil.
//
//	["Python", "python", " SQL "] → ["python", "sql"]
func NormalizeTags(tags []string) []string {
	// A Caser keeps state between calls, so each call gets its own.
	lower := cases.Lower(language.Und)

	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		out = append(out, lower.String(norm.NFC.String(tag)))
	}
	slices.Sort(out)
	return slices.Compact(out)
}

// ParseTags splits comma-separated tags and normalizes them.
func ParseTags(s string) []string {
	return NormalizeTags(strings.Split(s, ","))
}

// NormalizeTag returns the canonical form of one tag, or "" if it is blank.
func NormalizeTag(tag string) string {
	tags := NormalizeTags([]string{tag})
	if len(tags) == 0 {
		return ""
	}
	return tags[0]
}
