package criteria

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// EncodeTags renders a tag set as the JSON array text stored in tags columns.
// HTML escaping is off so the stored text matches TagPattern byte for byte.
func EncodeTags(tags []string) string {
	if tags == nil {
		tags = []string{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	// Encoding a []string cannot fail.
	_ = enc.Encode(tags)
	return string(bytes.TrimSuffix(buf.Bytes(), []byte("\n")))
}

// DecodeTags parses a tags column. Empty text is an empty set.
func DecodeTags(s string) ([]string, error) {
	tags := []string{}
	if s == "" {
		return tags, nil
	}
	if err := json.Unmarshal([]byte(s), &tags); err != nil {
		return nil, fmt.Errorf("decode tags %q: %w", s, err)
	}
	return tags, nil
}

// TagPattern is the LIKE pattern matching a tags column that contains tag.
// The pattern uses '\' as its escape character.
func TagPattern(tag string) string {
	quoted := EncodeTags([]string{tag})
	quoted = quoted[1 : len(quoted)-1] // strip [ ]
	return "%" + EscapeLike(quoted) + "%"
}

// EscapeLike escapes LIKE metacharacters using '\' as the escape character.
func EscapeLike(s string) string {
	var b bytes.Buffer
	for _, r := range s {
		switch r {
		case '\\', '%', '_':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
