package learning

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeTags(t *testing.T) {
	testCases := []struct {
		name string
		in   []string
		want []string
	}{
		{name: "dedupe trim lower", in: []string{"Python", "python", " SQL "}, want: []string{"python", "sql"}},
		{name: "nil", in: nil, want: []string{}},
		{name: "blank entries dropped", in: []string{"", "  ", "\t"}, want: []string{}},
		{name: "sorted", in: []string{"zig", "go", "c"}, want: []string{"c", "go", "zig"}},
		{name: "unicode lower", in: []string{"ÉCOLE", "école"}, want: []string{"école"}},
		// "é" precomposed and as e + combining acute are one tag.
		{name: "nfc", in: []string{"café", "café"}, want: []string{"café"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, NormalizeTags(tc.in))
		})
	}
}

func TestNormalizeTags_Idempotent(t *testing.T) {
	once := NormalizeTags([]string{" Go ", "SQL", "go", "Testing"})
	assert.Equal(t, once, NormalizeTags(once))
}

func TestParseTags(t *testing.T) {
	assert.Equal(t, []string{"go", "sql"}, ParseTags("SQL, go,,Go "))
	assert.Equal(t, []string{}, ParseTags(""))
}

func TestNormalizeTag(t *testing.T) {
	assert.Equal(t, "python", NormalizeTag("  Python "))
	assert.Equal(t, "", NormalizeTag("   "))
}
