package criteria

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeTags(t *testing.T) {
	assert.Equal(t, "[]", EncodeTags(nil))
	assert.Equal(t, `["go","sql"]`, EncodeTags([]string{"go", "sql"}))
	assert.Equal(t, `["a<b"]`, EncodeTags([]string{"a<b"}), "no HTML escaping")
}

func TestDecodeTags(t *testing.T) {
	tags, err := DecodeTags(`["go","sql"]`)
	require.NoError(t, err)
	assert.Equal(t, []string{"go", "sql"}, tags)

	tags, err = DecodeTags("")
	require.NoError(t, err)
	assert.Empty(t, tags)
	assert.NotNil(t, tags)

	_, err = DecodeTags("go,sql")
	require.Error(t, err)
}

func TestTagPattern(t *testing.T) {
	assert.Equal(t, `%"go"%`, TagPattern("go"))
	assert.Equal(t, `%"100\%"%`, TagPattern("100%"))
	assert.Equal(t, `%"snake\_case"%`, TagPattern("snake_case"))
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `a\\b\%c\_d`, EscapeLike(`a\b%c_d`))
	assert.Equal(t, "plain", EscapeLike("plain"))
}
