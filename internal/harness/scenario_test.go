package harness

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/learnlog/internal/config"
)

func TestLoadScenario(t *testing.T) {
	scenario, err := LoadScenario("testdata/scenarios/review_cycle.yaml")
	require.NoError(t, err)

	assert.Equal(t, "review_cycle", scenario.Name)
	assert.Equal(t, time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC), scenario.Start.UTC())
	assert.Equal(t, config.Duration(time.Minute), scenario.Step)
	assert.Equal(t, StepConcept, scenario.Steps[0].Kind())
	assert.Equal(t, []string{"Go", "Constants"}, scenario.Steps[0].Concept.Tags)
	assert.Equal(t, StepAdvance, scenario.Steps[4].Kind())
	assert.Equal(t, config.Duration(48*time.Hour), scenario.Steps[4].Advance)
	assert.Equal(t, "NOT_FOUND", scenario.Steps[6].ExpectError)
	assert.Equal(t, config.Duration(24*time.Hour), scenario.Assertions[5].Staleness)
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}

func TestParseScenario_Defaults(t *testing.T) {
	scenario, err := ParseScenario([]byte(`
name: defaults
description: d
steps:
  - review: x
assertions:
  - type: pending
`))
	require.NoError(t, err)
	assert.Equal(t, DefaultStart, scenario.start())
	assert.Equal(t, DefaultStep, scenario.step())
	assert.Equal(t, 7, scenario.exportDays())
}

func TestParseScenario_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{
			name: "bad duration",
			yaml: "name: n\ndescription: d\nstep: [1]\n",
			want: "failed to parse YAML",
		},
		{
			name: "typo",
			yaml: "name: n\ndescription: d\nsteps:\n  - review: x\nassertion:\n  - type: pending\n",
			want: "field assertion not found",
		},
		{
			name: "missing name",
			yaml: "description: d\nsteps:\n  - review: x\nassertions:\n  - type: pending\n",
			want: "name is required",
		},
		{
			name: "missing description",
			yaml: "name: n\nsteps:\n  - review: x\nassertions:\n  - type: pending\n",
			want: "description is required",
		},
		{
			name: "no steps",
			yaml: "name: n\ndescription: d\nassertions:\n  - type: pending\n",
			want: "steps list is required",
		},
		{
			name: "no assertions",
			yaml: "name: n\ndescription: d\nsteps:\n  - review: x\n",
			want: "assertions list is required",
		},
		{
			name: "empty step",
			yaml: "name: n\ndescription: d\nsteps:\n  - expect_error: X\nassertions:\n  - type: pending\n",
			want: "steps[0]: exactly one of",
		},
		{
			name: "two actions",
			yaml: "name: n\ndescription: d\nsteps:\n  - review: x\n    advance: 1h\nassertions:\n  - type: pending\n",
			want: "steps[0]: exactly one of",
		},
		{
			name: "negative advance",
			yaml: "name: n\ndescription: d\nsteps:\n  - advance: -1h\nassertions:\n  - type: pending\n",
			want: "advance must not be negative",
		},
		{
			name: "unknown assertion",
			yaml: "name: n\ndescription: d\nsteps:\n  - review: x\nassertions:\n  - type: trace_contains\n",
			want: `unknown assertion type "trace_contains"`,
		},
		{
			name: "unknown table",
			yaml: "name: n\ndescription: d\nsteps:\n  - review: x\nassertions:\n  - type: count\n    table: invocations\n",
			want: `unknown table "invocations"`,
		},
		{
			name: "search without text",
			yaml: "name: n\ndescription: d\nsteps:\n  - review: x\nassertions:\n  - type: search\n",
			want: "text is required for search",
		},
		{
			name: "tag without tag",
			yaml: "name: n\ndescription: d\nsteps:\n  - review: x\nassertions:\n  - type: tag\n",
			want: "tag is required for tag",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadScenario_AllTestdataParse(t *testing.T) {
	entries, err := os.ReadDir("testdata/scenarios")
	require.NoError(t, err)
	for _, e := range entries {
		_, err := LoadScenario(filepath.Join("testdata/scenarios", e.Name()))
		assert.NoError(t, err, e.Name())
	}
}
