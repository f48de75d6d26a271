package harness

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/roach88/learnlog/internal/config"
	"github.com/roach88/learnlog/internal/criteria"
)

// DefaultStart is the clock start when a scenario does not set one.
var DefaultStart = time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)

// DefaultStep is how far the clock moves on each read when a scenario does
// not set one.
const DefaultStep = time.Minute

// Scenario is one end-to-end run of the capture pipeline.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Start is the clock start time.
	Start time.Time `yaml:"start,omitempty"`

	// Step is how far the clock moves on each read.
	Step config.Duration `yaml:"step,omitempty"`

	// ExportDays is the export window; 0 means 7.
	ExportDays int `yaml:"export_days,omitempty"`

	// Steps run in order against a fresh store.
	Steps []Step `yaml:"steps"`

	// Assertions are checked after the last step.
	Assertions []Assertion `yaml:"assertions"`
}

// Step is one action. Exactly one of the action fields is set.
type Step struct {
	Event   map[string]any  `yaml:"event,omitempty"`
	Raw     string          `yaml:"raw,omitempty"`
	Concept *ConceptStep    `yaml:"concept,omitempty"`
	Pattern *PatternStep    `yaml:"pattern,omitempty"`
	Gotcha  *GotchaStep     `yaml:"gotcha,omitempty"`
	Review  string          `yaml:"review,omitempty"`
	Advance config.Duration `yaml:"advance,omitempty"`

	// ExpectError is the error code this step must fail with.
	ExpectError string `yaml:"expect_error,omitempty"`
}

// ConceptStep logs a concept.
type ConceptStep struct {
	Name        string   `yaml:"name"`
	Explanation string   `yaml:"explanation"`
	Code        string   `yaml:"code,omitempty"`
	Tags        []string `yaml:"tags,omitempty"`
	Session     string   `yaml:"session,omitempty"`
}

// PatternStep logs a pattern.
type PatternStep struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Tags        []string `yaml:"tags,omitempty"`
}

// GotchaStep logs a gotcha.
type GotchaStep struct {
	Description string   `yaml:"description"`
	Severity    string   `yaml:"severity,omitempty"`
	Code        string   `yaml:"code,omitempty"`
	Concept     string   `yaml:"concept,omitempty"`
	Tags        []string `yaml:"tags,omitempty"`
}

// Step kinds, as reported in StepOutcome.Kind.
const (
	StepEvent   = "event"
	StepRaw     = "raw"
	StepConcept = "concept"
	StepPattern = "pattern"
	StepGotcha  = "gotcha"
	StepReview  = "review"
	StepAdvance = "advance"
)

// Kind returns which action the step carries, or "" when it carries none
// or more than one.
func (s Step) Kind() string {
	var kinds []string
	if s.Event != nil {
		kinds = append(kinds, StepEvent)
	}
	if s.Raw != "" {
		kinds = append(kinds, StepRaw)
	}
	if s.Concept != nil {
		kinds = append(kinds, StepConcept)
	}
	if s.Pattern != nil {
		kinds = append(kinds, StepPattern)
	}
	if s.Gotcha != nil {
		kinds = append(kinds, StepGotcha)
	}
	if s.Review != "" {
		kinds = append(kinds, StepReview)
	}
	if s.Advance != 0 {
		kinds = append(kinds, StepAdvance)
	}
	if len(kinds) != 1 {
		return ""
	}
	return kinds[0]
}

// Assertion checks the final state.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	// Table is the table counted (count).
	Table string `yaml:"table,omitempty"`

	// Count is the expected number (count, pending).
	Count int `yaml:"count,omitempty"`

	// Text is the search text (search).
	Text string `yaml:"text,omitempty"`

	// Tag is the tag looked up (tag).
	Tag string `yaml:"tag,omitempty"`

	// Staleness overrides the review window (due).
	Staleness config.Duration `yaml:"staleness,omitempty"`

	// Names are the expected concept names (due, search, tag).
	Names []string `yaml:"names,omitempty"`
}

// Assertion type constants.
const (
	AssertCount   = "count"
	AssertPending = "pending"
	AssertDue     = "due"
	AssertSearch  = "search"
	AssertTag     = "tag"
)

// LoadScenario reads and parses a scenario YAML file.
// Unknown fields are rejected so typos fail loudly.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML and validates it.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return errors.New("name is required")
	}
	if s.Description == "" {
		return errors.New("description is required")
	}
	if len(s.Steps) == 0 {
		return errors.New("steps list is required and must be non-empty")
	}
	if len(s.Assertions) == 0 {
		return errors.New("assertions list is required and must be non-empty")
	}
	if s.Step < 0 {
		return errors.New("step must not be negative")
	}
	if s.ExportDays < 0 {
		return errors.New("export_days must not be negative")
	}

	for i, step := range s.Steps {
		if step.Kind() == "" {
			return fmt.Errorf("steps[%d]: exactly one of event, raw, concept, pattern, gotcha, review, advance is required", i)
		}
		if step.Advance < 0 {
			return fmt.Errorf("steps[%d]: advance must not be negative", i)
		}
	}

	for i := range s.Assertions {
		if err := validateAssertion(i, &s.Assertions[i]); err != nil {
			return err
		}
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertCount:
		if !criteria.Table(a.Table).Valid() {
			return fmt.Errorf("assertions[%d]: unknown table %q for count", index, a.Table)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative", index)
		}
	case AssertPending:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative", index)
		}
	case AssertDue:
		if a.Staleness < 0 {
			return fmt.Errorf("assertions[%d]: staleness must not be negative", index)
		}
	case AssertSearch:
		if a.Text == "" {
			return fmt.Errorf("assertions[%d]: text is required for search", index)
		}
	case AssertTag:
		if a.Tag == "" {
			return fmt.Errorf("assertions[%d]: tag is required for tag", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}

func (s *Scenario) start() time.Time {
	if s.Start.IsZero() {
		return DefaultStart
	}
	return s.Start
}

func (s *Scenario) step() time.Duration {
	if s.Step == 0 {
		return DefaultStep
	}
	return time.Duration(s.Step)
}

func (s *Scenario) exportDays() int {
	if s.ExportDays == 0 {
		return 7
	}
	return s.ExportDays
}
