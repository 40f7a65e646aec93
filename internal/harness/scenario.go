package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Scenario defines a suite of questions asked against one schema.
type Scenario struct {
	// Name uniquely identifies this scenario.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Schema is the path of a schema file (.json, .yaml, .cue or a SQLite
	// database). Relative paths are resolved against the scenario file.
	Schema string `yaml:"schema,omitempty"`

	// InlineSchema is a tables section given in place. Exactly one of
	// Schema and InlineSchema must be set.
	InlineSchema *InlineTables `yaml:"inline_schema,omitempty"`

	// Validate syntax-checks every rendered statement.
	Validate bool `yaml:"validate,omitempty"`

	// Cases are asked in order.
	Cases []Case `yaml:"cases"`

	// Assertions validate the outcomes as a whole.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// InlineTables holds an inline_schema section undecoded. Its table names
// are free-form keys, so the strict field check of the scenario decoder
// must not reach into it.
type InlineTables struct {
	node *yaml.Node
}

// UnmarshalYAML keeps the node as written.
func (t *InlineTables) UnmarshalYAML(value *yaml.Node) error {
	t.node = value
	return nil
}

// MarshalYAML emits the node as written.
func (t InlineTables) MarshalYAML() (any, error) {
	return t.node, nil
}

// Case is one question.
type Case struct {
	Question string `yaml:"question"`

	// Mode is "rules" (default) or "decode".
	Mode string `yaml:"mode,omitempty"`

	// Expect, if set, is checked against the response.
	Expect *ExpectClause `yaml:"expect,omitempty"`
}

// ExpectClause specifies the expected response.
type ExpectClause struct {
	// SQL is the exact expected statement.
	SQL string `yaml:"sql,omitempty"`

	// Error is the expected failure code. A case expecting an error must
	// fail; any other case must succeed.
	Error string `yaml:"error,omitempty"`

	// Route is the expected pipeline route.
	Route string `yaml:"route,omitempty"`
}

// Assertion validates the outcomes of a run.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	// Question selects outcomes (sql_contains, modes_agree).
	Question string `yaml:"question,omitempty"`

	// Text is the expected SQL fragment (sql_contains).
	Text string `yaml:"text,omitempty"`

	// Route is the counted route (route_count).
	Route string `yaml:"route,omitempty"`

	// Code is the counted error code (error_count).
	Code string `yaml:"code,omitempty"`

	// Success and Mode filter history records (history_count).
	Success *bool  `yaml:"success,omitempty"`
	Mode    string `yaml:"mode,omitempty"`

	// Count is the expected number of matches.
	Count int `yaml:"count,omitempty"`
}

// Assertion type constants.
const (
	AssertSQLContains  = "sql_contains"
	AssertRouteCount   = "route_count"
	AssertErrorCount   = "error_count"
	AssertModesAgree   = "modes_agree"
	AssertHistoryCount = "history_count"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields, or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	scenario, err := ParseScenario(data)
	if err != nil {
		return nil, err
	}

	if scenario.Schema != "" && !filepath.IsAbs(scenario.Schema) {
		scenario.Schema = filepath.Join(filepath.Dir(path), scenario.Schema)
	}
	if scenario.Schema != "" {
		if _, err := os.Stat(scenario.Schema); os.IsNotExist(err) {
			return nil, fmt.Errorf("invalid scenario: schema file not found: %s", scenario.Schema)
		}
	}

	return scenario, nil
}

// ParseScenario decodes and validates a scenario document. Schema paths
// are left as written.
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

// schemaDocument renders the inline tables section as a schema document.
func (s *Scenario) schemaDocument() ([]byte, error) {
	doc := map[string]*yaml.Node{"tables": s.InlineSchema.node}
	return yaml.Marshal(doc)
}

func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	switch {
	case s.Schema == "" && s.InlineSchema == nil:
		return fmt.Errorf("one of schema or inline_schema is required")
	case s.Schema != "" && s.InlineSchema != nil:
		return fmt.Errorf("schema and inline_schema are mutually exclusive")
	}

	if len(s.Cases) == 0 {
		return fmt.Errorf("cases list is required and must be non-empty")
	}

	for i, c := range s.Cases {
		if c.Question == "" {
			return fmt.Errorf("cases[%d]: question is required", i)
		}
		switch c.Mode {
		case "", "rules", "decode":
		default:
			return fmt.Errorf("cases[%d]: unknown mode %q", i, c.Mode)
		}
		if c.Expect != nil && c.Expect.Error != "" && (c.Expect.SQL != "" || c.Expect.Route != "") {
			return fmt.Errorf("cases[%d].expect: error excludes sql and route", i)
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertSQLContains:
		if a.Question == "" || a.Text == "" {
			return fmt.Errorf("assertions[%d]: question and text are required for sql_contains", index)
		}
	case AssertRouteCount:
		if a.Route == "" {
			return fmt.Errorf("assertions[%d]: route is required for route_count", index)
		}
	case AssertErrorCount:
		if a.Code == "" {
			return fmt.Errorf("assertions[%d]: code is required for error_count", index)
		}
	case AssertModesAgree:
		if a.Question == "" {
			return fmt.Errorf("assertions[%d]: question is required for modes_agree", index)
		}
	case AssertHistoryCount:
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	if a.Count < 0 {
		return fmt.Errorf("assertions[%d]: count must be non-negative", index)
	}
	return nil
}
