package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestLoadScenario_ValidFile(t *testing.T) {
	scenario, err := LoadScenario(filepath.Join("testdata", "scenarios", "company_basics.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "company_basics", scenario.Name)
	assert.Equal(t, filepath.Join("testdata", "scenarios", "company.json"), scenario.Schema,
		"schema path resolves against the scenario file")
	assert.True(t, scenario.Validate)
	require.Len(t, scenario.Cases, 5)
	assert.Equal(t, "decode", scenario.Cases[2].Mode)
	assert.Nil(t, scenario.Cases[2].Expect)
	assert.Equal(t, "UNRESOLVED_TABLE", scenario.Cases[4].Expect.Error)
	assert.Len(t, scenario.Assertions, 7)
	require.NotNil(t, scenario.Assertions[5].Success)
	assert.False(t, *scenario.Assertions[5].Success)
}

func TestLoadScenario_InlineSchema(t *testing.T) {
	scenario, err := LoadScenario(filepath.Join("testdata", "scenarios", "outer_join.yaml"))
	require.NoError(t, err)
	assert.Empty(t, scenario.Schema)
	require.NotNil(t, scenario.InlineSchema)

	doc, err := scenario.schemaDocument()
	require.NoError(t, err)
	assert.Contains(t, string(doc), "tables:")
	assert.Contains(t, string(doc), "dept_name")
}

func TestParseScenario_InlineSchema(t *testing.T) {
	scenario, err := ParseScenario([]byte(`
name: inline
description: tables given in place
inline_schema:
  employees: [id, name, dept_id]
  departments:
    - id
    - dept_name
cases:
  - question: show name from employees
`))
	require.NoError(t, err)
	require.NotNil(t, scenario.InlineSchema)

	doc, err := scenario.schemaDocument()
	require.NoError(t, err)

	var got map[string]map[string][]string
	require.NoError(t, yaml.Unmarshal(doc, &got))
	assert.Equal(t, map[string][]string{
		"employees":   {"id", "name", "dept_id"},
		"departments": {"id", "dept_name"},
	}, got["tables"])
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "failed to read scenario file")
}

func TestLoadScenario_MissingSchemaFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
name: s
description: d
schema: nowhere.json
cases:
  - question: show name from employees
`), 0o644))

	_, err := LoadScenario(path)
	assert.ErrorContains(t, err, "schema file not found")
}

func TestParseScenario_Invalid(t *testing.T) {
	const head = "name: s\ndescription: d\nschema: x.json\n"
	tests := []struct {
		name    string
		doc     string
		wantErr string
	}{
		{"unknown field", head + "cases:\n  - question: q\nflow: []\n", "failed to parse YAML"},
		{"missing name", "description: d\nschema: x.json\ncases:\n  - question: q\n", "name is required"},
		{"missing description", "name: s\nschema: x.json\ncases:\n  - question: q\n", "description is required"},
		{"no schema", "name: s\ndescription: d\ncases:\n  - question: q\n", "one of schema or inline_schema"},
		{
			"both schemas",
			head + "inline_schema:\n  t: [a]\ncases:\n  - question: q\n",
			"mutually exclusive",
		},
		{"no cases", head, "cases list is required"},
		{"empty question", head + "cases:\n  - mode: rules\n", "cases[0]: question is required"},
		{"bad mode", head + "cases:\n  - question: q\n    mode: beam\n", `unknown mode "beam"`},
		{
			"error with sql",
			head + "cases:\n  - question: q\n    expect:\n      error: X\n      sql: SELECT 1\n",
			"error excludes sql and route",
		},
		{
			"unknown assertion",
			head + "cases:\n  - question: q\nassertions:\n  - type: trace_order\n",
			`unknown assertion type "trace_order"`,
		},
		{
			"sql_contains without text",
			head + "cases:\n  - question: q\nassertions:\n  - type: sql_contains\n    question: q\n",
			"question and text are required",
		},
		{
			"route_count without route",
			head + "cases:\n  - question: q\nassertions:\n  - type: route_count\n",
			"route is required",
		},
		{
			"error_count without code",
			head + "cases:\n  - question: q\nassertions:\n  - type: error_count\n",
			"code is required",
		},
		{
			"modes_agree without question",
			head + "cases:\n  - question: q\nassertions:\n  - type: modes_agree\n",
			"question is required for modes_agree",
		},
		{
			"negative count",
			head + "cases:\n  - question: q\nassertions:\n  - type: history_count\n    count: -1\n",
			"count must be non-negative",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tt.doc))
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}
