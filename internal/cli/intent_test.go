package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntent_Text(t *testing.T) {
	stdout, _, err := execute(t, "intent", "total", "salary", "by", "dept_id", "having", "sum", ">", "100000")
	require.NoError(t, err)

	assert.Contains(t, stdout, "Text:              total salary by dept_id having sum > 100000\n")
	assert.Contains(t, stdout, "Intent:            aggregation\n")
	assert.Contains(t, stdout, "Aggregations:      sum\n")
	assert.Contains(t, stdout, "Group by:          dept_id\n")
	assert.Contains(t, stdout, "Having:            sum > 100000\n")
	assert.NotContains(t, stdout, "Having logic")
}

func TestIntent_Join(t *testing.T) {
	stdout, _, err := execute(t, "intent", "customers without orders")
	require.NoError(t, err)

	assert.Contains(t, stdout, "Join:              LEFT (explicit)\n")
	assert.Contains(t, stdout, "Preserve:          customers\n")
}

func TestIntent_Where(t *testing.T) {
	stdout, _, err := execute(t, "intent", "show name from employees where dept_name = 'sales'")
	require.NoError(t, err)

	assert.Contains(t, stdout, "Comparison:        = 'sales'\n")
	assert.Contains(t, stdout, "Where:             dept_name = 'sales'\n")
}

func TestIntent_JSON(t *testing.T) {
	stdout, _, err := execute(t, "--format", "json", "intent", "total salary by dept_id")
	require.NoError(t, err)

	var resp struct {
		Status string `json:"status"`
		Data   struct {
			Text         string   `json:"text"`
			Intent       string   `json:"intent"`
			Aggregations []string `json:"aggregations"`
			GroupBy      []string `json:"group_by"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "total salary by dept_id", resp.Data.Text)
	assert.Equal(t, "aggregation", resp.Data.Intent)
	assert.Equal(t, []string{"sum"}, resp.Data.Aggregations)
	assert.Equal(t, []string{"dept_id"}, resp.Data.GroupBy)
}

func TestIntent_RequiresQuestion(t *testing.T) {
	_, _, err := execute(t, "intent")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "requires at least 1 arg")
}
