package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/nlsql/internal/errs"
)

func TestLoadCUE_Flat(t *testing.T) {
	src := `
tables: {
	employees: ["id", "name", "salary", "dept_id"]
	departments: ["id", "dept_name"]
}
`
	shape, err := LoadCUE([]byte(src), "company.cue")
	require.NoError(t, err)

	c, err := New(shape)
	require.NoError(t, err)
	assert.Equal(t, []string{"employees", "departments"}, c.Tables())
	assert.Equal(t, []string{"id", "dept_name"}, c.Columns("departments"))
}

func TestLoadCUE_Typed(t *testing.T) {
	src := `
tables: {
	employees: {
		numeric: ["id", "salary"]
		text: ["name"]
	}
	projects: {
		columns: ["code", "title"]
		pk: "code"
	}
}
`
	shape, err := LoadCUE([]byte(src), "typed.cue")
	require.NoError(t, err)

	typed, ok := shape.(TypedShape)
	require.True(t, ok)

	c, err := New(typed)
	require.NoError(t, err)
	assert.Equal(t, CategoryNumeric, c.ColumnType("employees", "salary"))
	assert.Equal(t, "code", c.PrimaryKey("projects"))
}

func TestLoadCUE_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"syntax", `tables: {`},
		{"missing tables", `other: 1`},
		{"empty tables", `tables: {}`},
		{"non-string column", `tables: {t: [1, 2]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadCUE([]byte(tt.src), "bad.cue")
			require.Error(t, err)
			assert.Equal(t, errs.CodeSchemaInvalid, errs.CodeOf(err))
		})
	}
}
