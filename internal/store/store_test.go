package store

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/nlsql/internal/schema"
)

func TestOpen_CreatesNewDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer s.Close()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Error("database file was not created")
	}
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")

	for i := 0; i < 3; i++ {
		s, err := Open(path)
		if err != nil {
			t.Fatalf("Open() iteration %d failed: %v", i, err)
		}
		s.Close()
	}
}

func TestOpen_Pragmas(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	defer s.Close()

	assert.NoError(t, s.verifyPragma("journal_mode", "wal"))
	assert.NoError(t, s.verifyPragma("user_version", "1"))
}

func TestOpenReadOnly_MissingFile(t *testing.T) {
	_, err := OpenReadOnly(filepath.Join(t.TempDir(), "missing.db"))
	assert.Error(t, err)
}

func TestWriteReadSyntheses(t *testing.T) {
	ctx := context.Background()
	s, err := Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.WriteSynthesis(ctx, Synthesis{
		ID: "a", Question: "show name from employees", Mode: "rules",
		Success: true, SQL: "SELECT employees.name FROM employees",
	}))
	require.NoError(t, s.WriteSynthesis(ctx, Synthesis{
		ID: "b", Question: "list widgets", Mode: "rules",
		ErrorCode: "UNRESOLVED_TABLE", ErrorMsg: "no table",
	}))
	// Duplicate id is ignored.
	require.NoError(t, s.WriteSynthesis(ctx, Synthesis{ID: "a", Question: "dup", Mode: "rules"}))

	all, err := s.ReadSyntheses(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "a", all[0].ID)
	assert.True(t, all[0].Success)
	assert.Equal(t, "show name from employees", all[0].Question)
	assert.Equal(t, "b", all[1].ID)
	assert.False(t, all[1].Success)
	assert.Equal(t, "UNRESOLVED_TABLE", all[1].ErrorCode)

	last, err := s.ReadSyntheses(ctx, 1)
	require.NoError(t, err)
	require.Len(t, last, 1)
	assert.Equal(t, "b", last[0].ID)

	rec, ok, err := s.ReadSynthesis(ctx, "b")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "no table", rec.ErrorMsg)

	_, ok, err = s.ReadSynthesis(ctx, "zzz")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestReadSyntheses_EmptyIsNotNil(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	defer s.Close()

	got, err := s.ReadSyntheses(context.Background(), 10)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

// createUserDatabase writes a small company database and returns its path.
func createUserDatabase(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "company.db")

	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec(`
		CREATE TABLE departments (
			id INTEGER PRIMARY KEY,
			dept_name VARCHAR(64) NOT NULL
		);
		CREATE TABLE employees (
			id INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			salary REAL,
			hired_at DATETIME,
			dept_id INTEGER REFERENCES departments(id)
		);
	`)
	require.NoError(t, err)
	return path
}

func TestIntrospect(t *testing.T) {
	s, err := OpenReadOnly(createUserDatabase(t))
	require.NoError(t, err)
	defer s.Close()

	shape, err := s.Introspect(context.Background())
	require.NoError(t, err)
	require.Len(t, shape.Tables, 2)

	dept := shape.Tables[0]
	assert.Equal(t, "departments", dept.Name)
	assert.Equal(t, "id", dept.PrimaryKey)

	emp := shape.Tables[1]
	assert.Equal(t, "employees", emp.Name)
	assert.Equal(t, []schema.Bucket{
		{Category: schema.CategoryNumeric, Columns: []string{"id", "salary", "dept_id"}},
		{Category: schema.CategoryText, Columns: []string{"name"}},
		{Category: schema.CategoryDate, Columns: []string{"hired_at"}},
	}, emp.Buckets)
	assert.Equal(t, []schema.ForeignKey{
		{Column: "dept_id", RefTable: "departments", RefColumn: "id"},
	}, emp.ForeignKeys)

	catalog, err := schema.New(shape)
	require.NoError(t, err)
	pair, ok := catalog.DiscoverRelationship("employees", "departments")
	require.True(t, ok)
	assert.Equal(t, "employees.dept_id", pair.Left)
	assert.Equal(t, "departments.id", pair.Right)
}

func TestReadOnly_RejectsWrites(t *testing.T) {
	s, err := OpenReadOnly(createUserDatabase(t))
	require.NoError(t, err)
	defer s.Close()

	err = s.WriteSynthesis(context.Background(), Synthesis{ID: "x"})
	assert.True(t, errors.Is(err, ErrReadOnly))

	_, err = s.DB().Exec(`CREATE TABLE t (x INTEGER)`)
	assert.Error(t, err)
}

func TestCategoryOf(t *testing.T) {
	tests := []struct {
		decl string
		want schema.Category
	}{
		{"INTEGER", schema.CategoryNumeric},
		{"BIGINT", schema.CategoryNumeric},
		{"REAL", schema.CategoryNumeric},
		{"DECIMAL(10,2)", schema.CategoryNumeric},
		{"VARCHAR(20)", schema.CategoryText},
		{"TEXT", schema.CategoryText},
		{"DATE", schema.CategoryDate},
		{"TIMESTAMP", schema.CategoryDate},
		{"", schema.CategoryText},
	}
	for _, tt := range tests {
		t.Run(tt.decl, func(t *testing.T) {
			assert.Equal(t, tt.want, CategoryOf(tt.decl))
		})
	}
}
