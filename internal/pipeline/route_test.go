package pipeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/nlsql/internal/errs"
	"github.com/roach88/nlsql/internal/intent"
	"github.com/roach88/nlsql/internal/queryast"
	"github.com/roach88/nlsql/internal/schema"
)

const typedSchema = `
tables:
  employees:
    numeric: [id, salary, age]
    text: [name]
  departments:
    numeric: [id]
    text: [dept_name]
`

func loadCatalog(t *testing.T, doc string) *schema.Catalog {
	t.Helper()
	c, err := schema.Load([]byte(doc))
	require.NoError(t, err)
	return c
}

func TestResolveTables(t *testing.T) {
	c := loadCatalog(t, companySchema)

	assert.Equal(t, []string{"employees", "departments"},
		resolveTables(c, []string{"employee", "name", "departments", "employees"}))
	assert.Equal(t, []string{"departments"}, resolveTables(c, []string{"department"}))
	assert.Empty(t, resolveTables(c, []string{"salary", "total"}))
}

func TestTableFromColumns(t *testing.T) {
	c := loadCatalog(t, companySchema)

	got, ok := tableFromColumns(c, []string{"total", "salary", "dept_id"})
	require.True(t, ok)
	assert.Equal(t, "employees", got)

	got, ok = tableFromColumns(c, []string{"dept_name"})
	require.True(t, ok)
	assert.Equal(t, "departments", got)

	// "id" is in both tables: the first declared wins.
	got, ok = tableFromColumns(c, []string{"id"})
	require.True(t, ok)
	assert.Equal(t, "employees", got)

	_, ok = tableFromColumns(c, []string{"nothing"})
	assert.False(t, ok)
}

func TestPlan_Routes(t *testing.T) {
	s := newTestSynthesizer(t)
	c := loadCatalog(t, companySchema)

	tests := []struct {
		question string
		route    Route
		tables   []string
	}{
		{"show name from employees", RouteProjection, []string{"employees"}},
		{"salary of employees by dept_id", RouteAggregation, []string{"employees"}},
		{"how many employees", RouteAggregation, []string{"employees"}},
		{"employees and departments", RouteJoin, []string{"employees", "departments"}},
		{"departments with employees and their salary", RouteJoin, []string{"departments", "employees"}},
		{"number of employees per department", RouteJoinAggregation, []string{"employees", "departments"}},
	}
	for _, tt := range tests {
		t.Run(tt.question, func(t *testing.T) {
			sig := intent.Extract(tt.question)
			p, err := s.plan(c, &sig)
			require.NoError(t, err)
			assert.Equal(t, tt.route, p.route)
			assert.Equal(t, tt.tables, p.tables)
		})
	}
}

func TestPlan_HavingWithoutAggregation(t *testing.T) {
	s := newTestSynthesizer(t)
	sig := intent.Extract("employees having salary > 10")
	_, err := s.plan(loadCatalog(t, companySchema), &sig)
	assert.Equal(t, errs.CodeHavingWithoutAggregation, errs.CodeOf(err))
}

func TestJoinClause_Types(t *testing.T) {
	s := newTestSynthesizer(t)
	c := loadCatalog(t, companySchema)

	tests := []struct {
		name     string
		sig      intent.Signals
		wantType queryast.JoinType
	}{
		{"detected type kept", intent.Signals{JoinType: queryast.JoinInner}, queryast.JoinInner},
		{"empty type is inner", intent.Signals{}, queryast.JoinInner},
		{"base preserved", intent.Signals{JoinType: queryast.JoinRight, PreserveTable: "employees"}, queryast.JoinLeft},
		{"joined table preserved", intent.Signals{JoinType: queryast.JoinLeft, PreserveTable: "departments"}, queryast.JoinRight},
		{"singular preserved name", intent.Signals{PreserveTable: "department"}, queryast.JoinRight},
		{"preserved name outside the pair", intent.Signals{JoinType: queryast.JoinRight, PreserveTable: "those"}, queryast.JoinLeft},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sig := tt.sig
			p := &plan{catalog: c, sig: &sig, tables: []string{"employees", "departments"}, logger: s.logger}
			j, err := p.joinClause()
			require.NoError(t, err)
			assert.Equal(t, tt.wantType, j.Type)
			assert.Equal(t, "departments", j.Table)
			assert.Equal(t, queryast.JoinOn{Left: "employees.dept_id", Op: "=", Right: "departments.id"}, j.On)
		})
	}
}

func TestRelocate(t *testing.T) {
	s := newTestSynthesizer(t)
	p := &plan{logger: s.logger}

	onDept := queryast.Condition{Column: "departments.dept_name", Op: "=", Value: queryast.StringLit("sales")}
	onEmp := queryast.Condition{Column: "employees.salary", Op: ">", Value: queryast.IntLit(10)}
	mixed := queryast.Logical{Op: queryast.Or, Left: onDept, Right: onEmp}

	t.Run("left join moves nullable conjuncts", func(t *testing.T) {
		j := queryast.Join{Type: queryast.JoinLeft, Table: "departments"}
		where := p.relocate("employees", &j, queryast.AndAll(onDept, onEmp))
		assert.Equal(t, onEmp, where)
		assert.Equal(t, []queryast.BoolNode{onDept}, j.On.Extra)
	})

	t.Run("right join moves base conjuncts", func(t *testing.T) {
		j := queryast.Join{Type: queryast.JoinRight, Table: "departments"}
		where := p.relocate("employees", &j, queryast.AndAll(onDept, onEmp))
		assert.Equal(t, onDept, where)
		assert.Equal(t, []queryast.BoolNode{onEmp}, j.On.Extra)
	})

	t.Run("mixed disjunction stays", func(t *testing.T) {
		j := queryast.Join{Type: queryast.JoinLeft, Table: "departments"}
		where := p.relocate("employees", &j, mixed)
		assert.Equal(t, mixed, where)
		assert.Empty(t, j.On.Extra)
	})

	t.Run("everything moved leaves no where", func(t *testing.T) {
		j := queryast.Join{Type: queryast.JoinLeft, Table: "departments"}
		assert.Nil(t, p.relocate("employees", &j, onDept))
		assert.Len(t, j.On.Extra, 1)
	})

	t.Run("inner join untouched", func(t *testing.T) {
		j := queryast.Join{Type: queryast.JoinInner, Table: "departments"}
		where := p.relocate("employees", &j, queryast.AndAll(onDept, onEmp))
		assert.Equal(t, queryast.AndAll(onDept, onEmp), where)
		assert.Empty(t, j.On.Extra)
	})
}

func TestAggregation_TypedSchema(t *testing.T) {
	s := newTestSynthesizer(t)
	c := loadCatalog(t, typedSchema)

	tests := []struct {
		question string
		want     string
	}{
		{"average for employees", "SELECT AVG(salary) FROM employees"},
		{"highest age of employees", "SELECT MAX(age) FROM employees"},
		{"how many employees", "SELECT COUNT(id) FROM employees"},
		{
			"average salary by name where age > 30",
			"SELECT name, AVG(salary) FROM employees WHERE employees.age > 30 GROUP BY employees.name",
		},
	}
	for _, tt := range tests {
		t.Run(tt.question, func(t *testing.T) {
			res, err := s.Synthesize(context.Background(), c, tt.question, ModeRules)
			require.NoError(t, err)
			assert.Equal(t, tt.want, res.SQL)
		})
	}
}

func TestWhereText(t *testing.T) {
	tests := []struct {
		text string
		want string
		ok   bool
	}{
		{"show name from employees where salary > 5", "salary > 5", true},
		{"total salary where age > 30 by dept_id", "age > 30", true},
		{"total salary where age > 30 having sum > 5", "age > 30", true},
		{"show name from employees", "", false},
		{"show name where ", "", false},
	}
	for _, tt := range tests {
		p := &plan{sig: &intent.Signals{Text: tt.text}}
		got, ok := p.whereText()
		assert.Equal(t, tt.ok, ok, tt.text)
		assert.Equal(t, tt.want, got, tt.text)
	}
}

func TestReadableColumn(t *testing.T) {
	assert.Equal(t, "name", readableColumn([]string{"id", "dept_id", "name"}))
	assert.Equal(t, "id", readableColumn([]string{"id", "dept_id"}))
	assert.Equal(t, "", readableColumn(nil))
}
