package intent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/nlsql/internal/queryast"
)

func TestExtract_Projection(t *testing.T) {
	s := Extract("show name and salary from employees where salary > 5000")

	assert.Equal(t, KindSelect, s.Kind)
	assert.Empty(t, s.Aggregations)
	assert.Equal(t, []string{"name", "salary", "employees"}, s.Tables)
	assert.True(t, s.Join)
	assert.Equal(t, queryast.JoinInner, s.JoinType)
	assert.Equal(t, Implicit, s.JoinConfidence)
	assert.Equal(t, ">", s.Operator)
	assert.Equal(t, queryast.IntLit(5000), s.Value)
	assert.True(t, s.Where)
	assert.Equal(t, []Condition{
		{Column: "salary", Op: ">", Value: queryast.IntLit(5000)},
	}, s.WhereConditions)
	assert.False(t, s.Having)
}

func TestExtract_Aggregation(t *testing.T) {
	s := Extract("total salary by dept_id")

	assert.Equal(t, KindAggregation, s.Kind)
	assert.Equal(t, []string{"sum"}, s.Aggregations)
	assert.Equal(t, []string{"salary"}, s.Tables)
	assert.False(t, s.Join)
	assert.Equal(t, []string{"dept_id"}, s.GroupBy)
	assert.False(t, s.Where)
	assert.False(t, s.HasValue())
}

func TestExtract_AggregationOrder(t *testing.T) {
	s := Extract("count of employees and average salary")
	assert.Equal(t, []string{"avg", "count"}, s.Aggregations)
	assert.Equal(t, "avg", s.FirstAggregation())
}

func TestExtract_WhereInvariant(t *testing.T) {
	// A literal anywhere sets Where even without the " where " separator.
	s := Extract("employees named 'bob'")
	assert.True(t, s.Where)
	assert.Equal(t, queryast.StringLit("bob"), s.Value)
	assert.Empty(t, s.WhereConditions)

	s = Extract("list employees")
	assert.False(t, s.Where)
}

func TestExtract_WhereConditions(t *testing.T) {
	s := Extract("show name from employees where salary greater than 5000 and dept_name = 'sales' or age <= 30")

	assert.Equal(t, []Condition{
		{Column: "salary", Op: ">", Value: queryast.IntLit(5000)},
		{Column: "dept_name", Op: "=", Value: queryast.StringLit("sales")},
		{Column: "age", Op: "<=", Value: queryast.IntLit(30)},
	}, s.WhereConditions)
}

func TestExtract_CompoundOperatorIsNotSplit(t *testing.T) {
	s := Extract("employees where salary greater than or equal to 100")

	require.Len(t, s.WhereConditions, 1)
	assert.Equal(t, ">=", s.WhereConditions[0].Op)
	assert.Equal(t, ">=", s.Operator)
}

func TestRewriteCompoundOps(t *testing.T) {
	tests := []struct{ in, want string }{
		{"salary greater than or equal to 5000", "salary >= 5000"},
		{"age less than or equal to 30 or salary > 1", "age <= 30 or salary > 1"},
		{"salary greater than 5000", "salary greater than 5000"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, RewriteCompoundOps(tt.in), tt.in)
	}
}

func TestExtract_Operators(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"salary at least 10", ">="},
		{"salary at most 10", "<="},
		{"salary above 10", ">"},
		{"salary below 10", "<"},
		{"salary equals 10", "="},
		{"salary is not 10", "!="},
		{"salary <> 10", "!="},
		{"salary below 10 but > 5", ">"},
		{"this salary 10", "="},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, Extract(tt.text).Operator)
		})
	}
}

func TestExtract_Synonyms(t *testing.T) {
	s := Extract("show employee name and department name")
	assert.Equal(t, []string{"emp_name", "dept_name"}, s.Entities)
	assert.Empty(t, s.Tables)
}

func TestExtract_Having(t *testing.T) {
	s := Extract("total salary by dept_id having total salary > 100000 and count > 3")

	assert.True(t, s.Having)
	assert.Equal(t, queryast.And, s.HavingLogic)
	assert.Equal(t, []HavingCondition{
		{Agg: "sum", Op: ">", Value: 100000},
		{Agg: "count", Op: ">", Value: 3},
	}, s.HavingConditions)
	assert.Equal(t, []string{"dept_id"}, s.GroupBy)
}

func TestExtract_HavingOr(t *testing.T) {
	s := Extract("average salary by dept_id having average salary above 50 or max salary at least 900 or salary foo")

	assert.Equal(t, queryast.Or, s.HavingLogic)
	// The third clause has no aggregation or number and is dropped.
	assert.Equal(t, []HavingCondition{
		{Agg: "avg", Op: ">", Value: 50},
		{Agg: "max", Op: ">=", Value: 900},
	}, s.HavingConditions)
}

func TestExtract_JoinTypes(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		join     queryast.JoinType
		conf     Confidence
		preserve string
	}{
		{
			name: "base preserved",
			text: "customers without orders",
			join: queryast.JoinLeft, conf: Explicit, preserve: "customers",
		},
		{
			name: "joined table preserved",
			text: "customers and orders with no customers",
			join: queryast.JoinRight, conf: Explicit, preserve: "orders",
		},
		{
			name: "preserve phrase",
			text: "employees with or without departments",
			join: queryast.JoinLeft, conf: Explicit,
		},
		{
			name: "their",
			text: "employees and their departments",
			join: queryast.JoinLeft, conf: Explicit,
		},
		{
			name: "inner by default",
			text: "employees departments",
			join: queryast.JoinInner, conf: Implicit,
		},
		{
			name: "all requires a word boundary",
			text: "small employees departments",
			join: queryast.JoinInner, conf: Implicit,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Extract(tt.text)
			require.True(t, s.Join)
			assert.Equal(t, tt.join, s.JoinType)
			assert.Equal(t, tt.conf, s.JoinConfidence)
			assert.Equal(t, tt.preserve, s.PreserveTable)
		})
	}
}

func TestExtract_SingleTableHasNoJoinType(t *testing.T) {
	s := Extract("employees")
	assert.False(t, s.Join)
	assert.Equal(t, queryast.JoinInner, s.JoinType)
	assert.Equal(t, Implicit, s.JoinConfidence)
}

func TestExtract_Normalization(t *testing.T) {
	s := Extract("  SHOW   Name FROM Employees  ")
	assert.Equal(t, "show name from employees", s.Text)
	assert.Equal(t, []string{"name", "employees"}, s.Entities)
}

func TestExtract_FloatLiteral(t *testing.T) {
	s := Extract("products where price < 9.5")
	assert.Equal(t, queryast.FloatLit(9.5), s.Value)
	assert.Equal(t, []string{"9.5"}, s.Numbers)
}

func TestTerms(t *testing.T) {
	assert.Equal(t, []string{"salary", "emp_name"}, Terms("the salary of employee name"))
	assert.Empty(t, Terms("show the"))
}

func TestLiteral(t *testing.T) {
	assert.Equal(t, queryast.StringLit("x y"), Literal(`name = "x y" and 5`))
	assert.Equal(t, queryast.IntLit(5), Literal("age > 5"))
	assert.True(t, Literal("no value here").IsNull())
}
