package queryast

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidate_CleanQuery(t *testing.T) {
	q := Query{
		Select: []SelectItem{{Column: "employees.name"}},
		From:   []string{"employees"},
		Where:  Condition{Column: "employees.salary", Op: ">", Value: IntLit(5000)},
	}

	result := Validate(q)
	assert.True(t, result.Renderable)
	assert.Empty(t, result.Warnings)
}

func TestValidate_Placeholders(t *testing.T) {
	q := Query{
		Select:  []SelectItem{{Column: "<COLUMN>"}},
		From:    []string{"<TABLE>"},
		GroupBy: []string{"<COLUMN>"},
	}

	result := Validate(q)
	assert.False(t, result.Renderable)
	assert.Len(t, result.Warnings, 3)
}

func TestValidate_HavingWithoutAggregate(t *testing.T) {
	q := Query{
		Select: []SelectItem{{Column: "dept_id"}},
		From:   []string{"employees"},
		Having: []HavingCondition{{Agg: "SUM", Column: "salary", Op: ">", Value: IntLit(1)}},
	}

	result := Validate(q)
	assert.Contains(t, result.Warnings, "HAVING without an aggregate in SELECT")
}

func TestValidate_OuterJoinFilter(t *testing.T) {
	q := Query{
		Select: []SelectItem{{Column: "employees.name"}},
		From:   []string{"employees"},
		Joins: []Join{{
			Type:  JoinLeft,
			Table: "departments",
			On:    JoinOn{Left: "employees.dept_id", Op: "=", Right: "departments.id"},
		}},
		Where: Condition{Column: "departments.dept_name", Op: "=", Value: StringLit("sales")},
	}

	result := Validate(q)
	assert.Equal(t, []string{"WHERE filter on nullable table departments of LEFT JOIN"}, result.Warnings)
}

func TestNullableTable(t *testing.T) {
	j := Join{Table: "departments"}

	j.Type = JoinLeft
	assert.Equal(t, "departments", NullableTable("employees", j))
	j.Type = JoinRight
	assert.Equal(t, "employees", NullableTable("employees", j))
	j.Type = JoinInner
	assert.Equal(t, "", NullableTable("employees", j))
}

func TestOnlyTouches(t *testing.T) {
	mixed := Logical{
		Op:    Or,
		Left:  Condition{Column: "departments.dept_name"},
		Right: Condition{Column: "employees.name"},
	}
	assert.False(t, OnlyTouches(mixed, "departments"))
	assert.True(t, OnlyTouches(Condition{Column: "departments.id"}, "departments"))
	assert.False(t, OnlyTouches(nil, "departments"))
}
