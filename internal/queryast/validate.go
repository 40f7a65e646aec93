package queryast

import (
	"fmt"
	"strings"
)

// ValidationResult contains structural analysis of a query.
type ValidationResult struct {
	// Renderable indicates FROM holds at least one resolved table.
	Renderable bool

	// Warnings lists suspicious but renderable constructs.
	Warnings []string
}

// Validate inspects a query for constructs that render but are unlikely to
// be what the caller meant:
//  1. Unbound placeholders (<COLUMN>, <TABLE>, ...) anywhere in the query
//  2. HAVING without any aggregate in SELECT
//  3. WHERE filters on the nullable side of an outer join, which turn the
//     outer join back into an inner join
//  4. An empty SELECT list
//
// Validate is a pure function with no side effects.
func Validate(q Query) ValidationResult {
	v := &validator{warnings: []string{}}
	v.validate(q)

	return ValidationResult{
		Renderable: hasResolvedTable(q.From),
		Warnings:   v.warnings,
	}
}

type validator struct {
	warnings []string
}

func (v *validator) addWarning(format string, args ...any) {
	v.warnings = append(v.warnings, fmt.Sprintf(format, args...))
}

func (v *validator) validate(q Query) {
	if len(q.Select) == 0 {
		v.addWarning("empty SELECT list")
	}

	hasAgg := false
	for _, s := range q.Select {
		if IsPlaceholder(s.Column) {
			v.addWarning("unbound placeholder %s in SELECT", s.Column)
		}
		if s.Agg != "" {
			hasAgg = true
		}
	}

	for _, t := range q.From {
		if IsPlaceholder(t) {
			v.addWarning("unbound placeholder %s in FROM", t)
		}
	}

	for _, j := range q.Joins {
		if IsPlaceholder(j.Table) {
			v.addWarning("unbound placeholder %s in JOIN", j.Table)
		}
		if IsPlaceholder(j.On.Left) || IsPlaceholder(j.On.Right) {
			v.addWarning("unbound placeholder in ON clause of %s", j.Table)
		}
	}

	for _, c := range Columns(q.Where) {
		if IsPlaceholder(c) {
			v.addWarning("unbound placeholder %s in WHERE", c)
		}
	}

	for _, g := range q.GroupBy {
		if IsPlaceholder(g) {
			v.addWarning("unbound placeholder %s in GROUP BY", g)
		}
	}

	if len(q.Having) > 0 && !hasAgg {
		v.addWarning("HAVING without an aggregate in SELECT")
	}

	v.validateOuterJoinFilters(q)
}

// validateOuterJoinFilters flags WHERE conjuncts that only touch the
// nullable table of an outer join.
func (v *validator) validateOuterJoinFilters(q Query) {
	if q.Where == nil || len(q.From) == 0 {
		return
	}
	for _, j := range q.Joins {
		nullable := NullableTable(q.From[0], j)
		if nullable == "" {
			continue
		}
		for _, conj := range Conjuncts(q.Where) {
			if OnlyTouches(conj, nullable) {
				v.addWarning("WHERE filter on nullable table %s of %s JOIN", nullable, j.Type)
			}
		}
	}
}

// NullableTable returns the side of an outer join whose rows are not
// preserved: the joined table for LEFT, the base table for RIGHT.
// Returns "" for inner, cross and full joins.
func NullableTable(base string, j Join) string {
	switch j.Type {
	case JoinLeft:
		return j.Table
	case JoinRight:
		return base
	default:
		return ""
	}
}

// OnlyTouches reports whether every column in node is qualified with table.
func OnlyTouches(node BoolNode, table string) bool {
	cols := Columns(node)
	if len(cols) == 0 {
		return false
	}
	prefix := table + "."
	for _, c := range cols {
		if !strings.HasPrefix(c, prefix) {
			return false
		}
	}
	return true
}

func hasResolvedTable(from []string) bool {
	for _, t := range from {
		if t != "" && !IsPlaceholder(t) {
			return true
		}
	}
	return false
}
