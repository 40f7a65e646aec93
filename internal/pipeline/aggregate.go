package pipeline

import (
	"slices"
	"strings"

	"github.com/roach88/nlsql/internal/errs"
	"github.com/roach88/nlsql/internal/intent"
	"github.com/roach88/nlsql/internal/queryast"
	"github.com/roach88/nlsql/internal/schema"
)

// numericNames are column names treated as measures in flat schemas.
var numericNames = []string{"salary", "age", "marks", "amount", "price", "quantity", "weight", "total"}

// aggregation builds a single-table aggregate:
//
//	SELECT <group cols>, AGG(<col>) FROM t [WHERE …] [GROUP BY …] [HAVING …]
//
// Without an aggregation keyword (a bare "by" question) COUNT is used.
// Selected columns are bare; GROUP BY columns are qualified.
func (p *plan) aggregation() (queryast.Query, error) {
	table := p.tables[0]
	agg := p.aggFunc()

	groupTerms := p.groupTerms()
	aggCol, err := p.aggColumn(table, agg, groupTerms)
	if err != nil {
		return queryast.Query{}, err
	}

	q := queryast.Query{From: []string{table}}
	for _, term := range groupTerms {
		if term == aggCol {
			continue
		}
		col, ok := p.resolveColumn(table, term)
		if !ok || slices.Contains(q.GroupBy, col) {
			continue
		}
		q.GroupBy = append(q.GroupBy, col)
		q.Select = append(q.Select, queryast.SelectItem{Column: schema.Bare(col)})
	}
	q.Select = append(q.Select, queryast.SelectItem{Agg: agg, Column: aggCol})
	q.Having, q.HavingLogic = p.having(agg, aggCol)

	where, err := p.where()
	if err != nil {
		return queryast.Query{}, err
	}
	q.Where = where
	return q, nil
}

// joinAggregation builds a grouped aggregate over two joined tables:
//
//	SELECT <group col>, AGG(<col>) FROM base JOIN other ON … GROUP BY <group col> [HAVING …]
//
// COUNT counts the joined table's primary key; other aggregates take the
// first measure column mentioned in the question.
func (p *plan) joinAggregation() (queryast.Query, error) {
	base := p.tables[0]
	j, err := p.joinClause()
	if err != nil {
		return queryast.Query{}, err
	}
	agg := p.aggFunc()

	group, ok := p.joinGroupColumn()
	if !ok {
		return queryast.Query{}, errs.New(errs.CodeNoProjectionColumns, "GROUP BY column not resolved")
	}

	var aggCol string
	if agg == "COUNT" {
		aggCol = schema.Qualify(j.Table, p.catalog.PrimaryKey(j.Table))
	} else {
		aggCol, ok = p.joinMeasure(group)
		if !ok {
			return queryast.Query{}, errs.New(errs.CodeNoProjectionColumns, "aggregation column not resolved")
		}
	}

	q := queryast.Query{
		Select: []queryast.SelectItem{
			{Column: group},
			{Agg: agg, Column: aggCol},
		},
		From:    []string{base},
		Joins:   []queryast.Join{j},
		GroupBy: []string{group},
	}
	q.Having, q.HavingLogic = p.having(agg, aggCol)

	where, err := p.where()
	if err != nil {
		return queryast.Query{}, err
	}
	q.Where = p.relocate(base, &q.Joins[0], where)
	return q, nil
}

func (p *plan) aggFunc() string {
	if agg := p.sig.FirstAggregation(); agg != "" {
		return strings.ToUpper(agg)
	}
	return "COUNT"
}

// groupTerms are the terms after "by", up to any WHERE, HAVING or ORDER
// part.
func (p *plan) groupTerms() []string {
	_, after, ok := strings.Cut(p.sig.Text, " by ")
	if !ok {
		return nil
	}
	for _, sep := range []string{" where ", " having ", " order "} {
		if i := strings.Index(after, sep); i >= 0 {
			after = after[:i]
		}
	}
	return intent.Terms(after)
}

// measureText is the part of the question naming what is aggregated.
func (p *plan) measureText() string {
	text := p.sig.Text
	for _, sep := range []string{" by ", " where ", " having "} {
		if i := strings.Index(text, sep); i >= 0 {
			text = text[:i]
		}
	}
	return text
}

// aggColumn picks the aggregated column of table (bare):
//  1. a column named verbatim in the measure text
//  2. for COUNT, the primary key
//  3. an aligned non-identifier column
//  4. the first measure column (numeric bucket, else a numeric-sounding name)
func (p *plan) aggColumn(table, agg string, groupTerms []string) (string, error) {
	var candidates []string
	for _, term := range intent.Terms(p.measureText()) {
		if slices.Contains(groupTerms, term) {
			continue
		}
		if p.catalog.ColumnExists(table, term) {
			return term, nil
		}
		if intent.DetectAggregation(term) == "" && !p.isTableTerm(term) {
			candidates = append(candidates, term)
		}
	}

	if agg == "COUNT" {
		if pk := p.catalog.PrimaryKey(table); pk != "" {
			return pk, nil
		}
	}

	var qualified []string
	for _, col := range p.catalog.Columns(table) {
		if !isIdentifier(col) {
			qualified = append(qualified, schema.Qualify(table, col))
		}
	}
	if col, ok := p.aligner.Align(candidates, qualified).First(); ok {
		return schema.Bare(col), nil
	}

	if col, ok := p.measureColumn(table); ok {
		return col, nil
	}
	return "", errs.New(errs.CodeNoProjectionColumns, "no valid aggregation column found in %s", table).
		With("table", table)
}

// measureColumn returns the first non-identifier numeric column of table:
// from the numeric bucket of a typed schema, by name otherwise.
func (p *plan) measureColumn(table string) (string, bool) {
	for _, col := range p.catalog.Columns(table) {
		if isIdentifier(col) {
			continue
		}
		if p.catalog.Typed() {
			if p.catalog.IsNumeric(table, col) {
				return col, true
			}
			continue
		}
		if slices.Contains(numericNames, col) {
			return col, true
		}
	}
	return "", false
}

// resolveColumn qualifies a term against table, exactly or by alignment.
func (p *plan) resolveColumn(table, term string) (string, bool) {
	if col, ok := p.catalog.ResolveColumn(table, term); ok {
		return col, true
	}
	var qualified []string
	for _, col := range p.catalog.Columns(table) {
		qualified = append(qualified, schema.Qualify(table, col))
	}
	return p.aligner.Align([]string{term}, qualified).First()
}

// joinGroupColumn resolves the GROUP BY column of a joined aggregate: a
// column named after "by", or the readable column of a table named there,
// else the first non-identifier column named in the projection text.
func (p *plan) joinGroupColumn() (string, bool) {
	terms := p.groupTerms()
	for _, t := range p.tables {
		for _, col := range p.catalog.Columns(t) {
			if slices.Contains(terms, col) {
				return schema.Qualify(t, col), true
			}
		}
	}
	for _, term := range terms {
		if name, ok := matchTable(p.catalog, term); ok && slices.Contains(p.tables, name) {
			if col := readableColumn(p.catalog.Columns(name)); col != "" {
				return schema.Qualify(name, col), true
			}
		}
	}

	projection := p.projectionText()
	for _, t := range p.tables {
		for _, col := range p.mentioned(t, projection) {
			if !isIdentifier(col) {
				return schema.Qualify(t, col), true
			}
		}
	}
	return "", false
}

// joinMeasure finds the aggregated column of a joined aggregate: the first
// mentioned non-identifier column other than group, numeric in a typed
// schema; else the first measure column of either table.
func (p *plan) joinMeasure(group string) (string, bool) {
	for _, t := range p.tables {
		for _, col := range p.mentioned(t, p.sig.Text) {
			qualified := schema.Qualify(t, col)
			if isIdentifier(col) || qualified == group {
				continue
			}
			if p.catalog.Typed() && !p.catalog.IsNumeric(t, col) {
				continue
			}
			return qualified, true
		}
	}
	for _, t := range p.tables {
		if col, ok := p.measureColumn(t); ok {
			return schema.Qualify(t, col), true
		}
	}
	return "", false
}

// having builds the HAVING conditions on col: one per extracted having
// condition, else a single comparison from the question-wide operator and
// value when the question has a HAVING part.
func (p *plan) having(agg, col string) ([]queryast.HavingCondition, queryast.LogicOp) {
	if len(p.sig.HavingConditions) > 0 {
		out := make([]queryast.HavingCondition, 0, len(p.sig.HavingConditions))
		for _, c := range p.sig.HavingConditions {
			out = append(out, queryast.HavingCondition{
				Agg:    strings.ToUpper(c.Agg),
				Column: col,
				Op:     c.Op,
				Value:  queryast.IntLit(c.Value),
			})
		}
		return out, p.sig.HavingLogic
	}

	if p.sig.Having && p.sig.HasValue() {
		return []queryast.HavingCondition{{
			Agg:    agg,
			Column: col,
			Op:     p.sig.Operator,
			Value:  p.sig.Value,
		}}, queryast.And
	}
	return nil, ""
}
