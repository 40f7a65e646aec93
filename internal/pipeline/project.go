package pipeline

import (
	"slices"

	"github.com/roach88/nlsql/internal/errs"
	"github.com/roach88/nlsql/internal/intent"
	"github.com/roach88/nlsql/internal/queryast"
	"github.com/roach88/nlsql/internal/schema"
)

// projection builds SELECT <columns> FROM <table> [WHERE …].
//
// The columns are those of the table named in the projection text (the
// question before "where"), in table order. When none is named verbatim
// the projection terms are aligned against the table's columns instead.
func (p *plan) projection() (queryast.Query, error) {
	table := p.tables[0]
	q := queryast.Query{From: []string{table}}

	cols := p.mentioned(table, p.projectionText())
	for _, col := range cols {
		q.Select = append(q.Select, queryast.SelectItem{Column: schema.Qualify(table, col)})
	}
	if len(q.Select) == 0 {
		for _, col := range p.alignedColumns(table) {
			q.Select = append(q.Select, queryast.SelectItem{Column: col})
		}
	}
	if len(q.Select) == 0 {
		return queryast.Query{}, errs.New(errs.CodeNoProjectionColumns, "no SELECT columns resolved for %s", table).
			With("table", table)
	}

	where, err := p.where()
	if err != nil {
		return queryast.Query{}, err
	}
	q.Where = where
	return q, nil
}

// alignedColumns aligns the projection terms, other than table names,
// against the qualified columns of table.
func (p *plan) alignedColumns(table string) []string {
	var terms []string
	for _, term := range intent.Terms(p.projectionText()) {
		if !p.isTableTerm(term) {
			terms = append(terms, term)
		}
	}

	var qualified []string
	for _, col := range p.catalog.Columns(table) {
		qualified = append(qualified, schema.Qualify(table, col))
	}

	var out []string
	for _, col := range p.aligner.Align(terms, qualified).Columns() {
		if !slices.Contains(out, col) {
			out = append(out, col)
		}
	}
	return out
}

// join builds a two-table projection:
//
//	SELECT <columns> FROM base <TYPE> JOIN other ON <relationship> [WHERE …]
//
// Columns named in the projection text are selected from both tables;
// without any, each table contributes its first non-identifier column.
// WHERE conditions on the nullable side of an outer join move into the ON
// clause.
func (p *plan) join() (queryast.Query, error) {
	base := p.tables[0]
	j, err := p.joinClause()
	if err != nil {
		return queryast.Query{}, err
	}

	q := queryast.Query{
		From:  []string{base},
		Joins: []queryast.Join{j},
	}

	projection := p.projectionText()
	for _, t := range p.tables {
		for _, col := range p.mentioned(t, projection) {
			q.Select = append(q.Select, queryast.SelectItem{Column: schema.Qualify(t, col)})
		}
	}
	if len(q.Select) == 0 {
		for _, t := range p.tables {
			if col := readableColumn(p.catalog.Columns(t)); col != "" {
				q.Select = append(q.Select, queryast.SelectItem{Column: schema.Qualify(t, col)})
			}
		}
	}
	if len(q.Select) == 0 {
		return queryast.Query{}, errs.New(errs.CodeNoProjectionColumns, "no SELECT columns resolved for %s and %s", base, j.Table)
	}

	where, err := p.where()
	if err != nil {
		return queryast.Query{}, err
	}
	q.Where = p.relocate(base, &q.Joins[0], where)
	return q, nil
}

// readableColumn returns the first column that is not an identifier, else
// the first column.
func readableColumn(cols []string) string {
	for _, c := range cols {
		if !isIdentifier(c) {
			return c
		}
	}
	if len(cols) > 0 {
		return cols[0]
	}
	return ""
}
