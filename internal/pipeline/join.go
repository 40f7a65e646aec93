package pipeline

import (
	"github.com/roach88/nlsql/internal/errs"
	"github.com/roach88/nlsql/internal/queryast"
)

// joinClause joins the second plan table onto the first.
//
// The ON predicate is the relationship the catalog discovers between the
// two tables; none is UNRESOLVED_JOIN_RELATIONSHIP. The join type is the
// one detected in the question, overridden by the preserved table when
// the question names one: the base table gives LEFT, the joined table
// RIGHT, and any other preserved name LEFT.
func (p *plan) joinClause() (queryast.Join, error) {
	base, other := p.tables[0], p.tables[1]

	rel, ok := p.catalog.DiscoverRelationship(base, other)
	if !ok {
		return queryast.Join{}, errs.NewJoinRelationshipError(base, other)
	}

	typ := p.sig.JoinType
	if typ == "" {
		typ = queryast.JoinInner
	}
	switch preserve := p.sig.PreserveTable; {
	case preserve == "":
	case preserve == base:
		typ = queryast.JoinLeft
	case preserve == other:
		typ = queryast.JoinRight
	default:
		if name, ok := matchTable(p.catalog, preserve); ok && name == other {
			typ = queryast.JoinRight
		} else {
			typ = queryast.JoinLeft
		}
	}

	p.logger.Debug("join resolved",
		"base", base,
		"table", other,
		"type", typ,
		"on", rel.Left+" = "+rel.Right,
	)

	return queryast.Join{
		Type:  typ,
		Table: other,
		On:    queryast.JoinOn{Left: rel.Left, Op: "=", Right: rel.Right},
	}, nil
}

// relocate moves the WHERE conjuncts that only touch the nullable side of
// an outer join into its ON clause and returns what stays in WHERE.
//
// A filter on the nullable table left in WHERE discards the unmatched rows
// the outer join exists to keep.
func (p *plan) relocate(base string, j *queryast.Join, where queryast.BoolNode) queryast.BoolNode {
	nullable := queryast.NullableTable(base, *j)
	if nullable == "" || where == nil {
		return where
	}

	var keep []queryast.BoolNode
	for _, conj := range queryast.Conjuncts(where) {
		if queryast.OnlyTouches(conj, nullable) {
			j.On.Extra = append(j.On.Extra, conj)
			continue
		}
		keep = append(keep, conj)
	}

	if moved := len(j.On.Extra); moved > 0 {
		p.logger.Debug("relocated outer join filters",
			"table", nullable,
			"conditions", moved,
		)
	}
	return queryast.AndAll(keep...)
}
