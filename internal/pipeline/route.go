package pipeline

import (
	"log/slog"
	"slices"
	"strings"

	"github.com/jinzhu/inflection"

	"github.com/roach88/nlsql/internal/align"
	"github.com/roach88/nlsql/internal/boolexpr"
	"github.com/roach88/nlsql/internal/errs"
	"github.com/roach88/nlsql/internal/intent"
	"github.com/roach88/nlsql/internal/queryast"
	"github.com/roach88/nlsql/internal/schema"
)

// Route is the query shape a question was routed to.
type Route string

const (
	RouteProjection      Route = "projection"
	RouteAggregation     Route = "aggregation"
	RouteJoin            Route = "join"
	RouteJoinAggregation Route = "join_aggregation"
)

// plan holds everything one route needs to build its query.
type plan struct {
	route   Route
	catalog *schema.Catalog
	sig     *intent.Signals
	tables  []string
	aligner *align.Aligner
	builder *boolexpr.Builder
	logger  *slog.Logger
}

// plan resolves the tables of the question and picks its route.
func (s *Synthesizer) plan(catalog *schema.Catalog, sig *intent.Signals) (*plan, error) {
	if sig.Having && !sig.HasAggregation() {
		return nil, errs.New(errs.CodeHavingWithoutAggregation, "HAVING clause requires aggregation")
	}

	p := &plan{
		catalog: catalog,
		sig:     sig,
		aligner: s.aligner,
		builder: s.builder,
		logger:  s.logger,
	}

	tables := resolveTables(catalog, sig.Entities)
	switch {
	case len(tables) >= 2:
		p.tables = tables[:2]
		p.route = RouteJoin
		if sig.HasAggregation() {
			p.route = RouteJoinAggregation
		}
	default:
		if len(tables) == 0 {
			t, ok := tableFromColumns(catalog, sig.Entities)
			if !ok {
				return nil, errs.New(errs.CodeUnresolvedTable, "could not resolve a table from %q", sig.Text)
			}
			tables = []string{t}
		}
		p.tables = tables
		p.route = RouteProjection
		if sig.HasAggregation() || len(sig.GroupBy) > 0 || sig.Having {
			p.route = RouteAggregation
		}
	}

	s.logger.Debug("route selected",
		"route", p.route,
		"tables", p.tables,
	)
	return p, nil
}

func (p *plan) build() (queryast.Query, error) {
	switch p.route {
	case RouteProjection:
		return p.projection()
	case RouteAggregation:
		return p.aggregation()
	case RouteJoin:
		return p.join()
	case RouteJoinAggregation:
		return p.joinAggregation()
	default:
		return queryast.Query{}, errs.New(errs.CodeInternal, "unknown route %q", p.route)
	}
}

// resolveTables maps question terms onto schema tables, accepting singular
// and plural forms. Tables keep first-mention order.
func resolveTables(catalog *schema.Catalog, terms []string) []string {
	var out []string
	for _, term := range terms {
		name, ok := matchTable(catalog, term)
		if ok && !slices.Contains(out, name) {
			out = append(out, name)
		}
	}
	return out
}

func matchTable(catalog *schema.Catalog, term string) (string, bool) {
	for _, candidate := range []string{term, inflection.Plural(term), inflection.Singular(term)} {
		if catalog.HasTable(candidate) {
			return candidate, true
		}
	}
	return "", false
}

// tableFromColumns picks the table holding the most mentioned columns.
// Ties go to the table declared first.
func tableFromColumns(catalog *schema.Catalog, terms []string) (string, bool) {
	var best string
	bestHits := 0
	for _, t := range catalog.Tables() {
		hits := 0
		for _, term := range terms {
			if catalog.ColumnExists(t, term) {
				hits++
			}
		}
		if hits > bestHits {
			best, bestHits = t, hits
		}
	}
	return best, bestHits > 0
}

// projectionText is the question before its WHERE clause.
func (p *plan) projectionText() string {
	before, _, _ := strings.Cut(p.sig.Text, " where ")
	return before
}

// whereText is the WHERE clause of the question, up to any GROUP BY,
// HAVING or ORDER BY part, with compound comparison phrases rewritten to
// symbols. ok is false when the question has none.
func (p *plan) whereText() (string, bool) {
	_, after, ok := strings.Cut(intent.RewriteCompoundOps(p.sig.Text), " where ")
	if !ok {
		return "", false
	}
	for _, sep := range []string{" group by ", " order by ", " by ", " having "} {
		if i := strings.Index(after, sep); i >= 0 {
			after = after[:i]
		}
	}
	after = strings.TrimSpace(after)
	return after, after != ""
}

// where builds the WHERE tree over the columns of the plan's tables. The
// first table is the base for bare column names.
func (p *plan) where() (queryast.BoolNode, error) {
	text, ok := p.whereText()
	if !ok {
		return nil, nil
	}
	base := p.tables[0]
	return p.builder.Parse(text, base, p.catalog.Columns(base), p.qualifiedColumns())
}

// qualifiedColumns returns the columns of the plan's tables, qualified.
func (p *plan) qualifiedColumns() []string {
	var out []string
	for _, t := range p.tables {
		for _, col := range p.catalog.Columns(t) {
			out = append(out, schema.Qualify(t, col))
		}
	}
	return out
}

// mentioned returns the columns of table named by a term of text, in
// column order.
func (p *plan) mentioned(table, text string) []string {
	terms := intent.Terms(text)
	var out []string
	for _, col := range p.catalog.Columns(table) {
		if slices.Contains(terms, col) {
			out = append(out, col)
		}
	}
	return out
}

// isTableTerm reports whether term names one of the plan's tables.
func (p *plan) isTableTerm(term string) bool {
	name, ok := matchTable(p.catalog, term)
	return ok && slices.Contains(p.tables, name)
}

// isIdentifier reports whether col names a key rather than a measure.
func isIdentifier(col string) bool {
	return col == "id" || strings.HasSuffix(col, "_id")
}
