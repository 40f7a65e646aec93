package schema

import (
	"strings"

	"github.com/jinzhu/inflection"
)

// JoinPair is an equality join condition between two qualified columns.
type JoinPair struct {
	Left  string
	Right string
}

// minStemLen is the shortest <stem>_id prefix accepted as an abbreviation
// of a table name (dept_id → departments).
const minStemLen = 3

// InferJoinCandidates returns heuristic join conditions between tables a
// and b, with Left in a and Right in b:
//   - identical column names
//   - <singular(b)>_id in a paired with b.id
//   - <singular(a)>_id in b paired with a.id
//
// Pairs are deduplicated and returned in discovery order.
func (c *Catalog) InferJoinCandidates(a, b string) []JoinPair {
	colsA := c.Columns(a)
	colsB := c.Columns(b)
	fkToB := inflection.Singular(b) + "_id"
	fkToA := inflection.Singular(a) + "_id"

	var out []JoinPair
	seen := make(map[JoinPair]struct{})
	add := func(p JoinPair) {
		if _, dup := seen[p]; dup {
			return
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}

	for _, ca := range colsA {
		for _, cb := range colsB {
			if ca == cb {
				add(JoinPair{Left: Qualify(a, ca), Right: Qualify(b, cb)})
			}
			if ca == fkToB && c.ColumnExists(b, "id") {
				add(JoinPair{Left: Qualify(a, ca), Right: Qualify(b, "id")})
			}
			if cb == fkToA && c.ColumnExists(a, "id") {
				add(JoinPair{Left: Qualify(a, "id"), Right: Qualify(b, cb)})
			}
		}
	}
	return out
}

// DiscoverRelationship picks the single best join condition between a and
// b (Left in a, Right in b). Candidates are ranked:
//  1. declared foreign keys, either direction
//  2. the <singular(table)>_id ↔ id convention
//  3. abbreviated foreign keys: <stem>_id where stem abbreviates the
//     singular name of the other table, paired with its primary key
//  4. a shared column name other than id
//  5. shared id columns
//
// Returns false when no candidate exists.
func (c *Catalog) DiscoverRelationship(a, b string) (JoinPair, bool) {
	if !c.HasTable(a) || !c.HasTable(b) {
		return JoinPair{}, false
	}

	for _, fk := range c.ForeignKeys(a) {
		if fk.RefTable == b && c.ColumnExists(a, fk.Column) && c.ColumnExists(b, fk.RefColumn) {
			return JoinPair{Left: Qualify(a, fk.Column), Right: Qualify(b, fk.RefColumn)}, true
		}
	}
	for _, fk := range c.ForeignKeys(b) {
		if fk.RefTable == a && c.ColumnExists(b, fk.Column) && c.ColumnExists(a, fk.RefColumn) {
			return JoinPair{Left: Qualify(a, fk.RefColumn), Right: Qualify(b, fk.Column)}, true
		}
	}

	candidates := c.InferJoinCandidates(a, b)
	for _, p := range candidates {
		if Bare(p.Left) != Bare(p.Right) {
			return p, true
		}
	}

	if col, ok := c.stemReference(a, b); ok {
		return JoinPair{Left: Qualify(a, col), Right: Qualify(b, c.PrimaryKey(b))}, true
	}
	if col, ok := c.stemReference(b, a); ok {
		return JoinPair{Left: Qualify(a, c.PrimaryKey(a)), Right: Qualify(b, col)}, true
	}

	for _, p := range candidates {
		if Bare(p.Left) != "id" {
			return p, true
		}
	}
	if len(candidates) > 0 {
		return candidates[0], true
	}
	return JoinPair{}, false
}

// stemReference finds a column of from named <stem>_id whose stem
// abbreviates the singular name of to.
func (c *Catalog) stemReference(from, to string) (string, bool) {
	target := strings.ToLower(inflection.Singular(to))
	for _, col := range c.Columns(from) {
		stem, ok := strings.CutSuffix(strings.ToLower(col), "_id")
		if !ok || len(stem) < minStemLen {
			continue
		}
		if abbreviates(stem, target) {
			return col, true
		}
	}
	return "", false
}

// abbreviates reports whether the letters of stem appear in order in name,
// starting at its first letter (dept → department, cust → customer).
func abbreviates(stem, name string) bool {
	if stem == "" || name == "" || stem[0] != name[0] {
		return false
	}
	i := 0
	for j := 0; j < len(name) && i < len(stem); j++ {
		if stem[i] == name[j] {
			i++
		}
	}
	return i == len(stem)
}
