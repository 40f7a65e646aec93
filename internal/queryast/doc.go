// Package queryast provides the canonical in-memory representation of a
// generated SQL query.
//
// The AST is the contract between the synthesis front-ends (rule-based
// pipeline and token-driven decoder) and the SQL renderer:
//
//	[intent + alignment] → [Query] → [render]
//	[grammar decoder]    → [raw map] → Adapt → [Query] → [render]
//
// BOOLEAN EXPRESSIONS:
//
// WHERE clauses have a single shape, the sealed BoolNode union:
//
//	Condition{Column, Op, Value}      leaf comparison
//	Logical{Op: AND|OR, Left, Right}  internal node
//
// Flat condition lists are folded into left-deep AND chains at ingestion
// (Adapt, AndAll), so the renderer only handles one representation.
// AND binds tighter than OR (see Fold).
//
// BoolNode is a sealed interface using the marker method pattern, enabling
// exhaustive type switches in the renderer:
//
//	switch n := node.(type) {
//	case Condition:
//	    // leaf
//	case Logical:
//	    // recurse
//	}
//
// LITERALS:
//
// Literal is a tagged value (null, string, int, float). Numeric literals
// render unquoted, everything else renders single-quoted.
package queryast
