package queryast

import (
	"encoding/json"
	"strconv"
	"strings"
)

// LiteralKind tags the value carried by a Literal.
type LiteralKind int

const (
	LiteralNull LiteralKind = iota
	LiteralString
	LiteralInt
	LiteralFloat
)

// Literal is a constant operand of a comparison.
type Literal struct {
	Kind  LiteralKind
	Str   string
	Int   int64
	Float float64
}

// NullLit returns the null literal.
func NullLit() Literal { return Literal{Kind: LiteralNull} }

// StringLit returns a string literal.
func StringLit(s string) Literal { return Literal{Kind: LiteralString, Str: s} }

// IntLit returns an integer literal.
func IntLit(n int64) Literal { return Literal{Kind: LiteralInt, Int: n} }

// FloatLit returns a floating point literal.
func FloatLit(f float64) Literal { return Literal{Kind: LiteralFloat, Float: f} }

// IsNull reports whether the literal carries no value.
func (l Literal) IsNull() bool { return l.Kind == LiteralNull }

// IsNumeric reports whether the literal renders unquoted.
func (l Literal) IsNumeric() bool {
	return l.Kind == LiteralInt || l.Kind == LiteralFloat
}

// Text returns the unquoted textual form of the literal.
func (l Literal) Text() string {
	switch l.Kind {
	case LiteralString:
		return l.Str
	case LiteralInt:
		return strconv.FormatInt(l.Int, 10)
	case LiteralFloat:
		return strconv.FormatFloat(l.Float, 'g', -1, 64)
	default:
		return "NULL"
	}
}

// SQL returns the literal as it appears in generated SQL.
func (l Literal) SQL() string {
	switch l.Kind {
	case LiteralInt, LiteralFloat:
		return l.Text()
	case LiteralNull:
		return "NULL"
	default:
		return "'" + strings.ReplaceAll(l.Str, "'", "''") + "'"
	}
}

// MarshalJSON encodes the literal as its natural JSON value.
func (l Literal) MarshalJSON() ([]byte, error) {
	switch l.Kind {
	case LiteralString:
		return json.Marshal(l.Str)
	case LiteralInt:
		return json.Marshal(l.Int)
	case LiteralFloat:
		return json.Marshal(l.Float)
	default:
		return []byte("null"), nil
	}
}

// BoolNode is a WHERE/ON expression node.
//
// This is a sealed interface - only Condition and Logical implement it.
type BoolNode interface {
	boolNode()
}

// Condition is a leaf comparison: <column> <op> <value>.
type Condition struct {
	Column string
	Op     string
	Value  Literal
}

func (Condition) boolNode() {}

// LogicOp combines two boolean nodes.
type LogicOp string

const (
	And LogicOp = "AND"
	Or  LogicOp = "OR"
)

// Logical is an internal node: (<left> <op> <right>).
type Logical struct {
	Op    LogicOp
	Left  BoolNode
	Right BoolNode
}

func (Logical) boolNode() {}

// JoinType is the SQL join flavour.
type JoinType string

const (
	JoinInner JoinType = "INNER"
	JoinLeft  JoinType = "LEFT"
	JoinRight JoinType = "RIGHT"
	JoinFull  JoinType = "FULL"
	JoinCross JoinType = "CROSS"
)

// IsOuter reports whether rows of one side survive without a match.
func (t JoinType) IsOuter() bool {
	return t == JoinLeft || t == JoinRight || t == JoinFull
}

// Direction is an ORDER BY direction.
type Direction string

const (
	Asc  Direction = "ASC"
	Desc Direction = "DESC"
)

// SelectItem is one projection: optional aggregate around a column.
type SelectItem struct {
	Agg    string `json:"agg,omitempty"`
	Column string `json:"column"`
	Alias  string `json:"alias,omitempty"`
}

// JoinOn is the join predicate. Extra holds additional ON conditions; filters
// on the nullable side of an outer join live here rather than in WHERE.
type JoinOn struct {
	Left  string
	Op    string
	Right string
	Extra []BoolNode
}

// Join is one JOIN clause.
type Join struct {
	Type  JoinType
	Table string
	On    JoinOn
}

// HavingCondition is <agg>(<column>) <op> <value>.
type HavingCondition struct {
	Agg    string
	Column string
	Op     string
	Value  Literal
}

// OrderItem is one ORDER BY key.
type OrderItem struct {
	Column    string
	Direction Direction
}

// Query is the canonical renderer-level AST.
type Query struct {
	Select      []SelectItem
	From        []string
	Joins       []Join
	Where       BoolNode // nil = no WHERE clause
	GroupBy     []string
	Having      []HavingCondition
	HavingLogic LogicOp
	OrderBy     []OrderItem
	Limit       *int64
	Offset      *int64
}

// IsPlaceholder reports whether s is an unbound abstract token such as
// <TABLE> or <UNRESOLVED_COLUMN>.
func IsPlaceholder(s string) bool {
	return strings.HasPrefix(s, "<")
}
