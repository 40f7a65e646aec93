// Package vocab defines the closed token alphabet of the query decoder and
// the conversions between tokens, queries and raw query maps.
//
// The alphabet is fixed at compile time and the token↔id table is built
// once at package initialisation; it is never mutated afterwards, so every
// function here is safe for concurrent use.
//
// Token sequences come in two forms:
//   - abstract: schema identifiers and literals are placeholders
//     (<TABLE>, <COLUMN>, <VALUE>). Linearize produces these and the
//     decoder generates them.
//   - bound: placeholders replaced by concrete names and SQL literals.
//     Bind produces these and ParseTokens reads them.
package vocab

// Special tokens.
const (
	Pad   = "<PAD>"
	Start = "<START>"
	End   = "<END>"
	Unk   = "<UNK>"
)

// Clause keywords.
const (
	Select   = "SELECT"
	From     = "FROM"
	Where    = "WHERE"
	GroupBy  = "GROUP_BY"
	Having   = "HAVING"
	OrderBy  = "ORDER_BY"
	Limit    = "LIMIT"
	Offset   = "OFFSET"
	Distinct = "DISTINCT"
)

// Join keywords.
const (
	Join      = "JOIN"
	InnerJoin = "INNER_JOIN"
	LeftJoin  = "LEFT_JOIN"
	RightJoin = "RIGHT_JOIN"
	FullJoin  = "FULL_JOIN"
	CrossJoin = "CROSS_JOIN"
	On        = "ON"
	Using     = "USING"
)

// Logical and ordering tokens.
const (
	And  = "AND"
	Or   = "OR"
	Not  = "NOT"
	Asc  = "ASC"
	Desc = "DESC"
)

// Placeholders.
const (
	TablePH  = "<TABLE>"
	ColumnPH = "<COLUMN>"
	ValuePH  = "<VALUE>"
	AliasPH  = "<ALIAS>"
	AggPH    = "<AGG>"
)

var (
	specialTokens = []string{Pad, Start, End, Unk}
	sqlKeywords   = []string{Select, From, Where, GroupBy, Having, OrderBy, Limit, Offset, Distinct}
	joinKeywords  = []string{Join, InnerJoin, LeftJoin, RightJoin, FullJoin, CrossJoin, On, Using}
	aggFuncs      = []string{"COUNT", "SUM", "AVG", "MIN", "MAX"}
	operators     = []string{"=", "!=", ">", "<", ">=", "<=", "IN", "NOT_IN", "BETWEEN", "LIKE", "NOT_LIKE", "IS_NULL", "IS_NOT_NULL"}
	logicalTokens = []string{And, Or, Not, Asc, Desc}
	placeholders  = []string{TablePH, ColumnPH, ValuePH, AliasPH, AggPH}
)

type table struct {
	tokens []string
	ids    map[string]int
	groups map[string]group
}

type group uint8

var groupNames = map[group]string{
	groupSpecial:     "special",
	groupKeyword:     "keyword",
	groupJoin:        "join",
	groupAgg:         "aggregate",
	groupOperator:    "operator",
	groupLogical:     "logical",
	groupPlaceholder: "placeholder",
}

const (
	groupSpecial group = iota + 1
	groupKeyword
	groupJoin
	groupAgg
	groupOperator
	groupLogical
	groupPlaceholder
)

var vocab = newTable()

func newTable() table {
	t := table{
		ids:    make(map[string]int),
		groups: make(map[string]group),
	}
	add := func(g group, toks []string) {
		for _, tok := range toks {
			t.ids[tok] = len(t.tokens)
			t.groups[tok] = g
			t.tokens = append(t.tokens, tok)
		}
	}
	add(groupSpecial, specialTokens)
	add(groupKeyword, sqlKeywords)
	add(groupJoin, joinKeywords)
	add(groupAgg, aggFuncs)
	add(groupOperator, operators)
	add(groupLogical, logicalTokens)
	add(groupPlaceholder, placeholders)
	return t
}

// Size returns the number of tokens in the vocabulary.
func Size() int {
	return len(vocab.tokens)
}

// ID returns the id of tok, or the id of <UNK> for unknown tokens.
func ID(tok string) int {
	if id, ok := vocab.ids[tok]; ok {
		return id
	}
	return vocab.ids[Unk]
}

// Token returns the token with the given id, or <UNK> when out of range.
func Token(id int) string {
	if id < 0 || id >= len(vocab.tokens) {
		return Unk
	}
	return vocab.tokens[id]
}

// Contains reports whether tok is in the vocabulary.
func Contains(tok string) bool {
	_, ok := vocab.ids[tok]
	return ok
}

// IDs maps tokens to ids.
func IDs(tokens []string) []int {
	out := make([]int, len(tokens))
	for i, t := range tokens {
		out[i] = ID(t)
	}
	return out
}

// Tokens maps ids to tokens.
func Tokens(ids []int) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = Token(id)
	}
	return out
}

// All returns the vocabulary in id order.
func All() []string {
	out := make([]string, len(vocab.tokens))
	copy(out, vocab.tokens)
	return out
}

// AggFuncs returns the aggregation function tokens.
func AggFuncs() []string { return clone(aggFuncs) }

// Operators returns the comparison operator tokens.
func Operators() []string { return clone(operators) }

// Group names the token class of tok: special, keyword, join, aggregate,
// operator, logical or placeholder. Unknown tokens have no group.
func Group(tok string) string {
	return groupNames[vocab.groups[tok]]
}

// IsAgg reports whether tok is an aggregation function or <AGG>.
func IsAgg(tok string) bool {
	return vocab.groups[tok] == groupAgg || tok == AggPH
}

// IsOperator reports whether tok is a comparison operator token.
func IsOperator(tok string) bool {
	return vocab.groups[tok] == groupOperator
}

// IsJoinType reports whether tok opens a JOIN clause.
func IsJoinType(tok string) bool {
	return vocab.groups[tok] == groupJoin && tok != On && tok != Using
}

// IsPlaceholder reports whether tok is one of the abstract placeholders.
func IsPlaceholder(tok string) bool {
	return vocab.groups[tok] == groupPlaceholder
}

// IsStructural reports whether tok is a special token, a clause keyword,
// a join keyword or ON. Structural tokens never name a column or table.
func IsStructural(tok string) bool {
	switch vocab.groups[tok] {
	case groupSpecial, groupKeyword, groupJoin:
		return true
	default:
		return false
	}
}

func clone(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}
