package vocab

import (
	"strings"

	"github.com/roach88/nlsql/internal/queryast"
)

// Linearize converts q into its abstract token sequence:
//
//	<START> SELECT [AGG] <COLUMN>… FROM <TABLE>
//	  (JOIN <TABLE> ON <COLUMN> [op] <COLUMN>)…
//	  [WHERE <COLUMN> op <VALUE> (AND|OR <COLUMN> op <VALUE>)…]
//	  [GROUP_BY <COLUMN>…]
//	  [HAVING AGG <COLUMN> op <VALUE> (AND|OR …)…]
//	  [ORDER_BY (<COLUMN> ASC|DESC)…]
//	  [LIMIT <VALUE>] [OFFSET <VALUE>] <END>
//
// Schema identifiers and literals are never emitted, only placeholders;
// BindingsFor returns the matching bindings. WHERE trees are emitted in
// order without grouping, so a tree whose shape differs from plain
// AND-over-OR precedence does not survive a round trip. Extra ON
// conditions are not linearized.
func Linearize(q queryast.Query) []string {
	tokens := []string{Start, Select}

	for _, item := range q.Select {
		if item.Agg != "" {
			tokens = append(tokens, aggToken(item.Agg))
		}
		tokens = append(tokens, ColumnPH)
	}

	tokens = append(tokens, From, TablePH)

	for _, j := range q.Joins {
		tokens = append(tokens, JoinKeyword(j.Type), TablePH)
		if j.Type == queryast.JoinCross {
			continue
		}
		tokens = append(tokens, On, ColumnPH)
		if j.On.Op != "" && j.On.Op != "=" {
			tokens = append(tokens, OperatorToken(j.On.Op))
		}
		tokens = append(tokens, ColumnPH)
	}

	if q.Where != nil {
		tokens = append(tokens, Where)
		tokens = appendBoolNode(tokens, q.Where)
	}

	if len(q.GroupBy) > 0 {
		tokens = append(tokens, GroupBy)
		for range q.GroupBy {
			tokens = append(tokens, ColumnPH)
		}
	}

	if len(q.Having) > 0 {
		logic := string(q.HavingLogic)
		if logic == "" {
			logic = And
		}
		tokens = append(tokens, Having)
		for i, h := range q.Having {
			if i > 0 {
				tokens = append(tokens, logic)
			}
			tokens = append(tokens, aggToken(h.Agg), ColumnPH, OperatorToken(h.Op), ValuePH)
		}
	}

	if len(q.OrderBy) > 0 {
		tokens = append(tokens, OrderBy)
		for _, o := range q.OrderBy {
			dir := Asc
			if strings.EqualFold(string(o.Direction), Desc) {
				dir = Desc
			}
			tokens = append(tokens, ColumnPH, dir)
		}
	}

	if q.Limit != nil {
		tokens = append(tokens, Limit, ValuePH)
	}
	if q.Offset != nil {
		tokens = append(tokens, Offset, ValuePH)
	}

	return append(tokens, End)
}

func appendBoolNode(tokens []string, node queryast.BoolNode) []string {
	switch n := node.(type) {
	case queryast.Condition:
		return append(tokens, ColumnPH, OperatorToken(n.Op), ValuePH)
	case queryast.Logical:
		tokens = appendBoolNode(tokens, n.Left)
		tokens = append(tokens, string(n.Op))
		return appendBoolNode(tokens, n.Right)
	default:
		return tokens
	}
}

// JoinKeyword returns the token that opens a join of type t.
func JoinKeyword(t queryast.JoinType) string {
	switch t {
	case queryast.JoinLeft:
		return LeftJoin
	case queryast.JoinRight:
		return RightJoin
	case queryast.JoinFull:
		return FullJoin
	case queryast.JoinCross:
		return CrossJoin
	default:
		return Join
	}
}

// JoinTypeOf is the inverse of JoinKeyword. Unknown keywords map to INNER.
func JoinTypeOf(tok string) queryast.JoinType {
	switch tok {
	case LeftJoin:
		return queryast.JoinLeft
	case RightJoin:
		return queryast.JoinRight
	case FullJoin:
		return queryast.JoinFull
	case CrossJoin:
		return queryast.JoinCross
	default:
		return queryast.JoinInner
	}
}

// OperatorToken maps a SQL comparison operator ("NOT IN", "<>", ">=") to
// its vocabulary token. Unknown operators map to "=".
func OperatorToken(op string) string {
	tok := strings.Join(strings.Fields(strings.ToUpper(op)), "_")
	if tok == "<>" {
		tok = "!="
	}
	if IsOperator(tok) {
		return tok
	}
	return "="
}

func aggToken(agg string) string {
	tok := strings.ToUpper(agg)
	if vocab.groups[tok] == groupAgg {
		return tok
	}
	return AggPH
}
