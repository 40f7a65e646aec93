// Package grammar constrains token-by-token query generation.
//
// Three layers:
//
//	InferState    tokens so far → clause state
//	AllowedTokens clause state (+ intent) → ids permitted next
//	Decoder       masked greedy loop against a scoring Oracle
//
// Everything except the Decoder is a pure function of its inputs.
package grammar

import (
	"slices"

	"github.com/roach88/nlsql/internal/vocab"
)

// State is the decoder's position in the SQL clause structure.
type State int

const (
	StateStart State = iota
	StateSelect
	StateFrom
	StateJoinExpectTable
	StateJoinExpectOn
	StateJoinCondition1
	StateJoinCondition2
	StateJoinFinished
	StateWhere
	StateGroupBy
	StateHaving
	StateOrderBy
	StateLimitOffset
	StateEnd
)

var stateNames = [...]string{
	StateStart:           "START",
	StateSelect:          "SELECT",
	StateFrom:            "FROM",
	StateJoinExpectTable: "JOIN_EXPECT_TABLE",
	StateJoinExpectOn:    "JOIN_EXPECT_ON",
	StateJoinCondition1:  "JOIN_CONDITION_1",
	StateJoinCondition2:  "JOIN_CONDITION_2",
	StateJoinFinished:    "JOIN_FINISHED",
	StateWhere:           "WHERE",
	StateGroupBy:         "GROUP_BY",
	StateHaving:          "HAVING",
	StateOrderBy:         "ORDER_BY",
	StateLimitOffset:     "LIMIT_OFFSET",
	StateEnd:             "END",
}

// String returns the state name.
func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "UNKNOWN"
	}
	return stateNames[s]
}

// InferState derives the clause state from the tokens generated so far.
//
// The function is order-sensitive:
//  1. A trailing join keyword or ON selects the join sub-states directly.
//  2. The tokens after the last ON decide between the second condition
//     slot and a finished join condition.
//  3. Otherwise the latest clause dominates: LIMIT/OFFSET, ORDER_BY,
//     HAVING, GROUP_BY and WHERE are checked in that order, so HAVING wins
//     over an earlier GROUP_BY.
//  4. A join table awaiting ON, then FROM and SELECT, close the chain.
func InferState(tokens []string) State {
	if len(tokens) == 0 {
		return StateStart
	}
	last := tokens[len(tokens)-1]
	switch {
	case last == vocab.Start:
		return StateStart
	case last == vocab.End:
		return StateEnd
	case vocab.IsJoinType(last):
		return StateJoinExpectTable
	case last == vocab.On:
		return StateJoinCondition1
	}

	if i := lastIndex(tokens, vocab.On); i >= 0 {
		if s, ok := joinConditionState(tokens[i+1:]); ok {
			return s
		}
	}

	switch {
	case slices.Contains(tokens, vocab.Limit), slices.Contains(tokens, vocab.Offset):
		return StateLimitOffset
	case slices.Contains(tokens, vocab.OrderBy):
		return StateOrderBy
	case slices.Contains(tokens, vocab.Having):
		return StateHaving
	case slices.Contains(tokens, vocab.GroupBy):
		return StateGroupBy
	case slices.Contains(tokens, vocab.Where):
		return StateWhere
	}

	if len(tokens) > 1 && vocab.IsJoinType(tokens[len(tokens)-2]) {
		if tokens[len(tokens)-2] == vocab.CrossJoin {
			return StateJoinFinished
		}
		return StateJoinExpectOn
	}

	switch {
	case slices.Contains(tokens, vocab.From):
		return StateFrom
	case slices.Contains(tokens, vocab.Select):
		return StateSelect
	}
	return StateEnd
}

// joinConditionState reads the tokens after ON:
//
//	<COLUMN> | <COLUMN> op                → JOIN_CONDITION_2
//	<COLUMN> <COLUMN> | <COLUMN> op <COLUMN> → JOIN_FINISHED
func joinConditionState(since []string) (State, bool) {
	isCol := func(i int) bool { return since[i] == vocab.ColumnPH }
	isOp := func(i int) bool { return vocab.IsOperator(since[i]) }

	switch len(since) {
	case 1:
		if isCol(0) {
			return StateJoinCondition2, true
		}
	case 2:
		if isCol(0) && isOp(1) {
			return StateJoinCondition2, true
		}
		if isCol(0) && isCol(1) {
			return StateJoinFinished, true
		}
	case 3:
		if isCol(0) && isOp(1) && isCol(2) {
			return StateJoinFinished, true
		}
	}
	return 0, false
}

func lastIndex(tokens []string, tok string) int {
	for i := len(tokens) - 1; i >= 0; i-- {
		if tokens[i] == tok {
			return i
		}
	}
	return -1
}
