package grammar

import (
	"math"
	"slices"

	"github.com/roach88/nlsql/internal/intent"
	"github.com/roach88/nlsql/internal/vocab"
)

// Set is a set of vocabulary ids.
type Set map[int]struct{}

func newSet(tokens ...string) Set {
	s := make(Set, len(tokens))
	s.add(tokens...)
	return s
}

func (s Set) add(tokens ...string) {
	for _, t := range tokens {
		s[vocab.ID(t)] = struct{}{}
	}
}

func (s Set) remove(tok string) {
	delete(s, vocab.ID(tok))
}

// Has reports whether the token is in the set.
func (s Set) Has(tok string) bool {
	_, ok := s[vocab.ID(tok)]
	return ok
}

// IDs returns the ids in ascending order.
func (s Set) IDs() []int {
	out := make([]int, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}

// Tokens returns the tokens in id order.
func (s Set) Tokens() []string {
	return vocab.Tokens(s.IDs())
}

// comparisonOps are the operators the decoder may emit. BETWEEN is left
// out: it takes two values and the grammar has a single value slot.
var comparisonOps = func() []string {
	var out []string
	for _, op := range vocab.Operators() {
		if op != "BETWEEN" {
			out = append(out, op)
		}
	}
	return out
}()

// openJoins are the join keywords the decoder may emit.
var openJoins = []string{vocab.Join, vocab.InnerJoin, vocab.LeftJoin, vocab.RightJoin, vocab.FullJoin}

func aggTokens() []string {
	return append(vocab.AggFuncs(), vocab.AggPH)
}

// AllowedTokens returns the ids that may follow tokens.
//
// The base set depends on the state and the last token; the universal
// suffix rules then apply:
//   - a column opens a comparison only in WHERE, HAVING and the join
//     condition states
//   - an operator is followed by a value or another column (only a column
//     inside a join condition)
//
// When sig reports a WHERE or HAVING clause that has not been generated
// yet, END is removed wherever that clause is still reachable. An empty
// result falls back to {END}.
func AllowedTokens(tokens []string, sig *intent.Signals) Set {
	state := InferState(tokens)
	last := ""
	if len(tokens) > 0 {
		last = tokens[len(tokens)-1]
	}

	allowed := baseSet(state, tokens, last)

	// Universal suffix rules.
	if last == vocab.ColumnPH && opensComparison(state) && !comparisonDone(tokens) {
		allowed.add(comparisonOps...)
	}
	if vocab.IsOperator(last) {
		allowed.add(vocab.ColumnPH)
		if !isJoinCondition(state) {
			allowed.add(vocab.ValuePH)
		}
	}

	if sig != nil && allowed.Has(vocab.End) && len(allowed) > 1 {
		if (sig.Where && !slices.Contains(tokens, vocab.Where) && whereReachable(state)) ||
			(sig.Having && !slices.Contains(tokens, vocab.Having) && havingReachable(state)) {
			allowed.remove(vocab.End)
		}
	}

	if len(allowed) == 0 {
		return newSet(vocab.End)
	}
	return allowed
}

// baseSet returns the state-specific allowed tokens.
func baseSet(state State, tokens []string, last string) Set {
	switch state {
	case StateStart:
		return newSet(vocab.Select)

	case StateSelect:
		switch {
		case last == vocab.Select:
			return newSet(append(aggTokens(), vocab.ColumnPH)...)
		case vocab.IsAgg(last):
			return newSet(vocab.ColumnPH)
		default:
			return newSet(append(aggTokens(), vocab.ColumnPH, vocab.From)...)
		}

	case StateFrom:
		if last == vocab.From {
			return newSet(vocab.TablePH)
		}
		return afterTable()

	case StateJoinExpectTable:
		return newSet(vocab.TablePH)

	case StateJoinExpectOn:
		return newSet(vocab.On)

	case StateJoinCondition1, StateJoinCondition2:
		return newSet(vocab.ColumnPH)

	case StateJoinFinished:
		return afterTable()

	case StateWhere:
		switch {
		case last == vocab.Where, last == vocab.And, last == vocab.Or:
			return newSet(vocab.ColumnPH)
		case comparisonDone(tokens):
			return newSet(vocab.And, vocab.Or, vocab.GroupBy, vocab.OrderBy, vocab.Limit, vocab.End)
		default:
			return newSet()
		}

	case StateGroupBy:
		if last == vocab.GroupBy {
			return newSet(vocab.ColumnPH)
		}
		return newSet(vocab.ColumnPH, vocab.Having, vocab.OrderBy, vocab.Limit, vocab.End)

	case StateHaving:
		switch {
		case last == vocab.Having, last == vocab.And, last == vocab.Or:
			return newSet(aggTokens()...)
		case vocab.IsAgg(last):
			return newSet(vocab.ColumnPH)
		case comparisonDone(tokens):
			return newSet(vocab.And, vocab.Or, vocab.OrderBy, vocab.Limit, vocab.End)
		default:
			return newSet()
		}

	case StateOrderBy:
		switch last {
		case vocab.OrderBy:
			return newSet(vocab.ColumnPH)
		case vocab.ColumnPH:
			return newSet(vocab.Asc, vocab.Desc)
		default:
			return newSet(vocab.ColumnPH, vocab.Limit, vocab.End)
		}

	case StateLimitOffset:
		switch {
		case last == vocab.Limit, last == vocab.Offset:
			return newSet(vocab.ValuePH)
		case last == vocab.ValuePH && !slices.Contains(tokens, vocab.Offset):
			return newSet(vocab.Offset, vocab.End)
		default:
			return newSet(vocab.End)
		}

	default:
		return newSet(vocab.End)
	}
}

// afterTable is the set following a complete FROM table or join.
func afterTable() Set {
	s := newSet(openJoins...)
	s.add(vocab.Where, vocab.GroupBy, vocab.OrderBy, vocab.Limit, vocab.End)
	return s
}

// comparisonDone reports whether tokens end with a complete comparison:
// op <VALUE> or op <COLUMN>.
func comparisonDone(tokens []string) bool {
	n := len(tokens)
	if n < 2 {
		return false
	}
	last := tokens[n-1]
	return (last == vocab.ValuePH || last == vocab.ColumnPH) && vocab.IsOperator(tokens[n-2])
}

func opensComparison(s State) bool {
	return s == StateWhere || s == StateHaving || isJoinCondition(s)
}

func isJoinCondition(s State) bool {
	return s == StateJoinCondition1 || s == StateJoinCondition2
}

func whereReachable(s State) bool {
	return s == StateFrom || s == StateJoinFinished
}

func havingReachable(s State) bool {
	switch s {
	case StateFrom, StateJoinFinished, StateWhere, StateGroupBy:
		return true
	default:
		return false
	}
}

// Mask returns a copy of scores with every id outside allowed set to -Inf.
func Mask(scores []float64, allowed Set) []float64 {
	out := make([]float64, len(scores))
	for id, s := range scores {
		if _, ok := allowed[id]; ok {
			out[id] = s
		} else {
			out[id] = math.Inf(-1)
		}
	}
	return out
}
