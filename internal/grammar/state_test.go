package grammar

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/nlsql/internal/vocab"
)

const (
	col = vocab.ColumnPH
	tbl = vocab.TablePH
	val = vocab.ValuePH
)

func TestInferState(t *testing.T) {
	tests := []struct {
		name   string
		tokens []string
		want   State
	}{
		{"empty", nil, StateStart},
		{"start", []string{vocab.Start}, StateStart},
		{"select", []string{vocab.Start, vocab.Select, col}, StateSelect},
		{"from", []string{vocab.Start, vocab.Select, col, vocab.From}, StateFrom},
		{"from table", []string{vocab.Select, col, vocab.From, tbl}, StateFrom},
		{"join keyword", []string{vocab.Select, col, vocab.From, tbl, vocab.LeftJoin}, StateJoinExpectTable},
		{"join table", []string{vocab.Select, col, vocab.From, tbl, vocab.Join, tbl}, StateJoinExpectOn},
		{"on", []string{vocab.From, tbl, vocab.Join, tbl, vocab.On}, StateJoinCondition1},
		{"on col", []string{vocab.From, tbl, vocab.Join, tbl, vocab.On, col}, StateJoinCondition2},
		{"on col op", []string{vocab.From, tbl, vocab.Join, tbl, vocab.On, col, "="}, StateJoinCondition2},
		{"on col col", []string{vocab.From, tbl, vocab.Join, tbl, vocab.On, col, col}, StateJoinFinished},
		{"on col op col", []string{vocab.From, tbl, vocab.Join, tbl, vocab.On, col, "!=", col}, StateJoinFinished},
		{"second join", []string{vocab.From, tbl, vocab.Join, tbl, vocab.On, col, col, vocab.Join, tbl}, StateJoinExpectOn},
		{"cross join", []string{vocab.From, tbl, vocab.CrossJoin, tbl}, StateJoinFinished},
		{"where after join", []string{vocab.From, tbl, vocab.Join, tbl, vocab.On, col, col, vocab.Where}, StateWhere},
		{"where", []string{vocab.Select, col, vocab.From, tbl, vocab.Where, col, ">", val}, StateWhere},
		{"group by", []string{vocab.Select, col, vocab.From, tbl, vocab.Where, col, "=", val, vocab.GroupBy}, StateGroupBy},
		{"having dominates group by", []string{vocab.Select, col, vocab.From, tbl, vocab.GroupBy, col, vocab.Having}, StateHaving},
		{"order by", []string{vocab.Select, col, vocab.From, tbl, vocab.GroupBy, col, vocab.OrderBy}, StateOrderBy},
		{"limit", []string{vocab.Select, col, vocab.From, tbl, vocab.OrderBy, col, vocab.Asc, vocab.Limit}, StateLimitOffset},
		{"end", []string{vocab.Select, col, vocab.From, tbl, vocab.End}, StateEnd},
		{"no keywords", []string{col}, StateEnd},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, InferState(tt.tokens))
		})
	}
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "JOIN_CONDITION_2", StateJoinCondition2.String())
	assert.Equal(t, "LIMIT_OFFSET", StateLimitOffset.String())
	assert.Equal(t, "UNKNOWN", State(99).String())
}
