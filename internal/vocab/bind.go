package vocab

import (
	"github.com/roach88/nlsql/internal/queryast"
)

// Column buckets of Bindings.Columns.
const (
	BucketSelect    = "select"
	BucketJoinLeft  = "join_left"
	BucketJoinRight = "join_right"
	BucketWhere     = "where"
	BucketGroupBy   = "group_by"
	BucketHaving    = "having"
	BucketOrderBy   = "order_by"
)

// Fallbacks emitted by Bind for placeholders without any binding.
const (
	UnresolvedTable  = "<UNRESOLVED_TABLE>"
	UnresolvedColumn = "<UNRESOLVED_COLUMN>"
	NullValue        = "NULL"
)

// Bindings are the concrete values substituted for placeholders.
//
// Columns are bucketed by clause. Within an ON clause the first column is
// taken from join_left and the second from join_right. Every bucket is
// consumed in order; once exhausted its last entry is reused.
type Bindings struct {
	Tables  []string
	Columns map[string][]string
	Values  []queryast.Literal
	Aggs    []string
}

// BindingsFor returns the bindings that turn Linearize(q) back into q.
func BindingsFor(q queryast.Query) Bindings {
	b := Bindings{Columns: make(map[string][]string)}

	for _, t := range q.From {
		if !queryast.IsPlaceholder(t) {
			b.Tables = append(b.Tables, t)
			break
		}
	}

	for _, item := range q.Select {
		b.Columns[BucketSelect] = append(b.Columns[BucketSelect], item.Column)
		if item.Agg != "" && aggToken(item.Agg) == AggPH {
			b.Aggs = append(b.Aggs, item.Agg)
		}
	}

	for _, j := range q.Joins {
		b.Tables = append(b.Tables, j.Table)
		if j.Type == queryast.JoinCross {
			continue
		}
		b.Columns[BucketJoinLeft] = append(b.Columns[BucketJoinLeft], j.On.Left)
		b.Columns[BucketJoinRight] = append(b.Columns[BucketJoinRight], j.On.Right)
	}

	for _, leaf := range queryast.Leaves(q.Where) {
		b.Columns[BucketWhere] = append(b.Columns[BucketWhere], leaf.Column)
		b.Values = append(b.Values, leaf.Value)
	}

	b.Columns[BucketGroupBy] = append(b.Columns[BucketGroupBy], q.GroupBy...)

	for _, h := range q.Having {
		b.Columns[BucketHaving] = append(b.Columns[BucketHaving], h.Column)
		b.Values = append(b.Values, h.Value)
	}

	for _, o := range q.OrderBy {
		b.Columns[BucketOrderBy] = append(b.Columns[BucketOrderBy], o.Column)
	}

	if q.Limit != nil {
		b.Values = append(b.Values, queryast.IntLit(*q.Limit))
	}
	if q.Offset != nil {
		b.Values = append(b.Values, queryast.IntLit(*q.Offset))
	}

	return b
}

// Bind replaces the placeholders of tokens with concrete values.
//
// <TABLE> and <VALUE> draw from Tables and Values in sequence. <COLUMN>
// draws from the bucket of the enclosing clause (or the ON side). <AGG>
// draws from Aggs and is kept as-is when Aggs is empty. Values are
// emitted as SQL literal text. Placeholders with an empty source become
// <UNRESOLVED_TABLE>, <UNRESOLVED_COLUMN> or NULL; Bind never fails.
func Bind(tokens []string, b Bindings) []string {
	out := make([]string, 0, len(tokens))

	clause := BucketSelect
	onSide := ""
	next := make(map[string]int)

	take := func(key string, src []string, fallback string) string {
		if len(src) == 0 {
			return fallback
		}
		i := min(next[key], len(src)-1)
		next[key]++
		return src[i]
	}

	for _, tok := range tokens {
		switch {
		case tok == Select:
			clause, onSide = BucketSelect, ""
		case tok == Where:
			clause, onSide = BucketWhere, ""
		case tok == GroupBy:
			clause, onSide = BucketGroupBy, ""
		case tok == Having:
			clause, onSide = BucketHaving, ""
		case tok == OrderBy:
			clause, onSide = BucketOrderBy, ""
		case tok == Limit, tok == Offset:
			onSide = ""
		case IsJoinType(tok):
			onSide = ""
		case tok == On:
			onSide = BucketJoinLeft

		case tok == TablePH:
			out = append(out, take("table", b.Tables, UnresolvedTable))
			continue

		case tok == ColumnPH:
			bucket := clause
			if onSide != "" {
				bucket = onSide
			}
			out = append(out, take(bucket, b.Columns[bucket], UnresolvedColumn))
			switch onSide {
			case BucketJoinLeft:
				onSide = BucketJoinRight
			case BucketJoinRight:
				onSide = ""
			}
			continue

		case tok == ValuePH:
			if len(b.Values) == 0 {
				out = append(out, NullValue)
				continue
			}
			i := min(next["value"], len(b.Values)-1)
			next["value"]++
			out = append(out, b.Values[i].SQL())
			continue

		case tok == AggPH:
			out = append(out, take("agg", b.Aggs, AggPH))
			continue
		}
		out = append(out, tok)
	}
	return out
}
