// Package render compiles a queryast.Query into SQL text.
//
// Clause order is fixed:
//
//	SELECT → FROM → JOIN… → WHERE → GROUP BY → HAVING → ORDER BY → LIMIT → OFFSET
//
// Internal WHERE nodes are always parenthesized, so the output preserves
// the tree's grouping regardless of operator precedence. Rendering is
// deterministic: the same Query always yields the same string.
package render

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/roach88/nlsql/internal/errs"
	"github.com/roach88/nlsql/internal/queryast"
)

// Render compiles q to SQL with literals inlined. Numeric literals are
// unquoted, everything else is single-quoted.
//
// Returns RENDER_FAILED when FROM has no resolved (non-placeholder) table.
func Render(q queryast.Query) (string, error) {
	c := &compiler{}
	return c.compile(q)
}

// RenderParameterized compiles q to SQL with every WHERE, ON and HAVING
// literal replaced by a ? placeholder. The literal values are returned in
// placeholder order.
func RenderParameterized(q queryast.Query) (string, []any, error) {
	c := &compiler{parameterized: true, params: []any{}}
	sql, err := c.compile(q)
	if err != nil {
		return "", nil, err
	}
	return sql, c.params, nil
}

type compiler struct {
	parameterized bool
	params        []any
}

func (c *compiler) compile(q queryast.Query) (string, error) {
	var from []string
	for _, t := range q.From {
		if t != "" && !queryast.IsPlaceholder(t) {
			from = append(from, t)
		}
	}
	if len(from) == 0 {
		return "", errs.NewRenderError("unresolved <TABLE> in FROM clause").
			With("from", strings.Join(q.From, ","))
	}

	var b strings.Builder
	b.WriteString("SELECT ")
	items := make([]string, len(q.Select))
	for i, item := range q.Select {
		items[i] = selectItem(item)
	}
	b.WriteString(strings.Join(items, ", "))

	b.WriteString(" FROM ")
	b.WriteString(strings.Join(from, ", "))

	for _, j := range q.Joins {
		join, err := c.join(j)
		if err != nil {
			return "", err
		}
		b.WriteString(" ")
		b.WriteString(join)
	}

	if q.Where != nil {
		where, err := c.boolNode(q.Where)
		if err != nil {
			return "", err
		}
		b.WriteString(" WHERE ")
		b.WriteString(where)
	}

	if len(q.GroupBy) > 0 {
		b.WriteString(" GROUP BY ")
		b.WriteString(strings.Join(q.GroupBy, ", "))
	}

	if len(q.Having) > 0 {
		logic := q.HavingLogic
		if logic == "" {
			logic = queryast.And
		}
		parts := make([]string, len(q.Having))
		for i, h := range q.Having {
			parts[i] = c.having(h)
		}
		b.WriteString(" HAVING ")
		b.WriteString(strings.Join(parts, " "+string(logic)+" "))
	}

	if len(q.OrderBy) > 0 {
		parts := make([]string, len(q.OrderBy))
		for i, o := range q.OrderBy {
			dir := strings.ToUpper(string(o.Direction))
			if dir == "" {
				dir = string(queryast.Asc)
			}
			parts[i] = o.Column + " " + dir
		}
		b.WriteString(" ORDER BY ")
		b.WriteString(strings.Join(parts, ", "))
	}

	if q.Limit != nil {
		b.WriteString(" LIMIT ")
		b.WriteString(strconv.FormatInt(*q.Limit, 10))
	}
	if q.Offset != nil {
		b.WriteString(" OFFSET ")
		b.WriteString(strconv.FormatInt(*q.Offset, 10))
	}

	return b.String(), nil
}

func selectItem(item queryast.SelectItem) string {
	out := item.Column
	if item.Agg != "" {
		out = fmt.Sprintf("%s(%s)", strings.ToUpper(item.Agg), item.Column)
	}
	if item.Alias != "" {
		out += " AS " + item.Alias
	}
	return out
}

// join renders "TYPE JOIN t ON l op r [AND extra…]".
func (c *compiler) join(j queryast.Join) (string, error) {
	typ := strings.ToUpper(string(j.Type))
	if typ == "" {
		typ = string(queryast.JoinInner)
	}
	if j.Type == queryast.JoinCross {
		return "CROSS JOIN " + j.Table, nil
	}

	op := j.On.Op
	if op == "" {
		op = "="
	}
	parts := []string{fmt.Sprintf("%s %s %s", j.On.Left, op, j.On.Right)}
	for _, extra := range j.On.Extra {
		s, err := c.boolNode(extra)
		if err != nil {
			return "", err
		}
		parts = append(parts, s)
	}
	return fmt.Sprintf("%s JOIN %s ON %s", typ, j.Table, strings.Join(parts, " AND ")), nil
}

// boolNode renders a WHERE/ON expression. Internal nodes are wrapped in
// parentheses.
func (c *compiler) boolNode(node queryast.BoolNode) (string, error) {
	switch n := node.(type) {
	case queryast.Condition:
		return c.condition(n), nil
	case queryast.Logical:
		left, err := c.boolNode(n.Left)
		if err != nil {
			return "", err
		}
		right, err := c.boolNode(n.Right)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("(%s %s %s)", left, n.Op, right), nil
	default:
		return "", errs.NewRenderError("unsupported boolean node %T", node)
	}
}

// condition renders a leaf comparison.
func (c *compiler) condition(cond queryast.Condition) string {
	op := SQLOperator(cond.Op)
	switch op {
	case "IS NULL", "IS NOT NULL":
		return cond.Column + " " + op
	case "IN", "NOT IN":
		return fmt.Sprintf("%s %s (%s)", cond.Column, op, c.literal(cond.Value))
	default:
		return fmt.Sprintf("%s %s %s", cond.Column, op, c.literal(cond.Value))
	}
}

func (c *compiler) having(h queryast.HavingCondition) string {
	op := h.Op
	if op == "" {
		op = "="
	}
	return fmt.Sprintf("%s(%s) %s %s", strings.ToUpper(h.Agg), h.Column, SQLOperator(op), c.literal(h.Value))
}

func (c *compiler) literal(l queryast.Literal) string {
	if !c.parameterized {
		return l.SQL()
	}
	switch l.Kind {
	case queryast.LiteralString:
		c.params = append(c.params, l.Str)
	case queryast.LiteralInt:
		c.params = append(c.params, l.Int)
	case queryast.LiteralFloat:
		c.params = append(c.params, l.Float)
	default:
		c.params = append(c.params, nil)
	}
	return "?"
}

// SQLOperator maps vocabulary operator tokens (NOT_IN, IS_NULL, ...) to
// their SQL spelling. Other operators are returned unchanged.
func SQLOperator(op string) string {
	switch strings.ToUpper(op) {
	case "NOT_IN":
		return "NOT IN"
	case "NOT_LIKE":
		return "NOT LIKE"
	case "IS_NULL":
		return "IS NULL"
	case "IS_NOT_NULL":
		return "IS NOT NULL"
	case "IN", "LIKE", "BETWEEN", "IS NULL", "IS NOT NULL", "NOT IN", "NOT LIKE":
		return strings.ToUpper(op)
	default:
		return op
	}
}
