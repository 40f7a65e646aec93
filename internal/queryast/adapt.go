package queryast

import (
	"encoding/json"
	"math"
	"strings"
)

// Adapt normalizes a loosely-typed query representation (decoded JSON/YAML
// or the output of the token parser) into the canonical Query.
//
// Adapt is total: fields with the wrong shape are dropped, missing fields
// default to empty. Defaults applied:
//   - join type INNER
//   - join and condition operator "="
//   - order direction ASC
//   - having logic AND
//
// WHERE accepts three shapes:
//   - absent or null: no WHERE clause
//   - a list of conditions, combined with the optional "where_logic" list
//     of connectors (len = conditions-1), else AND
//   - a tree: {"op": "AND"|"OR", "left": ..., "right": ...} with
//     {"column", "op", "value"} leaves
func Adapt(raw map[string]any) Query {
	q := Query{
		HavingLogic: And,
	}
	if raw == nil {
		return q
	}

	for _, item := range asList(raw["select"]) {
		if sel, ok := adaptSelectItem(item); ok {
			q.Select = append(q.Select, sel)
		}
	}

	q.From = adaptStrings(raw["from"])

	for _, item := range asList(raw["joins"]) {
		if j, ok := adaptJoin(item); ok {
			q.Joins = append(q.Joins, j)
		}
	}

	q.Where = adaptWhere(raw["where"], raw["where_logic"])
	q.GroupBy = adaptStrings(raw["group_by"])

	switch h := raw["having"].(type) {
	case map[string]any:
		if hc, ok := adaptHaving(h); ok {
			q.Having = append(q.Having, hc)
		}
	case []any:
		for _, item := range h {
			if m, ok := item.(map[string]any); ok {
				if hc, ok := adaptHaving(m); ok {
					q.Having = append(q.Having, hc)
				}
			}
		}
	}
	if op, ok := ParseLogicOp(asString(raw["having_logic"])); ok {
		q.HavingLogic = op
	}

	for _, item := range asList(raw["order_by"]) {
		if o, ok := adaptOrder(item); ok {
			q.OrderBy = append(q.OrderBy, o)
		}
	}

	q.Limit = asInt(raw["limit"])
	q.Offset = asInt(raw["offset"])

	return q
}

func adaptSelectItem(item any) (SelectItem, bool) {
	switch v := item.(type) {
	case string:
		if v == "" {
			return SelectItem{}, false
		}
		return SelectItem{Column: v}, true
	case map[string]any:
		col := asString(v["column"])
		if col == "" {
			return SelectItem{}, false
		}
		return SelectItem{
			Agg:    strings.ToUpper(asString(v["agg"])),
			Column: col,
			Alias:  asString(v["alias"]),
		}, true
	default:
		return SelectItem{}, false
	}
}

func adaptJoin(item any) (Join, bool) {
	m, ok := item.(map[string]any)
	if !ok {
		return Join{}, false
	}
	table := asString(m["table"])
	if table == "" {
		return Join{}, false
	}

	j := Join{Type: JoinInner, Table: table}
	if t := strings.ToUpper(asString(m["type"])); t != "" {
		j.Type = JoinType(strings.TrimSuffix(t, " JOIN"))
	}

	on, ok := m["on"].(map[string]any)
	if !ok {
		// Only a cross join may omit its predicate.
		return j, j.Type == JoinCross
	}
	j.On = JoinOn{
		Left:  asString(on["left"]),
		Op:    defaultString(asString(on["op"]), "="),
		Right: asString(on["right"]),
	}
	if j.On.Left == "" || j.On.Right == "" {
		return Join{}, false
	}
	for _, extra := range asList(on["extra_conditions"]) {
		if n := adaptNode(extra); n != nil {
			j.On.Extra = append(j.On.Extra, n)
		}
	}
	return j, true
}

func adaptWhere(where, logic any) BoolNode {
	switch w := where.(type) {
	case map[string]any:
		return adaptNode(w)
	case []any:
		var nodes []BoolNode
		for _, item := range w {
			if n := adaptNode(item); n != nil {
				nodes = append(nodes, n)
			}
		}
		if len(nodes) == 0 {
			return nil
		}

		var ops []LogicOp
		for _, c := range asList(logic) {
			if op, ok := ParseLogicOp(asString(c)); ok {
				ops = append(ops, op)
			}
		}
		if len(ops) == len(nodes)-1 {
			if tree, err := Fold(nodes, ops); err == nil {
				return tree
			}
		}
		return AndAll(nodes...)
	default:
		return nil
	}
}

// adaptNode converts a condition or logical map into a BoolNode.
// Returns nil for malformed input.
func adaptNode(item any) BoolNode {
	m, ok := item.(map[string]any)
	if !ok {
		return nil
	}

	if _, isTree := m["left"]; isTree {
		op, ok := ParseLogicOp(asString(m["op"]))
		if !ok {
			return nil
		}
		left := adaptNode(m["left"])
		right := adaptNode(m["right"])
		switch {
		case left == nil && right == nil:
			return nil
		case left == nil:
			return right
		case right == nil:
			return left
		}
		return Logical{Op: op, Left: left, Right: right}
	}

	col := asString(m["column"])
	if col == "" {
		return nil
	}
	return Condition{
		Column: col,
		Op:     defaultString(asString(m["op"]), "="),
		Value:  LiteralOf(m["value"]),
	}
}

func adaptHaving(m map[string]any) (HavingCondition, bool) {
	col := asString(m["column"])
	if col == "" {
		return HavingCondition{}, false
	}
	return HavingCondition{
		Agg:    strings.ToUpper(asString(m["agg"])),
		Column: col,
		Op:     defaultString(asString(m["op"]), "="),
		Value:  LiteralOf(m["value"]),
	}, true
}

func adaptOrder(item any) (OrderItem, bool) {
	switch v := item.(type) {
	case string:
		if v == "" {
			return OrderItem{}, false
		}
		return OrderItem{Column: v, Direction: Asc}, true
	case map[string]any:
		col := asString(v["column"])
		if col == "" {
			return OrderItem{}, false
		}
		dir := Asc
		if strings.EqualFold(asString(v["direction"]), string(Desc)) {
			dir = Desc
		}
		return OrderItem{Column: col, Direction: dir}, true
	default:
		return OrderItem{}, false
	}
}

// LiteralOf converts a decoded JSON/YAML scalar into a Literal.
// Integral floats become integers; anything unrecognized becomes null.
func LiteralOf(v any) Literal {
	switch x := v.(type) {
	case nil:
		return NullLit()
	case Literal:
		return x
	case string:
		return StringLit(x)
	case int:
		return IntLit(int64(x))
	case int64:
		return IntLit(x)
	case int32:
		return IntLit(int64(x))
	case uint64:
		if x > math.MaxInt64 {
			return FloatLit(float64(x))
		}
		return IntLit(int64(x))
	case float64:
		if x == math.Trunc(x) && math.Abs(x) < 1<<53 {
			return IntLit(int64(x))
		}
		return FloatLit(x)
	case float32:
		return LiteralOf(float64(x))
	case json.Number:
		if n, err := x.Int64(); err == nil {
			return IntLit(n)
		}
		if f, err := x.Float64(); err == nil {
			return FloatLit(f)
		}
		return StringLit(x.String())
	case bool:
		if x {
			return StringLit("true")
		}
		return StringLit("false")
	default:
		return NullLit()
	}
}

func asList(v any) []any {
	switch x := v.(type) {
	case []any:
		return x
	case []string:
		out := make([]any, len(x))
		for i, s := range x {
			out[i] = s
		}
		return out
	default:
		return nil
	}
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func adaptStrings(v any) []string {
	var out []string
	if s, ok := v.(string); ok && s != "" {
		return []string{s}
	}
	for _, item := range asList(v) {
		if s, ok := item.(string); ok && s != "" {
			out = append(out, s)
		}
	}
	return out
}

func asInt(v any) *int64 {
	lit := LiteralOf(v)
	if lit.Kind != LiteralInt {
		return nil
	}
	n := lit.Int
	return &n
}

func defaultString(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
