package vocab

import (
	"strconv"
	"strings"
)

// ParseTokens reads a bound token sequence back into the raw query map
// accepted by queryast.Adapt.
//
// Parsing is lenient: structurally incomplete fragments are skipped and
// scanning resumes at the next clause keyword. Placeholders that were left
// unbound are carried through as identifiers; the renderer rejects them
// where it matters.
func ParseTokens(tokens []string) map[string]any {
	p := &tokenParser{tokens: tokens}
	return p.parse()
}

type tokenParser struct {
	tokens []string
	pos    int
	out    map[string]any
}

func (p *tokenParser) peek(offset int) (string, bool) {
	i := p.pos + offset
	if i < 0 || i >= len(p.tokens) {
		return "", false
	}
	return p.tokens[i], true
}

// ident reports whether tok can name a table or column.
func ident(tok string) bool {
	return tok != "" && !IsStructural(tok) && !IsOperator(tok) && !IsAgg(tok) &&
		tok != And && tok != Or && tok != Not && tok != Asc && tok != Desc
}

// clauseEnd reports whether tok closes the current clause.
func clauseEnd(tok string) bool {
	switch tok {
	case Where, GroupBy, Having, OrderBy, Limit, Offset, End:
		return true
	}
	return IsJoinType(tok)
}

func (p *tokenParser) parse() map[string]any {
	p.out = map[string]any{
		"select":   []any{},
		"from":     []any{},
		"joins":    []any{},
		"where":    []any{},
		"group_by": []any{},
		"having":   []any{},
		"order_by": []any{},
	}

	for p.pos < len(p.tokens) {
		tok := p.tokens[p.pos]
		switch {
		case tok == Select:
			p.pos++
			p.parseSelect()
		case tok == From:
			p.pos++
			if t, ok := p.peek(0); ok && ident(t) {
				p.appendTo("from", t)
				p.pos++
			}
		case IsJoinType(tok):
			p.pos++
			p.parseJoin(tok)
		case tok == Where:
			p.pos++
			p.parseWhere()
		case tok == GroupBy:
			p.pos++
			for t, ok := p.peek(0); ok && ident(t); t, ok = p.peek(0) {
				p.appendTo("group_by", t)
				p.pos++
			}
		case tok == Having:
			p.pos++
			p.parseHaving()
		case tok == OrderBy:
			p.pos++
			p.parseOrderBy()
		case tok == Limit, tok == Offset:
			p.pos++
			if t, ok := p.peek(0); ok && !clauseEnd(t) {
				p.out[strings.ToLower(tok)] = parseValue(t)
				p.pos++
			}
		default:
			p.pos++
		}
	}
	return p.out
}

func (p *tokenParser) appendTo(key string, v any) {
	p.out[key] = append(p.out[key].([]any), v)
}

func (p *tokenParser) parseSelect() {
	for {
		tok, ok := p.peek(0)
		if !ok || tok == From || tok == End {
			return
		}
		agg := ""
		if IsAgg(tok) {
			agg = tok
			p.pos++
			tok, ok = p.peek(0)
			if !ok {
				return
			}
		}
		if tok == Distinct {
			p.pos++
			continue
		}
		if !ident(tok) {
			return
		}
		item := map[string]any{"column": tok}
		if agg != "" {
			item["agg"] = agg
		}
		p.appendTo("select", item)
		p.pos++
	}
}

func (p *tokenParser) parseJoin(kw string) {
	join := map[string]any{"type": string(JoinTypeOf(kw))}

	table, ok := p.peek(0)
	if !ok || !ident(table) {
		return
	}
	join["table"] = table
	p.pos++

	if t, _ := p.peek(0); t == On {
		p.pos++
		left, _ := p.peek(0)
		op, right := "=", ""
		if o, _ := p.peek(1); IsOperator(o) {
			op = o
			right, _ = p.peek(2)
			p.pos += 3
		} else {
			right, _ = p.peek(1)
			p.pos += 2
		}
		if ident(left) && ident(right) {
			join["on"] = map[string]any{"left": left, "op": op, "right": right}
		}
	}

	if _, hasOn := join["on"]; hasOn || kw == CrossJoin {
		p.appendTo("joins", join)
	}

	for t, ok := p.peek(0); ok && !clauseEnd(t); t, ok = p.peek(0) {
		p.pos++
	}
}

// parseCondition reads "<column> <op> <value>" at the cursor.
func (p *tokenParser) parseCondition() (map[string]any, bool) {
	col, _ := p.peek(0)
	op, _ := p.peek(1)
	val, ok := p.peek(2)
	if !ident(col) || !IsOperator(op) || !ok || clauseEnd(val) {
		return nil, false
	}
	p.pos += 3
	return map[string]any{"column": col, "op": op, "value": parseValue(val)}, true
}

func (p *tokenParser) parseWhere() {
	var logic []any
	for {
		tok, ok := p.peek(0)
		if !ok || clauseEnd(tok) {
			break
		}
		if tok == And || tok == Or {
			logic = append(logic, tok)
			p.pos++
			continue
		}
		cond, ok := p.parseCondition()
		if !ok {
			break
		}
		p.appendTo("where", cond)
	}
	if len(logic) > 0 {
		p.out["where_logic"] = logic
	}
}

func (p *tokenParser) parseHaving() {
	for {
		tok, ok := p.peek(0)
		if !ok || clauseEnd(tok) {
			return
		}
		if tok == And || tok == Or {
			if _, set := p.out["having_logic"]; !set {
				p.out["having_logic"] = tok
			}
			p.pos++
			continue
		}
		if !IsAgg(tok) {
			return
		}
		p.pos++
		cond, ok := p.parseCondition()
		if !ok {
			return
		}
		cond["agg"] = tok
		p.appendTo("having", cond)
	}
}

func (p *tokenParser) parseOrderBy() {
	for {
		col, ok := p.peek(0)
		if !ok || !ident(col) {
			return
		}
		p.pos++
		item := map[string]any{"column": col, "direction": Asc}
		if dir, _ := p.peek(0); dir == Asc || dir == Desc {
			item["direction"] = dir
			p.pos++
		}
		p.appendTo("order_by", item)
	}
}

// parseValue converts a bound literal token back into a scalar:
// NULL → nil, '…' → string, integers → int64, decimals → float64.
// Anything else is kept as a string.
func parseValue(tok string) any {
	if tok == NullValue {
		return nil
	}
	if len(tok) >= 2 && strings.HasPrefix(tok, "'") && strings.HasSuffix(tok, "'") {
		return strings.ReplaceAll(tok[1:len(tok)-1], "''", "'")
	}
	if n, err := strconv.ParseInt(tok, 10, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(tok, 64); err == nil {
		return f
	}
	return tok
}
