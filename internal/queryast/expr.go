package queryast

import (
	"errors"
	"fmt"
	"strings"
)

// precedence returns the binding strength of a logical operator.
// AND binds tighter than OR.
func precedence(op LogicOp) int {
	if op == And {
		return 2
	}
	return 1
}

// Fold combines operands separated by operators into a single tree using a
// value stack and an operator stack. Operators are left-associative.
//
// len(ops) must equal len(operands)-1.
func Fold(operands []BoolNode, ops []LogicOp) (BoolNode, error) {
	if len(operands) == 0 {
		return nil, errors.New("empty boolean expression")
	}
	if len(ops) != len(operands)-1 {
		return nil, fmt.Errorf("malformed boolean expression: %d operands, %d operators", len(operands), len(ops))
	}

	values := []BoolNode{operands[0]}
	var stack []LogicOp

	reduce := func() {
		op := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		right := values[len(values)-1]
		left := values[len(values)-2]
		values = append(values[:len(values)-2], Logical{Op: op, Left: left, Right: right})
	}

	for i, op := range ops {
		for len(stack) > 0 && precedence(stack[len(stack)-1]) >= precedence(op) {
			reduce()
		}
		stack = append(stack, op)
		values = append(values, operands[i+1])
	}
	for len(stack) > 0 {
		reduce()
	}

	return values[0], nil
}

// ParseLogicOp maps "and"/"or" in any case to a LogicOp.
func ParseLogicOp(s string) (LogicOp, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "AND":
		return And, true
	case "OR":
		return Or, true
	default:
		return "", false
	}
}

// AndAll folds nodes into a left-deep AND chain. Returns nil for no nodes.
func AndAll(nodes ...BoolNode) BoolNode {
	var out BoolNode
	for _, n := range nodes {
		if n == nil {
			continue
		}
		if out == nil {
			out = n
			continue
		}
		out = Logical{Op: And, Left: out, Right: n}
	}
	return out
}

// Conjuncts flattens the top-level AND chain of node.
// An OR node (or a leaf) is returned as a single conjunct.
func Conjuncts(node BoolNode) []BoolNode {
	if node == nil {
		return nil
	}
	if l, ok := node.(Logical); ok && l.Op == And {
		return append(Conjuncts(l.Left), Conjuncts(l.Right)...)
	}
	return []BoolNode{node}
}

// Columns returns every column referenced by the leaves of node, in order.
func Columns(node BoolNode) []string {
	switch n := node.(type) {
	case Condition:
		return []string{n.Column}
	case Logical:
		return append(Columns(n.Left), Columns(n.Right)...)
	default:
		return nil
	}
}

// Leaves returns the conditions of node in left-to-right order.
func Leaves(node BoolNode) []Condition {
	switch n := node.(type) {
	case Condition:
		return []Condition{n}
	case Logical:
		return append(Leaves(n.Left), Leaves(n.Right)...)
	default:
		return nil
	}
}
