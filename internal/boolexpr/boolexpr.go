// Package boolexpr turns a WHERE fragment of a question into a boolean
// expression tree over qualified schema columns.
//
// The fragment is split on the connectors "and"/"or", each remaining piece
// is resolved to a single Condition, and the pieces are folded with AND
// binding tighter than OR:
//
//	"salary > 5000 and age < 30 or dept_id = 2"
//	  → ((salary > 5000 AND age < 30) OR dept_id = 2)
package boolexpr

import (
	"log/slog"
	"regexp"
	"slices"
	"strings"

	"github.com/roach88/nlsql/internal/align"
	"github.com/roach88/nlsql/internal/errs"
	"github.com/roach88/nlsql/internal/intent"
	"github.com/roach88/nlsql/internal/queryast"
)

var connectorRE = regexp.MustCompile(`(?i)\b(and|or)\b`)

// Tokenize splits text on "and"/"or", keeping the connectors as tokens.
// Tokens are trimmed and empty tokens are dropped.
func Tokenize(text string) []string {
	var tokens []string
	add := func(s string) {
		if s = strings.TrimSpace(s); s != "" {
			tokens = append(tokens, s)
		}
	}

	last := 0
	for _, loc := range connectorRE.FindAllStringIndex(text, -1) {
		add(text[last:loc[0]])
		add(text[loc[0]:loc[1]])
		last = loc[1]
	}
	add(text[last:])
	return tokens
}

// Builder resolves condition fragments against a schema.
type Builder struct {
	aligner *align.Aligner
	logger  *slog.Logger
}

// Option configures a Builder.
type Option func(*Builder)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(b *Builder) {
		if l != nil {
			b.logger = l
		}
	}
}

// NewBuilder creates a Builder resolving columns through aligner.
func NewBuilder(aligner *align.Aligner, opts ...Option) *Builder {
	b := &Builder{
		aligner: aligner,
		logger:  slog.Default(),
	}
	if b.aligner == nil {
		b.aligner = align.New()
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Parse tokenizes text and builds its tree. Compound comparison phrases
// are rewritten to symbols first so their "or" is not a connector. See
// BuildTree.
func (b *Builder) Parse(text, baseTable string, tableColumns, allColumns []string) (queryast.BoolNode, error) {
	return b.BuildTree(Tokenize(intent.RewriteCompoundOps(text)), baseTable, tableColumns, allColumns)
}

// BuildTree folds tokens (as produced by Tokenize) into a boolean tree.
//
// Each operand is resolved to a Condition: its column by aligning the
// fragment's terms against allColumns (qualified), falling back to a term
// that is a bare column of baseTable (tableColumns); its operator and
// value from the fragment itself.
//
// Returns CONDITION_UNRESOLVED when a fragment names no column or when a
// connector has no operand on one side.
func (b *Builder) BuildTree(tokens []string, baseTable string, tableColumns, allColumns []string) (queryast.BoolNode, error) {
	if len(tokens) == 0 {
		return nil, errs.NewConditionError("")
	}

	var (
		operands []queryast.BoolNode
		ops      []queryast.LogicOp
	)
	expectOperand := true
	for _, tok := range tokens {
		if op, ok := queryast.ParseLogicOp(tok); ok {
			if expectOperand {
				return nil, errs.NewConditionError(strings.Join(tokens, " ")).With("connector", tok)
			}
			ops = append(ops, op)
			expectOperand = true
			continue
		}
		if !expectOperand {
			return nil, errs.NewConditionError(tok)
		}
		cond, err := b.parseCondition(tok, baseTable, tableColumns, allColumns)
		if err != nil {
			return nil, err
		}
		operands = append(operands, cond)
		expectOperand = false
	}
	if expectOperand {
		return nil, errs.NewConditionError(strings.Join(tokens, " ")).With("connector", tokens[len(tokens)-1])
	}

	node, err := queryast.Fold(operands, ops)
	if err != nil {
		return nil, errs.New(errs.CodeConditionUnresolved, "%v", err)
	}
	return node, nil
}

// parseCondition resolves one fragment such as "salary > 5000".
func (b *Builder) parseCondition(text, baseTable string, tableColumns, allColumns []string) (queryast.Condition, error) {
	sig := intent.Extract(text)

	var column, columnTerm string
	mapping := b.aligner.Align(sig.Entities, allColumns)
	if col, ok := mapping.First(); ok {
		column = col
		columnTerm = mapping.Terms()[0]
	}

	if column == "" {
		for _, e := range sig.Entities {
			if slices.Contains(tableColumns, e) {
				column = baseTable + "." + e
				columnTerm = e
				break
			}
		}
	}

	if column == "" {
		return queryast.Condition{}, errs.NewConditionError(text)
	}

	value := sig.Value
	if value.IsNull() {
		value = trailingEntity(sig.Entities, columnTerm)
	}

	b.logger.Debug("resolved condition",
		"fragment", text,
		"column", column,
		"op", sig.Operator,
		"value", value.Text(),
	)

	return queryast.Condition{Column: column, Op: sig.Operator, Value: value}, nil
}

// trailingEntity returns the last entity other than the column term as a
// string literal, for unquoted values such as "dept_name = sales".
func trailingEntity(entities []string, columnTerm string) queryast.Literal {
	for i := len(entities) - 1; i >= 0; i-- {
		if entities[i] != columnTerm {
			return queryast.StringLit(entities[i])
		}
	}
	return queryast.NullLit()
}
