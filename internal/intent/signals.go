package intent

import (
	"github.com/roach88/nlsql/internal/queryast"
)

// Kind is the coarse shape of the question.
type Kind string

const (
	KindSelect      Kind = "select"
	KindAggregation Kind = "aggregation"
)

// Confidence tags how the join type was decided.
type Confidence string

const (
	// Implicit means no phrase selected the join type; INNER was assumed.
	Implicit Confidence = "implicit"

	// Explicit means a preserve pattern or phrase selected the join type.
	Explicit Confidence = "explicit"
)

// Condition is a WHERE triple extracted from one chunk of the question.
// Column is a free-form term, not yet aligned to the schema.
type Condition struct {
	Column string           `json:"column"`
	Op     string           `json:"operator"`
	Value  queryast.Literal `json:"value"`
}

// HavingCondition is one aggregate comparison after "having".
type HavingCondition struct {
	Agg   string `json:"agg"`
	Op    string `json:"op"`
	Value int64  `json:"value"`
}

// Signals is the structured analysis of one question.
//
// Signals is built fresh by Extract and never mutated afterwards; callers
// treat it as read-only.
//
// Invariant: Where is true whenever Value holds a literal.
type Signals struct {
	// Text is the normalized (NFC, lower-case) question.
	Text string `json:"text"`

	Kind         Kind     `json:"intent"`
	Aggregations []string `json:"aggregations"`

	// Entities are the stopword-filtered, synonym-normalized word tokens.
	Entities []string `json:"entities"`
	Numbers  []string `json:"numbers"`
	Strings  []string `json:"strings"`

	// Tables are candidate table names in first-seen order, deduplicated.
	Tables []string `json:"tables"`

	Join           bool              `json:"join"`
	JoinType       queryast.JoinType `json:"join_type"`
	JoinConfidence Confidence        `json:"join_confidence"`
	PreserveTable  string            `json:"preserve_table,omitempty"`

	// Operator and Value are the question-wide comparison, if any.
	Operator string           `json:"operator"`
	Value    queryast.Literal `json:"value"`

	Where           bool        `json:"where"`
	WhereConditions []Condition `json:"where_conditions"`

	GroupBy []string `json:"group_by"`

	Having           bool              `json:"having"`
	HavingConditions []HavingCondition `json:"having_conditions"`
	HavingLogic      queryast.LogicOp  `json:"having_logic"`
}

// HasAggregation reports whether any aggregation keyword was found.
func (s *Signals) HasAggregation() bool {
	return len(s.Aggregations) > 0
}

// HasValue reports whether a literal was found anywhere in the question.
func (s *Signals) HasValue() bool {
	return !s.Value.IsNull()
}

// FirstAggregation returns the first detected aggregation, or "".
func (s *Signals) FirstAggregation() string {
	if len(s.Aggregations) == 0 {
		return ""
	}
	return s.Aggregations[0]
}
