package align

import (
	"log/slog"
	"strings"

	"github.com/roach88/nlsql/internal/schema"
)

// Thresholds tune the alignment decisions.
type Thresholds struct {
	// MinScore is the best-score floor below which the fuzzy fallback runs.
	MinScore float64 `yaml:"min_score"`

	// FuzzyCutoff is the minimum difflib ratio accepted by the fallback.
	FuzzyCutoff float64 `yaml:"fuzzy_cutoff"`

	// AmbiguityScore is the score a match on a column name shared by
	// several tables must reach to be kept.
	AmbiguityScore float64 `yaml:"ambiguity_score"`
}

// DefaultThresholds returns the calibrated defaults.
func DefaultThresholds() Thresholds {
	return Thresholds{
		MinScore:       0.30,
		FuzzyCutoff:    0.60,
		AmbiguityScore: 0.45,
	}
}

// synonymBias maps terms to the bare column they should prefer.
var synonymBias = map[string]string{
	// tables
	"employee":   "employees",
	"staff":      "employees",
	"worker":     "employees",
	"department": "departments",

	// columns
	"department name": "dept_name",
	"dept name":       "dept_name",
	"employee name":   "first_name",
	"employee id":     "emp_id",
	"department id":   "dept_id",
	"salary":          "salary",

	// generic
	"amount": "amount",
	"total":  "amount",
}

// Aligner maps free-form terms to fully-qualified schema columns.
//
// An Aligner is immutable after construction and safe for concurrent use
// when its Scorer is.
type Aligner struct {
	scorer     Scorer
	thresholds Thresholds
	logger     *slog.Logger
}

// Option configures an Aligner.
type Option func(*Aligner)

// WithScorer replaces the default LexicalScorer.
func WithScorer(s Scorer) Option {
	return func(a *Aligner) {
		if s != nil {
			a.scorer = s
		}
	}
}

// WithThresholds overrides the default thresholds.
func WithThresholds(t Thresholds) Option {
	return func(a *Aligner) {
		a.thresholds = t
	}
}

// WithLogger sets the logger for fuzzy-match and skip events.
func WithLogger(l *slog.Logger) Option {
	return func(a *Aligner) {
		if l != nil {
			a.logger = l
		}
	}
}

// New creates an Aligner.
func New(opts ...Option) *Aligner {
	a := &Aligner{
		scorer:     LexicalScorer{},
		thresholds: DefaultThresholds(),
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Align maps each term to at most one qualified column.
//
// Per term:
//  1. Synonym override: when the term has a preferred column and a column
//     ending in ".<preferred>" exists, the last such column is recorded.
//     This does not short-circuit; the scored path below runs regardless
//     and replaces the entry when it produces a match.
//  2. Scored path: arg-max of Scorer over columns (first column wins ties).
//  3. Below MinScore the best match is replaced by the fuzzy fallback
//     (difflib ratio ≥ FuzzyCutoff); without a fallback the term is skipped.
//  4. Ambiguity guard: a match whose bare name exists in several tables
//     is skipped unless its score reaches AmbiguityScore.
//
// Skipped terms are absent from the mapping. A skip is never an error.
func (a *Aligner) Align(terms, columns []string) Mapping {
	m := newMapping()
	if len(terms) == 0 || len(columns) == 0 {
		return m
	}

	bareCount := make(map[string]int, len(columns))
	for _, col := range columns {
		bareCount[schema.Bare(col)]++
	}

	for _, term := range terms {
		if syn, ok := synonymBias[term]; ok {
			for _, col := range columns {
				if strings.HasSuffix(col, "."+syn) {
					m.set(term, col)
				}
			}
		}

		best, bestScore := a.argmax(term, columns)

		if bestScore < a.thresholds.MinScore {
			fallback, _, ok := CloseMatch(term, columns, a.thresholds.FuzzyCutoff)
			if !ok {
				a.logger.Warn("low confidence alignment, term skipped",
					"term", term,
					"best", best,
					"score", bestScore,
				)
				continue
			}
			a.logger.Info("fuzzy matched term",
				"term", term,
				"column", fallback,
			)
			best = fallback
		}

		if bareCount[schema.Bare(best)] > 1 && bestScore < a.thresholds.AmbiguityScore {
			a.logger.Warn("ambiguous column, term skipped",
				"term", term,
				"column", best,
				"score", bestScore,
			)
			continue
		}

		m.set(term, best)
	}

	return m
}

// argmax returns the highest scoring column; ties keep the earliest.
func (a *Aligner) argmax(term string, columns []string) (string, float64) {
	best := columns[0]
	bestScore := a.scorer.Score(term, best)
	for _, col := range columns[1:] {
		if s := a.scorer.Score(term, col); s > bestScore {
			best, bestScore = col, s
		}
	}
	return best, bestScore
}
