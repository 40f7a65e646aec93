package align

import (
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/roach88/nlsql/internal/schema"
)

// Scorer rates how well a free-form term names a schema column.
//
// column is fully qualified (table.column). Scores are expected in [0, 1];
// the aligner's thresholds are calibrated for that range.
type Scorer interface {
	Score(term, column string) float64
}

// ScorerFunc adapts a function to the Scorer interface.
type ScorerFunc func(term, column string) float64

// Score calls f(term, column).
func (f ScorerFunc) Score(term, column string) float64 {
	return f(term, column)
}

// LexicalScorer is the default Scorer. It compares the term against the
// bare column name with underscores read as spaces, taking the larger of
//   - the difflib similarity ratio of the two strings
//   - the shared words over the word count of the longer side
//
// An exact match scores 1; any other match scores at most partialCap.
type LexicalScorer struct{}

// partialCap keeps every inexact match below an exact bare-name match.
const partialCap = 0.99

// Score implements Scorer.
func (LexicalScorer) Score(term, column string) float64 {
	t := humanize(term)
	c := humanize(schema.Bare(column))
	if t == "" || c == "" {
		return 0
	}
	if t == c {
		return 1
	}

	best := Ratio(t, c)
	if overlap := wordOverlap(t, c); overlap > best {
		best = overlap
	}
	return min(best, partialCap)
}

// Ratio returns the difflib SequenceMatcher ratio of a and b, compared
// character by character: 2*M/T where M is the number of matched
// characters and T the combined length.
func Ratio(a, b string) float64 {
	if a == "" && b == "" {
		return 1
	}
	m := difflib.NewMatcher(chars(a), chars(b))
	return m.Ratio()
}

// CloseMatch returns the candidate most similar to term whose ratio is at
// least cutoff. Ties go to the lexicographically larger candidate, which
// keeps results independent of candidate order.
func CloseMatch(term string, candidates []string, cutoff float64) (string, float64, bool) {
	var best string
	bestScore := -1.0
	for _, c := range candidates {
		score := Ratio(term, c)
		if score < cutoff {
			continue
		}
		if score > bestScore || (score == bestScore && c > best) {
			best, bestScore = c, score
		}
	}
	if bestScore < 0 {
		return "", 0, false
	}
	return best, bestScore, true
}

func humanize(s string) string {
	s = strings.ToLower(strings.ReplaceAll(s, "_", " "))
	return strings.Join(strings.Fields(s), " ")
}

func chars(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}

// wordOverlap returns the number of column words found in term divided by
// the word count of the longer of the two, so "dept name" against "name"
// scores 0.5 in both directions.
func wordOverlap(term, column string) float64 {
	termWords := make(map[string]struct{})
	for _, w := range strings.Fields(term) {
		termWords[w] = struct{}{}
	}
	colWords := strings.Fields(column)
	if len(colWords) == 0 || len(termWords) == 0 {
		return 0
	}
	hits := 0
	for _, w := range colWords {
		if _, ok := termWords[w]; ok {
			hits++
		}
	}
	return float64(hits) / float64(max(len(termWords), len(colWords)))
}
