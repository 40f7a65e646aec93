package align

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLexicalScorer(t *testing.T) {
	s := LexicalScorer{}

	assert.Equal(t, 1.0, s.Score("salary", "employees.salary"))
	assert.Equal(t, 1.0, s.Score("dept name", "departments.dept_name"))
	assert.Equal(t, 1.0, s.Score("dept_name", "departments.dept_name"))
	assert.Equal(t, 0.0, s.Score("", "employees.salary"))

	partial := s.Score("name", "employees.emp_name")
	assert.InDelta(t, 2.0*4/12, partial, 1e-9)

	assert.Less(t, s.Score("salary", "departments.dept_name"), 0.30)
}

func TestLexicalScorer_ExactBeatsPartial(t *testing.T) {
	s := LexicalScorer{}

	tests := []struct {
		term, exact, partial string
	}{
		{"dept name", "departments.dept_name", "employees.name"},
		{"dept_name", "departments.dept_name", "employees.name"},
		{"dept_id", "employees.dept_id", "employees.id"},
		{"dept_id", "employees.dept_id", "departments.id"},
		{"name", "employees.name", "departments.dept_name"},
		{"id", "departments.id", "employees.dept_id"},
	}
	for _, tt := range tests {
		exact, partial := s.Score(tt.term, tt.exact), s.Score(tt.term, tt.partial)
		assert.Equal(t, 1.0, exact, tt.term)
		assert.Less(t, partial, exact, "%s: %s must lose to %s", tt.term, tt.partial, tt.exact)
	}

	// Reordered words are still inexact.
	assert.Equal(t, partialCap, s.Score("name dept", "departments.dept_name"))
}

func TestWordOverlap_Symmetric(t *testing.T) {
	assert.Equal(t, 0.5, wordOverlap("dept name", "name"))
	assert.Equal(t, 0.5, wordOverlap("name", "dept name"))
	assert.Equal(t, 1.0, wordOverlap("dept name", "name dept"))
	assert.Equal(t, 0.0, wordOverlap("", "name"))
}

func TestRatio(t *testing.T) {
	assert.Equal(t, 1.0, Ratio("abc", "abc"))
	assert.Equal(t, 1.0, Ratio("", ""))
	assert.Equal(t, 0.0, Ratio("abc", "xyz"))
	assert.InDelta(t, 0.75, Ratio("abcd", "bcde"), 1e-9)
}

func TestCloseMatch(t *testing.T) {
	got, score, ok := CloseMatch("salry", []string{"salary", "name"}, 0.6)
	assert.True(t, ok)
	assert.Equal(t, "salary", got)
	assert.Greater(t, score, 0.6)

	_, _, ok = CloseMatch("zzz", []string{"salary", "name"}, 0.6)
	assert.False(t, ok)

	// Ties go to the lexicographically larger candidate.
	got, _, ok = CloseMatch("ab", []string{"ac", "ad"}, 0.5)
	assert.True(t, ok)
	assert.Equal(t, "ad", got)
}
