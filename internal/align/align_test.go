package align

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var companyColumns = []string{
	"employees.id", "employees.name", "employees.salary", "employees.dept_id",
	"departments.id", "departments.dept_name",
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// constScorer scores every column the same.
func constScorer(score float64) Scorer {
	return ScorerFunc(func(string, string) float64 { return score })
}

// tableScorer scores listed (term, column) pairs, everything else 0.
func tableScorer(scores map[[2]string]float64) Scorer {
	return ScorerFunc(func(term, col string) float64 {
		return scores[[2]string{term, col}]
	})
}

func TestAlign_AmbiguitySuppression(t *testing.T) {
	a := New(WithScorer(constScorer(0.40)), WithLogger(quietLogger()))

	m := a.Align([]string{"id"}, []string{"employees.id", "departments.id"})
	assert.Equal(t, 0, m.Len())
	_, ok := m.Get("id")
	assert.False(t, ok)
}

func TestAlign_AmbiguousButConfident(t *testing.T) {
	a := New(WithScorer(constScorer(0.50)), WithLogger(quietLogger()))

	m := a.Align([]string{"id"}, []string{"employees.id", "departments.id"})
	got, ok := m.Get("id")
	require.True(t, ok)
	assert.Equal(t, "employees.id", got, "ties keep the first column")
}

func TestAlign_UniqueColumnBelowAmbiguityScore(t *testing.T) {
	a := New(WithScorer(constScorer(0.35)), WithLogger(quietLogger()))

	m := a.Align([]string{"pay"}, []string{"employees.salary"})
	got, ok := m.Get("pay")
	require.True(t, ok)
	assert.Equal(t, "employees.salary", got)
}

func TestAlign_FuzzyFallback(t *testing.T) {
	a := New(WithScorer(constScorer(0)), WithLogger(quietLogger()))

	m := a.Align(
		[]string{"employees.salry", "zzz"},
		[]string{"employees.salary", "employees.name"},
	)

	got, ok := m.Get("employees.salry")
	require.True(t, ok)
	assert.Equal(t, "employees.salary", got)

	_, ok = m.Get("zzz")
	assert.False(t, ok, "no confident or fuzzy match: term is dropped")
}

func TestAlign_OverrideDoesNotShortCircuit(t *testing.T) {
	cols := []string{"orders.amount", "orders.total_price"}

	// The scored path wins when it produces a match.
	scored := New(
		WithScorer(tableScorer(map[[2]string]float64{{"total", "orders.total_price"}: 0.9})),
		WithLogger(quietLogger()),
	)
	m := scored.Align([]string{"total"}, cols)
	got, _ := m.Get("total")
	assert.Equal(t, "orders.total_price", got)

	// When the scored path skips the term, the override survives.
	skipped := New(WithScorer(constScorer(0)), WithLogger(quietLogger()))
	m = skipped.Align([]string{"total"}, cols)
	got, ok := m.Get("total")
	require.True(t, ok)
	assert.Equal(t, "orders.amount", got)
}

func TestAlign_OverrideLastSuffixMatchWins(t *testing.T) {
	a := New(WithScorer(constScorer(0)), WithLogger(quietLogger()))
	m := a.Align([]string{"total"}, []string{"invoices.amount", "orders.amount"})
	got, ok := m.Get("total")
	require.True(t, ok)
	assert.Equal(t, "orders.amount", got)
}

func TestAlign_EmptyInputs(t *testing.T) {
	a := New(WithLogger(quietLogger()))
	assert.Equal(t, 0, a.Align(nil, companyColumns).Len())
	assert.Equal(t, 0, a.Align([]string{"salary"}, nil).Len())
}

func TestAlign_DefaultScorer(t *testing.T) {
	a := New(WithLogger(quietLogger()))

	m := a.Align([]string{"salary", "dept_name", "name", "qqq"}, companyColumns)

	assert.Equal(t, []string{"salary", "dept_name", "name"}, m.Terms())
	assert.Equal(t, []string{"employees.salary", "departments.dept_name", "employees.name"}, m.Columns())

	first, ok := m.First()
	require.True(t, ok)
	assert.Equal(t, "employees.salary", first)
	assert.Equal(t, map[string]string{
		"salary":    "employees.salary",
		"dept_name": "departments.dept_name",
		"name":      "employees.name",
	}, m.ToMap())
}

func TestAlign_DefaultScorerPrefersExactNames(t *testing.T) {
	a := New(WithLogger(quietLogger()))

	m := a.Align([]string{"dept_id", "dept_name", "name", "id"}, companyColumns)
	assert.Equal(t, map[string]string{
		"dept_id":   "employees.dept_id",
		"dept_name": "departments.dept_name",
		"name":      "employees.name",
		"id":        "employees.id",
	}, m.ToMap())
}

func TestAlign_CustomThresholds(t *testing.T) {
	th := DefaultThresholds()
	th.AmbiguityScore = 0.30
	a := New(WithScorer(constScorer(0.40)), WithThresholds(th), WithLogger(quietLogger()))

	m := a.Align([]string{"id"}, []string{"employees.id", "departments.id"})
	assert.Equal(t, 1, m.Len())
}

func TestMapping_FirstEmpty(t *testing.T) {
	m := newMapping()
	_, ok := m.First()
	assert.False(t, ok)
}
