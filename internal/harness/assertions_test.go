package harness

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/nlsql/internal/store"
)

var sampleOutcomes = []Outcome{
	{Seq: 1, Question: "q1", Mode: "rules", Success: true, SQL: "SELECT a FROM t", Route: "projection"},
	{Seq: 2, Question: "q1", Mode: "decode", Success: true, SQL: "SELECT a FROM t", Route: "projection"},
	{Seq: 3, Question: "q2", Mode: "rules", Success: true, SQL: "SELECT b FROM t", Route: "projection"},
	{Seq: 4, Question: "q2", Mode: "decode", Success: true, SQL: "SELECT c FROM t", Route: "projection"},
	{Seq: 5, Question: "q3", Mode: "rules", Code: "UNRESOLVED_TABLE"},
}

func evaluate(t *testing.T, a Assertion, actx *AssertionContext) []string {
	t.Helper()
	r := NewResult()
	r.Outcomes = sampleOutcomes
	return EvaluateAssertions(r, []Assertion{a}, actx)
}

func TestEvaluateAssertions(t *testing.T) {
	tests := []struct {
		name    string
		a       Assertion
		wantErr string
	}{
		{"sql_contains hit", Assertion{Type: AssertSQLContains, Question: "q2", Text: "SELECT c"}, ""},
		{"sql_contains miss", Assertion{Type: AssertSQLContains, Question: "q1", Text: "WHERE"}, "no matching outcome"},
		{"sql_contains ignores failures", Assertion{Type: AssertSQLContains, Question: "q3", Text: ""}, "no matching outcome"},
		{"route_count", Assertion{Type: AssertRouteCount, Route: "projection", Count: 4}, ""},
		{"route_count mismatch", Assertion{Type: AssertRouteCount, Route: "join", Count: 1}, "Actual: 0 times"},
		{"error_count", Assertion{Type: AssertErrorCount, Code: "UNRESOLVED_TABLE", Count: 1}, ""},
		{"error_count zero", Assertion{Type: AssertErrorCount, Code: "INTERNAL"}, ""},
		{"modes agree", Assertion{Type: AssertModesAgree, Question: "q1"}, ""},
		{"modes disagree", Assertion{Type: AssertModesAgree, Question: "q2"}, "decode: SELECT c FROM t"},
		{"one mode only", Assertion{Type: AssertModesAgree, Question: "q3"}, "asked in 1 mode(s)"},
		{"history without store", Assertion{Type: AssertHistoryCount}, "requires a history store"},
		{"unknown type", Assertion{Type: "final_state"}, `unknown assertion type "final_state"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := evaluate(t, tt.a, nil)
			if tt.wantErr == "" {
				assert.Empty(t, errs)
				return
			}
			require.Len(t, errs, 1)
			assert.Contains(t, errs[0], tt.wantErr)
		})
	}
}

func TestAssertionError_ListsOutcomes(t *testing.T) {
	errs := evaluate(t, Assertion{Type: AssertRouteCount, Route: "join", Count: 1}, nil)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "Assertion failed: route_count")
	assert.Contains(t, errs[0], "[1] q1 (rules) -> SELECT a FROM t")
	assert.Contains(t, errs[0], "[5] q3 (rules) -> UNRESOLVED_TABLE")
}

func TestAssertHistoryCount(t *testing.T) {
	st, err := store.Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	defer st.Close()

	ctx := context.Background()
	for _, rec := range []store.Synthesis{
		{ID: "a", Question: "q", Mode: "rules", Success: true},
		{ID: "b", Question: "q", Mode: "decode", Success: true},
		{ID: "c", Question: "q", Mode: "rules", ErrorCode: "UNRESOLVED_TABLE"},
	} {
		require.NoError(t, st.WriteSynthesis(ctx, rec))
	}

	yes, no := true, false
	actx := &AssertionContext{Store: st, Ctx: ctx}
	assert.Empty(t, evaluate(t, Assertion{Type: AssertHistoryCount, Count: 3}, actx))
	assert.Empty(t, evaluate(t, Assertion{Type: AssertHistoryCount, Success: &yes, Count: 2}, actx))
	assert.Empty(t, evaluate(t, Assertion{Type: AssertHistoryCount, Success: &no, Count: 1}, actx))
	assert.Empty(t, evaluate(t, Assertion{Type: AssertHistoryCount, Mode: "rules", Count: 2}, actx))

	errs := evaluate(t, Assertion{Type: AssertHistoryCount, Success: &yes, Mode: "decode", Count: 2}, actx)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "2 recorded attempts (success=true mode=decode)")
	assert.Contains(t, errs[0], "Actual: 1")
}
