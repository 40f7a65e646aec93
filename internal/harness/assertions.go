package harness

import (
	"context"
	"fmt"
	"strings"

	"github.com/roach88/nlsql/internal/store"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string    // Assertion type for categorization
	Expected string    // Human-readable expected outcome
	Actual   string    // Human-readable actual outcome
	Outcomes []Outcome // Outcomes for context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Outcomes) > 0 {
		fmt.Fprintf(&buf, "\nOutcomes:\n")
		for _, o := range e.Outcomes {
			if o.Success {
				fmt.Fprintf(&buf, "  [%d] %s (%s) -> %s\n", o.Seq, o.Question, o.Mode, o.SQL)
			} else {
				fmt.Fprintf(&buf, "  [%d] %s (%s) -> %s\n", o.Seq, o.Question, o.Mode, o.Code)
			}
		}
	}

	return buf.String()
}

// assertSQLContains checks that some successful outcome for the question
// contains the fragment.
func assertSQLContains(outcomes []Outcome, a Assertion) error {
	for _, o := range outcomes {
		if o.Question == a.Question && o.Success && strings.Contains(o.SQL, a.Text) {
			return nil
		}
	}
	return &AssertionError{
		Type:     AssertSQLContains,
		Expected: fmt.Sprintf("SQL for %q containing %q", a.Question, a.Text),
		Actual:   "no matching outcome",
		Outcomes: outcomes,
	}
}

// assertCount checks that exactly a.Count outcomes satisfy match.
func assertCount(outcomes []Outcome, a Assertion, what string, match func(Outcome) bool) error {
	n := 0
	for _, o := range outcomes {
		if match(o) {
			n++
		}
	}
	if n == a.Count {
		return nil
	}
	return &AssertionError{
		Type:     a.Type,
		Expected: fmt.Sprintf("%s exactly %d times", what, a.Count),
		Actual:   fmt.Sprintf("%d times", n),
		Outcomes: outcomes,
	}
}

// assertModesAgree checks that the question was answered in both modes
// with the same SQL.
func assertModesAgree(outcomes []Outcome, a Assertion) error {
	bySQL := map[string]string{}
	for _, o := range outcomes {
		if o.Question != a.Question {
			continue
		}
		key := o.SQL
		if !o.Success {
			key = "error " + o.Code
		}
		bySQL[o.Mode] = key
	}

	rules, okRules := bySQL["rules"]
	decode, okDecode := bySQL["decode"]
	if !okRules || !okDecode {
		return &AssertionError{
			Type:     AssertModesAgree,
			Expected: fmt.Sprintf("%q asked in both rules and decode mode", a.Question),
			Actual:   fmt.Sprintf("asked in %d mode(s)", len(bySQL)),
			Outcomes: outcomes,
		}
	}
	if rules != decode {
		return &AssertionError{
			Type:     AssertModesAgree,
			Expected: fmt.Sprintf("rules: %s", rules),
			Actual:   fmt.Sprintf("decode: %s", decode),
			Outcomes: outcomes,
		}
	}
	return nil
}

// assertHistoryCount counts the attempts recorded in the history store.
func assertHistoryCount(ctx context.Context, st *store.Store, a Assertion) error {
	recs, err := st.ReadSyntheses(ctx, 0)
	if err != nil {
		return fmt.Errorf("read history: %w", err)
	}

	n := 0
	for _, r := range recs {
		if a.Success != nil && r.Success != *a.Success {
			continue
		}
		if a.Mode != "" && r.Mode != a.Mode {
			continue
		}
		n++
	}
	if n == a.Count {
		return nil
	}

	filter := "all"
	if a.Success != nil {
		filter = fmt.Sprintf("success=%t", *a.Success)
	}
	if a.Mode != "" {
		filter += " mode=" + a.Mode
	}
	return &AssertionError{
		Type:     AssertHistoryCount,
		Expected: fmt.Sprintf("%d recorded attempts (%s)", a.Count, filter),
		Actual:   fmt.Sprintf("%d", n),
	}
}

// AssertionContext provides context for evaluating assertions.
type AssertionContext struct {
	Store *store.Store
	Ctx   context.Context
}

// EvaluateAssertions evaluates all assertions against the result.
// Returns a slice of error messages for failed assertions.
// The actx parameter provides history access for history_count assertions.
func EvaluateAssertions(result *Result, assertions []Assertion, actx *AssertionContext) []string {
	var errors []string

	for i, a := range assertions {
		var err error

		switch a.Type {
		case AssertSQLContains:
			err = assertSQLContains(result.Outcomes, a)
		case AssertRouteCount:
			err = assertCount(result.Outcomes, a, "route "+a.Route, func(o Outcome) bool {
				return o.Success && o.Route == a.Route
			})
		case AssertErrorCount:
			err = assertCount(result.Outcomes, a, "error "+a.Code, func(o Outcome) bool {
				return !o.Success && o.Code == a.Code
			})
		case AssertModesAgree:
			err = assertModesAgree(result.Outcomes, a)
		case AssertHistoryCount:
			if actx == nil || actx.Store == nil {
				err = fmt.Errorf("assertion[%d]: history_count requires a history store", i)
			} else {
				err = assertHistoryCount(actx.Ctx, actx.Store, a)
			}
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, a.Type)
		}

		if err != nil {
			errors = append(errors, err.Error())
		}
	}

	return errors
}
