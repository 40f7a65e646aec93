package pipeline

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/nlsql/internal/errs"
	"github.com/roach88/nlsql/internal/grammar"
	"github.com/roach88/nlsql/internal/oracle"
	"github.com/roach88/nlsql/internal/vocab"
)

func TestDecode_MatchesRules(t *testing.T) {
	s := newTestSynthesizer(t)
	c := loadCatalog(t, companySchema)

	for _, question := range []string{
		"show name and salary from employees where salary > 5000",
		"total salary by dept_id",
		"total salary by dept_id having sum > 100000 or max > 9000",
		"employees and their departments including those without departments",
		"count employees by department",
	} {
		t.Run(question, func(t *testing.T) {
			rules, err := s.Synthesize(context.Background(), c, question, ModeRules)
			require.NoError(t, err)

			decoded, err := s.Synthesize(context.Background(), c, question, ModeDecode)
			require.NoError(t, err)
			require.NotNil(t, decoded.Generation)
			assert.True(t, decoded.Generation.Finished)
			assert.Equal(t, rules.SQL, decoded.SQL)
		})
	}
}

func TestDecode_KeepsOuterJoinConditions(t *testing.T) {
	s := newTestSynthesizer(t)
	c := loadCatalog(t, companySchema)
	question := "employees and their departments including those without departments where dept_name = 'sales'"

	rules, err := s.Synthesize(context.Background(), c, question, ModeRules)
	require.NoError(t, err)

	decoded, err := s.Synthesize(context.Background(), c, question, ModeDecode)
	require.NoError(t, err)
	assert.Equal(t,
		"SELECT employees.name, departments.dept_name FROM employees "+
			"LEFT JOIN departments ON employees.dept_id = departments.id AND departments.dept_name = 'sales'",
		decoded.SQL)
	assert.Equal(t, rules.SQL, decoded.SQL)
	assert.Nil(t, decoded.Query.Where)
}

func TestDecode_Tokens(t *testing.T) {
	s := newTestSynthesizer(t)
	c := loadCatalog(t, companySchema)

	res, err := s.Synthesize(context.Background(), c, "total salary by dept_id", ModeDecode)
	require.NoError(t, err)
	assert.Equal(t, []string{
		vocab.Select, vocab.ColumnPH, "SUM", vocab.ColumnPH,
		vocab.From, vocab.TablePH,
		vocab.GroupBy, vocab.ColumnPH,
		vocab.End,
	}, res.Generation.Tokens)
}

func TestDecode_DeadEnd(t *testing.T) {
	dead := grammar.OracleFunc(func(context.Context, []int) ([]float64, error) {
		scores := make([]float64, vocab.Size())
		for i := range scores {
			scores[i] = math.Inf(-1)
		}
		return scores, nil
	})
	s := newTestSynthesizer(t, WithOracle(dead))

	resp := s.Handle(context.Background(), Request{
		Question: "show name from employees",
		Mode:     ModeDecode,
	})
	assert.False(t, resp.Success)
	require.NotNil(t, resp.Reason)
	assert.Equal(t, errs.CodeGrammarDeadEnd, resp.Reason.Code)
	assert.Equal(t, "START", resp.Reason.Details["state"])
}

func TestDecode_ConfiguredOracle(t *testing.T) {
	// An oracle replaying a different column count still binds against
	// the rule-built query: extra columns reuse the last binding.
	target := []string{
		vocab.Select, vocab.ColumnPH, vocab.ColumnPH, vocab.ColumnPH,
		vocab.From, vocab.TablePH, vocab.End,
	}
	s := newTestSynthesizer(t, WithOracle(oracle.NewReference(target)))

	resp := s.Handle(context.Background(), Request{
		Question: "show name and salary from employees",
		Mode:     ModeDecode,
	})
	require.True(t, resp.Success, "reason: %+v", resp.Reason)
	assert.Equal(t, "SELECT employees.name, employees.salary, employees.salary FROM employees", resp.SQL)
}

func TestDecode_MaxSteps(t *testing.T) {
	// Two steps produce SELECT <COLUMN>: no FROM table, nothing to render.
	s := newTestSynthesizer(t, WithMaxSteps(2))

	resp := s.Handle(context.Background(), Request{
		Question: "show name from employees",
		Mode:     ModeDecode,
	})
	assert.False(t, resp.Success)
	require.NotNil(t, resp.Reason)
	assert.Equal(t, errs.CodeRenderFailed, resp.Reason.Code)
}
