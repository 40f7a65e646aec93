package errs

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorFormatting(t *testing.T) {
	err := New(CodeUnresolvedTable, "no table matches %q", "staff")
	assert.Equal(t, `UNRESOLVED_TABLE: no table matches "staff"`, err.Error())
}

func TestCodeOf_Wrapped(t *testing.T) {
	base := NewRenderError("unresolved <TABLE> in FROM")
	wrapped := fmt.Errorf("render: %w", base)

	assert.Equal(t, CodeRenderFailed, CodeOf(wrapped))
	assert.True(t, Is(wrapped, CodeRenderFailed))
	assert.False(t, Is(wrapped, CodeGrammarDeadEnd))
}

func TestCodeOf_Foreign(t *testing.T) {
	assert.Equal(t, CodeInternal, CodeOf(errors.New("boom")))
	assert.False(t, Is(errors.New("boom"), CodeInternal))
}

func TestWith_DoesNotMutate(t *testing.T) {
	base := New(CodeConditionUnresolved, "x")
	derived := base.With("fragment", "salary > 5")

	assert.Nil(t, base.Details)
	assert.Equal(t, "salary > 5", derived.Details["fragment"])
}

func TestConstructors(t *testing.T) {
	cond := NewConditionError("foo = 1")
	assert.Equal(t, CodeConditionUnresolved, cond.Code)
	assert.Equal(t, "foo = 1", cond.Details["fragment"])

	join := NewJoinRelationshipError("employees", "projects")
	assert.Equal(t, CodeUnresolvedJoinRelationship, join.Code)
	assert.Equal(t, "employees", join.Details["left"])
	assert.Equal(t, "projects", join.Details["right"])
}
