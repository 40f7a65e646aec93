// Package oracle provides scoring oracles for the grammar decoder.
//
// A neural model is one possible oracle; the ones here are deterministic
// and need no model artifact.
package oracle

import (
	"context"

	"github.com/roach88/nlsql/internal/queryast"
	"github.com/roach88/nlsql/internal/vocab"
)

// Reference scores a fixed target sequence: at position i it prefers
// target[i] (score 1), then <END> (score 0.5), then everything else (0).
// Past the end of the target only <END> is preferred.
//
// A Reference replays a known query through the grammar, which makes the
// decoder's constraints observable: a target the grammar rejects shows up
// as a diverging or truncated generation.
type Reference struct {
	target []int
}

// NewReference creates a Reference for target. A leading <START> is
// optional.
func NewReference(target []string) *Reference {
	if len(target) > 0 && target[0] == vocab.Start {
		target = target[1:]
	}
	return &Reference{target: vocab.IDs(target)}
}

// ForQuery creates a Reference replaying the linearization of q.
func ForQuery(q queryast.Query) *Reference {
	return NewReference(vocab.Linearize(q))
}

// Scores implements grammar.Oracle. ids starts with <START>.
func (r *Reference) Scores(ctx context.Context, ids []int) ([]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	scores := make([]float64, vocab.Size())
	scores[vocab.ID(vocab.End)] = 0.5

	pos := len(ids) - 1
	if pos >= 0 && pos < len(r.target) {
		scores[r.target[pos]] = 1
	}
	return scores, nil
}

// Reentrant reports that Reference is safe for concurrent use.
func (r *Reference) Reentrant() bool { return true }

// Target returns the target tokens.
func (r *Reference) Target() []string {
	return vocab.Tokens(r.target)
}
