package pipeline

import (
	"context"
	"fmt"
	"slices"

	"github.com/roach88/nlsql/internal/grammar"
	"github.com/roach88/nlsql/internal/intent"
	"github.com/roach88/nlsql/internal/oracle"
	"github.com/roach88/nlsql/internal/queryast"
	"github.com/roach88/nlsql/internal/vocab"
)

// decode generates the token sequence of q under the grammar, binds it to
// the concrete names of q and parses it back into a Query.
//
// Without a configured oracle the decoder replays the linearization of q
// through a Reference oracle. Intent bias follows the clauses q actually
// carries: a number in the question sets Signals.Where even when no WHERE
// was resolved, and forcing one would bind a condition that was never
// asked for.
//
// The token vocabulary has no slot for join predicates beyond the key
// equality, so ON conditions moved out of WHERE are copied back from q onto
// the decoded join for the same table.
//
// A dead end before any FROM table is a GRAMMAR_DEAD_END failure; a later
// one still parses whatever was generated.
func (s *Synthesizer) decode(ctx context.Context, q queryast.Query, sig *intent.Signals) (queryast.Query, grammar.Generation, error) {
	d := s.decoder
	if d == nil {
		d = s.newDecoder(oracle.ForQuery(q))
	}

	bias := *sig
	bias.Where = q.Where != nil
	bias.Having = len(q.Having) > 0

	gen, err := d.Generate(ctx, &bias)
	if err != nil {
		return queryast.Query{}, gen, fmt.Errorf("decode: %w", err)
	}

	bound := vocab.Bind(gen.Tokens, vocab.BindingsFor(q))
	decoded := queryast.Adapt(vocab.ParseTokens(bound))

	if gen.DeadEnd && len(decoded.From) == 0 {
		return queryast.Query{}, gen, gen.Err()
	}
	reattachJoinExtras(&decoded, q)

	s.logger.Debug("decoded query",
		"tokens", len(gen.Tokens),
		"finished", gen.Finished,
		"dead_end", gen.DeadEnd,
	)
	return decoded, gen, nil
}

// reattachJoinExtras copies On.Extra from the joins of src onto the joins
// of dst with the same table.
func reattachJoinExtras(dst *queryast.Query, src queryast.Query) {
	for _, sj := range src.Joins {
		if len(sj.On.Extra) == 0 {
			continue
		}
		for i := range dst.Joins {
			if dst.Joins[i].Table == sj.Table && len(dst.Joins[i].On.Extra) == 0 {
				dst.Joins[i].On.Extra = slices.Clone(sj.On.Extra)
				break
			}
		}
	}
}

func (s *Synthesizer) newDecoder(o grammar.Oracle) *grammar.Decoder {
	return grammar.NewDecoder(o,
		grammar.WithMaxSteps(s.maxSteps),
		grammar.WithLogger(s.logger),
	)
}
