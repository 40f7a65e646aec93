package grammar

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync"

	"github.com/roach88/nlsql/internal/errs"
	"github.com/roach88/nlsql/internal/intent"
	"github.com/roach88/nlsql/internal/vocab"
)

// DefaultMaxSteps bounds one generation.
const DefaultMaxSteps = 100

// Oracle scores every vocabulary token as the continuation of ids.
//
// ids always starts with <START>. The returned slice must have
// vocab.Size() entries; higher is better.
type Oracle interface {
	Scores(ctx context.Context, ids []int) ([]float64, error)
}

// Reentrant is implemented by oracles that may be called concurrently.
// Calls to any other Oracle are serialized by the Decoder.
type Reentrant interface {
	Reentrant() bool
}

// OracleFunc adapts a function to the Oracle interface.
type OracleFunc func(ctx context.Context, ids []int) ([]float64, error)

// Scores calls f(ctx, ids).
func (f OracleFunc) Scores(ctx context.Context, ids []int) ([]float64, error) {
	return f(ctx, ids)
}

// Generation is the result of one decoding run.
type Generation struct {
	// Tokens are the generated tokens, excluding the leading <START>.
	Tokens []string `json:"tokens"`

	// Steps is the number of oracle calls made.
	Steps int `json:"steps"`

	// Finished reports that <END> was generated.
	Finished bool `json:"finished"`

	// DeadEnd reports that every allowed token scored -Inf.
	DeadEnd bool `json:"dead_end"`

	// DeadEndState is the clause state at the dead end.
	DeadEndState string `json:"dead_end_state,omitempty"`
}

// Err returns a GRAMMAR_DEAD_END error when the run hit a dead end, else nil.
// A dead end is not fatal: Tokens still hold everything generated before it.
func (g Generation) Err() error {
	if !g.DeadEnd {
		return nil
	}
	return errs.New(errs.CodeGrammarDeadEnd, "grammar dead end after %d tokens", len(g.Tokens)).
		With("state", g.DeadEndState)
}

// Decoder runs masked greedy decoding against an Oracle.
type Decoder struct {
	oracle    Oracle
	maxSteps  int
	logger    *slog.Logger
	reentrant bool

	mu sync.Mutex
}

// DecoderOption configures a Decoder.
type DecoderOption func(*Decoder)

// WithMaxSteps bounds the number of generated tokens.
func WithMaxSteps(n int) DecoderOption {
	return func(d *Decoder) {
		if n > 0 {
			d.maxSteps = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) DecoderOption {
	return func(d *Decoder) {
		if l != nil {
			d.logger = l
		}
	}
}

// NewDecoder creates a Decoder.
func NewDecoder(oracle Oracle, opts ...DecoderOption) *Decoder {
	d := &Decoder{
		oracle:   oracle,
		maxSteps: DefaultMaxSteps,
		logger:   slog.Default(),
	}
	if r, ok := oracle.(Reentrant); ok {
		d.reentrant = r.Reentrant()
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Generate decodes one token sequence.
//
// Each step asks the oracle for scores, masks them with AllowedTokens and
// picks the highest scoring id (the lowest id on ties). Generation stops
// at <END>, after MaxSteps tokens, or at a dead end. sig may be nil.
//
// ctx is checked before every step. Oracle errors and cancellation are
// returned as errors; a dead end is reported in the Generation.
func (d *Decoder) Generate(ctx context.Context, sig *intent.Signals) (Generation, error) {
	tokens := []string{vocab.Start}
	ids := []int{vocab.ID(vocab.Start)}
	var gen Generation

	for gen.Steps < d.maxSteps {
		if err := ctx.Err(); err != nil {
			return gen, err
		}

		allowed := AllowedTokens(tokens, sig)
		scores, err := d.scores(ctx, ids)
		gen.Steps++
		if err != nil {
			return gen, fmt.Errorf("oracle step %d: %w", gen.Steps, err)
		}
		if len(scores) != vocab.Size() {
			return gen, fmt.Errorf("oracle step %d: got %d scores, want %d", gen.Steps, len(scores), vocab.Size())
		}

		next, ok := argmax(Mask(scores, allowed))
		if !ok {
			gen.DeadEnd = true
			gen.DeadEndState = InferState(tokens).String()
			d.logger.Warn("grammar dead end",
				"state", gen.DeadEndState,
				"tokens", len(gen.Tokens),
			)
			return gen, nil
		}

		tok := vocab.Token(next)
		tokens = append(tokens, tok)
		ids = append(ids, next)
		gen.Tokens = append(gen.Tokens, tok)

		if tok == vocab.End {
			gen.Finished = true
			break
		}
	}

	d.logger.Debug("decoded",
		"steps", gen.Steps,
		"finished", gen.Finished,
	)
	return gen, nil
}

func (d *Decoder) scores(ctx context.Context, ids []int) ([]float64, error) {
	if !d.reentrant {
		d.mu.Lock()
		defer d.mu.Unlock()
	}
	return d.oracle.Scores(ctx, ids)
}

// argmax returns the id of the highest finite score; ties keep the lowest
// id. NaN scores are treated as -Inf.
func argmax(scores []float64) (int, bool) {
	best := -1
	bestScore := math.Inf(-1)
	for id, s := range scores {
		if math.IsNaN(s) || math.IsInf(s, -1) {
			continue
		}
		if best < 0 || s > bestScore {
			best, bestScore = id, s
		}
	}
	return best, best >= 0
}
