package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/nlsql/internal/pipeline"
	"github.com/roach88/nlsql/internal/schema"
	"github.com/roach88/nlsql/internal/store"
)

// Harness runs scenarios.
type Harness struct {
	opts   []pipeline.Option
	logger *slog.Logger
}

// Option configures a Harness.
type Option func(*Harness)

// WithPipelineOptions adds options to every synthesizer the harness
// builds. Catalog, history, id generator and validation are always set
// by the harness and override these.
func WithPipelineOptions(opts ...pipeline.Option) Option {
	return func(h *Harness) {
		h.opts = append(h.opts, opts...)
	}
}

// WithLogger sets the logger passed to the pipeline. Defaults to a
// logger that discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(h *Harness) {
		h.logger = l
	}
}

// New creates a Harness.
func New(opts ...Option) *Harness {
	h := &Harness{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Run executes a scenario with a default Harness.
func Run(ctx context.Context, scenario *Scenario) (*Result, error) {
	return New().Run(ctx, scenario)
}

// Run executes a scenario and returns the result.
//
// Each run gets a fresh in-memory history store and request ids req-1,
// req-2, ... so that outcomes are reproducible. An error is returned only
// when the scenario cannot be executed at all; failed expectations are
// reported in the Result.
func (h *Harness) Run(ctx context.Context, scenario *Scenario) (*Result, error) {
	catalog, err := loadCatalog(ctx, scenario)
	if err != nil {
		return nil, fmt.Errorf("failed to load schema: %w", err)
	}

	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	opts := append([]pipeline.Option{pipeline.WithLogger(h.logger)}, h.opts...)
	opts = append(opts,
		pipeline.WithCatalog(catalog),
		pipeline.WithHistory(st),
		pipeline.WithIDGenerator(pipeline.NewFixedGenerator()),
		pipeline.WithValidation(scenario.Validate),
	)
	synth := pipeline.New(opts...)

	result := NewResult()
	for i, c := range scenario.Cases {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		mode := pipeline.ModeRules
		if c.Mode != "" {
			mode = pipeline.Mode(c.Mode)
		}
		resp := synth.Handle(ctx, pipeline.Request{Question: c.Question, Mode: mode})

		o := Outcome{
			Question:  c.Question,
			Mode:      string(mode),
			RequestID: resp.RequestID,
			Success:   resp.Success,
			SQL:       resp.SQL,
			Route:     string(resp.Route),
		}
		if resp.Reason != nil {
			o.Code = string(resp.Reason.Code)
		}
		result.AddOutcome(o)

		for _, msg := range checkExpect(c.Expect, o, resp.Reason) {
			result.AddError(fmt.Sprintf("cases[%d] %q: %s", i, c.Question, msg))
		}
	}

	actx := &AssertionContext{Store: st, Ctx: ctx}
	for _, msg := range EvaluateAssertions(result, scenario.Assertions, actx) {
		result.AddError(msg)
	}

	return result, nil
}

func loadCatalog(ctx context.Context, scenario *Scenario) (*schema.Catalog, error) {
	if scenario.Schema != "" {
		return store.LoadCatalog(ctx, scenario.Schema)
	}
	doc, err := scenario.schemaDocument()
	if err != nil {
		return nil, err
	}
	return schema.Load(doc)
}

// checkExpect compares one outcome with its expect clause. A case without
// an expect clause only has to succeed.
func checkExpect(expect *ExpectClause, o Outcome, reason *pipeline.Reason) []string {
	var problems []string

	if expect != nil && expect.Error != "" {
		switch {
		case o.Success:
			problems = append(problems, fmt.Sprintf("expected error %s, got success: %s", expect.Error, o.SQL))
		case o.Code != expect.Error:
			problems = append(problems, fmt.Sprintf("expected error %s, got %s: %s", expect.Error, o.Code, reason.Message))
		}
		return problems
	}

	if !o.Success {
		msg := ""
		if reason != nil {
			msg = reason.Message
		}
		return append(problems, fmt.Sprintf("expected success, got %s: %s", o.Code, msg))
	}
	if expect == nil {
		return nil
	}
	if expect.SQL != "" && expect.SQL != o.SQL {
		problems = append(problems, fmt.Sprintf("sql mismatch\n  Expected: %s\n  Actual:   %s", expect.SQL, o.SQL))
	}
	if expect.Route != "" && expect.Route != o.Route {
		problems = append(problems, fmt.Sprintf("expected route %s, got %s", expect.Route, o.Route))
	}
	return problems
}
