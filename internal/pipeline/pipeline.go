package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/roach88/nlsql/internal/align"
	"github.com/roach88/nlsql/internal/boolexpr"
	"github.com/roach88/nlsql/internal/errs"
	"github.com/roach88/nlsql/internal/grammar"
	"github.com/roach88/nlsql/internal/intent"
	"github.com/roach88/nlsql/internal/queryast"
	"github.com/roach88/nlsql/internal/render"
	"github.com/roach88/nlsql/internal/schema"
	"github.com/roach88/nlsql/internal/store"
)

// Mode selects how the final query is produced.
type Mode string

const (
	// ModeRules renders the query built by the routing rules.
	ModeRules Mode = "rules"

	// ModeDecode replays the rule-built query through the grammar decoder
	// and renders the decoded tokens.
	ModeDecode Mode = "decode"
)

// Request is one synthesis request.
//
// The schema is taken from Shape when set, else parsed from Schema (JSON
// or YAML), else the Synthesizer's catalog is used.
type Request struct {
	Schema   []byte       `json:"-"`
	Shape    schema.Shape `json:"-"`
	Question string       `json:"question"`
	Mode     Mode         `json:"mode,omitempty"`
}

// Reason is a structured failure.
type Reason struct {
	Code    errs.Code         `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

// Response is the result of Handle. Exactly one of SQL and Reason is set.
type Response struct {
	Success   bool    `json:"success"`
	SQL       string  `json:"sql,omitempty"`
	RequestID string  `json:"request_id"`
	Route     Route   `json:"route,omitempty"`
	Reason    *Reason `json:"reason,omitempty"`

	// Template is SQL with its literals replaced by ? placeholders; Params
	// holds the literals in placeholder order.
	Template string `json:"template,omitempty"`
	Params   []any  `json:"params,omitempty"`
}

// Result is the full outcome of a successful synthesis.
type Result struct {
	SQL      string
	Template string
	Params   []any
	Route    Route
	Query    queryast.Query
	Signals  intent.Signals

	// Generation is set in ModeDecode.
	Generation *grammar.Generation
}

// Synthesizer turns questions into SQL.
//
// A Synthesizer is immutable after construction and safe for concurrent
// use; calls to a non-reentrant oracle are serialized by its decoder.
type Synthesizer struct {
	catalog  *schema.Catalog
	aligner  *align.Aligner
	builder  *boolexpr.Builder
	oracle   grammar.Oracle
	decoder  *grammar.Decoder
	maxSteps int
	validate bool
	history  *store.Store
	ids      IDGenerator
	logger   *slog.Logger
}

// Option configures a Synthesizer.
type Option func(*Synthesizer)

// WithCatalog sets the catalog used for requests that carry no schema.
func WithCatalog(c *schema.Catalog) Option {
	return func(s *Synthesizer) {
		s.catalog = c
	}
}

// WithAligner replaces the default aligner. The WHERE builder shares it.
func WithAligner(a *align.Aligner) Option {
	return func(s *Synthesizer) {
		if a != nil {
			s.aligner = a
		}
	}
}

// WithOracle drives ModeDecode with a fixed oracle instead of replaying the
// rule-built query.
func WithOracle(o grammar.Oracle) Option {
	return func(s *Synthesizer) {
		s.oracle = o
	}
}

// WithMaxSteps bounds decoding in ModeDecode.
func WithMaxSteps(n int) Option {
	return func(s *Synthesizer) {
		if n > 0 {
			s.maxSteps = n
		}
	}
}

// WithValidation enables the SQL syntax check on every rendered statement.
func WithValidation(enabled bool) Option {
	return func(s *Synthesizer) {
		s.validate = enabled
	}
}

// WithHistory records every handled request in st.
func WithHistory(st *store.Store) Option {
	return func(s *Synthesizer) {
		s.history = st
	}
}

// WithIDGenerator replaces the UUIDv7 request id generator.
func WithIDGenerator(g IDGenerator) Option {
	return func(s *Synthesizer) {
		if g != nil {
			s.ids = g
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Synthesizer) {
		if l != nil {
			s.logger = l
		}
	}
}

// New creates a Synthesizer.
func New(opts ...Option) *Synthesizer {
	s := &Synthesizer{
		maxSteps: grammar.DefaultMaxSteps,
		ids:      UUIDv7Generator{},
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.aligner == nil {
		s.aligner = align.New(align.WithLogger(s.logger))
	}
	s.builder = boolexpr.NewBuilder(s.aligner, boolexpr.WithLogger(s.logger))
	if s.oracle != nil {
		s.decoder = s.newDecoder(s.oracle)
	}
	return s
}

// Handle synthesizes SQL for one request. It never fails: every error,
// including a recovered panic, is reported in the Response.
func (s *Synthesizer) Handle(ctx context.Context, req Request) (resp Response) {
	resp.RequestID = s.ids.Generate()

	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("synthesis panicked",
				"request_id", resp.RequestID,
				"panic", r,
				"stack", string(debug.Stack()),
			)
			resp = s.failure(resp.RequestID, errs.New(errs.CodeInternal, "internal error: %v", r))
		}
		s.record(ctx, req, resp)
	}()

	catalog, err := s.catalogFor(req)
	if err != nil {
		return s.failure(resp.RequestID, err)
	}

	res, err := s.Synthesize(ctx, catalog, req.Question, req.Mode)
	if err != nil {
		return s.failure(resp.RequestID, err)
	}

	resp.Success = true
	resp.SQL = res.SQL
	resp.Route = res.Route
	resp.Template = res.Template
	resp.Params = res.Params
	return resp
}

// Synthesize runs the pipeline for question against catalog.
func (s *Synthesizer) Synthesize(ctx context.Context, catalog *schema.Catalog, question string, mode Mode) (Result, error) {
	if catalog == nil {
		return Result{}, errs.New(errs.CodeSchemaInvalid, "no schema")
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	sig := intent.Extract(question)
	plan, err := s.plan(catalog, &sig)
	if err != nil {
		return Result{}, err
	}

	q, err := plan.build()
	if err != nil {
		return Result{}, err
	}

	res := Result{Route: plan.route, Query: q, Signals: sig}

	switch mode {
	case ModeDecode:
		decoded, gen, err := s.decode(ctx, q, &sig)
		if err != nil {
			return Result{}, err
		}
		res.Query = decoded
		res.Generation = &gen
	case ModeRules, "":
	default:
		return Result{}, fmt.Errorf("unknown mode %q", mode)
	}

	sql, err := render.Render(res.Query)
	if err != nil {
		return Result{}, err
	}
	if s.validate {
		if err := render.Validate(sql); err != nil {
			return Result{}, err
		}
	}
	res.SQL = sql

	res.Template, res.Params, err = render.RenderParameterized(res.Query)
	if err != nil {
		return Result{}, err
	}

	s.logger.Debug("synthesized",
		"route", res.Route,
		"mode", mode,
		"sql", sql,
	)
	return res, nil
}

func (s *Synthesizer) catalogFor(req Request) (*schema.Catalog, error) {
	switch {
	case req.Shape != nil:
		return schema.New(req.Shape)
	case len(req.Schema) > 0:
		return schema.Load(req.Schema)
	case s.catalog != nil:
		return s.catalog, nil
	default:
		return nil, errs.New(errs.CodeSchemaInvalid, "request carries no schema")
	}
}

func (s *Synthesizer) failure(id string, err error) Response {
	reason := &Reason{Code: errs.CodeOf(err), Message: err.Error()}
	var e *errs.Error
	if errors.As(err, &e) {
		reason.Message = e.Message
		reason.Details = e.Details
	}
	s.logger.Debug("synthesis failed",
		"request_id", id,
		"code", reason.Code,
		"error", err,
	)
	return Response{RequestID: id, Reason: reason}
}

// record appends resp to the history log. A failed write is logged and
// otherwise ignored.
func (s *Synthesizer) record(ctx context.Context, req Request, resp Response) {
	if s.history == nil {
		return
	}
	rec := store.Synthesis{
		ID:       resp.RequestID,
		Question: req.Question,
		Mode:     string(modeOrDefault(req.Mode)),
		Success:  resp.Success,
		SQL:      resp.SQL,
	}
	if resp.Reason != nil {
		rec.ErrorCode = string(resp.Reason.Code)
		rec.ErrorMsg = resp.Reason.Message
	}
	if err := s.history.WriteSynthesis(context.WithoutCancel(ctx), rec); err != nil {
		s.logger.Warn("history write failed",
			"request_id", resp.RequestID,
			"error", err,
		)
	}
}

func modeOrDefault(m Mode) Mode {
	if m == "" {
		return ModeRules
	}
	return m
}
