package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/nlsql/internal/align"
	"github.com/roach88/nlsql/internal/pipeline"
	"github.com/roach88/nlsql/internal/store"
)

// GenerateOptions holds flags for the generate command.
type GenerateOptions struct {
	*RootOptions
	Schema   string
	Decode   bool
	Validate bool
	History  string
	MaxSteps int

	// IDGenerator overrides request id generation (for testing).
	// If nil, defaults to UUIDv7Generator.
	IDGenerator pipeline.IDGenerator
}

// GenerateResult is the success payload of the generate command.
type GenerateResult struct {
	SQL      string `json:"sql"`
	Template string `json:"template"`
	Params   []any  `json:"params"`
	Route    string `json:"route"`
	Mode     string `json:"mode"`
}

// NewGenerateCommand creates the generate command.
func NewGenerateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &GenerateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "generate <question...>",
		Short: "Translate a question into SQL",
		Long: `Translate a natural-language question into a SELECT statement.

The schema is read from --schema: a JSON, YAML or CUE document with a
tables section, or an existing SQLite database whose tables are
introspected read-only.

By default the statement is built by rules. With --decode it is produced
token by token under the SQL grammar and bound back to schema names.

Exit codes:
  0 - SQL generated
  1 - The question could not be translated
  2 - Command error (missing schema, bad configuration, etc.)

Examples:
  nlsql generate --schema company.json show name from employees where salary > 5000
  nlsql generate --schema app.db --decode "total salary by dept_id"
  nlsql generate --schema company.yaml --format json --validate "count employees by department"`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(opts, strings.Join(args, " "), cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Schema, "schema", "s", "", "schema file: .json, .yaml, .cue or a SQLite database (required)")
	_ = cmd.MarkFlagRequired("schema")
	cmd.Flags().BoolVar(&opts.Decode, "decode", false, "generate by grammar-constrained token decoding")
	cmd.Flags().BoolVar(&opts.Validate, "validate", false, "syntax-check the generated SQL")
	cmd.Flags().StringVar(&opts.History, "history", "", "append the attempt to this SQLite history file")
	cmd.Flags().IntVar(&opts.MaxSteps, "max-steps", 0, "decoder step bound (overrides configuration)")

	return cmd
}

func runGenerate(opts *GenerateOptions, question string, cmd *cobra.Command) error {
	ctx := cmd.Context()
	out := opts.formatter(cmd)
	logger := opts.logger()

	cfg := *opts.cfg()
	if cmd.Flags().Changed("validate") {
		cfg.ValidateSQL = opts.Validate
	}
	if cmd.Flags().Changed("history") {
		cfg.History = opts.History
	}
	if cmd.Flags().Changed("max-steps") {
		cfg.Decoder.MaxSteps = opts.MaxSteps
	}
	if err := cfg.Validate(); err != nil {
		return WrapExitError(ExitCommandError, "invalid configuration", err)
	}

	catalog, err := loadCatalog(ctx, opts.Schema)
	if err != nil {
		_ = out.Error(loadErrorCode(err), err.Error(), nil)
		return reported(WrapExitError(ExitCommandError, "failed to load schema", err))
	}
	out.VerboseLog("schema: %d table(s) from %s", len(catalog.Tables()), opts.Schema)

	pipeOpts := []pipeline.Option{
		pipeline.WithCatalog(catalog),
		pipeline.WithAligner(align.New(
			align.WithThresholds(cfg.Aligner),
			align.WithLogger(logger),
		)),
		pipeline.WithMaxSteps(cfg.Decoder.MaxSteps),
		pipeline.WithValidation(cfg.ValidateSQL),
		pipeline.WithLogger(logger),
	}
	if opts.IDGenerator != nil {
		pipeOpts = append(pipeOpts, pipeline.WithIDGenerator(opts.IDGenerator))
	}

	if cfg.History != "" {
		st, err := store.Open(cfg.History)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open history", err)
		}
		defer func() {
			if closeErr := st.Close(); closeErr != nil {
				logger.Error("error closing history", "error", closeErr)
			}
		}()
		pipeOpts = append(pipeOpts, pipeline.WithHistory(st))
	}

	mode := pipeline.ModeRules
	if opts.Decode {
		mode = pipeline.ModeDecode
	}

	synth := pipeline.New(pipeOpts...)
	resp := synth.Handle(ctx, pipeline.Request{Question: question, Mode: mode})

	out.VerboseLog("request: %s", resp.RequestID)
	if !resp.Success {
		var details any
		if len(resp.Reason.Details) > 0 {
			details = resp.Reason.Details
		}
		if err := out.ErrorWithTrace(string(resp.Reason.Code), resp.Reason.Message, details, resp.RequestID); err != nil {
			return err
		}
		return reported(NewExitError(ExitFailure, fmt.Sprintf("%s: %s", resp.Reason.Code, resp.Reason.Message)))
	}

	out.VerboseLog("route: %s", resp.Route)
	out.VerboseLog("template: %s %v", resp.Template, resp.Params)
	if opts.Format == "json" {
		return out.SuccessWithTrace(GenerateResult{
			SQL:      resp.SQL,
			Template: resp.Template,
			Params:   resp.Params,
			Route:    string(resp.Route),
			Mode:     string(mode),
		}, resp.RequestID)
	}
	return out.Success(resp.SQL)
}
