package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/nlsql/internal/store"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Database string
	Limit    int
	ID       string
}

// HistoryResult is the payload of the history command.
type HistoryResult struct {
	Records []store.Synthesis `json:"records"`
	Total   int               `json:"total"`
	Failed  int               `json:"failed"`
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recorded synthesis attempts",
		Long: `Show the synthesis attempts recorded by "generate --history".

The database defaults to the history path of the configuration.

Examples:
  nlsql history --db ./history.db
  nlsql history --db ./history.db --limit 20
  nlsql history --db ./history.db --id 0192f3c4-...
  nlsql history --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to the SQLite history file")
	cmd.Flags().IntVarP(&opts.Limit, "limit", "n", 0, "show only the most recent N attempts (0 = all)")
	cmd.Flags().StringVar(&opts.ID, "id", "", "show a single attempt by request id")

	return cmd
}

func runHistory(opts *HistoryOptions, cmd *cobra.Command) error {
	ctx := cmd.Context()

	path := opts.Database
	if path == "" {
		path = opts.cfg().History
	}
	if path == "" {
		return NewExitError(ExitCommandError, "no history database: pass --db or set history in the configuration")
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return NewExitError(ExitCommandError, fmt.Sprintf("history database not found: %s", path))
	}

	st, err := store.Open(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open history", err)
	}
	defer st.Close()

	var records []store.Synthesis
	if opts.ID != "" {
		rec, ok, err := st.ReadSynthesis(ctx, opts.ID)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to read history", err)
		}
		if !ok {
			out := opts.formatter(cmd)
			_ = out.Error(ErrCodeNotFound, fmt.Sprintf("no attempt with id %s", opts.ID), nil)
			return reported(NewExitError(ExitFailure, fmt.Sprintf("no attempt with id %s", opts.ID)))
		}
		records = []store.Synthesis{rec}
	} else {
		records, err = st.ReadSyntheses(ctx, opts.Limit)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to read history", err)
		}
	}

	result := HistoryResult{Records: records, Total: len(records)}
	for _, r := range records {
		if !r.Success {
			result.Failed++
		}
	}

	if opts.Format == "json" {
		return opts.formatter(cmd).Success(result)
	}

	w := cmd.OutOrStdout()
	if len(records) == 0 {
		fmt.Fprintln(w, "No attempts recorded.")
		return nil
	}
	for _, r := range records {
		fmt.Fprintf(w, "[%d] %s (%s) %s\n", r.Seq, r.ID, r.Mode, r.Question)
		if r.Success {
			fmt.Fprintf(w, "     %s\n", r.SQL)
		} else {
			fmt.Fprintf(w, "     Error [%s]: %s\n", r.ErrorCode, r.ErrorMsg)
		}
	}
	fmt.Fprintf(w, "\n%d attempt(s), %d failed\n", result.Total, result.Failed)
	return nil
}
