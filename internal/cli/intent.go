package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/nlsql/internal/intent"
)

// NewIntentCommand creates the intent command.
func NewIntentCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "intent <question...>",
		Short: "Show the intent signals extracted from a question",
		Long: `Show the intent signals extracted from a question.

No schema is needed: signals are what the question says before any term is
aligned to a column.

Examples:
  nlsql intent total salary by dept_id having sum > 100000
  nlsql intent --format json "employees and their departments including those without departments"`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			sig := intent.Extract(strings.Join(args, " "))
			if rootOpts.Format == "json" {
				return rootOpts.formatter(cmd).Success(sig)
			}
			writeSignals(cmd.OutOrStdout(), sig)
			return nil
		},
	}
}

func writeSignals(w io.Writer, sig intent.Signals) {
	line := func(label string, value any) {
		fmt.Fprintf(w, "%-18s %v\n", label+":", value)
	}
	list := func(label string, values []string) {
		if len(values) > 0 {
			line(label, strings.Join(values, ", "))
		}
	}

	line("Text", sig.Text)
	line("Intent", sig.Kind)
	list("Aggregations", sig.Aggregations)
	list("Entities", sig.Entities)
	list("Tables", sig.Tables)
	list("Numbers", sig.Numbers)
	list("Strings", sig.Strings)

	if sig.Join {
		line("Join", fmt.Sprintf("%s (%s)", sig.JoinType, sig.JoinConfidence))
		if sig.PreserveTable != "" {
			line("Preserve", sig.PreserveTable)
		}
	}
	if sig.Operator != "" {
		line("Comparison", fmt.Sprintf("%s %s", sig.Operator, sig.Value.SQL()))
	}
	for _, c := range sig.WhereConditions {
		line("Where", fmt.Sprintf("%s %s %s", c.Column, c.Op, c.Value.SQL()))
	}
	list("Group by", sig.GroupBy)
	for _, h := range sig.HavingConditions {
		line("Having", fmt.Sprintf("%s %s %d", h.Agg, h.Op, h.Value))
	}
	if len(sig.HavingConditions) > 1 {
		line("Having logic", sig.HavingLogic)
	}
}
