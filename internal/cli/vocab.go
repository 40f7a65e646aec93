package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/nlsql/internal/vocab"
)

// VocabEntry is one token of the decoder vocabulary.
type VocabEntry struct {
	ID    int    `json:"id"`
	Token string `json:"token"`
	Group string `json:"group"`
}

// NewVocabCommand creates the vocab command.
func NewVocabCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "vocab",
		Short: "List the decoder vocabulary",
		Long: `List the closed token vocabulary of the grammar-constrained decoder,
in id order.

Examples:
  nlsql vocab
  nlsql vocab --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			entries := make([]VocabEntry, 0, vocab.Size())
			for id, tok := range vocab.All() {
				entries = append(entries, VocabEntry{ID: id, Token: tok, Group: vocab.Group(tok)})
			}

			if rootOpts.Format == "json" {
				return rootOpts.formatter(cmd).Success(entries)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tTOKEN\tGROUP")
			for _, e := range entries {
				fmt.Fprintf(tw, "%d\t%s\t%s\n", e.ID, e.Token, e.Group)
			}
			return tw.Flush()
		},
	}
}
