package main

import (
	"fmt"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/wolfman30/foundry-guide/internal/retrieval"
)

func newScoreCmd(e *env) *cobra.Command {
	var sorted bool

	cmd := &cobra.Command{
		Use:   "score <question>",
		Short: "Print the relevance score of every FAQ entry for a question",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := e.build(cmd.Context(), false)
			if err != nil {
				return err
			}
			query := strings.Join(args, " ")
			entries := app.Service.Entries(cmd.Context())
			if len(entries) == 0 {
				return fmt.Errorf("no faq entries loaded from %s", e.cfg.ContentSource)
			}

			scored := make([]retrieval.ScoredEntry, 0, len(entries))
			for _, entry := range entries {
				scored = append(scored, retrieval.ScoredEntry{Entry: entry, Score: retrieval.Score(query, entry)})
			}
			if sorted {
				sort.SliceStable(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "SCORE\tID\tTITLE")
			for _, s := range scored {
				fmt.Fprintf(tw, "%.3f\t%s\t%s\n", s.Score, s.Entry.ID, s.Entry.Title)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().BoolVar(&sorted, "sort", false, "Order by score instead of source order")
	return cmd
}
