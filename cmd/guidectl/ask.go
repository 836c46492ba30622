package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wolfman30/foundry-guide/internal/answer"
)

func newAskCmd(e *env) *cobra.Command {
	var (
		record bool
		asJSON bool
		userID string
	)

	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Answer a free-text question from the FAQ",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := e.build(cmd.Context(), record)
			if err != nil {
				return err
			}
			ans := app.Service.Ask(cmd.Context(), userID, strings.Join(args, " "))

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(ans)
			}
			fmt.Fprintln(out, ans.Text)
			fmt.Fprintf(out, "\nsource: %s", ans.Source)
			if ans.Degraded {
				fmt.Fprint(out, " (degraded)")
			}
			fmt.Fprintln(out)
			for _, m := range ans.Matched {
				fmt.Fprintf(out, "  %.3f  %s  %s\n", m.Score, m.Entry.ID, m.Entry.Title)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&record, "record", false, "Write the interaction record to the configured sinks")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the answer as JSON")
	cmd.Flags().StringVar(&userID, "user", answer.AnonymousUser, "User id stored with the interaction record")
	return cmd
}
