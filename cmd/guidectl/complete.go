package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/wolfman30/foundry-guide/internal/app/bootstrap"
	"github.com/wolfman30/foundry-guide/internal/completion"
)

func newCompleteCmd(e *env) *cobra.Command {
	var (
		system    string
		maxTokens int32
	)

	cmd := &cobra.Command{
		Use:   "complete <prompt>",
		Short: "Send one prompt to the configured completion provider",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, closeClient, err := bootstrap.BuildCompletionClient(cmd.Context(), e.cfg, e.loadAWS, e.logger)
			if err != nil {
				return err
			}
			defer closeClient()
			if client == nil {
				return errors.New("no completion provider configured; set LLM_PROVIDER or --provider")
			}

			timeout := e.cfg.LLMTimeout
			if timeout <= 0 {
				timeout = 30 * time.Second
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			req := completion.Request{
				Messages:    []completion.Message{{Role: completion.RoleUser, Content: strings.Join(args, " ")}},
				MaxTokens:   maxTokens,
				Temperature: float32(e.cfg.LLMTemperature),
			}
			if strings.TrimSpace(system) != "" {
				req.System = []string{system}
			}

			start := time.Now()
			resp, err := client.Complete(ctx, req)
			elapsed := time.Since(start).Round(time.Millisecond)
			out := cmd.OutOrStdout()
			if err != nil {
				return fmt.Errorf("%s failed after %v (%s): %w", completion.ProviderName(client), elapsed, completion.KindOf(err), err)
			}

			fmt.Fprintf(out, "%s responded in %v\n\n%s\n\n", completion.ProviderName(client), elapsed, resp.Text)
			fmt.Fprintf(out, "tokens: in=%d out=%d stop=%s\n", resp.Usage.InputTokens, resp.Usage.OutputTokens, resp.StopReason)
			return nil
		},
	}

	cmd.Flags().StringVar(&system, "system", "", "Optional system prompt")
	cmd.Flags().Int32Var(&maxTokens, "max-tokens", 200, "Maximum tokens in the reply")
	return cmd
}
