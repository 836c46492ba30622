package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wolfman30/foundry-guide/internal/conversation"
)

func newChatCmd(e *env) *cobra.Command {
	var record bool

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Walk the menu in the terminal",
		Long:  "Starts a session and reads one line per turn. Type an option or its number; \"start over\" resets and \"quit\" exits.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := e.build(cmd.Context(), record)
			if err != nil {
				return err
			}
			return runChat(cmd.Context(), app.Registry, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}

	cmd.Flags().BoolVar(&record, "record", false, "Write interaction records to the configured sinks")
	return cmd
}

func runChat(ctx context.Context, registry *conversation.Registry, in io.Reader, out io.Writer) error {
	resp := registry.Create(ctx)
	printResponse(out, resp)

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		switch strings.ToLower(line) {
		case "quit", "exit":
			return nil
		}

		next, err := registry.Handle(ctx, resp.SessionID, resolveOption(line, resp.Options))
		if err != nil {
			return err
		}
		resp = next
		printResponse(out, resp)
	}
	fmt.Fprintln(out)
	return scanner.Err()
}

// resolveOption maps "2" to the second offered option.
func resolveOption(input string, options []string) string {
	n, err := strconv.Atoi(input)
	if err != nil || n < 1 || n > len(options) {
		return input
	}
	return options[n-1]
}

func printResponse(out io.Writer, resp conversation.Response) {
	for _, msg := range resp.Messages {
		fmt.Fprintln(out, msg.Content)
	}
	for i, opt := range resp.Options {
		fmt.Fprintf(out, "  %d) %s\n", i+1, opt)
	}
}
