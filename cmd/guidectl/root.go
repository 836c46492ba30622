package main

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wolfman30/foundry-guide/internal/app/bootstrap"
	appconfig "github.com/wolfman30/foundry-guide/internal/config"
	"github.com/wolfman30/foundry-guide/internal/conversation"
	"github.com/wolfman30/foundry-guide/pkg/logging"
)

// env is the state shared by every subcommand.
type env struct {
	cfg     *appconfig.Config
	loadAWS bootstrap.AWSConfigLoader
	logger  *logging.Logger
	app     *bootstrap.App
}

// build wires the app once per invocation. Interaction records are only
// written when record is set.
func (e *env) build(ctx context.Context, record bool) (*bootstrap.App, error) {
	if e.app != nil {
		return e.app, nil
	}
	app, err := bootstrap.Build(ctx, e.cfg, bootstrap.Options{
		LoadAWS:   e.loadAWS,
		Formatter: conversation.PlainText,
		SkipSinks: !record,
	}, e.logger)
	if err != nil {
		return nil, err
	}
	e.app = app
	return app, nil
}

func (e *env) close() {
	if e.app != nil {
		e.app.Close()
		e.app = nil
	}
}

func newRootCmd(e *env) *cobra.Command {
	var (
		contentSource string
		logLevel      string
		provider      string
	)

	root := &cobra.Command{
		Use:           "guidectl",
		Short:         "Operate the Female Foundry guide from a terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(contentSource) != "" {
				e.cfg.ContentSource = contentSource
			}
			if strings.TrimSpace(provider) != "" {
				e.cfg.LLMProvider = strings.ToLower(strings.TrimSpace(provider))
			}
			e.logger = logging.NewWithWriter(logLevel, cmd.ErrOrStderr())
			return nil
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			e.close()
		},
	}

	root.PersistentFlags().StringVar(&contentSource, "content", "", "FAQ source (file path, s3://bucket/key or postgres); defaults to CONTENT_SOURCE")
	root.PersistentFlags().StringVar(&provider, "provider", "", "Completion provider (none, bedrock, gemini, openai); defaults to LLM_PROVIDER")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "error", "Log level written to stderr")

	root.AddCommand(
		newChatCmd(e),
		newAskCmd(e),
		newScoreCmd(e),
		newCompleteCmd(e),
	)

	return root
}
