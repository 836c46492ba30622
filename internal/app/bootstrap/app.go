package bootstrap

import (
	"context"
	"fmt"
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/wolfman30/foundry-guide/internal/answer"
	"github.com/wolfman30/foundry-guide/internal/completion"
	appconfig "github.com/wolfman30/foundry-guide/internal/config"
	"github.com/wolfman30/foundry-guide/internal/content"
	"github.com/wolfman30/foundry-guide/internal/conversation"
	"github.com/wolfman30/foundry-guide/internal/interactions"
	"github.com/wolfman30/foundry-guide/internal/observability/metrics"
	"github.com/wolfman30/foundry-guide/pkg/logging"
)

// Options carry the process-level pieces the config cannot express.
type Options struct {
	// LoadAWS resolves AWS config for the s3 content source and bedrock.
	LoadAWS AWSConfigLoader
	// Registerer receives the chat metrics; nil disables them.
	Registerer prometheus.Registerer
	// Formatter renders bot messages; nil uses the HTML list formatter.
	Formatter conversation.Formatter
	// SkipSinks disables the interaction log, for one-off CLI runs.
	SkipSinks bool
}

// App is the wired guide: content, answer pipeline and sessions.
type App struct {
	Config     *appconfig.Config
	Store      *content.Store
	Completion completion.Client
	Composer   *answer.Composer
	Service    *answer.Service
	Engine     *conversation.Engine
	Registry   *conversation.Registry
	Metrics    *metrics.ChatMetrics

	closers []func()
}

// Build wires every component from cfg. Content that fails to load is
// logged and the app keeps serving without FAQ entries.
func Build(ctx context.Context, cfg *appconfig.Config, opts Options, logger *logging.Logger) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("bootstrap: config is required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	if ctx == nil {
		ctx = context.Background()
	}

	app := &App{Config: cfg}
	if opts.Registerer != nil {
		app.Metrics = metrics.NewChatMetrics(opts.Registerer)
	}

	menu, err := buildMenu(cfg, logger)
	if err != nil {
		return nil, err
	}

	source, closeSource, err := BuildContentSource(ctx, cfg, opts.LoadAWS, logger)
	if err != nil {
		return nil, err
	}
	app.closers = append(app.closers, closeSource)

	app.Store = content.NewStore(source, logger.Component("content"))
	if entries, err := app.Store.Load(ctx); err != nil {
		logger.Warn("content unavailable at startup; serving without faq entries", "source", source.Name(), "error", err)
	} else {
		logger.Info("content loaded", "source", source.Name(), "entries", len(entries))
	}

	client, closeClient, err := BuildCompletionClient(ctx, cfg, opts.LoadAWS, logger)
	if err != nil {
		app.Close()
		return nil, err
	}
	app.closers = append(app.closers, closeClient)
	app.Completion = client

	sink := interactions.Sink(interactions.Nop{})
	if !opts.SkipSinks {
		var closeSinks func()
		sink, closeSinks = BuildInteractionSink(ctx, cfg, logger)
		app.closers = append(app.closers, closeSinks)
	}
	recorder := interactions.NewRecorder(sink, logger.Component("interactions"), app.Metrics).
		WithTimeout(cfg.InteractionLogTimeout)

	retries := cfg.LLMMaxRetries
	if retries <= 0 {
		retries = answer.NoRetries
	}
	app.Composer = answer.NewComposer(client, answer.Options{
		MaxTokens:   int32(cfg.LLMMaxTokens),
		Temperature: float32(cfg.LLMTemperature),
		Timeout:     cfg.LLMTimeout,
		MaxRetries:  retries,
		Backoff:     cfg.LLMRetryBackoff,
		Logger:      logger.Component("answer"),
		Metrics:     app.Metrics,
	})
	app.Service = answer.NewService(app.Store, app.Composer, recorder, cfg.RelevanceLimit, logger.Component("answer"))

	app.Engine = conversation.NewEngine(conversation.EngineOptions{
		Menu:      menu,
		Mode:      conversation.AnswerMode(cfg.MenuAnswerMode),
		Answerer:  app.Service,
		Formatter: opts.Formatter,
		Logger:    logger.Component("conversation"),
		Metrics:   app.Metrics,
	})
	app.Registry = conversation.NewRegistry(app.Engine, conversation.RegistryOptions{
		TTL:             cfg.SessionTTL,
		CleanupInterval: cfg.SessionCleanupInterval,
		Logger:          logger.Component("conversation"),
		Metrics:         app.Metrics,
	})

	return app, nil
}

// Close releases clients opened by Build. Safe to call more than once.
func (a *App) Close() {
	if a == nil {
		return
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		if c := a.closers[i]; c != nil {
			c()
		}
	}
	a.closers = nil
}

func buildMenu(cfg *appconfig.Config, logger *logging.Logger) (*conversation.Menu, error) {
	path := strings.TrimSpace(cfg.MenuFile)
	if path == "" {
		return conversation.DefaultMenu(), nil
	}
	menu, err := conversation.LoadMenuFile(path)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: load menu: %w", err)
	}
	logger.Info("menu loaded", "path", path, "topics", len(menu.Primary))
	return menu, nil
}
