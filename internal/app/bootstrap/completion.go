package bootstrap

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"

	"github.com/wolfman30/foundry-guide/internal/completion"
	appconfig "github.com/wolfman30/foundry-guide/internal/config"
	"github.com/wolfman30/foundry-guide/pkg/logging"
)

// Completion providers accepted by LLM_PROVIDER and LLM_FALLBACK_PROVIDER.
const (
	ProviderNone    = "none"
	ProviderBedrock = "bedrock"
	ProviderGemini  = "gemini"
	ProviderOpenAI  = "openai"
)

// AWSConfigLoader resolves the shared AWS SDK config.
type AWSConfigLoader func(ctx context.Context, cfg *appconfig.Config) (aws.Config, error)

// BuildCompletionClient wires the configured provider, wrapped with the
// fallback provider when one is set. A nil client with a nil error means
// completion is disabled and answers come straight from the FAQ.
func BuildCompletionClient(ctx context.Context, cfg *appconfig.Config, loadAWS AWSConfigLoader, logger *logging.Logger) (completion.Client, func(), error) {
	if cfg == nil {
		return nil, nil, fmt.Errorf("bootstrap: config is required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	noop := func() {}
	if !cfg.CompletionEnabled() {
		logger.Info("no completion provider configured; answers come from the faq")
		return nil, noop, nil
	}

	var closers []func()
	closeAll := func() {
		for _, c := range closers {
			c()
		}
	}

	primary, closePrimary, err := buildProvider(ctx, cfg.LLMProvider, cfg, cfg.LLMModel, loadAWS)
	if err != nil {
		return nil, nil, err
	}
	closers = append(closers, closePrimary)

	fallbackName := cfg.LLMFallbackProvider
	if fallbackName == "" || fallbackName == ProviderNone || fallbackName == cfg.LLMProvider {
		logger.Info("using completion provider", "provider", cfg.LLMProvider)
		return primary, closeAll, nil
	}

	fallback, closeFallback, err := buildProvider(ctx, fallbackName, cfg, "", loadAWS)
	if err != nil {
		// The primary still works on its own.
		logger.Warn("fallback completion provider unavailable", "provider", fallbackName, "error", err)
		return primary, closeAll, nil
	}
	closers = append(closers, closeFallback)

	logger.Info("using completion provider with fallback", "provider", cfg.LLMProvider, "fallback", fallbackName)
	return completion.NewFallbackClient(primary, fallback, logger), closeAll, nil
}

// buildProvider creates one provider client. model overrides the provider
// default and is only passed for the primary provider, since model ids are
// provider specific.
func buildProvider(ctx context.Context, name string, cfg *appconfig.Config, model string, loadAWS AWSConfigLoader) (completion.Client, func(), error) {
	noop := func() {}
	switch strings.ToLower(strings.TrimSpace(name)) {
	case ProviderBedrock:
		modelID := strings.TrimSpace(cfg.BedrockModelID)
		if modelID == "" {
			modelID = strings.TrimSpace(model)
		}
		if modelID == "" {
			return nil, nil, fmt.Errorf("bootstrap: BEDROCK_MODEL_ID is required for the bedrock provider")
		}
		if loadAWS == nil {
			return nil, nil, fmt.Errorf("bootstrap: aws config loader required for the bedrock provider")
		}
		awsCfg, err := loadAWS(ctx, cfg)
		if err != nil {
			return nil, nil, fmt.Errorf("bootstrap: load aws config: %w", err)
		}
		return completion.NewBedrockClient(bedrockruntime.NewFromConfig(awsCfg), modelID), noop, nil

	case ProviderGemini:
		client, err := completion.NewGeminiClient(ctx, cfg.GeminiAPIKey, model)
		if err != nil {
			return nil, nil, fmt.Errorf("bootstrap: gemini: %w", err)
		}
		return client, func() { _ = client.Close() }, nil

	case ProviderOpenAI:
		client, err := completion.NewOpenAIClient(cfg.OpenAIAPIKey, "", model)
		if err != nil {
			return nil, nil, fmt.Errorf("bootstrap: openai: %w", err)
		}
		return client, noop, nil

	default:
		return nil, nil, fmt.Errorf("bootstrap: unknown completion provider %q", name)
	}
}
