package completion

import (
	"context"

	"github.com/wolfman30/foundry-guide/pkg/logging"
)

// FallbackClient wraps a primary client with a fallback provider.
// Auth failures on the primary still try the fallback, since the fallback
// carries its own credentials.
type FallbackClient struct {
	primary  Client
	fallback Client
	logger   *logging.Logger
}

// NewFallbackClient creates a fallback-enabled client. A nil fallback makes
// it a pass-through.
func NewFallbackClient(primary, fallback Client, logger *logging.Logger) *FallbackClient {
	if logger == nil {
		logger = logging.Default()
	}
	return &FallbackClient{primary: primary, fallback: fallback, logger: logger}
}

func (c *FallbackClient) Provider() string {
	if c.fallback == nil {
		return ProviderName(c.primary)
	}
	return ProviderName(c.primary) + "+" + ProviderName(c.fallback)
}

func (c *FallbackClient) Complete(ctx context.Context, req Request) (Response, error) {
	resp, err := c.primary.Complete(ctx, req)
	if err == nil {
		return resp, nil
	}

	c.logger.Warn("primary completion provider failed, attempting fallback",
		"provider", ProviderName(c.primary),
		"kind", KindOf(err).String(),
		"error", err.Error(),
		"fallback_available", c.fallback != nil,
	)
	if c.fallback == nil || ctx.Err() != nil {
		return Response{}, err
	}

	fallbackResp, fallbackErr := c.fallback.Complete(ctx, req)
	if fallbackErr != nil {
		c.logger.Error("fallback completion provider also failed",
			"primary_error", err.Error(),
			"fallback_error", fallbackErr.Error(),
		)
		return Response{}, fallbackErr
	}

	c.logger.Info("fallback completion provider succeeded", "provider", ProviderName(c.fallback))
	return fallbackResp, nil
}
