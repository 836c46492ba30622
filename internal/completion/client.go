// Package completion adapts text-completion providers behind one Client interface.
package completion

import "context"

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a provider-neutral chat turn.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type TokenUsage struct {
	InputTokens  int32
	OutputTokens int32
	TotalTokens  int32
}

type Request struct {
	Model       string
	System      []string
	Messages    []Message
	MaxTokens   int32
	Temperature float32
	TopP        float32
}

type Response struct {
	Text       string
	Usage      TokenUsage
	StopReason string
}

// Client is an opaque text-completion service.
type Client interface {
	Complete(ctx context.Context, req Request) (Response, error)
}

// Named is implemented by clients that report a provider label for logs and metrics.
type Named interface {
	Provider() string
}

// ProviderName returns c's provider label, or "unknown".
func ProviderName(c Client) string {
	if n, ok := c.(Named); ok {
		return n.Provider()
	}
	return "unknown"
}
