// Package answer turns scored FAQ entries into a reply, optionally through a
// completion service with retry and deterministic fallback.
package answer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/wolfman30/foundry-guide/internal/completion"
	"github.com/wolfman30/foundry-guide/internal/observability/metrics"
	"github.com/wolfman30/foundry-guide/internal/retrieval"
	"github.com/wolfman30/foundry-guide/pkg/logging"
)

// Source says where an answer's text came from.
type Source string

const (
	SourceFAQ        Source = "faq"
	SourceLLM        Source = "llm"
	SourceGeneric    Source = "generic"
	SourceRetryLater Source = "retry_later"
)

const (
	NoInfoMessage = "I don't have information on that yet. Would you like me to connect you with someone from the Female Foundry team?"
	// RateLimitMessage and TechnicalIssueMessage are shown when the
	// completion service stays throttled or slow and nothing matched.
	RateLimitMessage      = "We're hitting a rate limit, try again shortly."
	TechnicalIssueMessage = "We ran into a technical issue, try again."
	degradedNote          = "(The assistant is in limited mode, so this answer comes straight from our FAQ.)"
)

// SystemPrompt constrains the completion service to the supplied context.
const SystemPrompt = `You are the Female Foundry assistant. Answer the visitor's question using only the context below.
If the context does not contain the answer, say so and suggest contacting a member of the Female Foundry team.
Never ask for sensitive personal data such as passwords, payment details or government ids.
Keep answers short; bullet points are fine.`

// Answer is a composed reply.
type Answer struct {
	Text     string
	Source   Source
	Degraded bool
	Matched  []retrieval.ScoredEntry
}

// Options tune the completion call. Zero values take the defaults, so a
// zero MaxRetries means two retries; use NoRetries to disable retrying.
type Options struct {
	Model       string
	MaxTokens   int32
	Temperature float32
	Timeout     time.Duration
	MaxRetries  int
	Backoff     time.Duration
	Logger      *logging.Logger
	Metrics     *metrics.ChatMetrics
	Tracer      trace.Tracer
}

// NoRetries as Options.MaxRetries makes a single completion attempt.
const NoRetries = -1

const (
	defaultTimeout    = 30 * time.Second
	defaultMaxRetries = 2
	defaultBackoff    = time.Second
	defaultMaxTokens  = 400
)

// Composer builds answers. A nil client means no completion service is
// configured.
type Composer struct {
	client      completion.Client
	model       string
	maxTokens   int32
	temperature float32
	timeout     time.Duration
	maxRetries  int
	backoff     time.Duration
	logger      *logging.Logger
	metrics     *metrics.ChatMetrics
	tracer      trace.Tracer
	sleep       func(ctx context.Context, d time.Duration) error
}

func NewComposer(client completion.Client, opts Options) *Composer {
	c := &Composer{
		client:      client,
		model:       opts.Model,
		maxTokens:   opts.MaxTokens,
		temperature: opts.Temperature,
		timeout:     opts.Timeout,
		maxRetries:  opts.MaxRetries,
		backoff:     opts.Backoff,
		logger:      opts.Logger,
		metrics:     opts.Metrics,
		tracer:      opts.Tracer,
		sleep:       sleepContext,
	}
	if c.maxTokens <= 0 {
		c.maxTokens = defaultMaxTokens
	}
	if c.timeout <= 0 {
		c.timeout = defaultTimeout
	}
	switch {
	case c.maxRetries == 0:
		c.maxRetries = defaultMaxRetries
	case c.maxRetries < 0:
		c.maxRetries = 0
	}
	if c.backoff <= 0 {
		c.backoff = defaultBackoff
	}
	if c.logger == nil {
		c.logger = logging.Default()
	}
	if c.tracer == nil {
		c.tracer = otel.Tracer("foundry.internal.answer")
	}
	return c
}

// HasCompletion reports whether a completion service is configured.
func (c *Composer) HasCompletion() bool {
	return c != nil && c.client != nil
}

// Compose never fails: completion errors degrade to the FAQ answer.
func (c *Composer) Compose(ctx context.Context, query string, scored []retrieval.ScoredEntry) Answer {
	ctx, span := c.tracer.Start(ctx, "answer.compose")
	defer span.End()
	start := time.Now()

	var ans Answer
	if c.client == nil {
		ans = fallback(scored, false)
	} else {
		ans = c.composeWithCompletion(ctx, query, scored)
	}
	ans.Matched = scored

	span.SetAttributes(
		attribute.String("answer.source", string(ans.Source)),
		attribute.Bool("answer.degraded", ans.Degraded),
		attribute.Int("answer.matched", len(scored)),
	)
	c.metrics.ObserveAnswerLatency(string(ans.Source), time.Since(start).Seconds())
	return ans
}

func (c *Composer) composeWithCompletion(ctx context.Context, query string, scored []retrieval.ScoredEntry) Answer {
	provider := completion.ProviderName(c.client)
	guard := ScanQuestion(query)
	if guard.Blocked {
		c.logger.Warn("answer: question blocked by prompt guard", "score", guard.Score, "reasons", guard.Reasons)
		return fallback(scored, false)
	}

	req := completion.Request{
		Model:       c.model,
		System:      []string{SystemPrompt},
		Messages:    []completion.Message{{Role: completion.RoleUser, Content: BuildPrompt(guard.Sanitized, scored)}},
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
	}

	attempts := c.maxRetries + 1
	var lastKind completion.Kind
	for attempt := 1; attempt <= attempts; attempt++ {
		text, err := c.completeOnce(ctx, req)
		if err == nil {
			c.metrics.ObserveCompletionAttempt(provider, "ok")
			if leak := ScanReply(text); leak.Blocked {
				c.logger.Warn("answer: completion withheld by output guard", "provider", provider, "reasons", leak.Reasons)
				return fallback(scored, false)
			}
			return Answer{Text: text, Source: SourceLLM}
		}

		lastKind = completion.KindOf(err)
		c.metrics.ObserveCompletionAttempt(provider, lastKind.String())
		c.logger.Warn("answer: completion failed",
			"provider", provider,
			"kind", lastKind.String(),
			"attempt", attempt,
			"max_attempts", attempts,
			"error", err,
		)

		if !lastKind.Retryable() || attempt == attempts {
			break
		}
		if err := c.sleep(ctx, c.backoff); err != nil {
			break
		}
	}

	if lastKind.Retryable() && len(scored) == 0 {
		msg := TechnicalIssueMessage
		if lastKind == completion.KindRateLimit {
			msg = RateLimitMessage
		}
		return Answer{Text: msg, Source: SourceRetryLater, Degraded: true}
	}
	return fallback(scored, true)
}

func (c *Composer) completeOnce(ctx context.Context, req completion.Request) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.client.Complete(callCtx, req)
	if err != nil {
		if errors.Is(callCtx.Err(), context.DeadlineExceeded) && completion.KindOf(err) == completion.KindUnknown {
			return "", &completion.Error{Kind: completion.KindTimeout, Provider: completion.ProviderName(c.client), Err: err}
		}
		return "", err
	}
	text := strings.TrimSpace(resp.Text)
	if text == "" {
		return "", &completion.Error{Kind: completion.KindUnknown, Provider: completion.ProviderName(c.client), Err: errors.New("empty completion")}
	}
	return text, nil
}

// fallback is the deterministic answer: the top entry with attribution, or
// the escalation message.
func fallback(scored []retrieval.ScoredEntry, degraded bool) Answer {
	var ans Answer
	if len(scored) == 0 {
		ans = Answer{Text: NoInfoMessage, Source: SourceGeneric}
	} else {
		ans = Answer{Text: withAttribution(scored[0]), Source: SourceFAQ}
	}
	if degraded {
		ans.Degraded = true
		ans.Text = ans.Text + "\n" + degradedNote
	}
	return ans
}

func withAttribution(top retrieval.ScoredEntry) string {
	label := top.Entry.Title
	if label == "" {
		label = top.Entry.ID
	}
	return fmt.Sprintf("%s\nSource: %s", strings.TrimSpace(top.Entry.Answer), label)
}

// BuildPrompt renders the context block and question sent to the
// completion service.
func BuildPrompt(query string, scored []retrieval.ScoredEntry) string {
	var b strings.Builder
	b.WriteString("Context:\n")
	if len(scored) == 0 {
		b.WriteString("(no matching entries)\n")
	}
	for _, se := range scored {
		e := se.Entry
		fmt.Fprintf(&b, "[%s] %s\n", e.ID, e.Title)
		if e.Question != "" {
			fmt.Fprintf(&b, "Q: %s\n", e.Question)
		}
		fmt.Fprintf(&b, "A: %s\n", e.Answer)
		if len(e.Tags) > 0 {
			fmt.Fprintf(&b, "Tags: %s\n", strings.Join(e.Tags, ", "))
		}
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "\nQuestion: %s", strings.TrimSpace(query))
	return b.String()
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
