package completion

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
)

// Kind classifies completion failures for the retry policy.
type Kind int

const (
	// KindUnknown failures are not retried.
	KindUnknown Kind = iota
	// KindAuth covers invalid or missing credentials; never retried.
	KindAuth
	// KindRateLimit covers throttling and quota responses.
	KindRateLimit
	// KindTimeout covers deadlines and provider-side timeouts.
	KindTimeout
)

func (k Kind) String() string {
	switch k {
	case KindAuth:
		return "auth"
	case KindRateLimit:
		return "rate_limit"
	case KindTimeout:
		return "timeout"
	default:
		return "unknown"
	}
}

// Retryable reports whether the retry policy applies to k.
func (k Kind) Retryable() bool {
	return k == KindRateLimit || k == KindTimeout
}

// Error is a classified provider failure.
type Error struct {
	Kind     Kind
	Provider string
	Err      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("completion: %s %s: %v", e.Provider, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// wrap attaches a classification to err. kind is used when the caller already
// knows the class; otherwise KindOf decides.
func wrap(provider string, kind Kind, err error) error {
	if err == nil {
		return nil
	}
	var ce *Error
	if errors.As(err, &ce) {
		return err
	}
	if kind == KindUnknown {
		kind = KindOf(err)
	}
	return &Error{Kind: kind, Provider: provider, Err: err}
}

// KindOf classifies any error: a wrapped *Error wins, then context and
// network timeouts, then the error text.
func KindOf(err error) Kind {
	if err == nil {
		return KindUnknown
	}
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Kind
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return KindTimeout
	}
	return kindFromMessage(err.Error())
}

var (
	authMarkers = []string{
		"401", "403", "unauthorized", "forbidden", "invalid api key", "incorrect api key",
		"invalid_api_key", "api key not valid", "authentication", "accessdenied",
		"unrecognizedclient", "expiredtoken", "invalid credentials", "permission denied",
	}
	rateMarkers = []string{
		"429", "rate limit", "rate_limit", "ratelimit", "too many requests", "throttl",
		"quota", "resource exhausted", "resource_exhausted", "overloaded",
	}
	timeoutMarkers = []string{
		"timeout", "timed out", "deadline exceeded", "504", "gateway time-out",
	}
)

func kindFromMessage(msg string) Kind {
	msg = strings.ToLower(msg)
	for _, m := range authMarkers {
		if strings.Contains(msg, m) {
			return KindAuth
		}
	}
	for _, m := range rateMarkers {
		if strings.Contains(msg, m) {
			return KindRateLimit
		}
	}
	for _, m := range timeoutMarkers {
		if strings.Contains(msg, m) {
			return KindTimeout
		}
	}
	return KindUnknown
}

// kindFromStatus maps an HTTP status code from a provider SDK.
func kindFromStatus(status int) Kind {
	switch {
	case status == 401 || status == 403:
		return KindAuth
	case status == 429:
		return KindRateLimit
	case status == 408 || status == 504:
		return KindTimeout
	default:
		return KindUnknown
	}
}
