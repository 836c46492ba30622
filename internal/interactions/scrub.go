package interactions

import (
	"context"
	"regexp"
)

var (
	emailRe     = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)
	intlPhoneRe = regexp.MustCompile(`\+[0-9]{1,3}[\s.-]?[0-9][0-9\s.-]{6,}[0-9]`)
	phoneRe     = regexp.MustCompile(`\(?[0-9]{3}\)?[-.\s]?[0-9]{3}[-.\s]?[0-9]{4}`)
)

// ScrubPII replaces email addresses with [EMAIL] and phone numbers with
// [PHONE]. Names are kept.
func ScrubPII(text string) string {
	text = emailRe.ReplaceAllString(text, "[EMAIL]")
	text = intlPhoneRe.ReplaceAllString(text, "[PHONE]")
	return phoneRe.ReplaceAllString(text, "[PHONE]")
}

// ScrubSink masks PII in the visitor message and the answer before handing
// the record to the wrapped sink.
type ScrubSink struct {
	next Sink
}

func NewScrubSink(next Sink) *ScrubSink {
	return &ScrubSink{next: next}
}

func (s *ScrubSink) Name() string { return s.next.Name() }

func (s *ScrubSink) Append(ctx context.Context, rec Record) error {
	rec.Message = ScrubPII(rec.Message)
	rec.Answer = ScrubPII(rec.Answer)
	return s.next.Append(ctx, rec)
}
