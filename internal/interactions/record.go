// Package interactions persists an append-only log of answered questions.
// Persistence is best-effort: callers go through Recorder, which never
// returns sink failures.
package interactions

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Match is one FAQ entry that contributed to an answer.
type Match struct {
	ID    string  `json:"id"`
	Score float64 `json:"score"`
}

// Record is one persisted interaction.
type Record struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Message   string    `json:"message"`
	Answer    string    `json:"answer"`
	Matched   []Match   `json:"matchedEntries"`
	Timestamp time.Time `json:"timestamp"`
}

// NewRecord stamps a record with a fresh id and the current UTC time.
func NewRecord(userID, message, answer string, matched []Match) Record {
	if matched == nil {
		matched = []Match{}
	}
	return Record{
		ID:        uuid.NewString(),
		UserID:    userID,
		Message:   message,
		Answer:    answer,
		Matched:   matched,
		Timestamp: time.Now().UTC(),
	}
}

// Sink appends records somewhere durable.
type Sink interface {
	Name() string
	Append(ctx context.Context, rec Record) error
}

// PersistError reports a sink that failed to store a record.
type PersistError struct {
	Sink string
	Err  error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("interactions: %s sink: %v", e.Sink, e.Err)
}

func (e *PersistError) Unwrap() error { return e.Err }

// Nop discards every record.
type Nop struct{}

func (Nop) Name() string { return "nop" }

func (Nop) Append(context.Context, Record) error { return nil }

// Multi fans a record out to every sink. All sinks are attempted; failures
// are joined.
type Multi []Sink

func (m Multi) Name() string { return "multi" }

func (m Multi) Append(ctx context.Context, rec Record) error {
	var errs []error
	for _, sink := range m {
		if sink == nil {
			continue
		}
		if err := sink.Append(ctx, rec); err != nil {
			var pe *PersistError
			if !errors.As(err, &pe) {
				err = &PersistError{Sink: sink.Name(), Err: err}
			}
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
