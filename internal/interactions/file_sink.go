package interactions

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"gopkg.in/natefinch/lumberjack.v2"
)

// FileSink appends records as JSON lines to a size-rotated file.
type FileSink struct {
	mu     sync.Mutex
	w      io.WriteCloser
	tracer trace.Tracer
}

// NewFileSink opens path lazily; files rotate at maxSizeMB.
func NewFileSink(path string, maxSizeMB int) *FileSink {
	if maxSizeMB <= 0 {
		maxSizeMB = 10
	}
	return newFileSink(&lumberjack.Logger{
		Filename:   path,
		MaxSize:    maxSizeMB,
		MaxBackups: 5,
		MaxAge:     30,
		Compress:   true,
	})
}

func newFileSink(w io.WriteCloser) *FileSink {
	return &FileSink{w: w, tracer: otel.Tracer("foundry.internal.interactions.file")}
}

func (s *FileSink) Name() string { return "file" }

func (s *FileSink) Append(ctx context.Context, rec Record) error {
	_, span := s.tracer.Start(ctx, "interactions.file_append")
	defer span.End()

	line, err := json.Marshal(rec)
	if err != nil {
		span.RecordError(err)
		return &PersistError{Sink: s.Name(), Err: fmt.Errorf("marshal record: %w", err)}
	}
	line = append(line, '\n')

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.w.Write(line); err != nil {
		span.RecordError(err)
		return &PersistError{Sink: s.Name(), Err: err}
	}
	return nil
}

func (s *FileSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Close()
}
