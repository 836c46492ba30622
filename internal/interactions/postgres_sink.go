package interactions

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

type execer interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

const insertInteractionSQL = `INSERT INTO interaction_log (id, user_id, message, answer, matched_entries, created_at)
VALUES ($1, $2, $3, $4, $5, $6)`

// PostgresSink inserts records into the interaction_log table.
type PostgresSink struct {
	db     execer
	tracer trace.Tracer
}

// NewPostgresSink accepts a *pgxpool.Pool or anything with the same Exec.
func NewPostgresSink(db execer) *PostgresSink {
	if db == nil {
		panic("interactions: postgres pool cannot be nil")
	}
	return &PostgresSink{db: db, tracer: otel.Tracer("foundry.internal.interactions.postgres")}
}

func (s *PostgresSink) Name() string { return "postgres" }

func (s *PostgresSink) Append(ctx context.Context, rec Record) error {
	ctx, span := s.tracer.Start(ctx, "interactions.postgres_append")
	defer span.End()

	matched, err := json.Marshal(rec.Matched)
	if err != nil {
		span.RecordError(err)
		return &PersistError{Sink: s.Name(), Err: err}
	}
	if _, err := s.db.Exec(ctx, insertInteractionSQL,
		rec.ID, rec.UserID, rec.Message, rec.Answer, matched, rec.Timestamp,
	); err != nil {
		span.RecordError(err)
		return &PersistError{Sink: s.Name(), Err: err}
	}
	return nil
}
