package interactions

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// DefaultRedisKey is the list records are pushed onto.
const DefaultRedisKey = "interactions:log"

// RedisSink appends records to a redis list.
type RedisSink struct {
	redis  *redis.Client
	key    string
	tracer trace.Tracer
}

func NewRedisSink(client *redis.Client, key string) *RedisSink {
	if client == nil {
		panic("interactions: redis client cannot be nil")
	}
	if key == "" {
		key = DefaultRedisKey
	}
	return &RedisSink{
		redis:  client,
		key:    key,
		tracer: otel.Tracer("foundry.internal.interactions.redis"),
	}
}

func (s *RedisSink) Name() string { return "redis" }

func (s *RedisSink) Append(ctx context.Context, rec Record) error {
	ctx, span := s.tracer.Start(ctx, "interactions.redis_append")
	defer span.End()

	data, err := json.Marshal(rec)
	if err != nil {
		span.RecordError(err)
		return &PersistError{Sink: s.Name(), Err: err}
	}
	if err := s.redis.RPush(ctx, s.key, data).Err(); err != nil {
		span.RecordError(err)
		return &PersistError{Sink: s.Name(), Err: err}
	}
	return nil
}
