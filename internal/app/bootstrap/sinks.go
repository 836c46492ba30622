package bootstrap

import (
	"context"
	"strings"

	appconfig "github.com/wolfman30/foundry-guide/internal/config"
	"github.com/wolfman30/foundry-guide/internal/interactions"
	"github.com/wolfman30/foundry-guide/pkg/logging"
)

// BuildInteractionSink combines every configured interaction log sink. With
// nothing configured the log is a no-op.
func BuildInteractionSink(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) (interactions.Sink, func()) {
	if logger == nil {
		logger = logging.Default()
	}
	var (
		sinks   interactions.Multi
		closers []func()
	)

	if path := strings.TrimSpace(cfg.InteractionLogPath); path != "" {
		fileSink := interactions.NewFileSink(path, cfg.InteractionLogMaxMB)
		sinks = append(sinks, fileSink)
		closers = append(closers, func() { _ = fileSink.Close() })
		logger.Info("interaction log: file", "path", path)
	}

	if redisClient := BuildRedisClient(ctx, cfg, logger, true); redisClient != nil {
		sinks = append(sinks, interactions.NewRedisSink(redisClient, interactions.DefaultRedisKey))
		closers = append(closers, func() { _ = redisClient.Close() })
		logger.Info("interaction log: redis", "addr", cfg.RedisAddr)
	}

	if pool := BuildPostgresPool(ctx, cfg.DatabaseURL, logger); pool != nil {
		sinks = append(sinks, interactions.NewPostgresSink(pool))
		closers = append(closers, pool.Close)
		logger.Info("interaction log: postgres")
	}

	closeAll := func() {
		for _, c := range closers {
			c()
		}
	}
	var sink interactions.Sink
	switch len(sinks) {
	case 0:
		return interactions.Nop{}, closeAll
	case 1:
		sink = sinks[0]
	default:
		sink = sinks
	}
	if !cfg.InteractionLogKeepPII {
		sink = interactions.NewScrubSink(sink)
	}
	return sink, closeAll
}
