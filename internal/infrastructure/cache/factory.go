package cache

import (
	"github.com/coopfleet/backend/internal/domain/shared"
	"github.com/coopfleet/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// NewIdempotencyStore builds the idempotency store for the current
// configuration: Redis when enabled, otherwise in-memory. A Redis
// connection failure falls back to in-memory with a warning rather than
// refusing to start; the period-key constraint still guarantees
// correctness, dedupe is an optimization.
func NewIdempotencyStore(cfg config.RedisConfig, logger *zap.Logger) shared.IdempotencyStore {
	if !cfg.Enabled {
		logger.Info("Using in-memory idempotency store")
		return NewInMemoryIdempotencyStore()
	}

	store, err := NewRedisIdempotencyStore(RedisConfig{
		Host:     cfg.Host,
		Port:     cfg.Port,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err != nil {
		logger.Warn("Redis unavailable, falling back to in-memory idempotency store",
			zap.Error(err))
		return NewInMemoryIdempotencyStore()
	}

	logger.Info("Using Redis idempotency store",
		zap.String("host", cfg.Host),
		zap.Int("port", cfg.Port))
	return store
}
