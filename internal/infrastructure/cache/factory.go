package cache

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/jhoicas/pos-ledger/internal/application/sales"
)

// IdempotencyStore store con health check y cierre.
type IdempotencyStore interface {
	sales.IdempotencyStore
	Ping(ctx context.Context) error
	Close() error
}

// NewIdempotencyStore usa Redis si hay dirección configurada. Si Redis no responde y
// allowFallback es true, cae al store en memoria (válido solo con una instancia).
func NewIdempotencyStore(ctx context.Context, cfg RedisConfig, allowFallback bool, logger zerolog.Logger) (IdempotencyStore, error) {
	if cfg.Addr == "" {
		logger.Info().Msg("idempotencia en memoria (REDIS_ADDR vacío)")
		return NewInMemoryIdempotencyStore(), nil
	}
	store, err := NewRedisIdempotencyStore(ctx, cfg)
	if err != nil {
		if !allowFallback {
			return nil, err
		}
		logger.Warn().Err(err).Msg("redis no disponible; idempotencia en memoria")
		return NewInMemoryIdempotencyStore(), nil
	}
	logger.Info().Str("addr", cfg.Addr).Msg("idempotencia en redis")
	return store, nil
}
