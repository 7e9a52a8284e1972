// Package cache guarda las claves de idempotencia de ProcessSale.
// Redis comparte el estado entre instancias; el store en memoria sirve para una sola instancia y pruebas.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/pos-ledger/internal/application/sales"
)

// pendingMarker valor de una clave reservada cuya venta aún no se confirma.
const pendingMarker = "pending"

// RedisIdempotencyStore claves de idempotencia en Redis.
type RedisIdempotencyStore struct {
	client    *redis.Client
	keyPrefix string
}

// RedisConfig conexión a Redis.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// NewRedisIdempotencyStore conecta y verifica con PING.
func NewRedisIdempotencyStore(ctx context.Context, cfg RedisConfig) (*RedisIdempotencyStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("conectar a redis %s: %w", cfg.Addr, err)
	}
	return NewRedisIdempotencyStoreWithClient(client, ""), nil
}

// NewRedisIdempotencyStoreWithClient usa un cliente existente.
func NewRedisIdempotencyStoreWithClient(client *redis.Client, keyPrefix string) *RedisIdempotencyStore {
	if keyPrefix == "" {
		keyPrefix = "sales:idempotency:"
	}
	return &RedisIdempotencyStore{client: client, keyPrefix: keyPrefix}
}

// Reserve SETNX con TTL; false si la clave ya existía.
func (s *RedisIdempotencyStore) Reserve(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := s.client.SetNX(ctx, s.keyPrefix+key, pendingMarker, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("reservar clave: %w", err)
	}
	return ok, nil
}

// Complete guarda el ID de la venta confirmada.
func (s *RedisIdempotencyStore) Complete(ctx context.Context, key, saleID string, ttl time.Duration) error {
	if err := s.client.Set(ctx, s.keyPrefix+key, saleID, ttl).Err(); err != nil {
		return fmt.Errorf("confirmar clave: %w", err)
	}
	return nil
}

// Lookup retorna el ID de la venta; "" con found=true mientras siga reservada.
func (s *RedisIdempotencyStore) Lookup(ctx context.Context, key string) (string, bool, error) {
	val, err := s.client.Get(ctx, s.keyPrefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("consultar clave: %w", err)
	}
	if val == pendingMarker {
		return "", true, nil
	}
	return val, true, nil
}

// Release borra la clave para permitir reintentos tras un error.
func (s *RedisIdempotencyStore) Release(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.keyPrefix+key).Err(); err != nil {
		return fmt.Errorf("liberar clave: %w", err)
	}
	return nil
}

// Ping verifica la conexión (health check).
func (s *RedisIdempotencyStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close cierra el cliente.
func (s *RedisIdempotencyStore) Close() error {
	return s.client.Close()
}

var _ sales.IdempotencyStore = (*RedisIdempotencyStore)(nil)
