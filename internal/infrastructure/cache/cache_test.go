package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryIdempotencyStore_CicloDeVida(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	defer store.Close()
	ctx := context.Background()

	ok, err := store.Reserve(ctx, "ws:k1", time.Hour)
	require.NoError(t, err)
	assert.True(t, ok, "primera reserva")

	ok, err = store.Reserve(ctx, "ws:k1", time.Hour)
	require.NoError(t, err)
	assert.False(t, ok, "la clave ya está reservada")

	saleID, found, err := store.Lookup(ctx, "ws:k1")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Empty(t, saleID, "reservada pero sin venta confirmada")

	require.NoError(t, store.Complete(ctx, "ws:k1", "S1", time.Hour))
	saleID, found, err = store.Lookup(ctx, "ws:k1")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "S1", saleID)
}

func TestInMemoryIdempotencyStore_ReleasePermiteReintento(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	defer store.Close()
	ctx := context.Background()

	_, _ = store.Reserve(ctx, "k", time.Hour)
	require.NoError(t, store.Release(ctx, "k"))

	ok, err := store.Reserve(ctx, "k", time.Hour)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestInMemoryIdempotencyStore_Vencimiento(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	defer store.Close()
	ctx := context.Background()

	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	_, _ = store.Reserve(ctx, "k", time.Minute)
	now = now.Add(2 * time.Minute)

	_, found, err := store.Lookup(ctx, "k")
	require.NoError(t, err)
	assert.False(t, found, "clave vencida")

	store.cleanup()
	assert.Equal(t, 0, store.Size())

	ok, _ := store.Reserve(ctx, "k", time.Minute)
	assert.True(t, ok, "se puede reservar de nuevo tras vencer")
}

func TestNewIdempotencyStore_SinRedisUsaMemoria(t *testing.T) {
	store, err := NewIdempotencyStore(context.Background(), RedisConfig{}, true, zerolog.Nop())
	require.NoError(t, err)
	defer store.Close()
	_, isMemory := store.(*InMemoryIdempotencyStore)
	assert.True(t, isMemory)
	assert.NoError(t, store.Ping(context.Background()))
}

// Requiere un Redis real: REDIS_TEST_ADDR=localhost:6379 go test ./internal/infrastructure/cache/...
func TestRedisIdempotencyStore(t *testing.T) {
	addr := os.Getenv("REDIS_TEST_ADDR")
	if addr == "" {
		t.Skip("REDIS_TEST_ADDR no configurado")
	}
	ctx := context.Background()
	client := redis.NewClient(&redis.Options{Addr: addr})
	store := NewRedisIdempotencyStoreWithClient(client, "test:idempotency:"+time.Now().Format("150405.000")+":")
	defer store.Close()

	ok, err := store.Reserve(ctx, "k", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.Reserve(ctx, "k", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	saleID, found, err := store.Lookup(ctx, "k")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Empty(t, saleID)

	require.NoError(t, store.Complete(ctx, "k", "S9", time.Minute))
	saleID, _, err = store.Lookup(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "S9", saleID)

	require.NoError(t, store.Release(ctx, "k"))
	_, found, err = store.Lookup(ctx, "k")
	require.NoError(t, err)
	assert.False(t, found)
}
