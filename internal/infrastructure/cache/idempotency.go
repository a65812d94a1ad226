package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/jhoicas/pos-inventario/internal/application/inventory"
)

var _ inventory.IdempotencyGuard = (*RedisIdempotencyGuard)(nil)

const idempotencyKeyPrefix = "sale:idempotency:"

// RedisIdempotencyGuard reserva claves Idempotency-Key con SETNX + TTL.
type RedisIdempotencyGuard struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisIdempotencyGuard(client *redis.Client, ttl time.Duration) *RedisIdempotencyGuard {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisIdempotencyGuard{client: client, ttl: ttl}
}

// Acquire devuelve true si la clave quedó reservada ahora, false si ya existía.
func (g *RedisIdempotencyGuard) Acquire(ctx context.Context, key string) (bool, error) {
	ok, err := g.client.SetNX(ctx, idempotencyKeyPrefix+key, "1", g.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("reservar clave de idempotencia: %w", err)
	}
	return ok, nil
}

// Release libera la clave cuando la venta no se registró, para permitir reintentos.
func (g *RedisIdempotencyGuard) Release(ctx context.Context, key string) error {
	if err := g.client.Del(ctx, idempotencyKeyPrefix+key).Err(); err != nil {
		return fmt.Errorf("liberar clave de idempotencia: %w", err)
	}
	return nil
}
