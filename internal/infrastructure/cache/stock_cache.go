package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jhoicas/pos-inventario/internal/application/inventory"
	"github.com/redis/go-redis/v9"
)

var _ inventory.StockCache = (*RedisStockCache)(nil)

const (
	stockKeyPrefix  = "stock:"
	defaultStockTTL = 5 * time.Minute
)

// setIfNotOlder escribe el snapshot salvo que la entrada guardada tenga una versión mayor.
// KEYS[1] clave; ARGV[1] JSON; ARGV[2] versión; ARGV[3] TTL en ms. Devuelve 1 si escribió.
var setIfNotOlder = redis.NewScript(`
local cur = redis.call('GET', KEYS[1])
if cur then
  local ok, obj = pcall(cjson.decode, cur)
  if ok and type(obj) == 'table' and tonumber(obj.version) and tonumber(obj.version) > tonumber(ARGV[2]) then
    return 0
  end
end
redis.call('SET', KEYS[1], ARGV[1], 'PX', ARGV[3])
return 1
`)

// RedisStockCache guarda snapshots de stock como JSON con TTL. La fuente de verdad sigue
// siendo la base de datos; cada commit publica su snapshot con la versión del producto.
type RedisStockCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStockCache ttl <= 0 usa 5 minutos: ninguna entrada queda sin expiración.
func NewRedisStockCache(client *redis.Client, ttl time.Duration) *RedisStockCache {
	if ttl <= 0 {
		ttl = defaultStockTTL
	}
	return &RedisStockCache{client: client, ttl: ttl}
}

// Get devuelve nil, nil si no hay entrada.
func (c *RedisStockCache) Get(ctx context.Context, productID string) (*inventory.StockSnapshot, error) {
	raw, err := c.client.Get(ctx, stockKeyPrefix+productID).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("get stock cache: %w", err)
	}
	var snap inventory.StockSnapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		// Entrada corrupta: se trata como ausente
		_ = c.client.Del(ctx, stockKeyPrefix+productID).Err()
		return nil, nil
	}
	return &snap, nil
}

// Set es atómico en Redis: la comparación de versión y la escritura corren en un solo script.
func (c *RedisStockCache) Set(ctx context.Context, snapshot inventory.StockSnapshot) error {
	raw, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("encode stock snapshot: %w", err)
	}
	err = setIfNotOlder.Run(ctx, c.client,
		[]string{stockKeyPrefix + snapshot.ProductID},
		raw, snapshot.Version, c.ttl.Milliseconds(),
	).Err()
	if err != nil {
		return fmt.Errorf("set stock cache: %w", err)
	}
	return nil
}

func (c *RedisStockCache) Delete(ctx context.Context, productID string) error {
	if err := c.client.Del(ctx, stockKeyPrefix+productID).Err(); err != nil {
		return fmt.Errorf("delete stock cache: %w", err)
	}
	return nil
}
