package memory

import (
	"context"
	"sync"

	"github.com/jhoicas/pos-inventario/internal/application/inventory"
)

var _ inventory.StockCache = (*StockCache)(nil)

// StockCache caché de snapshots en proceso. Igual que la de Redis, Set ignora snapshots
// con versión menor a la guardada.
type StockCache struct {
	mu   sync.Mutex
	data map[string]inventory.StockSnapshot
}

// NewStockCache crea una caché vacía.
func NewStockCache() *StockCache {
	return &StockCache{data: make(map[string]inventory.StockSnapshot)}
}

// Get devuelve nil, nil si no hay entrada.
func (c *StockCache) Get(_ context.Context, productID string) (*inventory.StockSnapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.data[productID]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (c *StockCache) Set(_ context.Context, snapshot inventory.StockSnapshot) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if cur, ok := c.data[snapshot.ProductID]; ok && cur.Version > snapshot.Version {
		return nil
	}
	c.data[snapshot.ProductID] = snapshot
	return nil
}

func (c *StockCache) Delete(_ context.Context, productID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, productID)
	return nil
}
