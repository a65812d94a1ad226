package memory

import (
	"context"
	"sync"
	"time"

	"github.com/jhoicas/pos-inventario/internal/application/inventory"
)

var _ inventory.IdempotencyGuard = (*IdempotencyGuard)(nil)

// IdempotencyGuard versión en proceso de la reserva de Idempotency-Key (sin Redis).
type IdempotencyGuard struct {
	mu   sync.Mutex
	ttl  time.Duration
	keys map[string]time.Time // clave -> vencimiento
	now  func() time.Time
}

func NewIdempotencyGuard(ttl time.Duration) *IdempotencyGuard {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &IdempotencyGuard{ttl: ttl, keys: make(map[string]time.Time), now: time.Now}
}

// Acquire devuelve false si la clave sigue reservada.
func (g *IdempotencyGuard) Acquire(_ context.Context, key string) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	now := g.now()
	if exp, ok := g.keys[key]; ok && now.Before(exp) {
		return false, nil
	}
	g.keys[key] = now.Add(g.ttl)
	return true, nil
}

func (g *IdempotencyGuard) Release(_ context.Context, key string) error {
	g.mu.Lock()
	delete(g.keys, key)
	g.mu.Unlock()
	return nil
}
