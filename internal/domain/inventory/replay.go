package inventory

import "github.com/jhoicas/pos-inventario/internal/domain/entity"

// Replay reconstruye los contadores desde el log: por ubicación suma las cantidades donde es
// destino (con signo) y resta el valor absoluto donde es origen.
func Replay(entries []entity.TransactionLogEntry) entity.StockCounters {
	var c entity.StockCounters
	for _, e := range entries {
		if e.ToLocation.Valid() {
			c.Add(e.ToLocation, e.Quantity)
		}
		if e.FromLocation.Valid() {
			c.Add(e.FromLocation, -abs(e.Quantity))
		}
	}
	return c
}

// Drift compara los contadores cacheados con los reconstruidos desde el log.
type Drift struct {
	ProductID string               `json:"product_id"`
	Cached    entity.StockCounters `json:"cached"`
	Replayed  entity.StockCounters `json:"replayed"`
}

// HasDrift indica si algún contador difiere del log.
func (d Drift) HasDrift() bool {
	return d.Cached != d.Replayed
}

// DetectDrift calcula el drift de un producto contra sus entradas de log.
func DetectDrift(p *entity.Product, entries []entity.TransactionLogEntry) Drift {
	return Drift{ProductID: p.ID, Cached: p.Counters(), Replayed: Replay(entries)}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
