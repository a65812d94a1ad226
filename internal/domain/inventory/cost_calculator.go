package inventory

import (
	"github.com/shopspring/decimal"
	"github.com/jhoicas/pos-inventario/internal/domain/entity"
)

// AverageUnitCost implementa el costo promedio ponderado sobre los lotes (servicio de dominio).
// Costo = Σ(cantidad * costo) / Σ(cantidad). Devuelve 0 si la cantidad total es 0.
func AverageUnitCost(batches []entity.Batch) decimal.Decimal {
	num, qty := decimal.Zero, decimal.Zero
	for _, b := range batches {
		q := decimal.NewFromInt(int64(b.Quantity))
		num = num.Add(q.Mul(b.UnitCost))
		qty = qty.Add(q)
	}
	return weighted(num, qty)
}

// AverageUnitCostFromLog mismo cálculo sobre las entradas de tipo purchase del log.
// Se usa cuando el producto no tiene lotes disponibles.
func AverageUnitCostFromLog(entries []entity.TransactionLogEntry) decimal.Decimal {
	num, qty := decimal.Zero, decimal.Zero
	for _, e := range entries {
		if e.Type != entity.TransactionTypePurchase || e.UnitCost == nil || e.Quantity <= 0 {
			continue
		}
		q := decimal.NewFromInt(int64(e.Quantity))
		num = num.Add(q.Mul(*e.UnitCost))
		qty = qty.Add(q)
	}
	return weighted(num, qty)
}

// ProductAverageCost usa los lotes del producto y, si no tiene, las compras del log.
func ProductAverageCost(p *entity.Product, entries []entity.TransactionLogEntry) decimal.Decimal {
	if p != nil && len(p.Batches) > 0 {
		return AverageUnitCost(p.Batches)
	}
	return AverageUnitCostFromLog(entries)
}

func weighted(num, qty decimal.Decimal) decimal.Decimal {
	if qty.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	return num.Div(qty)
}
