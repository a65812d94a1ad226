package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Batch representa un lote de compra (cantidad y costo unitario) usado para el costo promedio.
// Los lotes no se descuentan al vender ni al trasladar: son historial de costo.
type Batch struct {
	ID           string
	ProductID    string
	PurchaseDate time.Time
	Quantity     int
	UnitCost     decimal.Decimal
	Supplier     string // opcional
	BatchNumber  string
	CreatedAt    time.Time
}
