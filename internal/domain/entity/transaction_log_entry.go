package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de entrada del log de transacciones.
const (
	TransactionTypePurchase   = "purchase"   // compra
	TransactionTypeTransfer   = "transfer"   // traslado bodega <-> tienda
	TransactionTypeSale       = "sale"       // venta (sale de tienda)
	TransactionTypeAdjustment = "adjustment" // corrección manual
)

// TransactionLogEntry hecho inmutable de movimiento de stock. Nunca se actualiza ni se borra.
// Quantity es con signo: negativo = salida (ventas y ajustes negativos).
type TransactionLogEntry struct {
	ID           string
	ProductID    string
	Type         string
	Quantity     int
	FromLocation Location // vacío si no aplica
	ToLocation   Location // vacío si no aplica
	UnitCost     *decimal.Decimal
	BatchNumber  string
	Reference    string
	Notes        string
	UserID       string // usuario que ejecutó la operación (opcional)
	CreatedAt    time.Time
}
