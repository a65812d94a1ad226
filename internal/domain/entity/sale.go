package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Sale cabecera de una venta registrada en caja.
type Sale struct {
	ID            string
	UserID        string
	PaymentMethod string
	Notes         string
	TotalAmount   decimal.Decimal
	TotalCost     decimal.Decimal
	TotalProfit   decimal.Decimal
	Items         []SaleItem
	CreatedAt     time.Time
}

// SaleItem línea de venta con el costo promedio vigente al momento de vender.
type SaleItem struct {
	ID        string
	SaleID    string
	ProductID string
	Quantity  int
	UnitPrice decimal.Decimal
	UnitCost  decimal.Decimal
	LineTotal decimal.Decimal // Quantity * UnitPrice
	LineCost  decimal.Decimal // Quantity * UnitCost
	Profit    decimal.Decimal // LineTotal - LineCost
}
