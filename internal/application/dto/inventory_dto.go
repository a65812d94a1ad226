package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// PurchaseRequest body para POST /api/inventory/products/:id/purchases.
// unit_cost omitido = costo promedio vigente.
type PurchaseRequest struct {
	Quantity    int              `json:"quantity" validate:"gt=0,lte=1000000000"`
	UnitCost    *decimal.Decimal `json:"unit_cost,omitempty"`
	Location    string           `json:"location" validate:"required,oneof=warehouse shop"`
	BatchNumber string           `json:"batch_number,omitempty" validate:"omitempty,max=100"`
	Supplier    string           `json:"supplier,omitempty" validate:"omitempty,max=200"`
	Reference   string           `json:"reference,omitempty"`
}

// TransferRequest body para POST /api/inventory/products/:id/transfers.
type TransferRequest struct {
	Quantity     int    `json:"quantity" validate:"gt=0,lte=1000000000"`
	FromLocation string `json:"from_location" validate:"required,oneof=warehouse shop"`
	ToLocation   string `json:"to_location" validate:"required,oneof=warehouse shop,nefield=FromLocation"`
	Reference    string `json:"reference,omitempty"`
	Notes        string `json:"notes,omitempty"`
}

// SaleRequest body para POST /api/inventory/products/:id/sales (solo mueve stock).
type SaleRequest struct {
	Quantity  int    `json:"quantity" validate:"gt=0,lte=1000000000"`
	Reference string `json:"reference,omitempty"`
}

// AdjustmentRequest body para POST /api/inventory/products/:id/adjustments.
// quantity con signo; puede dejar el contador negativo.
type AdjustmentRequest struct {
	Quantity int    `json:"quantity" validate:"gte=-1000000000,lte=1000000000"`
	Location string `json:"location" validate:"required,oneof=warehouse shop"`
	Reason   string `json:"reason,omitempty"`
}

// TransactionLogEntryResponse entrada del log de transacciones.
type TransactionLogEntryResponse struct {
	ID           string           `json:"id"`
	ProductID    string           `json:"product_id"`
	Type         string           `json:"type"`
	Quantity     int              `json:"quantity"`
	FromLocation string           `json:"from_location,omitempty"`
	ToLocation   string           `json:"to_location,omitempty"`
	UnitCost     *decimal.Decimal `json:"unit_cost,omitempty"`
	BatchNumber  string           `json:"batch_number,omitempty"`
	Reference    string           `json:"reference,omitempty"`
	Notes        string           `json:"notes,omitempty"`
	UserID       string           `json:"user_id,omitempty"`
	CreatedAt    time.Time        `json:"created_at"`
}

// TransactionLogResponse página del log.
type TransactionLogResponse struct {
	Items []TransactionLogEntryResponse `json:"items"`
	Page  PageResponse                  `json:"page"`
}

// AverageCostResponse costo promedio ponderado.
type AverageCostResponse struct {
	ProductID       string          `json:"product_id"`
	AverageUnitCost decimal.Decimal `json:"average_unit_cost"`
}
