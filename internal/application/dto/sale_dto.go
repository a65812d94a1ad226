package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateSaleRequest body para POST /api/sales.
type CreateSaleRequest struct {
	PaymentMethod string            `json:"payment_method" validate:"omitempty,oneof=cash card transfer"`
	Notes         string            `json:"notes,omitempty"`
	Items         []SaleItemRequest `json:"items" validate:"required,min=1,dive"`
}

// SaleItemRequest línea de venta. unit_price omitido = precio del producto.
type SaleItemRequest struct {
	ProductID string           `json:"product_id" validate:"required"`
	Quantity  int              `json:"quantity" validate:"gt=0,lte=1000000000"`
	UnitPrice *decimal.Decimal `json:"unit_price,omitempty"`
}

// SaleItemResponse línea con costo y utilidad.
type SaleItemResponse struct {
	ProductID string          `json:"product_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	UnitCost  decimal.Decimal `json:"unit_cost"`
	LineTotal decimal.Decimal `json:"line_total"`
	LineCost  decimal.Decimal `json:"line_cost"`
	Profit    decimal.Decimal `json:"profit"`
}

// SaleResponse venta registrada.
type SaleResponse struct {
	ID            string             `json:"id"`
	UserID        string             `json:"user_id,omitempty"`
	PaymentMethod string             `json:"payment_method,omitempty"`
	Notes         string             `json:"notes,omitempty"`
	TotalAmount   decimal.Decimal    `json:"total_amount"`
	TotalCost     decimal.Decimal    `json:"total_cost"`
	TotalProfit   decimal.Decimal    `json:"total_profit"`
	Items         []SaleItemResponse `json:"items"`
	CreatedAt     time.Time          `json:"created_at"`
}

// SaleListResponse lista paginada de ventas.
type SaleListResponse struct {
	Items []SaleResponse `json:"items"`
	Page  PageResponse   `json:"page"`
}
