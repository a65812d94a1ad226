package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateProductRequest entrada para crear un producto. El stock inicia en cero.
type CreateProductRequest struct {
	SKU        string          `json:"sku" validate:"required,min=1,max=100"`
	Name       string          `json:"name" validate:"required,min=1,max=200"`
	CategoryID string          `json:"category_id" validate:"omitempty,max=100"`
	Price      decimal.Decimal `json:"price"`
}

// UpdateProductRequest entrada para actualizar un producto (sin stock ni lotes).
type UpdateProductRequest struct {
	SKU        *string          `json:"sku" validate:"omitempty,min=1,max=100"`
	Name       *string          `json:"name" validate:"omitempty,min=1,max=200"`
	CategoryID *string          `json:"category_id" validate:"omitempty,max=100"`
	Price      *decimal.Decimal `json:"price"`
}

// BatchResponse lote de compra.
type BatchResponse struct {
	ID           string          `json:"id"`
	PurchaseDate time.Time       `json:"purchase_date"`
	Quantity     int             `json:"quantity"`
	UnitCost     decimal.Decimal `json:"unit_cost"`
	Supplier     string          `json:"supplier,omitempty"`
	BatchNumber  string          `json:"batch_number"`
}

// ProductResponse salida de un producto con sus contadores y campos derivados.
type ProductResponse struct {
	ID             string          `json:"id"`
	SKU            string          `json:"sku"`
	Name           string          `json:"name"`
	CategoryID     string          `json:"category_id,omitempty"`
	Price          decimal.Decimal `json:"price"`
	WarehouseStock int             `json:"warehouse_stock"`
	ShopStock      int             `json:"shop_stock"`
	TotalStock     int             `json:"total_stock"`
	StockLevel     string          `json:"stock_level"`
	TotalSold      int             `json:"total_sold"`
	Batches        []BatchResponse `json:"batches"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// ProductListResponse lista paginada de productos.
type ProductListResponse struct {
	Items []ProductResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}
