package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Niveles de stock derivados del total (nunca se persisten).
const (
	StockLevelOut  = "out"
	StockLevelLow  = "low"
	StockLevelHigh = "high"
)

// lowStockThreshold límite superior (inclusive) del nivel "low".
const lowStockThreshold = 5

// Product representa un producto vendible con stock en bodega y en tienda.
// WarehouseStock, ShopStock, TotalSold y Batches solo los modifican las operaciones
// del paquete domain/inventory; los llamadores los tratan como lectura.
type Product struct {
	ID             string
	SKU            string // único
	Name           string
	CategoryID     string
	Price          decimal.Decimal // precio de venta
	WarehouseStock int
	ShopStock      int
	TotalSold      int // no decrece
	StockVersion   int64 // lo incrementa el repositorio en cada SaveStock
	Batches        []Batch
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// NewProduct crea un producto con stock en cero y sin lotes.
func NewProduct(id, sku, name, categoryID string, price decimal.Decimal, now time.Time) *Product {
	return &Product{
		ID:         id,
		SKU:        sku,
		Name:       name,
		CategoryID: categoryID,
		Price:      price,
		Batches:    []Batch{},
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// TotalStock = WarehouseStock + ShopStock.
func (p *Product) TotalStock() int {
	return p.WarehouseStock + p.ShopStock
}

// StockLevel devuelve "out" si no hay stock, "low" entre 1 y 5, "high" en otro caso.
// Un total negativo (solo alcanzable con ajustes) se reporta como "out".
func (p *Product) StockLevel() string {
	total := p.TotalStock()
	switch {
	case total <= 0:
		return StockLevelOut
	case total <= lowStockThreshold:
		return StockLevelLow
	default:
		return StockLevelHigh
	}
}

// StockAt devuelve el contador de la ubicación indicada.
func (p *Product) StockAt(loc Location) int {
	if loc == LocationShop {
		return p.ShopStock
	}
	return p.WarehouseStock
}

// Counters devuelve los contadores cacheados del producto.
func (p *Product) Counters() StockCounters {
	return StockCounters{Warehouse: p.WarehouseStock, Shop: p.ShopStock}
}

// Clone copia el producto incluyendo sus lotes.
func (p *Product) Clone() *Product {
	if p == nil {
		return nil
	}
	cp := *p
	cp.Batches = append([]Batch(nil), p.Batches...)
	return &cp
}
