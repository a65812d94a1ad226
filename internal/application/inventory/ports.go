package inventory

import (
	"context"

	"github.com/jhoicas/pos-inventario/internal/domain/entity"
	"github.com/jhoicas/pos-inventario/internal/domain/repository"
)

// TxRepos repositorios atados a una misma transacción.
type TxRepos struct {
	Products repository.ProductRepository
	Batches  repository.BatchRepository
	Log      repository.TransactionLogRepository
	Sales    repository.SaleRepository
}

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Garantiza que contadores, lotes, log y ventas se escriban juntos o no se escriban.
type TxRunner interface {
	Run(ctx context.Context, fn func(repos TxRepos) error) error
}

// StockSnapshot vista de lectura rápida del stock de un producto.
type StockSnapshot struct {
	ProductID      string `json:"product_id"`
	WarehouseStock int    `json:"warehouse_stock"`
	ShopStock      int    `json:"shop_stock"`
	TotalStock     int    `json:"total_stock"`
	StockLevel     string `json:"stock_level"`
	TotalSold      int    `json:"total_sold"`
	Version        int64  `json:"version"`
}

// SnapshotOf construye el snapshot; los campos derivados se recalculan siempre.
func SnapshotOf(p *entity.Product) StockSnapshot {
	return StockSnapshot{
		ProductID:      p.ID,
		WarehouseStock: p.WarehouseStock,
		ShopStock:      p.ShopStock,
		TotalStock:     p.TotalStock(),
		StockLevel:     p.StockLevel(),
		TotalSold:      p.TotalSold,
		Version:        p.StockVersion,
	}
}

// StockCache caché opcional de snapshots. Get devuelve nil, nil si no hay entrada.
// Set no reemplaza una entrada con Version mayor: una lectura previa a un commit nunca
// pisa el snapshot que publicó ese commit.
type StockCache interface {
	Get(ctx context.Context, productID string) (*StockSnapshot, error)
	Set(ctx context.Context, snapshot StockSnapshot) error
	Delete(ctx context.Context, productID string) error
}

// IdempotencyGuard evita registrar dos veces la misma venta.
// Acquire devuelve false si la clave ya fue usada.
type IdempotencyGuard interface {
	Acquire(ctx context.Context, key string) (bool, error)
	Release(ctx context.Context, key string) error
}

// noopCache se usa cuando no hay caché configurada.
type noopCache struct{}

func (noopCache) Get(context.Context, string) (*StockSnapshot, error) { return nil, nil }
func (noopCache) Set(context.Context, StockSnapshot) error            { return nil }
func (noopCache) Delete(context.Context, string) error                { return nil }
