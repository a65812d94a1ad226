package repository

import (
	"context"

	"github.com/jhoicas/pos-inventario/internal/domain/entity"
)

// ProductRepository define el puerto de persistencia para Product (DIP).
// GetByID y GetForUpdate devuelven nil, nil si el producto no existe; ambos cargan los lotes.
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	// GetForUpdate bloquea el producto hasta el fin de la transacción (SELECT FOR UPDATE).
	GetForUpdate(ctx context.Context, id string) (*entity.Product, error)
	GetBySKU(ctx context.Context, sku string) (*entity.Product, error)
	// Update actualiza solo datos de identidad; nunca contadores de stock.
	Update(ctx context.Context, product *entity.Product) error
	// SaveStock persiste WarehouseStock, ShopStock y TotalSold.
	SaveStock(ctx context.Context, product *entity.Product) error
	List(ctx context.Context, limit, offset int) ([]*entity.Product, error)
	// ListAfter productos con ID mayor que cursor, en orden de ID (recorridos completos).
	ListAfter(ctx context.Context, cursor string, limit int) ([]*entity.Product, error)
	Delete(ctx context.Context, id string) error
}
