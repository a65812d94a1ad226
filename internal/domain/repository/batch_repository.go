package repository

import (
	"context"

	"github.com/jhoicas/pos-inventario/internal/domain/entity"
)

// BatchRepository puerto para los lotes de compra de un producto.
type BatchRepository interface {
	Create(ctx context.Context, batch *entity.Batch) error
	ListByProduct(ctx context.Context, productID string) ([]entity.Batch, error)
}
