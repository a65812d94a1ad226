package repository

import (
	"context"

	"github.com/jhoicas/pos-inventario/internal/domain/entity"
)

// SaleRepository puerto de persistencia para ventas y sus líneas.
type SaleRepository interface {
	Create(ctx context.Context, sale *entity.Sale) error
	GetByID(ctx context.Context, id string) (*entity.Sale, error)
	List(ctx context.Context, limit, offset int) ([]*entity.Sale, error)
	CountByProduct(ctx context.Context, productID string) (int, error)
}
