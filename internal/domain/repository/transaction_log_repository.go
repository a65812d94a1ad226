package repository

import (
	"context"

	"github.com/jhoicas/pos-inventario/internal/domain/entity"
)

// TransactionLogRepository puerto del log de transacciones. Solo inserta y lee: no existe
// operación para modificar o borrar entradas.
type TransactionLogRepository interface {
	Append(ctx context.Context, entry *entity.TransactionLogEntry) error
	// ListByProduct página de entradas, más recientes primero.
	ListByProduct(ctx context.Context, productID string, limit, offset int) ([]*entity.TransactionLogEntry, error)
	// ListAllByProduct todas las entradas en orden de creación (para reconstruir stock).
	ListAllByProduct(ctx context.Context, productID string) ([]entity.TransactionLogEntry, error)
	CountByProduct(ctx context.Context, productID string) (int, error)
}
