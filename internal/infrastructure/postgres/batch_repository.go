package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jhoicas/pos-inventario/internal/domain/entity"
	"github.com/jhoicas/pos-inventario/internal/domain/repository"
)

var _ repository.BatchRepository = (*BatchRepo)(nil)

// BatchRepo lotes de compra sobre PostgreSQL.
type BatchRepo struct {
	q Querier
}

// NewBatchRepository construye el repositorio de lotes.
func NewBatchRepository(q Querier) *BatchRepo {
	return &BatchRepo{q: q}
}

// Create inserta un lote.
func (r *BatchRepo) Create(ctx context.Context, batch *entity.Batch) error {
	if batch.ID == "" {
		batch.ID = uuid.New().String()
	}
	query := `
		INSERT INTO product_batches (id, product_id, purchase_date, quantity, unit_cost, supplier, batch_number, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(ctx, query,
		batch.ID, batch.ProductID, batch.PurchaseDate, batch.Quantity, batch.UnitCost,
		batch.Supplier, batch.BatchNumber, batch.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert batch: %w", err)
	}
	return nil
}

// ListByProduct lotes del producto por fecha de compra.
func (r *BatchRepo) ListByProduct(ctx context.Context, productID string) ([]entity.Batch, error) {
	query := `
		SELECT id, product_id, purchase_date, quantity, unit_cost, supplier, batch_number, created_at
		FROM product_batches WHERE product_id = $1
		ORDER BY purchase_date, created_at, id`
	rows, err := r.q.Query(ctx, query, productID)
	if err != nil {
		return nil, fmt.Errorf("list batches: %w", err)
	}
	defer rows.Close()
	var list []entity.Batch
	for rows.Next() {
		var b entity.Batch
		if err := rows.Scan(&b.ID, &b.ProductID, &b.PurchaseDate, &b.Quantity, &b.UnitCost,
			&b.Supplier, &b.BatchNumber, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan batch: %w", err)
		}
		list = append(list, b)
	}
	return list, rows.Err()
}
