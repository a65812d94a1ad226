package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/pos-inventario/internal/domain/entity"
	"github.com/jhoicas/pos-inventario/internal/domain/repository"
)

var _ repository.TransactionLogRepository = (*TransactionLogRepo)(nil)

const logColumns = `id, product_id, type, quantity, from_location, to_location, unit_cost, batch_number, reference, notes, user_id, created_at`

// TransactionLogRepo log de transacciones sobre PostgreSQL. Solo INSERT y SELECT.
type TransactionLogRepo struct {
	q Querier
}

// NewTransactionLogRepository construye el repositorio del log.
func NewTransactionLogRepository(q Querier) *TransactionLogRepo {
	return &TransactionLogRepo{q: q}
}

// Append inserta una entrada; seq (BIGSERIAL) fija el orden de aplicación.
func (r *TransactionLogRepo) Append(ctx context.Context, entry *entity.TransactionLogEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	query := `
		INSERT INTO inventory_transactions (` + logColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.q.Exec(ctx, query,
		entry.ID, entry.ProductID, entry.Type, entry.Quantity,
		nullString(string(entry.FromLocation)), nullString(string(entry.ToLocation)),
		entry.UnitCost, entry.BatchNumber, entry.Reference, entry.Notes,
		nullString(entry.UserID), entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert transaction log: %w", err)
	}
	return nil
}

// ListByProduct página de entradas, más recientes primero.
func (r *TransactionLogRepo) ListByProduct(ctx context.Context, productID string, limit, offset int) ([]*entity.TransactionLogEntry, error) {
	query := `SELECT ` + logColumns + ` FROM inventory_transactions
		WHERE product_id = $1 ORDER BY seq DESC LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(ctx, query, productID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list transaction log: %w", err)
	}
	defer rows.Close()
	var list []*entity.TransactionLogEntry
	for rows.Next() {
		e, err := scanLogEntry(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, &e)
	}
	return list, rows.Err()
}

// ListAllByProduct todas las entradas en orden de inserción.
func (r *TransactionLogRepo) ListAllByProduct(ctx context.Context, productID string) ([]entity.TransactionLogEntry, error) {
	query := `SELECT ` + logColumns + ` FROM inventory_transactions
		WHERE product_id = $1 ORDER BY seq`
	rows, err := r.q.Query(ctx, query, productID)
	if err != nil {
		return nil, fmt.Errorf("list transaction log: %w", err)
	}
	defer rows.Close()
	var list []entity.TransactionLogEntry
	for rows.Next() {
		e, err := scanLogEntry(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, e)
	}
	return list, rows.Err()
}

// CountByProduct número de entradas del producto.
func (r *TransactionLogRepo) CountByProduct(ctx context.Context, productID string) (int, error) {
	var n int
	err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM inventory_transactions WHERE product_id = $1`, productID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count transaction log: %w", err)
	}
	return n, nil
}

func scanLogEntry(row pgx.Row) (entity.TransactionLogEntry, error) {
	var (
		e        entity.TransactionLogEntry
		from, to *string
		userID   *string
	)
	err := row.Scan(&e.ID, &e.ProductID, &e.Type, &e.Quantity, &from, &to, &e.UnitCost,
		&e.BatchNumber, &e.Reference, &e.Notes, &userID, &e.CreatedAt)
	if err != nil {
		return e, fmt.Errorf("scan transaction log: %w", err)
	}
	e.FromLocation = entity.Location(derefString(from))
	e.ToLocation = entity.Location(derefString(to))
	e.UserID = derefString(userID)
	return e, nil
}
