package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/pos-inventario/internal/domain/entity"
	"github.com/jhoicas/pos-inventario/internal/domain/repository"
)

var _ repository.SaleRepository = (*SaleRepo)(nil)

// SaleRepo ventas y líneas de venta sobre PostgreSQL.
type SaleRepo struct {
	q Querier
}

// NewSaleRepository construye el repositorio de ventas.
func NewSaleRepository(q Querier) *SaleRepo {
	return &SaleRepo{q: q}
}

// Create inserta la cabecera y sus líneas. Debe llamarse dentro de una tx para que sea atómico.
func (r *SaleRepo) Create(ctx context.Context, sale *entity.Sale) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO sales (id, user_id, payment_method, notes, total_amount, total_cost, total_profit, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		sale.ID, nullString(sale.UserID), sale.PaymentMethod, sale.Notes,
		sale.TotalAmount, sale.TotalCost, sale.TotalProfit, sale.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert sale: %w", err)
	}
	for i := range sale.Items {
		it := &sale.Items[i]
		if it.ID == "" {
			it.ID = uuid.New().String()
		}
		it.SaleID = sale.ID
		_, err := r.q.Exec(ctx, `
			INSERT INTO sale_items (id, sale_id, product_id, quantity, unit_price, unit_cost, line_total, line_cost, profit)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			it.ID, it.SaleID, it.ProductID, it.Quantity, it.UnitPrice, it.UnitCost,
			it.LineTotal, it.LineCost, it.Profit,
		)
		if err != nil {
			return fmt.Errorf("insert sale item: %w", err)
		}
	}
	return nil
}

// GetByID obtiene la venta con sus líneas; nil, nil si no existe.
func (r *SaleRepo) GetByID(ctx context.Context, id string) (*entity.Sale, error) {
	s, err := scanSale(r.q.QueryRow(ctx, `
		SELECT id, user_id, payment_method, notes, total_amount, total_cost, total_profit, created_at
		FROM sales WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get sale: %w", err)
	}
	rows, err := r.q.Query(ctx, `
		SELECT id, sale_id, product_id, quantity, unit_price, unit_cost, line_total, line_cost, profit
		FROM sale_items WHERE sale_id = $1 ORDER BY id`, id)
	if err != nil {
		return nil, fmt.Errorf("get sale items: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var it entity.SaleItem
		if err := rows.Scan(&it.ID, &it.SaleID, &it.ProductID, &it.Quantity, &it.UnitPrice,
			&it.UnitCost, &it.LineTotal, &it.LineCost, &it.Profit); err != nil {
			return nil, fmt.Errorf("scan sale item: %w", err)
		}
		s.Items = append(s.Items, it)
	}
	return s, rows.Err()
}

// List cabeceras de venta (sin líneas), más recientes primero.
func (r *SaleRepo) List(ctx context.Context, limit, offset int) ([]*entity.Sale, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, user_id, payment_method, notes, total_amount, total_cost, total_profit, created_at
		FROM sales ORDER BY created_at DESC, id LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}
	defer rows.Close()
	var list []*entity.Sale
	for rows.Next() {
		s, err := scanSale(rows)
		if err != nil {
			return nil, fmt.Errorf("scan sale: %w", err)
		}
		list = append(list, s)
	}
	return list, rows.Err()
}

// CountByProduct número de líneas de venta que referencian al producto.
func (r *SaleRepo) CountByProduct(ctx context.Context, productID string) (int, error) {
	var n int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM sale_items WHERE product_id = $1`, productID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count sale items: %w", err)
	}
	return n, nil
}

func scanSale(row pgx.Row) (*entity.Sale, error) {
	var (
		s      entity.Sale
		userID *string
	)
	if err := row.Scan(&s.ID, &userID, &s.PaymentMethod, &s.Notes, &s.TotalAmount,
		&s.TotalCost, &s.TotalProfit, &s.CreatedAt); err != nil {
		return nil, err
	}
	s.UserID = derefString(userID)
	return &s, nil
}
