package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/pos-inventario/internal/domain"
	"github.com/jhoicas/pos-inventario/internal/domain/entity"
	"github.com/jhoicas/pos-inventario/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

const productColumns = `id, sku, name, category_id, price, warehouse_stock, shop_stock, total_sold, stock_version, created_at, updated_at`

// ProductRepo implementación del puerto ProductRepository sobre PostgreSQL (usable con pool o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador de persistencia para productos. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

// Create persiste un nuevo producto con sus contadores.
func (r *ProductRepo) Create(ctx context.Context, product *entity.Product) error {
	query := `
		INSERT INTO products (` + productColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(ctx, query,
		product.ID, product.SKU, product.Name, product.CategoryID, product.Price,
		product.WarehouseStock, product.ShopStock, product.TotalSold, product.StockVersion, product.CreatedAt, product.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

// GetByID obtiene un producto por ID con sus lotes.
func (r *ProductRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	return r.getOne(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id)
}

// GetForUpdate obtiene el producto bloqueando la fila hasta el fin de la transacción.
func (r *ProductRepo) GetForUpdate(ctx context.Context, id string) (*entity.Product, error) {
	return r.getOne(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1 FOR UPDATE`, id)
}

// GetBySKU obtiene un producto por SKU.
func (r *ProductRepo) GetBySKU(ctx context.Context, sku string) (*entity.Product, error) {
	return r.getOne(ctx, `SELECT `+productColumns+` FROM products WHERE sku = $1`, sku)
}

func (r *ProductRepo) getOne(ctx context.Context, query string, arg string) (*entity.Product, error) {
	p, err := scanProduct(r.q.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	batches, err := NewBatchRepository(r.q).ListByProduct(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	p.Batches = batches
	return p, nil
}

// Update actualiza los datos de identidad. Los contadores solo cambian vía SaveStock.
func (r *ProductRepo) Update(ctx context.Context, product *entity.Product) error {
	query := `
		UPDATE products SET sku = $2, name = $3, category_id = $4, price = $5, updated_at = $6
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query,
		product.ID, product.SKU, product.Name, product.CategoryID, product.Price, product.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("update product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// SaveStock persiste los contadores de stock y ventas e incrementa stock_version.
func (r *ProductRepo) SaveStock(ctx context.Context, product *entity.Product) error {
	query := `
		UPDATE products
		SET warehouse_stock = $2, shop_stock = $3, total_sold = $4, updated_at = $5,
		    stock_version = stock_version + 1
		WHERE id = $1
		RETURNING stock_version`
	err := r.q.QueryRow(ctx, query,
		product.ID, product.WarehouseStock, product.ShopStock, product.TotalSold, product.UpdatedAt,
	).Scan(&product.StockVersion)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("save stock: %w", err)
	}
	return nil
}

// List lista productos con paginación, más recientes primero. No carga lotes.
func (r *ProductRepo) List(ctx context.Context, limit, offset int) ([]*entity.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products ORDER BY created_at DESC, id LIMIT $1 OFFSET $2`
	return r.list(ctx, query, limit, offset)
}

// ListAfter recorre por clave: id > cursor. Un cursor vacío empieza desde el primero.
func (r *ProductRepo) ListAfter(ctx context.Context, cursor string, limit int) ([]*entity.Product, error) {
	if cursor == "" {
		return r.list(ctx, `SELECT `+productColumns+` FROM products ORDER BY id LIMIT $1`, limit)
	}
	return r.list(ctx, `SELECT `+productColumns+` FROM products WHERE id > $2 ORDER BY id LIMIT $1`, limit, cursor)
}

func (r *ProductRepo) list(ctx context.Context, query string, args ...any) ([]*entity.Product, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()
	var list []*entity.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

// Delete elimina el producto (los lotes caen en cascada).
func (r *ProductRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanProduct(row pgx.Row) (*entity.Product, error) {
	var p entity.Product
	err := row.Scan(
		&p.ID, &p.SKU, &p.Name, &p.CategoryID, &p.Price,
		&p.WarehouseStock, &p.ShopStock, &p.TotalSold, &p.StockVersion, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
