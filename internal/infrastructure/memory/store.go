// Package memory implementa los repositorios y el TxRunner en memoria (tests y modo dev).
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/jhoicas/pos-inventario/internal/application/inventory"
	"github.com/jhoicas/pos-inventario/internal/domain"
	"github.com/jhoicas/pos-inventario/internal/domain/entity"
	"github.com/jhoicas/pos-inventario/internal/domain/repository"
)

var (
	_ inventory.TxRunner                  = (*Store)(nil)
	_ repository.ProductRepository        = (*ProductRepo)(nil)
	_ repository.BatchRepository          = (*BatchRepo)(nil)
	_ repository.TransactionLogRepository = (*TransactionLogRepo)(nil)
	_ repository.SaleRepository           = (*SaleRepo)(nil)
)

// Store guarda todo el estado en memoria. Las transacciones trabajan sobre una copia
// que reemplaza al estado solo si la función termina sin error (commit/rollback).
// Una sola transacción a la vez: equivale a serializar por producto.
type Store struct {
	mu   sync.RWMutex
	data *state
}

type state struct {
	products map[string]entity.Product // sin lotes; se componen al leer
	skus     map[string]string         // sku -> id
	batches  map[string][]entity.Batch // product_id -> lotes en orden de compra
	log      []entity.TransactionLogEntry
	sales    map[string]entity.Sale
	saleIDs  []string // orden de creación
}

// NewStore crea un store vacío.
func NewStore() *Store {
	return &Store{data: &state{
		products: make(map[string]entity.Product),
		skus:     make(map[string]string),
		batches:  make(map[string][]entity.Batch),
		sales:    make(map[string]entity.Sale),
	}}
}

func (s *state) clone() *state {
	cp := &state{
		products: make(map[string]entity.Product, len(s.products)),
		skus:     make(map[string]string, len(s.skus)),
		batches:  make(map[string][]entity.Batch, len(s.batches)),
		log:      append([]entity.TransactionLogEntry(nil), s.log...),
		sales:    make(map[string]entity.Sale, len(s.sales)),
		saleIDs:  append([]string(nil), s.saleIDs...),
	}
	for k, v := range s.products {
		cp.products[k] = v
	}
	for k, v := range s.skus {
		cp.skus[k] = v
	}
	for k, v := range s.batches {
		cp.batches[k] = append([]entity.Batch(nil), v...)
	}
	for k, v := range s.sales {
		cp.sales[k] = v
	}
	return cp
}

// Run ejecuta fn con repositorios atados a una copia del estado y la confirma si no hay error.
func (s *Store) Run(ctx context.Context, fn func(repos inventory.TxRepos) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.data.clone()
	if err := fn(s.reposFor(work)); err != nil {
		return err
	}
	s.data = work
	return nil
}

// Repos devuelve repositorios fuera de transacción (cada llamada toma el lock del store).
func (s *Store) Repos() inventory.TxRepos {
	return s.reposFor(nil)
}

// Products repositorio de productos fuera de transacción.
func (s *Store) Products() *ProductRepo { return &ProductRepo{s: s} }

// Batches repositorio de lotes fuera de transacción.
func (s *Store) Batches() *BatchRepo { return &BatchRepo{s: s} }

// TransactionLog repositorio del log fuera de transacción.
func (s *Store) TransactionLog() *TransactionLogRepo { return &TransactionLogRepo{s: s} }

// Sales repositorio de ventas fuera de transacción.
func (s *Store) Sales() *SaleRepo { return &SaleRepo{s: s} }

func (s *Store) reposFor(tx *state) inventory.TxRepos {
	return inventory.TxRepos{
		Products: &ProductRepo{s: s, tx: tx},
		Batches:  &BatchRepo{s: s, tx: tx},
		Log:      &TransactionLogRepo{s: s, tx: tx},
		Sales:    &SaleRepo{s: s, tx: tx},
	}
}

// read ejecuta fn sobre el estado: el de la tx si existe, si no el confirmado bajo RLock.
func (s *Store) read(tx *state, fn func(st *state)) {
	if tx != nil {
		fn(tx)
		return
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn(s.data)
}

// write ejecuta fn sobre el estado: el de la tx si existe, si no el confirmado bajo Lock.
func (s *Store) write(tx *state, fn func(st *state) error) error {
	if tx != nil {
		return fn(tx)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.data)
}

// ──────────────────────────────────────────────────────────────────────────────
// Productos
// ──────────────────────────────────────────────────────────────────────────────

// ProductRepo implementación en memoria de ProductRepository.
type ProductRepo struct {
	s  *Store
	tx *state
}

func (st *state) compose(p entity.Product) *entity.Product {
	p.Batches = append([]entity.Batch{}, st.batches[p.ID]...)
	return &p
}

// Create guarda un producto nuevo; SKU duplicado devuelve ErrDuplicate.
func (r *ProductRepo) Create(_ context.Context, product *entity.Product) error {
	return r.s.write(r.tx, func(st *state) error {
		if _, ok := st.skus[product.SKU]; ok {
			return domain.ErrDuplicate
		}
		if _, ok := st.products[product.ID]; ok {
			return domain.ErrDuplicate
		}
		p := *product
		p.Batches = nil
		st.products[p.ID] = p
		st.skus[p.SKU] = p.ID
		return nil
	})
}

// GetByID obtiene un producto con sus lotes.
func (r *ProductRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	var out *entity.Product
	r.s.read(r.tx, func(st *state) {
		if p, ok := st.products[id]; ok {
			out = st.compose(p)
		}
	})
	return out, nil
}

// GetForUpdate en memoria el bloqueo lo da la transacción exclusiva del store.
func (r *ProductRepo) GetForUpdate(ctx context.Context, id string) (*entity.Product, error) {
	return r.GetByID(ctx, id)
}

// GetBySKU obtiene un producto por SKU.
func (r *ProductRepo) GetBySKU(_ context.Context, sku string) (*entity.Product, error) {
	var out *entity.Product
	r.s.read(r.tx, func(st *state) {
		if id, ok := st.skus[sku]; ok {
			out = st.compose(st.products[id])
		}
	})
	return out, nil
}

// Update actualiza datos de identidad; los contadores se conservan.
func (r *ProductRepo) Update(_ context.Context, product *entity.Product) error {
	return r.s.write(r.tx, func(st *state) error {
		cur, ok := st.products[product.ID]
		if !ok {
			return domain.ErrNotFound
		}
		if product.SKU != cur.SKU {
			if _, taken := st.skus[product.SKU]; taken {
				return domain.ErrDuplicate
			}
			delete(st.skus, cur.SKU)
			st.skus[product.SKU] = cur.ID
		}
		cur.SKU = product.SKU
		cur.Name = product.Name
		cur.CategoryID = product.CategoryID
		cur.Price = product.Price
		cur.UpdatedAt = product.UpdatedAt
		st.products[cur.ID] = cur
		return nil
	})
}

// SaveStock persiste los contadores del producto.
func (r *ProductRepo) SaveStock(_ context.Context, product *entity.Product) error {
	return r.s.write(r.tx, func(st *state) error {
		cur, ok := st.products[product.ID]
		if !ok {
			return domain.ErrNotFound
		}
		cur.WarehouseStock = product.WarehouseStock
		cur.ShopStock = product.ShopStock
		cur.TotalSold = product.TotalSold
		cur.UpdatedAt = product.UpdatedAt
		cur.StockVersion++
		product.StockVersion = cur.StockVersion
		st.products[cur.ID] = cur
		return nil
	})
}

// List lista productos ordenados por fecha de creación (más recientes primero) y luego ID.
func (r *ProductRepo) List(_ context.Context, limit, offset int) ([]*entity.Product, error) {
	var out []*entity.Product
	r.s.read(r.tx, func(st *state) {
		all := make([]entity.Product, 0, len(st.products))
		for _, p := range st.products {
			all = append(all, p)
		}
		sort.Slice(all, func(i, j int) bool {
			if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
				return all[i].CreatedAt.After(all[j].CreatedAt)
			}
			return all[i].ID < all[j].ID
		})
		for _, p := range page(all, limit, offset) {
			out = append(out, st.compose(p))
		}
	})
	return out, nil
}

// ListAfter productos con ID mayor que cursor, en orden de ID.
func (r *ProductRepo) ListAfter(_ context.Context, cursor string, limit int) ([]*entity.Product, error) {
	var out []*entity.Product
	r.s.read(r.tx, func(st *state) {
		ids := make([]string, 0, len(st.products))
		for id := range st.products {
			if id > cursor {
				ids = append(ids, id)
			}
		}
		sort.Strings(ids)
		for _, id := range page(ids, limit, 0) {
			out = append(out, st.compose(st.products[id]))
		}
	})
	return out, nil
}

// Delete borra el producto y sus lotes.
func (r *ProductRepo) Delete(_ context.Context, id string) error {
	return r.s.write(r.tx, func(st *state) error {
		p, ok := st.products[id]
		if !ok {
			return domain.ErrNotFound
		}
		delete(st.skus, p.SKU)
		delete(st.batches, id)
		delete(st.products, id)
		return nil
	})
}

// ──────────────────────────────────────────────────────────────────────────────
// Lotes
// ──────────────────────────────────────────────────────────────────────────────

// BatchRepo implementación en memoria de BatchRepository.
type BatchRepo struct {
	s  *Store
	tx *state
}

// Create agrega un lote al producto.
func (r *BatchRepo) Create(_ context.Context, batch *entity.Batch) error {
	if batch.ID == "" {
		batch.ID = uuid.New().String()
	}
	return r.s.write(r.tx, func(st *state) error {
		if _, ok := st.products[batch.ProductID]; !ok {
			return domain.ErrNotFound
		}
		st.batches[batch.ProductID] = append(st.batches[batch.ProductID], *batch)
		return nil
	})
}

// ListByProduct lotes del producto en orden de compra.
func (r *BatchRepo) ListByProduct(_ context.Context, productID string) ([]entity.Batch, error) {
	var out []entity.Batch
	r.s.read(r.tx, func(st *state) {
		out = append([]entity.Batch{}, st.batches[productID]...)
	})
	return out, nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Log de transacciones (solo inserción)
// ──────────────────────────────────────────────────────────────────────────────

// TransactionLogRepo implementación en memoria de TransactionLogRepository.
type TransactionLogRepo struct {
	s  *Store
	tx *state
}

// Append agrega una entrada al final del log.
func (r *TransactionLogRepo) Append(_ context.Context, entry *entity.TransactionLogEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	return r.s.write(r.tx, func(st *state) error {
		st.log = append(st.log, *entry)
		return nil
	})
}

// ListByProduct página de entradas, más recientes primero.
func (r *TransactionLogRepo) ListByProduct(_ context.Context, productID string, limit, offset int) ([]*entity.TransactionLogEntry, error) {
	var out []*entity.TransactionLogEntry
	r.s.read(r.tx, func(st *state) {
		var mine []entity.TransactionLogEntry
		for i := len(st.log) - 1; i >= 0; i-- {
			if st.log[i].ProductID == productID {
				mine = append(mine, st.log[i])
			}
		}
		for _, e := range page(mine, limit, offset) {
			e := e
			out = append(out, &e)
		}
	})
	return out, nil
}

// ListAllByProduct todas las entradas del producto en orden de inserción.
func (r *TransactionLogRepo) ListAllByProduct(_ context.Context, productID string) ([]entity.TransactionLogEntry, error) {
	out := []entity.TransactionLogEntry{}
	r.s.read(r.tx, func(st *state) {
		for _, e := range st.log {
			if e.ProductID == productID {
				out = append(out, e)
			}
		}
	})
	return out, nil
}

// CountByProduct cantidad de entradas del producto.
func (r *TransactionLogRepo) CountByProduct(_ context.Context, productID string) (int, error) {
	n := 0
	r.s.read(r.tx, func(st *state) {
		for _, e := range st.log {
			if e.ProductID == productID {
				n++
			}
		}
	})
	return n, nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Ventas
// ──────────────────────────────────────────────────────────────────────────────

// SaleRepo implementación en memoria de SaleRepository.
type SaleRepo struct {
	s  *Store
	tx *state
}

// Create guarda la venta con sus líneas.
func (r *SaleRepo) Create(_ context.Context, sale *entity.Sale) error {
	if sale.ID == "" {
		sale.ID = uuid.New().String()
	}
	return r.s.write(r.tx, func(st *state) error {
		if _, ok := st.sales[sale.ID]; ok {
			return domain.ErrDuplicate
		}
		cp := *sale
		cp.Items = append([]entity.SaleItem(nil), sale.Items...)
		st.sales[cp.ID] = cp
		st.saleIDs = append(st.saleIDs, cp.ID)
		return nil
	})
}

// GetByID obtiene una venta; nil, nil si no existe.
func (r *SaleRepo) GetByID(_ context.Context, id string) (*entity.Sale, error) {
	var out *entity.Sale
	r.s.read(r.tx, func(st *state) {
		if s, ok := st.sales[id]; ok {
			s.Items = append([]entity.SaleItem(nil), s.Items...)
			out = &s
		}
	})
	return out, nil
}

// List ventas más recientes primero.
func (r *SaleRepo) List(_ context.Context, limit, offset int) ([]*entity.Sale, error) {
	var out []*entity.Sale
	r.s.read(r.tx, func(st *state) {
		ids := make([]string, 0, len(st.saleIDs))
		for i := len(st.saleIDs) - 1; i >= 0; i-- {
			ids = append(ids, st.saleIDs[i])
		}
		for _, id := range page(ids, limit, offset) {
			s := st.sales[id]
			s.Items = append([]entity.SaleItem(nil), s.Items...)
			out = append(out, &s)
		}
	})
	return out, nil
}

// CountByProduct cantidad de ventas que incluyen el producto.
func (r *SaleRepo) CountByProduct(_ context.Context, productID string) (int, error) {
	n := 0
	r.s.read(r.tx, func(st *state) {
		for _, s := range st.sales {
			for _, it := range s.Items {
				if it.ProductID == productID {
					n++
					break
				}
			}
		}
	})
	return n, nil
}

func page[T any](items []T, limit, offset int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return nil
	}
	end := len(items)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return items[offset:end]
}
