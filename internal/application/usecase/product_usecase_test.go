package usecase_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/pos-inventario/internal/application/dto"
	"github.com/jhoicas/pos-inventario/internal/application/inventory"
	"github.com/jhoicas/pos-inventario/internal/application/usecase"
	"github.com/jhoicas/pos-inventario/internal/domain"
	"github.com/jhoicas/pos-inventario/internal/domain/entity"
	"github.com/jhoicas/pos-inventario/internal/domain/repository"
	"github.com/jhoicas/pos-inventario/internal/infrastructure/memory"
)

func newProductUC(store *memory.Store) *usecase.ProductUseCase {
	return usecase.NewProductUseCase(store, store.Products())
}

func strPtr(s string) *string { return &s }

func TestProductUseCase_CrearNormalizaYArrancaEnCero(t *testing.T) {
	uc := newProductUC(memory.NewStore())
	out, err := uc.Create(context.Background(), dto.CreateProductRequest{SKU: "  BUZ-01 ", Name: " Buzo ", Price: decimal.NewFromInt(80)})
	require.NoError(t, err)

	assert.NotEmpty(t, out.ID)
	assert.Equal(t, "BUZ-01", out.SKU)
	assert.Equal(t, "Buzo", out.Name)
	assert.Zero(t, out.TotalStock)
	assert.Equal(t, entity.StockLevelOut, out.StockLevel)
	assert.Empty(t, out.Batches)
}

func TestProductUseCase_CrearErrores(t *testing.T) {
	ctx := context.Background()
	uc := newProductUC(memory.NewStore())
	_, err := uc.Create(ctx, dto.CreateProductRequest{SKU: "A", Name: "x"})
	require.NoError(t, err)

	_, err = uc.Create(ctx, dto.CreateProductRequest{SKU: "A", Name: "y"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	_, err = uc.Create(ctx, dto.CreateProductRequest{SKU: "B", Name: "y", Price: decimal.NewFromInt(-1)})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.Create(ctx, dto.CreateProductRequest{SKU: " ", Name: "y"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestProductUseCase_ActualizarNoTocaStock(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	uc := newProductUC(store)
	created, err := uc.Create(ctx, dto.CreateProductRequest{SKU: "A", Name: "x"})
	require.NoError(t, err)

	one := decimal.NewFromInt(1)
	ledger := inventory.NewLedgerUseCase(store, store.Products(), store.TransactionLog(), nil, nil)
	_, err = ledger.RecordPurchase(ctx, inventory.PurchaseInput{ProductID: created.ID, Quantity: 4, UnitCost: &one, Location: entity.LocationShop})
	require.NoError(t, err)

	price := decimal.NewFromInt(9)
	out, err := uc.Update(ctx, created.ID, dto.UpdateProductRequest{Name: strPtr("Nuevo"), SKU: strPtr("A2"), Price: &price})
	require.NoError(t, err)
	assert.Equal(t, "Nuevo", out.Name)
	assert.Equal(t, "A2", out.SKU)
	assert.Equal(t, 4, out.ShopStock)

	bySKU, err := store.Products().GetBySKU(ctx, "A2")
	require.NoError(t, err)
	require.NotNil(t, bySKU)
	assert.Equal(t, created.ID, bySKU.ID)
}

func TestProductUseCase_ActualizarSKUOcupado(t *testing.T) {
	ctx := context.Background()
	uc := newProductUC(memory.NewStore())
	_, err := uc.Create(ctx, dto.CreateProductRequest{SKU: "A", Name: "x"})
	require.NoError(t, err)
	b, err := uc.Create(ctx, dto.CreateProductRequest{SKU: "B", Name: "y"})
	require.NoError(t, err)

	_, err = uc.Update(ctx, b.ID, dto.UpdateProductRequest{SKU: strPtr("A")})
	assert.ErrorIs(t, err, domain.ErrDuplicate)
}

func TestProductUseCase_ObtenerInexistente(t *testing.T) {
	uc := newProductUC(memory.NewStore())
	out, err := uc.GetByID(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, out)
}

func TestProductUseCase_EliminarSinHistorial(t *testing.T) {
	ctx := context.Background()
	uc := newProductUC(memory.NewStore())
	p, err := uc.Create(ctx, dto.CreateProductRequest{SKU: "A", Name: "x"})
	require.NoError(t, err)

	require.NoError(t, uc.Delete(ctx, p.ID))
	assert.ErrorIs(t, uc.Delete(ctx, p.ID), domain.ErrNotFound)
}

func TestProductUseCase_EliminarConMovimientos(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	uc := newProductUC(store)
	p, err := uc.Create(ctx, dto.CreateProductRequest{SKU: "A", Name: "x"})
	require.NoError(t, err)
	ledger := inventory.NewLedgerUseCase(store, store.Products(), store.TransactionLog(), nil, nil)
	_, err = ledger.RecordAdjustment(ctx, inventory.AdjustmentInput{ProductID: p.ID, Quantity: 1, Location: entity.LocationWarehouse})
	require.NoError(t, err)

	assert.ErrorIs(t, uc.Delete(ctx, p.ID), domain.ErrConflict)
}

// lockRecorder registra los productos bloqueados dentro de la transacción.
type lockRecorder struct {
	store  *memory.Store
	runs   int
	locked []string
}

func (r *lockRecorder) Run(ctx context.Context, fn func(repos inventory.TxRepos) error) error {
	r.runs++
	return r.store.Run(ctx, func(repos inventory.TxRepos) error {
		repos.Products = recordingProducts{ProductRepository: repos.Products, rec: r}
		return fn(repos)
	})
}

type recordingProducts struct {
	repository.ProductRepository
	rec *lockRecorder
}

func (p recordingProducts) GetForUpdate(ctx context.Context, id string) (*entity.Product, error) {
	p.rec.locked = append(p.rec.locked, id)
	return p.ProductRepository.GetForUpdate(ctx, id)
}

func TestProductUseCase_EliminarBloqueaElProductoEnLaTransaccion(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	rec := &lockRecorder{store: store}
	uc := usecase.NewProductUseCase(rec, store.Products())
	p, err := uc.Create(ctx, dto.CreateProductRequest{SKU: "A", Name: "x"})
	require.NoError(t, err)

	require.NoError(t, uc.Delete(ctx, p.ID))
	assert.Equal(t, 1, rec.runs)
	assert.Equal(t, []string{p.ID}, rec.locked)

	gone, err := store.Products().GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)
}

func TestProductUseCase_EliminarConcurrenteConCompraNoDejaHuerfanos(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	uc := newProductUC(store)
	ledger := inventory.NewLedgerUseCase(store, store.Products(), store.TransactionLog(), nil, nil)
	unit := decimal.NewFromInt(2)

	for i := 0; i < 50; i++ {
		p, err := uc.Create(ctx, dto.CreateProductRequest{SKU: fmt.Sprintf("SKU-%02d", i), Name: "x"})
		require.NoError(t, err)

		var (
			wg                  sync.WaitGroup
			delErr, purchaseErr error
		)
		wg.Add(2)
		go func() {
			defer wg.Done()
			delErr = uc.Delete(ctx, p.ID)
		}()
		go func() {
			defer wg.Done()
			_, purchaseErr = ledger.RecordPurchase(ctx, inventory.PurchaseInput{ProductID: p.ID, Quantity: 1, UnitCost: &unit, Location: entity.LocationWarehouse})
		}()
		wg.Wait()

		entries, err := store.TransactionLog().CountByProduct(ctx, p.ID)
		require.NoError(t, err)
		if delErr == nil {
			assert.ErrorIs(t, purchaseErr, domain.ErrNotFound)
			assert.Zero(t, entries, "un producto borrado no conserva entradas de log")
		} else {
			assert.ErrorIs(t, delErr, domain.ErrConflict)
			assert.NoError(t, purchaseErr)
			assert.Equal(t, 1, entries)
		}
	}
}

func TestProductUseCase_ListarPaginado(t *testing.T) {
	ctx := context.Background()
	uc := newProductUC(memory.NewStore())
	for _, sku := range []string{"A", "B", "C"} {
		_, err := uc.Create(ctx, dto.CreateProductRequest{SKU: sku, Name: sku})
		require.NoError(t, err)
	}
	page, err := uc.List(ctx, 2, 0)
	require.NoError(t, err)
	assert.Len(t, page.Items, 2)
	page, err = uc.List(ctx, 2, 2)
	require.NoError(t, err)
	assert.Len(t, page.Items, 1)
}
