package inventory

import (
	"errors"
	"math"
	"regexp"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/pos-inventario/internal/domain"
	"github.com/jhoicas/pos-inventario/internal/domain/entity"
)

var fixedNow = time.Date(2026, 5, 14, 9, 30, 0, 0, time.UTC)

func newProduct() *entity.Product {
	return entity.NewProduct("p1", "CAM-001", "Camiseta", "ropa", decimal.NewFromInt(25), fixedNow)
}

func dec(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}

// ─── Compras ──────────────────────────────────────────────────────────────────

func TestRecordPurchase_SumaStockYCreaLote(t *testing.T) {
	p := newProduct()

	batch, entry, err := RecordPurchase(p, PurchaseParams{Quantity: 20, UnitCost: dec(5), Location: entity.LocationWarehouse, Supplier: "Textiles SA"}, fixedNow)
	require.NoError(t, err)

	assert.Equal(t, 20, p.WarehouseStock)
	assert.Zero(t, p.ShopStock)
	require.Len(t, p.Batches, 1)
	assert.Equal(t, batch.ID, p.Batches[0].ID)
	assert.Equal(t, "Textiles SA", batch.Supplier)
	assert.True(t, batch.UnitCost.Equal(decimal.NewFromInt(5)))

	assert.Equal(t, entity.TransactionTypePurchase, entry.Type)
	assert.Equal(t, 20, entry.Quantity)
	assert.Equal(t, entity.LocationWarehouse, entry.ToLocation)
	assert.Empty(t, entry.FromLocation)
	require.NotNil(t, entry.UnitCost)
	assert.True(t, entry.UnitCost.Equal(decimal.NewFromInt(5)))
	assert.Equal(t, batch.BatchNumber, entry.BatchNumber)
}

func TestRecordPurchase_GeneraNumeroDeLote(t *testing.T) {
	p := newProduct()
	batch, _, err := RecordPurchase(p, PurchaseParams{Quantity: 1, UnitCost: dec(1), Location: entity.LocationShop}, fixedNow)
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^LOTE-20260514-[0-9a-f]{8}$`), batch.BatchNumber)
}

func TestRecordPurchase_SinCostoUsaPromedio(t *testing.T) {
	p := newProduct()
	_, _, err := RecordPurchase(p, PurchaseParams{Quantity: 10, UnitCost: dec(4), Location: entity.LocationWarehouse}, fixedNow)
	require.NoError(t, err)
	_, _, err = RecordPurchase(p, PurchaseParams{Quantity: 10, UnitCost: dec(8), Location: entity.LocationWarehouse}, fixedNow)
	require.NoError(t, err)

	batch, entry, err := RecordPurchase(p, PurchaseParams{Quantity: 5, Location: entity.LocationShop}, fixedNow)
	require.NoError(t, err)
	assert.True(t, batch.UnitCost.Equal(decimal.NewFromInt(6)), "got %s", batch.UnitCost)
	assert.True(t, entry.UnitCost.Equal(decimal.NewFromInt(6)))
}

func TestRecordPurchase_EntradasInvalidas(t *testing.T) {
	cases := []struct {
		name string
		in   PurchaseParams
	}{
		{"cantidad cero", PurchaseParams{Quantity: 0, UnitCost: dec(1), Location: entity.LocationShop}},
		{"cantidad negativa", PurchaseParams{Quantity: -4, UnitCost: dec(1), Location: entity.LocationShop}},
		{"ubicación desconocida", PurchaseParams{Quantity: 1, UnitCost: dec(1), Location: "patio"}},
		{"costo negativo", PurchaseParams{Quantity: 1, UnitCost: dec(-1), Location: entity.LocationShop}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := newProduct()
			_, _, err := RecordPurchase(p, tc.in, fixedNow)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
			assert.Zero(t, p.TotalStock())
			assert.Empty(t, p.Batches)
		})
	}
}

// ─── Traslados ────────────────────────────────────────────────────────────────

func TestRecordTransfer_ConservaTotal(t *testing.T) {
	p := newProduct()
	p.WarehouseStock = 20

	entry, err := RecordTransfer(p, TransferParams{Quantity: 8, From: entity.LocationWarehouse, To: entity.LocationShop}, fixedNow)
	require.NoError(t, err)

	assert.Equal(t, 12, p.WarehouseStock)
	assert.Equal(t, 8, p.ShopStock)
	assert.Equal(t, 20, p.TotalStock())
	assert.Equal(t, 8, entry.Quantity)
	assert.Nil(t, entry.UnitCost)
	assert.Equal(t, entity.LocationWarehouse, entry.FromLocation)
	assert.Equal(t, entity.LocationShop, entry.ToLocation)
}

func TestRecordTransfer_TiendaABodega(t *testing.T) {
	p := newProduct()
	p.ShopStock = 3

	_, err := RecordTransfer(p, TransferParams{Quantity: 3, From: entity.LocationShop, To: entity.LocationWarehouse}, fixedNow)
	require.NoError(t, err)
	assert.Equal(t, 3, p.WarehouseStock)
	assert.Zero(t, p.ShopStock)
}

func TestRecordTransfer_StockInsuficienteNoModifica(t *testing.T) {
	p := newProduct()
	p.WarehouseStock = 2

	_, err := RecordTransfer(p, TransferParams{Quantity: 5, From: entity.LocationWarehouse, To: entity.LocationShop}, fixedNow)
	require.Error(t, err)
	var ise *domain.InsufficientStockError
	require.True(t, errors.As(err, &ise))
	assert.Equal(t, "warehouse", ise.Location)
	assert.Equal(t, 2, ise.Available)
	assert.Equal(t, 5, ise.Requested)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, 2, p.WarehouseStock)
	assert.Zero(t, p.ShopStock)
}

func TestRecordTransfer_MismaUbicacion(t *testing.T) {
	p := newProduct()
	p.ShopStock = 5
	_, err := RecordTransfer(p, TransferParams{Quantity: 1, From: entity.LocationShop, To: entity.LocationShop}, fixedNow)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// ─── Ventas ───────────────────────────────────────────────────────────────────

func TestRecordSale_DescuentaTiendaYSumaVendidos(t *testing.T) {
	p := newProduct()
	p.WarehouseStock = 12
	p.ShopStock = 8

	entry, err := RecordSale(p, SaleParams{Quantity: 3, Reference: "venta-1"}, fixedNow)
	require.NoError(t, err)

	assert.Equal(t, 12, p.WarehouseStock)
	assert.Equal(t, 5, p.ShopStock)
	assert.Equal(t, 3, p.TotalSold)
	assert.Equal(t, -3, entry.Quantity)
	assert.Equal(t, entity.LocationShop, entry.FromLocation)
	assert.Empty(t, entry.ToLocation)
	assert.Equal(t, "venta-1", entry.Reference)
}

func TestRecordSale_NoVendeDesdeBodega(t *testing.T) {
	p := newProduct()
	p.WarehouseStock = 50

	_, err := RecordSale(p, SaleParams{Quantity: 1}, fixedNow)
	var ise *domain.InsufficientStockError
	require.True(t, errors.As(err, &ise))
	assert.Equal(t, "shop", ise.Location)
	assert.Zero(t, ise.Available)
	assert.Equal(t, 50, p.WarehouseStock)
	assert.Zero(t, p.TotalSold)
}

func TestRecordSale_CantidadInvalida(t *testing.T) {
	p := newProduct()
	p.ShopStock = 5
	_, err := RecordSale(p, SaleParams{Quantity: 0}, fixedNow)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// ─── Ajustes ──────────────────────────────────────────────────────────────────

func TestRecordAdjustment_PuedeDejarNegativo(t *testing.T) {
	p := newProduct()
	p.ShopStock = 1

	entry, err := RecordAdjustment(p, AdjustmentParams{Quantity: -4, Location: entity.LocationShop, Reason: "robo"}, fixedNow)
	require.NoError(t, err)
	assert.Equal(t, -3, p.ShopStock)
	assert.Equal(t, -4, entry.Quantity)
	assert.Equal(t, entity.LocationShop, entry.ToLocation)
	assert.Equal(t, "robo", entry.Notes)
	assert.Zero(t, p.TotalSold)
}

func TestRecordAdjustment_UbicacionInvalida(t *testing.T) {
	p := newProduct()
	_, err := RecordAdjustment(p, AdjustmentParams{Quantity: 1, Location: ""}, fixedNow)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// ─── Límites de contadores ────────────────────────────────────────────────────

func TestRecordPurchase_CantidadFueraDeRango(t *testing.T) {
	p := newProduct()
	_, _, err := RecordPurchase(p, PurchaseParams{Quantity: MaxQuantity + 1, UnitCost: dec(1), Location: entity.LocationWarehouse}, fixedNow)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Zero(t, p.WarehouseStock)
	assert.Empty(t, p.Batches)
}

func TestRecordPurchase_ContadorNoDesborda(t *testing.T) {
	p := newProduct()
	p.WarehouseStock = math.MaxInt32 - 5

	_, _, err := RecordPurchase(p, PurchaseParams{Quantity: 10, UnitCost: dec(1), Location: entity.LocationWarehouse}, fixedNow)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Equal(t, math.MaxInt32-5, p.WarehouseStock)
	assert.Empty(t, p.Batches, "sin lote si el contador no se actualizó")
}

func TestRecordTransfer_DestinoLlenoNoModifica(t *testing.T) {
	p := newProduct()
	p.WarehouseStock = 10
	p.ShopStock = math.MaxInt32

	_, err := RecordTransfer(p, TransferParams{Quantity: 1, From: entity.LocationWarehouse, To: entity.LocationShop}, fixedNow)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Equal(t, entity.StockCounters{Warehouse: 10, Shop: math.MaxInt32}, p.Counters())
}

func TestRecordAdjustment_LimitesDelContador(t *testing.T) {
	p := newProduct()
	p.ShopStock = math.MinInt32 + 1

	_, err := RecordAdjustment(p, AdjustmentParams{Quantity: -2, Location: entity.LocationShop}, fixedNow)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Equal(t, math.MinInt32+1, p.ShopStock)

	_, err = RecordAdjustment(p, AdjustmentParams{Quantity: -MaxQuantity - 1, Location: entity.LocationWarehouse}, fixedNow)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Zero(t, p.WarehouseStock)
}

// ─── Flujo completo ───────────────────────────────────────────────────────────

func TestFlujo_CompraTrasladoVentaCoincideConReplay(t *testing.T) {
	p := newProduct()
	var entries []entity.TransactionLogEntry

	_, e, err := RecordPurchase(p, PurchaseParams{Quantity: 20, UnitCost: dec(5), Location: entity.LocationWarehouse}, fixedNow)
	require.NoError(t, err)
	entries = append(entries, *e)
	e, err = RecordTransfer(p, TransferParams{Quantity: 8, From: entity.LocationWarehouse, To: entity.LocationShop}, fixedNow)
	require.NoError(t, err)
	entries = append(entries, *e)
	e, err = RecordSale(p, SaleParams{Quantity: 3}, fixedNow)
	require.NoError(t, err)
	entries = append(entries, *e)

	assert.Equal(t, 12, p.WarehouseStock)
	assert.Equal(t, 5, p.ShopStock)
	assert.Equal(t, 3, p.TotalSold)
	assert.Len(t, entries, 3)
	assert.True(t, AverageUnitCost(p.Batches).Equal(decimal.NewFromInt(5)))
	assert.Equal(t, p.Counters(), Replay(entries))
	assert.False(t, DetectDrift(p, entries).HasDrift())
}
