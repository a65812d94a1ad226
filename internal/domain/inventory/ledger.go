package inventory

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/jhoicas/pos-inventario/internal/domain"
	"github.com/jhoicas/pos-inventario/internal/domain/entity"
)

// MaxQuantity límite absoluto de unidades por operación.
const MaxQuantity = 1_000_000_000

// Rango de los contadores: columnas INTEGER en PostgreSQL.
const (
	maxCounter = math.MaxInt32
	minCounter = math.MinInt32
)

// PurchaseParams entrada de una compra. UnitCost nil usa el costo promedio vigente.
type PurchaseParams struct {
	Quantity    int
	UnitCost    *decimal.Decimal
	Location    entity.Location
	BatchNumber string // vacío = se genera
	Supplier    string
	UserID      string
	Reference   string
}

// TransferParams entrada de un traslado entre bodega y tienda.
type TransferParams struct {
	Quantity  int
	From      entity.Location
	To        entity.Location
	UserID    string
	Reference string
	Notes     string
}

// SaleParams entrada de una venta (siempre sale de tienda).
type SaleParams struct {
	Quantity  int
	UserID    string
	Reference string
}

// AdjustmentParams entrada de un ajuste manual. Quantity con signo.
type AdjustmentParams struct {
	Quantity int
	Location entity.Location
	Reason   string
	UserID   string
}

// RecordPurchase agrega un lote, suma la cantidad a la ubicación y devuelve la entrada de log.
// No valida stock: las compras solo suman.
func RecordPurchase(p *entity.Product, in PurchaseParams, now time.Time) (*entity.Batch, *entity.TransactionLogEntry, error) {
	if in.Quantity <= 0 {
		return nil, nil, domain.InvalidArgument("quantity debe ser mayor que 0")
	}
	if err := checkQuantity(in.Quantity); err != nil {
		return nil, nil, err
	}
	if !in.Location.Valid() {
		return nil, nil, domain.InvalidArgument("location inválida %q", in.Location)
	}
	unitCost := AverageUnitCost(p.Batches)
	if in.UnitCost != nil {
		unitCost = *in.UnitCost
	}
	if unitCost.IsNegative() {
		return nil, nil, domain.InvalidArgument("unit_cost no puede ser negativo")
	}
	batchNumber := strings.TrimSpace(in.BatchNumber)
	if batchNumber == "" {
		batchNumber = GenerateBatchNumber(now)
	}

	batch := entity.Batch{
		ID:           uuid.New().String(),
		ProductID:    p.ID,
		PurchaseDate: now,
		Quantity:     in.Quantity,
		UnitCost:     unitCost,
		Supplier:     in.Supplier,
		BatchNumber:  batchNumber,
		CreatedAt:    now,
	}
	if err := addStock(p, in.Location, in.Quantity); err != nil {
		return nil, nil, err
	}
	p.Batches = append(p.Batches, batch)
	p.UpdatedAt = now

	cost := unitCost
	entry := &entity.TransactionLogEntry{
		ProductID:   p.ID,
		Type:        entity.TransactionTypePurchase,
		Quantity:    in.Quantity,
		ToLocation:  in.Location,
		UnitCost:    &cost,
		BatchNumber: batchNumber,
		Reference:   in.Reference,
		UserID:      in.UserID,
		CreatedAt:   now,
	}
	return &batch, entry, nil
}

// RecordTransfer mueve unidades entre ubicaciones conservando el total.
// Si el origen no alcanza devuelve InsufficientStockError sin tocar el producto.
func RecordTransfer(p *entity.Product, in TransferParams, now time.Time) (*entity.TransactionLogEntry, error) {
	if in.Quantity <= 0 {
		return nil, domain.InvalidArgument("quantity debe ser mayor que 0")
	}
	if err := checkQuantity(in.Quantity); err != nil {
		return nil, err
	}
	if !in.From.Valid() || !in.To.Valid() {
		return nil, domain.InvalidArgument("from_location y to_location son requeridos")
	}
	if in.From == in.To {
		return nil, domain.InvalidArgument("from_location y to_location deben ser distintos")
	}
	if available := p.StockAt(in.From); available < in.Quantity {
		return nil, &domain.InsufficientStockError{
			ProductID: p.ID, Location: string(in.From), Available: available, Requested: in.Quantity,
		}
	}
	// El destino se valida primero; restar del origen ya no puede fallar
	if err := addStock(p, in.To, in.Quantity); err != nil {
		return nil, err
	}
	_ = addStock(p, in.From, -in.Quantity)
	p.UpdatedAt = now

	return &entity.TransactionLogEntry{
		ProductID:    p.ID,
		Type:         entity.TransactionTypeTransfer,
		Quantity:     in.Quantity,
		FromLocation: in.From,
		ToLocation:   in.To,
		Reference:    in.Reference,
		Notes:        in.Notes,
		UserID:       in.UserID,
		CreatedAt:    now,
	}, nil
}

// RecordSale descuenta de tienda y suma a TotalSold. Nunca vende desde bodega.
func RecordSale(p *entity.Product, in SaleParams, now time.Time) (*entity.TransactionLogEntry, error) {
	if in.Quantity <= 0 {
		return nil, domain.InvalidArgument("quantity debe ser mayor que 0")
	}
	if err := checkQuantity(in.Quantity); err != nil {
		return nil, err
	}
	if p.ShopStock < in.Quantity {
		return nil, &domain.InsufficientStockError{
			ProductID: p.ID, Location: string(entity.LocationShop), Available: p.ShopStock, Requested: in.Quantity,
		}
	}
	sold, err := checkedAdd(p.TotalSold, in.Quantity, "total_sold")
	if err != nil {
		return nil, err
	}
	p.ShopStock -= in.Quantity
	p.TotalSold = sold
	p.UpdatedAt = now

	return &entity.TransactionLogEntry{
		ProductID:    p.ID,
		Type:         entity.TransactionTypeSale,
		Quantity:     -in.Quantity,
		FromLocation: entity.LocationShop,
		Reference:    in.Reference,
		UserID:       in.UserID,
		CreatedAt:    now,
	}, nil
}

// RecordAdjustment aplica la cantidad con signo a la ubicación sin límite inferior.
// Es la única operación que puede dejar un contador negativo (corrección forzada de datos).
func RecordAdjustment(p *entity.Product, in AdjustmentParams, now time.Time) (*entity.TransactionLogEntry, error) {
	if !in.Location.Valid() {
		return nil, domain.InvalidArgument("location inválida %q", in.Location)
	}
	if err := checkQuantity(in.Quantity); err != nil {
		return nil, err
	}
	if err := addStock(p, in.Location, in.Quantity); err != nil {
		return nil, err
	}
	p.UpdatedAt = now

	return &entity.TransactionLogEntry{
		ProductID:  p.ID,
		Type:       entity.TransactionTypeAdjustment,
		Quantity:   in.Quantity,
		ToLocation: in.Location,
		Notes:      in.Reason,
		UserID:     in.UserID,
		CreatedAt:  now,
	}, nil
}

// GenerateBatchNumber número de lote cuando la compra no trae uno: LOTE-AAAAMMDD-xxxxxxxx.
func GenerateBatchNumber(now time.Time) string {
	return fmt.Sprintf("LOTE-%s-%s", now.Format("20060102"), uuid.New().String()[:8])
}

// addStock no modifica el producto si el contador resultante queda fuera de rango.
func addStock(p *entity.Product, loc entity.Location, delta int) error {
	field := "warehouse_stock"
	if loc == entity.LocationShop {
		field = "shop_stock"
	}
	n, err := checkedAdd(p.StockAt(loc), delta, field)
	if err != nil {
		return err
	}
	if loc == entity.LocationShop {
		p.ShopStock = n
	} else {
		p.WarehouseStock = n
	}
	return nil
}

func checkQuantity(q int) error {
	if q > MaxQuantity || q < -MaxQuantity {
		return domain.InvalidArgument("quantity fuera de rango (máximo %d)", MaxQuantity)
	}
	return nil
}

func checkedAdd(cur, delta int, field string) (int, error) {
	n := int64(cur) + int64(delta)
	if n > maxCounter || n < minCounter {
		return 0, domain.InvalidArgument("%s quedaría fuera de rango", field)
	}
	return int(n), nil
}
