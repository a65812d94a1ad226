package inventory

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"github.com/jhoicas/pos-inventario/internal/domain"
	"github.com/jhoicas/pos-inventario/internal/domain/entity"
	"github.com/jhoicas/pos-inventario/internal/domain/inventory"
	"github.com/jhoicas/pos-inventario/internal/domain/repository"
	"github.com/jhoicas/pos-inventario/pkg/logger"
)

// LedgerUseCase registra compras, traslados, ventas y ajustes de forma transaccional.
// Cada operación bloquea la fila del producto (SELECT FOR UPDATE), valida contra los contadores
// bloqueados y escribe contadores + lote + entrada de log en la misma transacción.
type LedgerUseCase struct {
	txRunner    TxRunner
	productRepo repository.ProductRepository
	logRepo     repository.TransactionLogRepository
	cache       StockCache
	log         *logger.Logger
	now         func() time.Time
}

// NewLedgerUseCase construye el caso de uso. cache y log pueden ser nil.
func NewLedgerUseCase(
	txRunner TxRunner,
	productRepo repository.ProductRepository,
	logRepo repository.TransactionLogRepository,
	cache StockCache,
	log *logger.Logger,
) *LedgerUseCase {
	if cache == nil {
		cache = noopCache{}
	}
	if log == nil {
		log = logger.Nop()
	}
	return &LedgerUseCase{
		txRunner:    txRunner,
		productRepo: productRepo,
		logRepo:     logRepo,
		cache:       cache,
		log:         log.Component("ledger"),
		now:         time.Now,
	}
}

// PurchaseInput entrada de RecordPurchase. UnitCost nil = costo promedio vigente.
type PurchaseInput struct {
	ProductID   string
	Quantity    int
	UnitCost    *decimal.Decimal
	Location    entity.Location
	BatchNumber string
	Supplier    string
	UserID      string
	Reference   string
}

// TransferInput entrada de RecordTransfer.
type TransferInput struct {
	ProductID string
	Quantity  int
	From      entity.Location
	To        entity.Location
	UserID    string
	Reference string
	Notes     string
}

// SaleInput entrada de RecordSale.
type SaleInput struct {
	ProductID string
	Quantity  int
	UserID    string
	Reference string
}

// AdjustmentInput entrada de RecordAdjustment. Quantity con signo.
type AdjustmentInput struct {
	ProductID string
	Quantity  int
	Location  entity.Location
	Reason    string
	UserID    string
}

// RecordPurchase agrega un lote y suma stock en la ubicación indicada.
func (uc *LedgerUseCase) RecordPurchase(ctx context.Context, in PurchaseInput) (*entity.Product, error) {
	return uc.mutate(ctx, in.ProductID, entity.TransactionTypePurchase, func(repos TxRepos, p *entity.Product, now time.Time) (*entity.TransactionLogEntry, error) {
		params := inventory.PurchaseParams{
			Quantity:    in.Quantity,
			UnitCost:    in.UnitCost,
			Location:    in.Location,
			BatchNumber: in.BatchNumber,
			Supplier:    in.Supplier,
			UserID:      in.UserID,
			Reference:   in.Reference,
		}
		// Sin costo explícito ni lotes: el promedio sale de las compras del log
		if params.UnitCost == nil && len(p.Batches) == 0 {
			entries, err := repos.Log.ListAllByProduct(ctx, p.ID)
			if err != nil {
				return nil, err
			}
			avg := inventory.AverageUnitCostFromLog(entries)
			params.UnitCost = &avg
		}
		batch, entry, err := inventory.RecordPurchase(p, params, now)
		if err != nil {
			return nil, err
		}
		if err := repos.Batches.Create(ctx, batch); err != nil {
			return nil, err
		}
		return entry, nil
	})
}

// RecordTransfer traslada unidades entre bodega y tienda.
func (uc *LedgerUseCase) RecordTransfer(ctx context.Context, in TransferInput) (*entity.Product, error) {
	return uc.mutate(ctx, in.ProductID, entity.TransactionTypeTransfer, func(_ TxRepos, p *entity.Product, now time.Time) (*entity.TransactionLogEntry, error) {
		return inventory.RecordTransfer(p, inventory.TransferParams{
			Quantity:  in.Quantity,
			From:      in.From,
			To:        in.To,
			UserID:    in.UserID,
			Reference: in.Reference,
			Notes:     in.Notes,
		}, now)
	})
}

// RecordSale descuenta unidades de la tienda. El registro de venta con costo y utilidad
// lo hace SaleUseCase; esta operación solo mueve stock.
func (uc *LedgerUseCase) RecordSale(ctx context.Context, in SaleInput) (*entity.Product, error) {
	return uc.mutate(ctx, in.ProductID, entity.TransactionTypeSale, func(_ TxRepos, p *entity.Product, now time.Time) (*entity.TransactionLogEntry, error) {
		return inventory.RecordSale(p, inventory.SaleParams{
			Quantity:  in.Quantity,
			UserID:    in.UserID,
			Reference: in.Reference,
		}, now)
	})
}

// RecordAdjustment corrige stock sin validar límite inferior.
func (uc *LedgerUseCase) RecordAdjustment(ctx context.Context, in AdjustmentInput) (*entity.Product, error) {
	p, err := uc.mutate(ctx, in.ProductID, entity.TransactionTypeAdjustment, func(_ TxRepos, p *entity.Product, now time.Time) (*entity.TransactionLogEntry, error) {
		return inventory.RecordAdjustment(p, inventory.AdjustmentParams{
			Quantity: in.Quantity,
			Location: in.Location,
			Reason:   in.Reason,
			UserID:   in.UserID,
		}, now)
	})
	if err != nil {
		return nil, err
	}
	if p.StockAt(in.Location) < 0 {
		uc.log.Warn().
			Str("product_id", p.ID).
			Str("location", string(in.Location)).
			Int("quantity", in.Quantity).
			Int("resulting_stock", p.StockAt(in.Location)).
			Str("user_id", in.UserID).
			Str("reason", in.Reason).
			Msg("ajuste deja stock negativo")
	}
	return p, nil
}

// AverageUnitCost costo promedio ponderado del producto (lotes o, en su defecto, compras del log).
func (uc *LedgerUseCase) AverageUnitCost(ctx context.Context, productID string) (decimal.Decimal, error) {
	p, err := uc.productRepo.GetByID(ctx, productID)
	if err != nil {
		return decimal.Zero, err
	}
	if p == nil {
		return decimal.Zero, domain.ErrNotFound
	}
	if len(p.Batches) > 0 {
		return inventory.AverageUnitCost(p.Batches), nil
	}
	entries, err := uc.logRepo.ListAllByProduct(ctx, productID)
	if err != nil {
		return decimal.Zero, err
	}
	return inventory.AverageUnitCostFromLog(entries), nil
}

// GetStock devuelve el snapshot de stock; consulta primero la caché.
func (uc *LedgerUseCase) GetStock(ctx context.Context, productID string) (*StockSnapshot, error) {
	if snap, err := uc.cache.Get(ctx, productID); err != nil {
		uc.log.Warn().Err(err).Str("product_id", productID).Msg("lectura de caché de stock")
	} else if snap != nil {
		return snap, nil
	}
	p, err := uc.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrNotFound
	}
	snap := SnapshotOf(p)
	uc.storeSnapshot(ctx, p)
	return &snap, nil
}

// ListLog página del log de un producto, más recientes primero.
func (uc *LedgerUseCase) ListLog(ctx context.Context, productID string, limit, offset int) ([]*entity.TransactionLogEntry, error) {
	p, err := uc.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrNotFound
	}
	return uc.logRepo.ListByProduct(ctx, productID, limit, offset)
}

type mutation func(repos TxRepos, p *entity.Product, now time.Time) (*entity.TransactionLogEntry, error)

// mutate bloquea el producto, aplica la operación y persiste contadores y log en una sola tx.
func (uc *LedgerUseCase) mutate(ctx context.Context, productID, opType string, fn mutation) (*entity.Product, error) {
	if productID == "" {
		return nil, domain.InvalidArgument("product_id es requerido")
	}
	var (
		updated *entity.Product
		entry   *entity.TransactionLogEntry
	)
	err := uc.txRunner.Run(ctx, func(repos TxRepos) error {
		p, err := repos.Products.GetForUpdate(ctx, productID)
		if err != nil {
			return err
		}
		if p == nil {
			return domain.ErrNotFound
		}
		entry, err = fn(repos, p, uc.now())
		if err != nil {
			return err
		}
		if err := repos.Products.SaveStock(ctx, p); err != nil {
			return err
		}
		if err := repos.Log.Append(ctx, entry); err != nil {
			return err
		}
		updated = p
		return nil
	})
	if err != nil {
		ev := uc.log.Error()
		if errors.Is(err, domain.ErrInsufficientStock) || errors.Is(err, domain.ErrInvalidInput) || errors.Is(err, domain.ErrNotFound) {
			ev = uc.log.Info()
		}
		ev.Err(err).Str("product_id", productID).Str("type", opType).Msg("movimiento rechazado")
		return nil, err
	}

	uc.log.Info().
		Str("product_id", updated.ID).
		Str("type", opType).
		Int("quantity", entry.Quantity).
		Str("from", string(entry.FromLocation)).
		Str("to", string(entry.ToLocation)).
		Int("warehouse_stock", updated.WarehouseStock).
		Int("shop_stock", updated.ShopStock).
		Msg("movimiento registrado")

	publishSnapshot(ctx, uc.cache, uc.log, updated)
	return updated, nil
}

func (uc *LedgerUseCase) storeSnapshot(ctx context.Context, p *entity.Product) {
	if err := uc.cache.Set(ctx, SnapshotOf(p)); err != nil {
		uc.log.Warn().Err(err).Str("product_id", p.ID).Msg("actualizar caché de stock")
	}
}

// publishSnapshot guarda el snapshot recién confirmado. Si la caché rechaza la escritura
// se borra la entrada para que la siguiente lectura vaya a la base de datos.
func publishSnapshot(ctx context.Context, cache StockCache, log *logger.Logger, p *entity.Product) {
	err := cache.Set(ctx, SnapshotOf(p))
	if err == nil {
		return
	}
	log.Warn().Err(err).Str("product_id", p.ID).Int64("version", p.StockVersion).Msg("publicar snapshot de stock")
	if err := cache.Delete(ctx, p.ID); err != nil {
		log.Warn().Err(err).Str("product_id", p.ID).Msg("invalidar caché de stock")
	}
}
