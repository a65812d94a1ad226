package inventory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/jhoicas/pos-inventario/internal/domain"
	"github.com/jhoicas/pos-inventario/internal/domain/entity"
	"github.com/jhoicas/pos-inventario/internal/domain/inventory"
	"github.com/jhoicas/pos-inventario/internal/domain/repository"
	"github.com/jhoicas/pos-inventario/pkg/logger"
)

// SaleUseCase registra una venta completa: descuenta stock de tienda por cada línea, calcula
// costo promedio y utilidad, y guarda la venta. Todo en una transacción: si una línea falla
// no queda stock descontado ni TotalSold incrementado.
type SaleUseCase struct {
	txRunner TxRunner
	saleRepo repository.SaleRepository
	guard    IdempotencyGuard // opcional
	cache    StockCache
	log      *logger.Logger
	now      func() time.Time
}

// NewSaleUseCase construye el caso de uso. guard, cache y log pueden ser nil.
func NewSaleUseCase(
	txRunner TxRunner,
	saleRepo repository.SaleRepository,
	guard IdempotencyGuard,
	cache StockCache,
	log *logger.Logger,
) *SaleUseCase {
	if cache == nil {
		cache = noopCache{}
	}
	if log == nil {
		log = logger.Nop()
	}
	return &SaleUseCase{
		txRunner: txRunner,
		saleRepo: saleRepo,
		guard:    guard,
		cache:    cache,
		log:      log.Component("sales"),
		now:      time.Now,
	}
}

// SaleItemInput línea de venta. UnitPrice nil usa el precio de venta del producto.
type SaleItemInput struct {
	ProductID string
	Quantity  int
	UnitPrice *decimal.Decimal
}

// CreateSaleInput entrada de CreateSale.
type CreateSaleInput struct {
	UserID         string
	PaymentMethod  string
	Notes          string
	IdempotencyKey string
	Items          []SaleItemInput
}

// CreateSale valida, descuenta stock y persiste la venta con costo y utilidad por línea.
func (uc *SaleUseCase) CreateSale(ctx context.Context, in CreateSaleInput) (*entity.Sale, error) {
	if len(in.Items) == 0 {
		return nil, domain.InvalidArgument("la venta debe tener al menos un ítem")
	}
	for _, it := range in.Items {
		if it.ProductID == "" {
			return nil, domain.InvalidArgument("product_id es requerido")
		}
		if it.Quantity <= 0 {
			return nil, domain.InvalidArgument("quantity debe ser mayor que 0")
		}
		if it.UnitPrice != nil && it.UnitPrice.IsNegative() {
			return nil, domain.InvalidArgument("unit_price no puede ser negativo")
		}
	}

	key := strings.TrimSpace(in.IdempotencyKey)
	if key != "" && uc.guard != nil {
		ok, err := uc.guard.Acquire(ctx, key)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, domain.ErrDuplicate
		}
	}

	sale, touched, err := uc.commit(ctx, in)
	if err != nil {
		if key != "" && uc.guard != nil {
			if rerr := uc.guard.Release(ctx, key); rerr != nil {
				uc.log.Warn().Err(rerr).Str("idempotency_key", key).Msg("liberar clave de idempotencia")
			}
		}
		ev := uc.log.Error()
		if errors.Is(err, domain.ErrInsufficientStock) || errors.Is(err, domain.ErrNotFound) {
			ev = uc.log.Info()
		}
		ev.Err(err).Str("user_id", in.UserID).Int("items", len(in.Items)).Msg("venta rechazada")
		return nil, err
	}

	for _, p := range touched {
		publishSnapshot(ctx, uc.cache, uc.log, p)
	}
	uc.log.Info().
		Str("sale_id", sale.ID).
		Str("user_id", sale.UserID).
		Int("items", len(sale.Items)).
		Str("total", sale.TotalAmount.StringFixed(2)).
		Str("profit", sale.TotalProfit.StringFixed(2)).
		Msg("venta registrada")
	return sale, nil
}

// commit devuelve la venta y los productos tal como quedaron confirmados.
func (uc *SaleUseCase) commit(ctx context.Context, in CreateSaleInput) (*entity.Sale, []*entity.Product, error) {
	now := uc.now()
	sale := &entity.Sale{
		ID:            uuid.New().String(),
		UserID:        in.UserID,
		PaymentMethod: in.PaymentMethod,
		Notes:         in.Notes,
		TotalAmount:   decimal.Zero,
		TotalCost:     decimal.Zero,
		TotalProfit:   decimal.Zero,
		CreatedAt:     now,
	}

	var touched []*entity.Product
	err := uc.txRunner.Run(ctx, func(repos TxRepos) error {
		touched = touched[:0]
		// Bloquea los productos en orden de ID para no cruzar bloqueos con otra venta
		locked := make(map[string]*entity.Product, len(in.Items))
		for _, id := range productIDs(in.Items) {
			p, err := repos.Products.GetForUpdate(ctx, id)
			if err != nil {
				return err
			}
			if p == nil {
				return domain.ErrNotFound
			}
			locked[id] = p
			touched = append(touched, p)
		}

		items := make([]entity.SaleItem, 0, len(in.Items))
		for _, it := range in.Items {
			p := locked[it.ProductID]

			// Costo promedio vigente antes de vender
			unitCost := inventory.AverageUnitCost(p.Batches)
			if len(p.Batches) == 0 {
				entries, err := repos.Log.ListAllByProduct(ctx, p.ID)
				if err != nil {
					return err
				}
				unitCost = inventory.AverageUnitCostFromLog(entries)
			}

			entry, err := inventory.RecordSale(p, inventory.SaleParams{
				Quantity:  it.Quantity,
				UserID:    in.UserID,
				Reference: sale.ID,
			}, now)
			if err != nil {
				return err
			}
			if err := repos.Products.SaveStock(ctx, p); err != nil {
				return err
			}
			if err := repos.Log.Append(ctx, entry); err != nil {
				return err
			}

			unitPrice := p.Price
			if it.UnitPrice != nil {
				unitPrice = *it.UnitPrice
			}
			qty := decimal.NewFromInt(int64(it.Quantity))
			lineTotal := qty.Mul(unitPrice)
			lineCost := qty.Mul(unitCost)
			items = append(items, entity.SaleItem{
				ID:        uuid.New().String(),
				SaleID:    sale.ID,
				ProductID: p.ID,
				Quantity:  it.Quantity,
				UnitPrice: unitPrice,
				UnitCost:  unitCost,
				LineTotal: lineTotal,
				LineCost:  lineCost,
				Profit:    lineTotal.Sub(lineCost),
			})
			sale.TotalAmount = sale.TotalAmount.Add(lineTotal)
			sale.TotalCost = sale.TotalCost.Add(lineCost)
		}
		sale.Items = items
		sale.TotalProfit = sale.TotalAmount.Sub(sale.TotalCost)
		return repos.Sales.Create(ctx, sale)
	})
	if err != nil {
		return nil, nil, err
	}
	return sale, touched, nil
}

func productIDs(items []SaleItemInput) []string {
	seen := make(map[string]struct{}, len(items))
	ids := make([]string, 0, len(items))
	for _, it := range items {
		if _, ok := seen[it.ProductID]; ok {
			continue
		}
		seen[it.ProductID] = struct{}{}
		ids = append(ids, it.ProductID)
	}
	sort.Strings(ids)
	return ids
}

// GetSale obtiene una venta con sus líneas.
func (uc *SaleUseCase) GetSale(ctx context.Context, id string) (*entity.Sale, error) {
	sale, err := uc.saleRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if sale == nil {
		return nil, domain.ErrNotFound
	}
	return sale, nil
}

// ListSales lista ventas, más recientes primero.
func (uc *SaleUseCase) ListSales(ctx context.Context, limit, offset int) ([]*entity.Sale, error) {
	return uc.saleRepo.List(ctx, limit, offset)
}
