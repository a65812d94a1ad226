package inventory

import (
	"context"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/pos-inventario/internal/domain"
	"github.com/jhoicas/pos-inventario/internal/domain/entity"
	"github.com/jhoicas/pos-inventario/internal/domain/inventory"
	"github.com/jhoicas/pos-inventario/internal/domain/repository"
	"github.com/jhoicas/pos-inventario/pkg/logger"
)

// reconcilePageSize productos leídos por página al conciliar toda la tienda.
const reconcilePageSize = 200

// ReconciliationUseCase detecta y repara drift entre los contadores y el log.
// El log es la fuente de verdad; la conciliación nunca escribe entradas nuevas.
type ReconciliationUseCase struct {
	txRunner    TxRunner
	productRepo repository.ProductRepository
	cache       StockCache
	log         *logger.Logger
	concurrency int
}

// NewReconciliationUseCase construye el caso de uso. concurrency <= 0 equivale a 1.
func NewReconciliationUseCase(
	txRunner TxRunner,
	productRepo repository.ProductRepository,
	cache StockCache,
	log *logger.Logger,
	concurrency int,
) *ReconciliationUseCase {
	if cache == nil {
		cache = noopCache{}
	}
	if log == nil {
		log = logger.Nop()
	}
	if concurrency <= 0 {
		concurrency = 1
	}
	return &ReconciliationUseCase{
		txRunner:    txRunner,
		productRepo: productRepo,
		cache:       cache,
		log:         log.Component("reconcile"),
		concurrency: concurrency,
	}
}

// ReconcileResult contadores antes y después de recalcular.
type ReconcileResult struct {
	ProductID string               `json:"product_id"`
	Before    entity.StockCounters `json:"before"`
	After     entity.StockCounters `json:"after"`
	Drifted   bool                 `json:"drifted"`
}

// NegativeStock producto con algún contador bajo cero.
type NegativeStock struct {
	ProductID string               `json:"product_id"`
	SKU       string               `json:"sku"`
	Counters  entity.StockCounters `json:"counters"`
}

// ReconcileReport resultado de conciliar todos los productos.
type ReconcileReport struct {
	Checked  int               `json:"checked"`
	Fixed    bool              `json:"fixed"`
	Drifted  []inventory.Drift `json:"drifted"`
	Negative []NegativeStock   `json:"negative"`
}

// DetectDrift compara los contadores con el log sin modificar nada. Ambas lecturas se hacen
// con el producto bloqueado: ningún movimiento puede confirmarse entre una y otra.
func (uc *ReconciliationUseCase) DetectDrift(ctx context.Context, productID string) (*inventory.Drift, error) {
	var d inventory.Drift
	err := uc.txRunner.Run(ctx, func(repos TxRepos) error {
		p, err := repos.Products.GetForUpdate(ctx, productID)
		if err != nil {
			return err
		}
		if p == nil {
			return domain.ErrNotFound
		}
		entries, err := repos.Log.ListAllByProduct(ctx, productID)
		if err != nil {
			return err
		}
		d = inventory.DetectDrift(p, entries)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// RecalculateStock reconstruye bodega y tienda desde el log y sobrescribe los contadores.
// Es idempotente: ejecutarlo dos veces deja los mismos valores.
func (uc *ReconciliationUseCase) RecalculateStock(ctx context.Context, productID string) (*ReconcileResult, error) {
	var (
		res   ReconcileResult
		fixed *entity.Product
	)
	err := uc.txRunner.Run(ctx, func(repos TxRepos) error {
		fixed = nil
		p, err := repos.Products.GetForUpdate(ctx, productID)
		if err != nil {
			return err
		}
		if p == nil {
			return domain.ErrNotFound
		}
		entries, err := repos.Log.ListAllByProduct(ctx, productID)
		if err != nil {
			return err
		}
		replayed := inventory.Replay(entries)
		res = ReconcileResult{
			ProductID: p.ID,
			Before:    p.Counters(),
			After:     replayed,
			Drifted:   p.Counters() != replayed,
		}
		if !res.Drifted {
			return nil
		}
		p.WarehouseStock = replayed.Warehouse
		p.ShopStock = replayed.Shop
		if err := repos.Products.SaveStock(ctx, p); err != nil {
			return err
		}
		fixed = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	if res.Drifted {
		uc.log.Warn().
			Str("product_id", res.ProductID).
			Int("warehouse_before", res.Before.Warehouse).
			Int("shop_before", res.Before.Shop).
			Int("warehouse_after", res.After.Warehouse).
			Int("shop_after", res.After.Shop).
			Msg("stock recalculado desde el log")
		publishSnapshot(ctx, uc.cache, uc.log, fixed)
	}
	return &res, nil
}

// RecalculateAll revisa todos los productos en paralelo (productos distintos no requieren
// coordinación). Con fix=false solo reporta; con fix=true recalcula los que tengan drift.
// Recorre el catálogo por ID ascendente, así un alta durante el recorrido no desplaza páginas.
func (uc *ReconciliationUseCase) RecalculateAll(ctx context.Context, fix bool) (*ReconcileReport, error) {
	report := &ReconcileReport{Fixed: fix, Drifted: []inventory.Drift{}, Negative: []NegativeStock{}}
	var mu sync.Mutex

	cursor := ""
	for {
		page, err := uc.productRepo.ListAfter(ctx, cursor, reconcilePageSize)
		if err != nil {
			return nil, err
		}
		if len(page) == 0 {
			break
		}
		cursor = page[len(page)-1].ID

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(uc.concurrency)
		for _, p := range page {
			p := p
			g.Go(func() error {
				drift, counters, err := uc.checkOne(gctx, p.ID, fix)
				if err != nil {
					return err
				}

				mu.Lock()
				defer mu.Unlock()
				report.Checked++
				if drift.HasDrift() {
					report.Drifted = append(report.Drifted, drift)
				}
				if counters.Warehouse < 0 || counters.Shop < 0 {
					report.Negative = append(report.Negative, NegativeStock{ProductID: p.ID, SKU: p.SKU, Counters: counters})
				}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
		if len(page) < reconcilePageSize {
			break
		}
	}

	sort.Slice(report.Drifted, func(i, j int) bool { return report.Drifted[i].ProductID < report.Drifted[j].ProductID })
	sort.Slice(report.Negative, func(i, j int) bool { return report.Negative[i].ProductID < report.Negative[j].ProductID })

	uc.log.Info().
		Int("checked", report.Checked).
		Int("drifted", len(report.Drifted)).
		Int("negative", len(report.Negative)).
		Bool("fix", fix).
		Msg("conciliación de stock finalizada")
	return report, nil
}

// checkOne devuelve el drift observado con el producto bloqueado y los contadores que
// quedan. Con fix el drift reportado es el que encontró la propia reparación.
func (uc *ReconciliationUseCase) checkOne(ctx context.Context, productID string, fix bool) (inventory.Drift, entity.StockCounters, error) {
	if !fix {
		d, err := uc.DetectDrift(ctx, productID)
		if err != nil {
			return inventory.Drift{}, entity.StockCounters{}, err
		}
		return *d, d.Cached, nil
	}
	res, err := uc.RecalculateStock(ctx, productID)
	if err != nil {
		return inventory.Drift{}, entity.StockCounters{}, err
	}
	return inventory.Drift{ProductID: res.ProductID, Cached: res.Before, Replayed: res.After}, res.After, nil
}
