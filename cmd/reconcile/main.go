// Comando reconcile: compara los contadores de stock de todos los productos contra el log
// de transacciones y, con -fix, los recalcula. Imprime el reporte en JSON.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/jhoicas/pos-inventario/internal/application/inventory"
	"github.com/jhoicas/pos-inventario/internal/infrastructure/cache"
	"github.com/jhoicas/pos-inventario/internal/infrastructure/postgres"
	"github.com/jhoicas/pos-inventario/pkg/config"
	"github.com/jhoicas/pos-inventario/pkg/logger"
)

func main() {
	fix := flag.Bool("fix", false, "recalcular los productos con drift")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel, Service: "reconcile"})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	var stockCache inventory.StockCache
	if cfg.Redis.Enabled() {
		rdb, err := cache.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a Redis")
		}
		defer rdb.Close()
		stockCache = cache.NewRedisStockCache(rdb, cfg.Redis.StockTTL)
	}

	uc := inventory.NewReconciliationUseCase(postgres.NewTxRunner(pool), postgres.NewProductRepository(pool),
		stockCache, log, cfg.Inventory.ReconcileConcurrency)

	report, err := uc.RecalculateAll(ctx, *fix)
	if err != nil {
		log.Fatal().Err(err).Msg("conciliación")
	}
	log.Info().
		Int("checked", report.Checked).
		Int("drifted", len(report.Drifted)).
		Int("negative", len(report.Negative)).
		Bool("fix", report.Fixed).
		Msg("conciliación terminada")

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		log.Fatal().Err(err).Msg("escribir reporte")
	}
	if len(report.Drifted) > 0 && !report.Fixed {
		os.Exit(1)
	}
}
