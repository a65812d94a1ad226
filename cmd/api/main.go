package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jhoicas/pos-inventario/internal/application/inventory"
	"github.com/jhoicas/pos-inventario/internal/application/usecase"
	"github.com/jhoicas/pos-inventario/internal/infrastructure/cache"
	"github.com/jhoicas/pos-inventario/internal/infrastructure/memory"
	"github.com/jhoicas/pos-inventario/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/pos-inventario/internal/interfaces/http"
	"github.com/jhoicas/pos-inventario/pkg/config"
	"github.com/jhoicas/pos-inventario/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("storage", cfg.App.StorageDriver).
		Msg("iniciando aplicación")

	ctx := context.Background()
	st, closeStorage := openStorage(ctx, cfg, log)
	defer closeStorage()

	var (
		stockCache inventory.StockCache
		guard      inventory.IdempotencyGuard = memory.NewIdempotencyGuard(cfg.Redis.IdempotencyTTL)
	)
	if cfg.Redis.Enabled() {
		rdb, err := cache.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a Redis")
		}
		defer rdb.Close()
		stockCache = cache.NewRedisStockCache(rdb, cfg.Redis.StockTTL)
		guard = cache.NewRedisIdempotencyGuard(rdb, cfg.Redis.IdempotencyTTL)
		log.Info().Str("addr", cfg.Redis.Addr).Msg("caché de stock en Redis habilitada")
	} else if cfg.App.StorageDriver == config.StorageDriverMemory {
		// Un solo proceso: la caché local no puede quedar desalineada con otra instancia
		stockCache = memory.NewStockCache()
	}

	ledger := inventory.NewLedgerUseCase(st.txRunner, st.repos.Products, st.repos.Log, stockCache, log)
	reconcileUC := inventory.NewReconciliationUseCase(st.txRunner, st.repos.Products, stockCache, log, cfg.Inventory.ReconcileConcurrency)
	saleUC := inventory.NewSaleUseCase(st.txRunner, st.repos.Sales, guard, stockCache, log)
	productUC := usecase.NewProductUseCase(st.txRunner, st.repos.Products)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "POS Inventario API",
	}))

	httpRouter.Router(app, httpRouter.RouterDeps{
		ProductUC:   productUC,
		Ledger:      ledger,
		Reconcile:   reconcileUC,
		Sales:       saleUC,
		JWTSecret:   cfg.JWT.Secret,
		Logger:      log,
		ServiceName: cfg.App.Name,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}

type storage struct {
	txRunner inventory.TxRunner
	repos    inventory.TxRepos
}

// openStorage abre PostgreSQL (aplicando migraciones si DB_MIGRATE=true) o el store en memoria.
func openStorage(ctx context.Context, cfg *config.Config, log *logger.Logger) (storage, func()) {
	if cfg.App.StorageDriver == config.StorageDriverMemory {
		log.Warn().Msg("almacenamiento en memoria: los datos se pierden al reiniciar")
		store := memory.NewStore()
		return storage{txRunner: store, repos: store.Repos()}, func() {}
	}

	if cfg.DB.Migrate {
		if err := postgres.Migrate(cfg.DB.ConnectionString()); err != nil {
			log.Fatal().Err(err).Msg("migraciones de base de datos")
		}
		log.Info().Msg("migraciones aplicadas")
	}
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	return storage{txRunner: postgres.NewTxRunner(pool), repos: postgres.ReposFor(pool)}, pool.Close
}
