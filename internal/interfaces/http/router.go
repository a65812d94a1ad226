package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/pos-inventario/internal/application/inventory"
	"github.com/jhoicas/pos-inventario/internal/application/usecase"
	"github.com/jhoicas/pos-inventario/internal/domain/entity"
	"github.com/jhoicas/pos-inventario/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	ProductUC   *usecase.ProductUseCase
	Ledger      *inventory.LedgerUseCase
	Reconcile   *inventory.ReconciliationUseCase
	Sales       *inventory.SaleUseCase
	JWTSecret   string
	Logger      *logger.Logger
	ServiceName string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	log := deps.Logger
	if log == nil {
		log = logger.Nop()
	}
	app.Use(RequestLogger(log.Component("http")))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": deps.ServiceName})
	})

	// Todas las rutas /api requieren Bearer Token
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret))

	products := api.Group("/products")
	productHandler := NewProductHandler(deps.ProductUC, deps.Ledger)
	products.Post("/", productHandler.Create)
	products.Get("/", productHandler.List)
	products.Get("/:id", productHandler.GetByID)
	products.Put("/:id", productHandler.Update)
	products.Delete("/:id", productHandler.Delete)
	products.Get("/:id/stock", productHandler.Stock)

	inv := api.Group("/inventory")
	inventoryHandler := NewInventoryHandler(deps.Ledger, deps.Reconcile)
	inv.Post("/products/:id/purchases", inventoryHandler.Purchase)
	inv.Post("/products/:id/transfers", inventoryHandler.Transfer)
	inv.Post("/products/:id/sales", inventoryHandler.Sale)
	inv.Post("/products/:id/adjustments", RequireRole(entity.RoleAdmin, entity.RoleBodeguero), inventoryHandler.Adjustment)
	inv.Get("/products/:id/log", inventoryHandler.Log)
	inv.Get("/products/:id/cost", inventoryHandler.Cost)
	inv.Get("/products/:id/drift", inventoryHandler.Drift)
	inv.Post("/products/:id/reconcile", RequireRole(entity.RoleAdmin), inventoryHandler.Reconcile)
	inv.Post("/reconcile", RequireRole(entity.RoleAdmin), inventoryHandler.ReconcileAll)

	sales := api.Group("/sales")
	saleHandler := NewSaleHandler(deps.Sales)
	sales.Post("/", saleHandler.Create)
	sales.Get("/", saleHandler.List)
	sales.Get("/:id", saleHandler.GetByID)
}

// RequestLogger registra cada petición con zerolog; 5xx a nivel error.
func RequestLogger(log *logger.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		status := c.Response().StatusCode()
		ev := log.Debug()
		if status >= fiber.StatusInternalServerError || err != nil {
			ev = log.Error().Err(err)
		}
		ev.Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("user_id", GetUserID(c)).
			Msg("http request")
		return err
	}
}
