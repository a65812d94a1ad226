package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/pos-inventario/internal/application/dto"
	"github.com/jhoicas/pos-inventario/internal/application/inventory"
	"github.com/jhoicas/pos-inventario/internal/domain/entity"
)

// InventoryHandler movimientos de stock, log, costo promedio y conciliación.
type InventoryHandler struct {
	ledger    *inventory.LedgerUseCase
	reconcile *inventory.ReconciliationUseCase
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(ledger *inventory.LedgerUseCase, reconcile *inventory.ReconciliationUseCase) *InventoryHandler {
	return &InventoryHandler{ledger: ledger, reconcile: reconcile}
}

// Purchase godoc
// @Summary      Registrar compra
// @Description  Crea un lote y suma stock. Sin unit_cost se usa el costo promedio vigente.
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID del producto"
// @Param        body  body  dto.PurchaseRequest  true  "Compra"
// @Success      201   {object}  dto.ProductResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/inventory/products/{id}/purchases [post]
func (h *InventoryHandler) Purchase(c *fiber.Ctx) error {
	var in dto.PurchaseRequest
	if ok, err := bindJSON(c, &in); !ok {
		return err
	}
	p, err := h.ledger.RecordPurchase(c.UserContext(), inventory.PurchaseInput{
		ProductID:   c.Params("id"),
		Quantity:    in.Quantity,
		UnitCost:    in.UnitCost,
		Location:    entity.Location(in.Location),
		BatchNumber: in.BatchNumber,
		Supplier:    in.Supplier,
		UserID:      GetUserID(c),
		Reference:   in.Reference,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.ToProductResponse(p))
}

// Transfer godoc
// @Summary      Trasladar stock entre bodega y tienda
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID del producto"
// @Param        body  body  dto.TransferRequest  true  "Traslado"
// @Success      201   {object}  dto.ProductResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.InsufficientStockResponse
// @Router       /api/inventory/products/{id}/transfers [post]
func (h *InventoryHandler) Transfer(c *fiber.Ctx) error {
	var in dto.TransferRequest
	if ok, err := bindJSON(c, &in); !ok {
		return err
	}
	p, err := h.ledger.RecordTransfer(c.UserContext(), inventory.TransferInput{
		ProductID: c.Params("id"),
		Quantity:  in.Quantity,
		From:      entity.Location(in.FromLocation),
		To:        entity.Location(in.ToLocation),
		UserID:    GetUserID(c),
		Reference: in.Reference,
		Notes:     in.Notes,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.ToProductResponse(p))
}

// Sale godoc
// @Summary      Registrar salida por venta (solo stock)
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID del producto"
// @Param        body  body  dto.SaleRequest  true  "Venta"
// @Success      201   {object}  dto.ProductResponse
// @Failure      409   {object}  dto.InsufficientStockResponse
// @Router       /api/inventory/products/{id}/sales [post]
func (h *InventoryHandler) Sale(c *fiber.Ctx) error {
	var in dto.SaleRequest
	if ok, err := bindJSON(c, &in); !ok {
		return err
	}
	p, err := h.ledger.RecordSale(c.UserContext(), inventory.SaleInput{
		ProductID: c.Params("id"),
		Quantity:  in.Quantity,
		UserID:    GetUserID(c),
		Reference: in.Reference,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.ToProductResponse(p))
}

// Adjustment godoc
// @Summary      Ajuste manual de stock
// @Description  Cantidad con signo. Solo admin o bodeguero.
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID del producto"
// @Param        body  body  dto.AdjustmentRequest  true  "Ajuste"
// @Success      201   {object}  dto.ProductResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Router       /api/inventory/products/{id}/adjustments [post]
func (h *InventoryHandler) Adjustment(c *fiber.Ctx) error {
	var in dto.AdjustmentRequest
	if ok, err := bindJSON(c, &in); !ok {
		return err
	}
	p, err := h.ledger.RecordAdjustment(c.UserContext(), inventory.AdjustmentInput{
		ProductID: c.Params("id"),
		Quantity:  in.Quantity,
		Location:  entity.Location(in.Location),
		Reason:    in.Reason,
		UserID:    GetUserID(c),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.ToProductResponse(p))
}

// Log godoc
// @Summary      Log de transacciones del producto
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id      path   string  true   "ID del producto"
// @Param        limit   query  int     false  "Límite"  default(20)
// @Param        offset  query  int     false  "Offset"  default(0)
// @Success      200     {object}  dto.TransactionLogResponse
// @Router       /api/inventory/products/{id}/log [get]
func (h *InventoryHandler) Log(c *fiber.Ctx) error {
	page := pageParams(c)
	entries, err := h.ledger.ListLog(c.UserContext(), c.Params("id"), page.Limit, page.Offset)
	if err != nil {
		return writeError(c, err)
	}
	items := make([]dto.TransactionLogEntryResponse, 0, len(entries))
	for _, e := range entries {
		items = append(items, dto.ToTransactionLogEntryResponse(e))
	}
	return c.JSON(dto.TransactionLogResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	})
}

// Cost godoc
// @Summary      Costo unitario promedio ponderado
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del producto"
// @Success      200  {object}  dto.AverageCostResponse
// @Router       /api/inventory/products/{id}/cost [get]
func (h *InventoryHandler) Cost(c *fiber.Ctx) error {
	id := c.Params("id")
	avg, err := h.ledger.AverageUnitCost(c.UserContext(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.AverageCostResponse{ProductID: id, AverageUnitCost: avg})
}

// Drift godoc
// @Summary      Comparar contadores contra el log
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del producto"
// @Success      200  {object}  inventory.Drift
// @Router       /api/inventory/products/{id}/drift [get]
func (h *InventoryHandler) Drift(c *fiber.Ctx) error {
	d, err := h.reconcile.DetectDrift(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{
		"product_id": d.ProductID,
		"cached":     d.Cached,
		"replayed":   d.Replayed,
		"drifted":    d.HasDrift(),
	})
}

// Reconcile godoc
// @Summary      Recalcular stock desde el log
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del producto"
// @Success      200  {object}  inventory.ReconcileResult
// @Router       /api/inventory/products/{id}/reconcile [post]
func (h *InventoryHandler) Reconcile(c *fiber.Ctx) error {
	res, err := h.reconcile.RecalculateStock(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(res)
}

// ReconcileAll godoc
// @Summary      Conciliar todos los productos
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        fix  query  bool  false  "Reparar el drift encontrado"
// @Success      200  {object}  inventory.ReconcileReport
// @Router       /api/inventory/reconcile [post]
func (h *InventoryHandler) ReconcileAll(c *fiber.Ctx) error {
	report, err := h.reconcile.RecalculateAll(c.UserContext(), c.QueryBool("fix", false))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(report)
}
