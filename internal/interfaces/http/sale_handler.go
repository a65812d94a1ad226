package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/pos-inventario/internal/application/dto"
	"github.com/jhoicas/pos-inventario/internal/application/inventory"
)

// IdempotencyHeader header opcional para evitar registrar dos veces la misma venta.
const IdempotencyHeader = "Idempotency-Key"

// SaleHandler ventas de caja.
type SaleHandler struct {
	uc *inventory.SaleUseCase
}

// NewSaleHandler construye el handler.
func NewSaleHandler(uc *inventory.SaleUseCase) *SaleHandler {
	return &SaleHandler{uc: uc}
}

// Create godoc
// @Summary      Registrar venta
// @Description  Descuenta stock de tienda por línea y calcula costo y utilidad. Todo o nada.
// @Tags         sales
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key  header  string                 false  "Clave de idempotencia"
// @Param        body             body    dto.CreateSaleRequest  true   "Venta"
// @Success      201   {object}  dto.SaleResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.InsufficientStockResponse
// @Router       /api/sales [post]
func (h *SaleHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateSaleRequest
	if ok, err := bindJSON(c, &in); !ok {
		return err
	}
	items := make([]inventory.SaleItemInput, 0, len(in.Items))
	for _, it := range in.Items {
		items = append(items, inventory.SaleItemInput{ProductID: it.ProductID, Quantity: it.Quantity, UnitPrice: it.UnitPrice})
	}
	sale, err := h.uc.CreateSale(c.UserContext(), inventory.CreateSaleInput{
		UserID:         GetUserID(c),
		PaymentMethod:  in.PaymentMethod,
		Notes:          in.Notes,
		IdempotencyKey: c.Get(IdempotencyHeader),
		Items:          items,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.ToSaleResponse(sale))
}

// GetByID godoc
// @Summary      Obtener venta
// @Tags         sales
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la venta"
// @Success      200  {object}  dto.SaleResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/sales/{id} [get]
func (h *SaleHandler) GetByID(c *fiber.Ctx) error {
	sale, err := h.uc.GetSale(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.ToSaleResponse(sale))
}

// List godoc
// @Summary      Listar ventas
// @Tags         sales
// @Security     Bearer
// @Produce      json
// @Param        limit   query  int  false  "Límite"  default(20)
// @Param        offset  query  int  false  "Offset"  default(0)
// @Success      200     {object}  dto.SaleListResponse
// @Router       /api/sales [get]
func (h *SaleHandler) List(c *fiber.Ctx) error {
	page := pageParams(c)
	sales, err := h.uc.ListSales(c.UserContext(), page.Limit, page.Offset)
	if err != nil {
		return writeError(c, err)
	}
	items := make([]dto.SaleResponse, 0, len(sales))
	for _, s := range sales {
		items = append(items, dto.ToSaleResponse(s))
	}
	return c.JSON(dto.SaleListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	})
}
