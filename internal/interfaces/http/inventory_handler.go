package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/sistema-inventario/internal/application/dto"
	"github.com/jhoicas/sistema-inventario/internal/application/inventory"
	"github.com/jhoicas/sistema-inventario/internal/domain/entity"
	"github.com/jhoicas/sistema-inventario/internal/domain/repository"
	"github.com/jhoicas/sistema-inventario/internal/infrastructure/export"
)

// InventoryHandler movimientos de stock e historial (protegido).
type InventoryHandler struct {
	engine *inventory.StockEngine
	ledger *inventory.LedgerUseCase
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(engine *inventory.StockEngine, ledger *inventory.LedgerUseCase) *InventoryHandler {
	return &InventoryHandler{engine: engine, ledger: ledger}
}

// ApplyMovement godoc
// @Summary      Registrar entrada o salida de stock
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        sku   path  string  true  "SKU del producto"
// @Param        body  body  dto.StockMovementRequest  true  "tipo (ENTRADA|SALIDA), cantidad"
// @Success      201   {object}  dto.StockMovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/products/{sku}/movements [post]
func (h *InventoryHandler) ApplyMovement(c *fiber.Ctx) error {
	var in dto.StockMovementRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	kind, ok := entity.ParseMovementKind(in.Type)
	if !ok || !kind.IsStockChange() {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "tipo debe ser ENTRADA o SALIDA"})
	}
	qty, err := h.engine.ApplyMovement(c.UserContext(), actorFrom(c), c.Params("sku"), kind, in.Quantity)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.StockMovementResponse{
		SKU:         c.Params("sku"),
		Type:        string(kind),
		Quantity:    in.Quantity,
		NewQuantity: qty,
	})
}

// History godoc
// @Summary      Historial de un producto
// @Description  Busca por SKU o, si el producto fue eliminado, por su nombre. format=csv descarga el historial.
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        sku     path   string  true   "SKU o nombre del producto eliminado"
// @Param        format  query  string  false  "json (por defecto) o csv"
// @Success      200     {object}  dto.ListResponse[dto.MovementResponse]
// @Router       /api/products/{sku}/history [get]
func (h *InventoryHandler) History(c *fiber.Ctx) error {
	seq, err := h.ledger.HistoryFor(c.UserContext(), c.Params("sku"))
	if err != nil {
		return respondError(c, err)
	}
	if c.Query("format") == "csv" {
		data, err := export.HistoryCSV(seq)
		if err != nil {
			return respondError(c, err)
		}
		c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
		c.Attachment("historial_" + c.Params("sku") + ".csv")
		return c.Send(data)
	}
	var out []dto.MovementResponse
	for m := range seq {
		out = append(out, dto.NewMovementResponse(m))
	}
	return c.JSON(dto.NewListResponse(out))
}

// ListMovements godoc
// @Summary      Historial completo
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        kind   query  string  false  "Tipo de movimiento"
// @Param        actor  query  string  false  "Usuario"
// @Success      200    {object}  dto.ListResponse[dto.MovementResponse]
// @Failure      400    {object}  dto.ErrorResponse
// @Router       /api/movements [get]
func (h *InventoryHandler) ListMovements(c *fiber.Ctx) error {
	filter := repository.MovementFilter{Actor: c.Query("actor")}
	if raw := c.Query("kind"); raw != "" {
		kind, ok := entity.ParseMovementKind(raw)
		if !ok {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "tipo de movimiento inválido"})
		}
		filter.Kind = kind
	}
	list, err := h.ledger.List(c.UserContext(), filter)
	if err != nil {
		return respondError(c, err)
	}
	out := make([]dto.MovementResponse, 0, len(list))
	for _, m := range list {
		out = append(out, dto.NewMovementResponse(m))
	}
	return c.JSON(dto.NewListResponse(out))
}

// Purge godoc
// @Summary      Purgar historial
// @Description  Borra todos los movimientos. Solo admin. Irreversible; no toca el catálogo.
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.PurgeResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/movements [delete]
func (h *InventoryHandler) Purge(c *fiber.Ctx) error {
	n, err := h.ledger.PurgeAll(c.UserContext(), actorFrom(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.PurgeResponse{Deleted: n})
}
