package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/sistema-inventario/internal/application/dto"
	"github.com/jhoicas/sistema-inventario/internal/application/inventory"
)

// ReportHandler reportes de solo lectura (protegido).
type ReportHandler struct {
	uc *inventory.ReportUseCase
}

// NewReportHandler construye el handler.
func NewReportHandler(uc *inventory.ReportUseCase) *ReportHandler {
	return &ReportHandler{uc: uc}
}

// LowStock godoc
// @Summary      Alertas de stock bajo
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.ListResponse[dto.ProductResponse]
// @Router       /api/reports/low-stock [get]
func (h *ReportHandler) LowStock(c *fiber.Ctx) error {
	list, err := h.uc.LowStock(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.NewListResponse(dto.NewProductResponses(list, h.uc.Threshold())))
}

// Summary godoc
// @Summary      Valor total del inventario
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.InventorySummary
// @Router       /api/reports/summary [get]
func (h *ReportHandler) Summary(c *fiber.Ctx) error {
	s, err := h.uc.Summary(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(s)
}

// Export godoc
// @Summary      Exportar inventario
// @Tags         reports
// @Security     Bearer
// @Produce      octet-stream
// @Param        format  query  string  false  "csv, txt, xlsx o pdf"  default(txt)
// @Success      200     {file}    file
// @Failure      400     {object}  dto.ErrorResponse
// @Router       /api/reports/export [get]
func (h *ReportHandler) Export(c *fiber.Ctx) error {
	data, filename, contentType, err := h.uc.Export(c.UserContext(), actorFrom(c), c.Query("format", "txt"))
	if err != nil {
		return respondError(c, err)
	}
	c.Attachment(filename)
	c.Set(fiber.HeaderContentType, contentType)
	return c.Send(data)
}
