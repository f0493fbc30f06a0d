package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/sistema-inventario/internal/application/dto"
	"github.com/jhoicas/sistema-inventario/internal/application/inventory"
	"github.com/jhoicas/sistema-inventario/internal/domain/entity"
)

// ProductHandler maneja las peticiones HTTP del catálogo (protegido).
type ProductHandler struct {
	uc        *inventory.CatalogUseCase
	threshold int
}

// NewProductHandler construye el handler. threshold se usa para marcar stock_bajo.
func NewProductHandler(uc *inventory.CatalogUseCase, threshold int) *ProductHandler {
	return &ProductHandler{uc: uc, threshold: threshold}
}

// Create godoc
// @Summary      Crear producto
// @Tags         products
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateProductRequest  true  "Datos del producto"
// @Success      201   {object}  dto.ProductResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/products [post]
func (h *ProductHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateProductRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	p, err := h.uc.Create(c.UserContext(), actorFrom(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewProductResponse(p, h.threshold))
}

// Get godoc
// @Summary      Obtener producto por SKU
// @Tags         products
// @Security     Bearer
// @Produce      json
// @Param        sku  path  string  true  "SKU del producto"
// @Success      200  {object}  dto.ProductResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/products/{sku} [get]
func (h *ProductHandler) Get(c *fiber.Ctx) error {
	p, err := h.uc.Get(c.UserContext(), c.Params("sku"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.NewProductResponse(p, h.threshold))
}

// List godoc
// @Summary      Listar o buscar productos
// @Description  Sin q devuelve todo el catálogo. field limita la búsqueda (nombre, categoria, sku; separados por coma).
// @Tags         products
// @Security     Bearer
// @Produce      json
// @Param        q      query  string  false  "Texto a buscar (sin distinguir mayúsculas ni tildes)"
// @Param        field  query  string  false  "Campos: nombre,categoria,sku"
// @Success      200    {object}  dto.ListResponse[dto.ProductResponse]
// @Failure      400    {object}  dto.ErrorResponse
// @Router       /api/products [get]
func (h *ProductHandler) List(c *fiber.Ctx) error {
	var fields []inventory.SearchField
	if raw := c.Query("field"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			f, ok := inventory.ParseSearchField(part)
			if !ok {
				return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "campo de búsqueda inválido: " + part})
			}
			fields = append(fields, f)
		}
	}
	seq, err := h.uc.Find(c.UserContext(), c.Query("q"), fields...)
	if err != nil {
		return respondError(c, err)
	}
	var list []*entity.Product
	for p := range seq {
		list = append(list, p)
	}
	return c.JSON(dto.NewListResponse(dto.NewProductResponses(list, h.threshold)))
}

// Update godoc
// @Summary      Editar producto
// @Description  Edición parcial de nombre, categoría y precio. La cantidad solo cambia con movimientos.
// @Tags         products
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        sku   path  string  true  "SKU del producto"
// @Param        body  body  dto.UpdateProductRequest  true  "Datos a actualizar"
// @Success      200   {object}  dto.ProductResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/products/{sku} [put]
func (h *ProductHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateProductRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	p, err := h.uc.Update(c.UserContext(), actorFrom(c), c.Params("sku"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.NewProductResponse(p, h.threshold))
}

// Delete godoc
// @Summary      Eliminar producto
// @Description  El historial del producto se conserva.
// @Tags         products
// @Security     Bearer
// @Produce      json
// @Param        sku  path  string  true  "SKU del producto"
// @Success      200  {object}  dto.ProductResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/products/{sku} [delete]
func (h *ProductHandler) Delete(c *fiber.Ctx) error {
	p, err := h.uc.Remove(c.UserContext(), actorFrom(c), c.Params("sku"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.NewProductResponse(p, h.threshold))
}
