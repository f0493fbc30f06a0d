package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/jhoicas/sistema-inventario/internal/application/auth"
	"github.com/jhoicas/sistema-inventario/internal/application/inventory"
	"github.com/jhoicas/sistema-inventario/internal/domain/entity"
	"github.com/jhoicas/sistema-inventario/internal/infrastructure/observability/prometrics"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC    *auth.AuthUseCase
	UserUC    *auth.UserUseCase
	CatalogUC *inventory.CatalogUseCase
	Engine    *inventory.StockEngine
	Ledger    *inventory.LedgerUseCase
	ReportUC  *inventory.ReportUseCase
	Metrics   *prometrics.Registry // opcional
	JWTSecret string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	if deps.Metrics != nil {
		app.Use(prometrics.FiberMiddleware(deps.Metrics))
		app.Get("/metrics", adaptor.HTTPHandler(deps.Metrics.Handler()))
	}
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api")

	// Auth (público)
	authHandler := NewAuthHandler(deps.AuthUC)
	api.Post("/auth/login", authHandler.Login)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("", AuthMiddleware(deps.JWTSecret))
	adminOnly := RequireRole(entity.RoleAdmin)

	products := protected.Group("/products")
	productHandler := NewProductHandler(deps.CatalogUC, deps.ReportUC.Threshold())
	inventoryHandler := NewInventoryHandler(deps.Engine, deps.Ledger)
	products.Get("/", productHandler.List)
	products.Post("/", productHandler.Create)
	products.Get("/:sku", productHandler.Get)
	products.Put("/:sku", productHandler.Update)
	products.Delete("/:sku", productHandler.Delete)
	products.Post("/:sku/movements", inventoryHandler.ApplyMovement)
	products.Get("/:sku/history", inventoryHandler.History)

	movements := protected.Group("/movements")
	movements.Get("/", inventoryHandler.ListMovements)
	movements.Delete("/", adminOnly, inventoryHandler.Purge)

	reports := protected.Group("/reports")
	reportHandler := NewReportHandler(deps.ReportUC)
	reports.Get("/low-stock", reportHandler.LowStock)
	reports.Get("/summary", reportHandler.Summary)
	reports.Get("/export", reportHandler.Export)

	users := protected.Group("/users", adminOnly)
	userHandler := NewUserHandler(deps.UserUC)
	users.Get("/", userHandler.List)
	users.Post("/", userHandler.Create)
	users.Put("/:username/password", userHandler.ChangePassword)
	users.Delete("/:username", userHandler.Delete)
}
