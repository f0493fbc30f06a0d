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
	"github.com/jhoicas/sistema-inventario/docs"
	"github.com/jhoicas/sistema-inventario/internal/application/auth"
	"github.com/jhoicas/sistema-inventario/internal/application/inventory"
	"github.com/jhoicas/sistema-inventario/internal/domain/repository"
	"github.com/jhoicas/sistema-inventario/internal/infrastructure/export"
	"github.com/jhoicas/sistema-inventario/internal/infrastructure/jsonstore"
	"github.com/jhoicas/sistema-inventario/internal/infrastructure/observability/prometrics"
	infrapdf "github.com/jhoicas/sistema-inventario/internal/infrastructure/pdf"
	"github.com/jhoicas/sistema-inventario/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/sistema-inventario/internal/interfaces/http"
	"github.com/jhoicas/sistema-inventario/pkg/config"
	"github.com/jhoicas/sistema-inventario/pkg/logger"
)

// storage repositorios y TxRunner del proveedor elegido.
type storage struct {
	tx       inventory.TxRunner
	products repository.ProductRepository
	movs     repository.MovementRepository
	users    repository.UserRepository
	close    func()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("storage", cfg.Storage.Driver).
		Msg("iniciando aplicación")

	if cfg.JWT.Secret == "" {
		log.Fatal().Msg("JWT_SECRET es requerido")
	}

	ctx := context.Background()
	st, err := openStorage(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("abrir almacenamiento")
	}
	defer st.close()

	authUC := auth.NewAuthUseCase(st.users, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	}, log)
	created, err := authUC.EnsureDefaultAdmin(ctx, cfg.App.AdminDefaultPassword)
	if err != nil {
		log.Fatal().Err(err).Msg("crear administrador por defecto")
	}
	if created {
		log.Warn().Str("username", auth.DefaultAdminUsername).Msg("no había usuarios: administrador por defecto creado, cambie su contraseña")
	}

	metrics := prometrics.New("inventario")
	catalogUC := inventory.NewCatalogUseCase(st.tx, st.products, log)
	reportUC := inventory.NewReportUseCase(catalogUC, cfg.Report.LowStockThreshold,
		export.CSVWriter{},
		export.TextReport{},
		export.XLSXWriter{},
		infrapdf.NewMarotoPDFGenerator(cfg.App.Name),
	)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
		// los productos eliminados se consultan por nombre en /history
		UnescapePath: true,
	})
	app.Use(recover.New())

	// Swagger UI: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath:    "/",
		FileContent: []byte(docs.SwaggerInfo.ReadDoc()),
		Path:        "docs",
		Title:       docs.SwaggerInfo.Title,
	}))

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:    authUC,
		UserUC:    auth.NewUserUseCase(st.users, log),
		CatalogUC: catalogUC,
		Engine:    inventory.NewStockEngine(st.tx, prometrics.NewStockMetrics(metrics), log),
		Ledger:    inventory.NewLedgerUseCase(st.movs, log),
		ReportUC:  reportUC,
		Metrics:   metrics,
		JWTSecret: cfg.JWT.Secret,
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

func openStorage(ctx context.Context, cfg *config.Config, log *logger.Logger) (*storage, error) {
	if cfg.Storage.Driver == config.StoragePostgres {
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			return nil, err
		}
		if err := postgres.EnsureSchema(ctx, pool); err != nil {
			pool.Close()
			return nil, err
		}
		return &storage{
			tx:       postgres.NewTxRunner(pool),
			products: postgres.NewProductRepository(pool),
			movs:     postgres.NewMovementRepository(pool),
			users:    postgres.NewUserRepository(pool),
			close:    pool.Close,
		}, nil
	}

	store, err := jsonstore.Open(cfg.Storage.DataDir, log)
	if err != nil {
		return nil, err
	}
	return &storage{
		tx:       store,
		products: store.Products(),
		movs:     store.Movements(),
		users:    store.Users(),
		close:    func() {},
	}, nil
}
