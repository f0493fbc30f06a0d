package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/jhoicas/sistema-inventario/internal/application/auth"
	"github.com/jhoicas/sistema-inventario/internal/application/inventory"
	"github.com/jhoicas/sistema-inventario/internal/infrastructure/export"
	"github.com/jhoicas/sistema-inventario/internal/infrastructure/jsonstore"
	"github.com/jhoicas/sistema-inventario/internal/interfaces/cli"
	"github.com/jhoicas/sistema-inventario/pkg/config"
	"github.com/jhoicas/sistema-inventario/pkg/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run() error {
	flags := pflag.NewFlagSet("inventario", pflag.ContinueOnError)
	flags.String("data-dir", "data", "carpeta de los archivos JSON y de los reportes")
	flags.String("env", "production", "development muestra el log en consola")
	flags.String("log-level", "info", "nivel de log (debug, info, warn, error)")
	if err := flags.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	// Prioridad: flag explícito, luego variable de entorno, luego el default del flag.
	v := viper.New()
	v.AutomaticEnv()
	for key, name := range map[string]string{"DATA_DIR": "data-dir", "APP_ENV": "env", "LOG_LEVEL": "log-level"} {
		f := flags.Lookup(name)
		if _, inEnv := os.LookupEnv(key); f.Changed || !inEnv {
			v.Set(key, f.Value.String())
		}
	}
	cfg, err := config.FromViper(v)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(cfg.Storage.DataDir, 0o755); err != nil {
		return fmt.Errorf("crear carpeta de datos: %w", err)
	}
	audit, err := os.OpenFile(cfg.Storage.AuditLogPath(), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("abrir historial de acciones: %w", err)
	}
	defer audit.Close()

	// La terminal es del menú: el log completo va al historial y solo en development también a stderr.
	var out io.Writer = io.Discard
	if cfg.App.Env == "development" {
		out = os.Stderr
	}
	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
		Out:   out,
		Audit: audit,
	})

	store, err := jsonstore.Open(cfg.Storage.DataDir, log)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	authUC := auth.NewAuthUseCase(store.Users(), auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	}, log)
	created, err := authUC.EnsureDefaultAdmin(ctx, cfg.App.AdminDefaultPassword)
	if err != nil {
		return err
	}
	if created {
		fmt.Println("--- Configuración inicial ---")
		fmt.Printf("No se encontraron usuarios. Administrador creado: %s\n", auth.DefaultAdminUsername)
	}

	catalog := inventory.NewCatalogUseCase(store, store.Products(), log)
	app := cli.New(cli.Deps{
		Auth:    authUC,
		Users:   auth.NewUserUseCase(store.Users(), log),
		Catalog: catalog,
		Engine:  inventory.NewStockEngine(store, nil, log),
		Ledger:  inventory.NewLedgerUseCase(store.Movements(), log),
		Reports: inventory.NewReportUseCase(catalog, cfg.Report.LowStockThreshold, export.TextReport{}, export.CSVWriter{}),
		DataDir: cfg.Storage.DataDir,
	}, os.Stdin, os.Stdout, log)
	return app.Run(ctx)
}
