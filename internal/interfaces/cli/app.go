// Package cli implementa el modo terminal: login y menús numerados sobre un io.Reader/io.Writer.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/jhoicas/sistema-inventario/internal/application/auth"
	"github.com/jhoicas/sistema-inventario/internal/application/inventory"
	"github.com/jhoicas/sistema-inventario/internal/domain"
	"github.com/jhoicas/sistema-inventario/internal/domain/entity"
	"github.com/jhoicas/sistema-inventario/pkg/logger"
)

// MaxLoginAttempts intentos de login antes de abandonar.
const MaxLoginAttempts = 3

// ErrLoginFailed se devuelve cuando se agotan los intentos de login.
var ErrLoginFailed = errors.New("demasiados intentos de login fallidos")

// Deps casos de uso que consume la terminal.
type Deps struct {
	Auth    *auth.AuthUseCase
	Users   *auth.UserUseCase
	Catalog *inventory.CatalogUseCase
	Engine  *inventory.StockEngine
	Ledger  *inventory.LedgerUseCase
	Reports *inventory.ReportUseCase
	DataDir string // carpeta donde se guardan los reportes exportados
}

// App sesión interactiva de un usuario.
type App struct {
	deps  Deps
	in    *bufio.Scanner
	out   io.Writer
	log   *logger.Logger
	actor entity.Actor
}

// New construye la aplicación de terminal.
func New(deps Deps, in io.Reader, out io.Writer, log *logger.Logger) *App {
	return &App{deps: deps, in: bufio.NewScanner(in), out: out, log: log.Component("cli")}
}

// Run pide credenciales y muestra el menú principal hasta que el usuario sale.
// El fin de la entrada equivale a salir.
func (a *App) Run(ctx context.Context) error {
	err := a.run(ctx)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

func (a *App) run(ctx context.Context) error {
	if err := a.login(ctx); err != nil {
		return err
	}
	for {
		a.println("\n=== SISTEMA DE INVENTARIO ===")
		a.printf("Usuario: %s (%s)\n", a.actor.Username, a.actor.Role)
		a.println("1. Inventario")
		a.println("2. Reportes")
		if a.actor.IsAdmin() {
			a.println("3. Usuarios")
			a.println("4. Purgar historial")
		}
		a.println("0. Salir")

		opt, err := a.ask("\nOpción: ")
		if err != nil {
			return err
		}
		switch {
		case opt == "1":
			err = a.inventoryMenu(ctx)
		case opt == "2":
			err = a.reportsMenu(ctx)
		case opt == "3" && a.actor.IsAdmin():
			err = a.usersMenu(ctx)
		case opt == "4" && a.actor.IsAdmin():
			err = a.purge(ctx)
		case opt == "0":
			a.println("¡Hasta luego!")
			return nil
		default:
			a.println("Opción no válida.")
		}
		if err != nil {
			return err
		}
	}
}

func (a *App) login(ctx context.Context) error {
	a.println("=== INICIO DE SESIÓN ===")
	for i := 0; i < MaxLoginAttempts; i++ {
		username, err := a.ask("Usuario: ")
		if err != nil {
			return err
		}
		password, err := a.ask("Contraseña: ")
		if err != nil {
			return err
		}
		user, err := a.deps.Auth.Authenticate(ctx, username, password)
		if err == nil {
			a.actor = entity.ActorOf(user)
			a.log.Info().Str("actor", a.actor.Username).Msg("inicio de sesión")
			a.printf("¡Bienvenido, %s!\n", user.Username)
			return nil
		}
		if !errors.Is(err, domain.ErrUnauthorized) {
			return err
		}
		a.log.Warn().Str("username", username).Msg("login fallido")
		a.println("Usuario o contraseña incorrectos.")
	}
	return ErrLoginFailed
}

func (a *App) purge(ctx context.Context) error {
	ok, err := a.confirm("¿Borrar TODO el historial de movimientos? Esta acción no se puede deshacer")
	if err != nil || !ok {
		return err
	}
	n, err := a.deps.Ledger.PurgeAll(ctx, a.actor)
	if err != nil {
		return a.report(err)
	}
	a.printf("Historial purgado: %d movimientos eliminados.\n", n)
	return nil
}

// ── entrada / salida ─────────────────────────────────────────────────────────

// ask muestra label y devuelve la línea leída sin espacios. io.EOF al terminar la entrada.
func (a *App) ask(label string) (string, error) {
	a.printf("%s", label)
	if !a.in.Scan() {
		if err := a.in.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return strings.TrimSpace(a.in.Text()), nil
}

// confirm pregunta (s/n); cualquier respuesta distinta de "s" cancela.
func (a *App) confirm(question string) (bool, error) {
	ans, err := a.ask(question + " (s/n): ")
	if err != nil {
		return false, err
	}
	if strings.EqualFold(ans, "s") {
		return true, nil
	}
	a.println("Operación cancelada.")
	return false, nil
}

// report muestra un error de dominio y sigue en el menú. Los errores de persistencia se propagan.
func (a *App) report(err error) error {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		a.println("¡Error! Datos inválidos:")
		for _, f := range verr.Fields {
			a.printf("  - %s: %s\n", f.Field, f.Message)
		}
	case errors.Is(err, domain.ErrDuplicateSKU):
		a.println("¡Error! Ya existe un producto con ese SKU.")
	case errors.Is(err, domain.ErrNotFound):
		a.println("¡Error! No encontrado.")
	case errors.Is(err, domain.ErrInsufficientStock):
		a.println("¡Error! Stock insuficiente.")
	case errors.Is(err, domain.ErrInvalidQuantity):
		a.println("¡Error! La cantidad debe ser mayor que cero.")
	case errors.Is(err, domain.ErrConflict):
		a.println("¡Error! El producto cambió mientras se editaba, intente de nuevo.")
	case errors.Is(err, domain.ErrDuplicateUser):
		a.println("¡Error! Ese usuario ya existe.")
	case errors.Is(err, domain.ErrSelfDelete):
		a.println("¡Error! No puede eliminar su propio usuario.")
	case errors.Is(err, domain.ErrForbidden):
		a.println("¡Error! Solo un administrador puede hacer esto.")
	default:
		a.log.Error().Err(err).Str("actor", a.actor.Username).Msg("operación fallida")
		a.printf("¡Error! %v\n", err)
		if errors.Is(err, domain.ErrPersistence) {
			return err
		}
	}
	return nil
}

func (a *App) println(s string) { fmt.Fprintln(a.out, s) }

func (a *App) printf(format string, args ...any) { fmt.Fprintf(a.out, format, args...) }
