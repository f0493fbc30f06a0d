package cli

import (
	"context"
	"os"
	"path/filepath"
)

func (a *App) reportsMenu(ctx context.Context) error {
	for {
		a.println("\n=== REPORTES ===")
		a.println("1. Alertas de stock bajo")
		a.println("2. Valor total del inventario")
		a.println("3. Exportar reporte (.txt)")
		a.println("4. Exportar reporte (.csv)")
		a.println("0. Volver al menú principal")

		opt, err := a.ask("\nOpción: ")
		if err != nil {
			return err
		}
		switch opt {
		case "1":
			err = a.lowStock(ctx)
		case "2":
			err = a.totalValue(ctx)
		case "3":
			err = a.export(ctx, "txt")
		case "4":
			err = a.export(ctx, "csv")
		case "0":
			return nil
		default:
			a.println("Opción no válida.")
		}
		if err != nil {
			return err
		}
	}
}

func (a *App) lowStock(ctx context.Context) error {
	list, err := a.deps.Reports.LowStock(ctx)
	if err != nil {
		return a.report(err)
	}
	a.printf("\n--- STOCK BAJO (menos de %d unidades) ---\n", a.deps.Reports.Threshold())
	if len(list) == 0 {
		a.println("Todos los productos tienen stock suficiente.")
		return nil
	}
	for _, p := range list {
		a.printf("[!] %-10s %-20s quedan %d\n", p.SKU, p.Name, p.Quantity)
	}
	return nil
}

func (a *App) totalValue(ctx context.Context) error {
	s, err := a.deps.Reports.Summary(ctx)
	if err != nil {
		return a.report(err)
	}
	a.println("\n--- VALOR DEL INVENTARIO ---")
	a.printf("Productos:      %d\n", s.ProductCount)
	a.printf("Unidades:       %d\n", s.TotalUnits)
	a.printf("Valor total:    $%s\n", s.TotalValue.StringFixed(2))
	return nil
}

func (a *App) export(ctx context.Context, format string) error {
	data, filename, _, err := a.deps.Reports.Export(ctx, a.actor, format)
	if err != nil {
		return a.report(err)
	}
	path := filepath.Join(a.deps.DataDir, filename)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		a.log.Error().Err(err).Str("path", path).Msg("exportar reporte")
		a.printf("¡Error! No se pudo guardar el reporte: %v\n", err)
		return nil
	}
	a.log.Info().Str("actor", a.actor.Username).Str("path", path).Msg("reporte exportado")
	a.printf("Reporte guardado en %s\n", path)
	return nil
}
