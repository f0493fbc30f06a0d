package cli

import (
	"context"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/sistema-inventario/internal/application/dto"
	"github.com/jhoicas/sistema-inventario/internal/application/inventory"
	"github.com/jhoicas/sistema-inventario/internal/domain/entity"
)

func (a *App) inventoryMenu(ctx context.Context) error {
	for {
		a.println("\n=== GESTIÓN DE INVENTARIO ===")
		a.println("1. Ver productos")
		a.println("2. Buscar producto")
		a.println("3. Agregar producto")
		a.println("4. Editar producto")
		a.println("5. Eliminar producto")
		a.println("6. Registrar entrada/salida")
		a.println("7. Historial de un producto")
		a.println("0. Volver al menú principal")

		opt, err := a.ask("\nOpción: ")
		if err != nil {
			return err
		}
		switch opt {
		case "1":
			err = a.listProducts(ctx)
		case "2":
			err = a.searchProducts(ctx)
		case "3":
			err = a.addProduct(ctx)
		case "4":
			err = a.editProduct(ctx)
		case "5":
			err = a.deleteProduct(ctx)
		case "6":
			err = a.moveStock(ctx)
		case "7":
			err = a.productHistory(ctx)
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

func (a *App) listProducts(ctx context.Context) error {
	list, err := a.deps.Catalog.List(ctx)
	if err != nil {
		return a.report(err)
	}
	a.println("\n--- LISTA DE PRODUCTOS ---")
	a.printProducts(list)
	return nil
}

func (a *App) searchProducts(ctx context.Context) error {
	term, err := a.ask("Texto a buscar: ")
	if err != nil {
		return err
	}
	raw, err := a.ask("Campo (nombre/categoria/sku, Enter = todos): ")
	if err != nil {
		return err
	}
	var fields []inventory.SearchField
	if raw != "" {
		f, ok := inventory.ParseSearchField(raw)
		if !ok {
			a.println("¡Error! Campo de búsqueda no válido.")
			return nil
		}
		fields = append(fields, f)
	}
	seq, err := a.deps.Catalog.Find(ctx, term, fields...)
	if err != nil {
		return a.report(err)
	}
	var list []*entity.Product
	for p := range seq {
		list = append(list, p)
	}
	a.printf("\n--- RESULTADOS (%d) ---\n", len(list))
	a.printProducts(list)
	return nil
}

func (a *App) printProducts(list []*entity.Product) {
	if len(list) == 0 {
		a.println("No hay productos registrados.")
		return
	}
	a.printf("%-10s %-20s %-15s %-10s %s\n", "SKU", "NOMBRE", "CATEGORIA", "PRECIO", "CANTIDAD")
	a.println(strings.Repeat("-", 70))
	for _, p := range list {
		a.printf("%-10s %-20s %-15s $%-9s %d\n", p.SKU, p.Name, p.Category, p.Price.StringFixed(2), p.Quantity)
	}
}

func (a *App) addProduct(ctx context.Context) error {
	a.println("\n--- NUEVO PRODUCTO ---")
	var in dto.CreateProductRequest
	var err error
	if in.SKU, err = a.ask("Código (SKU): "); err != nil {
		return err
	}
	if in.Name, err = a.ask("Nombre del producto: "); err != nil {
		return err
	}
	if in.Category, err = a.ask("Categoría: "); err != nil {
		return err
	}
	rawPrice, err := a.ask("Precio: ")
	if err != nil {
		return err
	}
	rawQty, err := a.ask("Cantidad inicial: ")
	if err != nil {
		return err
	}
	price, perr := decimal.NewFromString(rawPrice)
	qty, qerr := strconv.ParseInt(rawQty, 10, 64)
	if perr != nil || qerr != nil {
		a.println("¡Error! Precio o cantidad deben ser números.")
		return nil
	}
	in.Price, in.Quantity = price, qty

	p, err := a.deps.Catalog.Create(ctx, a.actor, in)
	if err != nil {
		return a.report(err)
	}
	a.printf("¡Producto %s guardado con éxito!\n", p.SKU)
	return nil
}

func (a *App) editProduct(ctx context.Context) error {
	sku, err := a.ask("SKU del producto a editar: ")
	if err != nil {
		return err
	}
	current, err := a.deps.Catalog.Get(ctx, sku)
	if err != nil {
		return a.report(err)
	}
	a.println("Deje vacío para conservar el valor actual.")
	name, err := a.ask("Nombre [" + current.Name + "]: ")
	if err != nil {
		return err
	}
	category, err := a.ask("Categoría [" + current.Category + "]: ")
	if err != nil {
		return err
	}
	rawPrice, err := a.ask("Precio [" + current.Price.StringFixed(2) + "]: ")
	if err != nil {
		return err
	}

	in := dto.UpdateProductRequest{Name: &name, Category: &category, Version: &current.Version}
	if rawPrice != "" {
		price, err := decimal.NewFromString(rawPrice)
		if err != nil {
			a.println("¡Error! El precio debe ser un número.")
			return nil
		}
		in.Price = &price
	}
	p, err := a.deps.Catalog.Update(ctx, a.actor, current.SKU, in)
	if err != nil {
		return a.report(err)
	}
	a.printf("Producto %s actualizado.\n", p.SKU)
	return nil
}

func (a *App) deleteProduct(ctx context.Context) error {
	sku, err := a.ask("SKU del producto a eliminar: ")
	if err != nil {
		return err
	}
	p, err := a.deps.Catalog.Get(ctx, sku)
	if err != nil {
		return a.report(err)
	}
	ok, err := a.confirm("¿Eliminar " + p.Name + " (" + p.SKU + ")?")
	if err != nil || !ok {
		return err
	}
	if _, err := a.deps.Catalog.Remove(ctx, a.actor, p.SKU); err != nil {
		return a.report(err)
	}
	a.println("Producto eliminado. Su historial se conserva.")
	return nil
}

func (a *App) moveStock(ctx context.Context) error {
	sku, err := a.ask("SKU: ")
	if err != nil {
		return err
	}
	rawKind, err := a.ask("Tipo (E = entrada, S = salida): ")
	if err != nil {
		return err
	}
	var kind entity.MovementKind
	switch strings.ToUpper(rawKind) {
	case "E":
		kind = entity.MovementEntry
	case "S":
		kind = entity.MovementExit
	default:
		k, ok := entity.ParseMovementKind(rawKind)
		if !ok || !k.IsStockChange() {
			a.println("¡Error! Tipo de movimiento no válido.")
			return nil
		}
		kind = k
	}
	rawQty, err := a.ask("Cantidad: ")
	if err != nil {
		return err
	}
	qty, err := strconv.ParseInt(rawQty, 10, 64)
	if err != nil {
		a.println("¡Error! La cantidad debe ser un número entero.")
		return nil
	}
	newQty, err := a.deps.Engine.ApplyMovement(ctx, a.actor, sku, kind, qty)
	if err != nil {
		return a.report(err)
	}
	a.printf("%s registrada. Stock actual: %d\n", kind, newQty)
	return nil
}

func (a *App) productHistory(ctx context.Context) error {
	key, err := a.ask("SKU (o nombre si fue eliminado): ")
	if err != nil {
		return err
	}
	seq, err := a.deps.Ledger.HistoryFor(ctx, key)
	if err != nil {
		return a.report(err)
	}
	a.println("\n--- HISTORIAL ---")
	n := 0
	for m := range seq {
		a.printf("%s  %-12s %-30s %6d  %s\n",
			m.Timestamp.Format("2006-01-02 15:04"), m.Kind, m.Product.Label(), m.SignedQuantity(), m.Actor)
		n++
	}
	if n == 0 {
		a.println("Sin movimientos.")
	}
	return nil
}
