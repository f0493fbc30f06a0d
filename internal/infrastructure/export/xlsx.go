package export

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/jhoicas/sistema-inventario/internal/application/dto"
	"github.com/jhoicas/sistema-inventario/internal/application/inventory"
	domaininv "github.com/jhoicas/sistema-inventario/internal/domain/inventory"
)

var _ inventory.Exporter = XLSXWriter{}

const (
	sheetProducts = "Inventario"
	sheetSummary  = "Resumen"
)

// XLSXWriter libro de Excel con una hoja de productos y otra de resumen.
type XLSXWriter struct{}

func (XLSXWriter) Format() string { return "xlsx" }
func (XLSXWriter) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

// Export genera el libro en memoria.
func (XLSXWriter) Export(_ context.Context, snap *dto.InventorySnapshot) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", sheetProducts); err != nil {
		return nil, fmt.Errorf("xlsx: renombrar hoja: %w", err)
	}
	header := []any{"SKU", "Nombre", "Categoría", "Cantidad", "Precio", "Valor", "Stock bajo"}
	if err := f.SetSheetRow(sheetProducts, "A1", &header); err != nil {
		return nil, fmt.Errorf("xlsx: cabecera: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("xlsx: estilo: %w", err)
	}
	_ = f.SetCellStyle(sheetProducts, "A1", "G1", bold)

	for i, p := range snap.Products {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		low := ""
		if domaininv.IsLowStock(p.Quantity, snap.Summary.Threshold) {
			low = "SI"
		}
		values := []any{
			p.SKU, p.Name, p.Category, p.Quantity,
			p.Price.InexactFloat64(), p.Value().InexactFloat64(), low,
		}
		if err := f.SetSheetRow(sheetProducts, cell, &values); err != nil {
			return nil, fmt.Errorf("xlsx: fila %d: %w", i+2, err)
		}
	}

	if _, err := f.NewSheet(sheetSummary); err != nil {
		return nil, fmt.Errorf("xlsx: hoja resumen: %w", err)
	}
	summary := [][]any{
		{"Fecha", snap.GeneratedAt.Format("2006-01-02 15:04")},
		{"Generado por", snap.GeneratedBy},
		{"Productos", snap.Summary.ProductCount},
		{"Unidades", snap.Summary.TotalUnits},
		{"Valor total", snap.Summary.TotalValue.StringFixed(2)},
		{fmt.Sprintf("Stock bajo (< %d)", snap.Summary.Threshold), snap.Summary.LowStockCount},
	}
	for i, r := range summary {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(sheetSummary, cell, &r); err != nil {
			return nil, fmt.Errorf("xlsx: resumen: %w", err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx: escribir: %w", err)
	}
	return buf.Bytes(), nil
}
