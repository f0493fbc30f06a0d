// Package export serializa fotos del inventario y del historial a formatos de archivo.
package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"iter"
	"strconv"

	"github.com/jhoicas/sistema-inventario/internal/application/dto"
	"github.com/jhoicas/sistema-inventario/internal/application/inventory"
	"github.com/jhoicas/sistema-inventario/internal/domain/entity"
	domaininv "github.com/jhoicas/sistema-inventario/internal/domain/inventory"
)

var _ inventory.Exporter = CSVWriter{}

// CSVWriter exporta el catálogo como CSV separado por comas, con cabecera.
type CSVWriter struct{}

func (CSVWriter) Format() string      { return "csv" }
func (CSVWriter) ContentType() string { return "text/csv; charset=utf-8" }

// Export una fila por producto.
func (CSVWriter) Export(_ context.Context, snap *dto.InventorySnapshot) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write([]string{"sku", "nombre", "categoria", "cantidad", "precio", "valor", "stock_bajo"})
	for _, p := range snap.Products {
		_ = w.Write([]string{
			p.SKU,
			p.Name,
			p.Category,
			strconv.FormatInt(p.Quantity, 10),
			p.Price.StringFixed(2),
			p.Value().StringFixed(2),
			strconv.FormatBool(domaininv.IsLowStock(p.Quantity, snap.Summary.Threshold)),
		})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// HistoryCSV exporta movimientos en el orden en que llegan.
func HistoryCSV(movements iter.Seq[*entity.Movement]) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write([]string{"fecha", "tipo", "sku", "producto", "estado", "cantidad", "usuario"})
	for m := range movements {
		_ = w.Write([]string{
			m.Timestamp.Format("2006-01-02 15:04:05"),
			string(m.Kind),
			m.Product.SKU,
			m.Product.Name,
			string(m.Product.State),
			strconv.FormatInt(m.Quantity, 10),
			m.Actor,
		})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
