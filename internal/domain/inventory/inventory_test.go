package inventory

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/sistema-inventario/internal/domain"
	"github.com/jhoicas/sistema-inventario/internal/domain/entity"
)

func TestApplyDelta(t *testing.T) {
	tests := []struct {
		name    string
		current int64
		kind    entity.MovementKind
		qty     int64
		want    int64
		wantErr error
	}{
		{"entrada suma", 10, entity.MovementEntry, 5, 15, nil},
		{"salida resta", 10, entity.MovementExit, 4, 6, nil},
		{"salida deja en cero", 10, entity.MovementExit, 10, 0, nil},
		{"salida mayor al stock", 10, entity.MovementExit, 11, 10, domain.ErrInsufficientStock},
		{"cantidad cero", 10, entity.MovementEntry, 0, 10, domain.ErrInvalidQuantity},
		{"cantidad negativa", 10, entity.MovementExit, -3, 10, domain.ErrInvalidQuantity},
		{"entrada desborda", 10, entity.MovementEntry, math.MaxInt64, 10, domain.ErrInvalidQuantity},
		{"entrada hasta el máximo", 10, entity.MovementEntry, math.MaxInt64 - 10, math.MaxInt64, nil},
		{"tipo sin efecto en stock", 10, entity.MovementEdited, 1, 10, domain.ErrInvalidValue},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ApplyDelta(tt.current, tt.kind, tt.qty)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIsLowStock(t *testing.T) {
	assert.True(t, IsLowStock(4, LowStockThreshold))
	assert.False(t, IsLowStock(5, LowStockThreshold))
	assert.True(t, IsLowStock(0, 1))
}

func TestNormalizeSKU(t *testing.T) {
	for _, in := range []string{"p001", " P001 ", "p 001", "ｐ００１"} {
		assert.Equal(t, "P001", NormalizeSKU(in), in)
	}
	assert.Equal(t, "", NormalizeSKU("   "))
}

func TestContainsFold(t *testing.T) {
	assert.True(t, ContainsFold("Lápiz HB", "lapiz"))
	assert.True(t, ContainsFold("Papelería", "PAPELERIA"))
	assert.True(t, ContainsFold("cualquier cosa", ""))
	assert.False(t, ContainsFold("Martillo", "clavo"))
	assert.Equal(t, "cancion", Fold("  Canción "))
}

func TestValidateNewProduct(t *testing.T) {
	t.Run("válido", func(t *testing.T) {
		assert.NoError(t, ValidateNewProduct("P1", "Tornillo", "Ferretería", decimal.RequireFromString("2.5"), 0))
	})

	t.Run("acumula todos los campos", func(t *testing.T) {
		err := ValidateNewProduct("", "", strings.Repeat("c", 51), decimal.NewFromInt(-1), -2)
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrInvalidValue)

		var verr *domain.ValidationError
		require.True(t, errors.As(err, &verr))
		var fields []string
		for _, f := range verr.Fields {
			fields = append(fields, f.Field)
		}
		assert.Equal(t, []string{"sku", "nombre", "categoria", "precio", "cantidad"}, fields)
	})

	t.Run("longitudes en runas", func(t *testing.T) {
		assert.NoError(t, ValidateNewProduct("ÑÑÑÑÑÑÑÑÑÑ", strings.Repeat("ñ", 100), "", decimal.Zero, 1))
		assert.Error(t, ValidateNewProduct("ABCDEFGHIJK", "x", "", decimal.Zero, 1))
		assert.Error(t, ValidateNewProduct("A", strings.Repeat("ñ", 101), "", decimal.Zero, 1))
	})
}

func TestValidatePatch(t *testing.T) {
	empty := ""
	neg := decimal.NewFromInt(-5)
	long := strings.Repeat("x", 101)

	assert.NoError(t, ValidatePatch(ProductPatch{}))
	assert.NoError(t, ValidatePatch(ProductPatch{Name: &empty}))
	assert.ErrorIs(t, ValidatePatch(ProductPatch{Price: &neg}), domain.ErrInvalidValue)
	assert.ErrorIs(t, ValidatePatch(ProductPatch{Name: &long}), domain.ErrInvalidValue)
}

func TestValidateCredentials(t *testing.T) {
	assert.NoError(t, ValidateCredentials("ana", "x"))
	err := ValidateCredentials("", "")
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Len(t, verr.Fields, 2)
}
