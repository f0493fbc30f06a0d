package inventory

import (
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/sistema-inventario/internal/domain"
)

// Límites de longitud heredados del modelo web (sku 10, nombre 100, categoría 50).
const (
	MaxSKULen      = 10
	MaxNameLen     = 100
	MaxCategoryLen = 50
)

// ValidateNewProduct valida los campos de un producto nuevo. El SKU debe llegar normalizado.
// Devuelve *domain.ValidationError (errors.Is ErrInvalidValue) o nil.
func ValidateNewProduct(sku, name, category string, price decimal.Decimal, quantity int64) error {
	v := &domain.ValidationError{}
	switch {
	case sku == "":
		v.Add("sku", "el SKU es requerido")
	case utf8.RuneCountInString(sku) > MaxSKULen:
		v.Add("sku", "el SKU no puede superar 10 caracteres")
	}
	validateName(v, name)
	validateCategory(v, category)
	validatePrice(v, price)
	if quantity < 0 {
		v.Add("cantidad", "el valor no puede ser negativo")
	}
	return v.OrNil()
}

// ProductPatch campos opcionales de una edición (nil = sin cambio).
type ProductPatch struct {
	Name     *string
	Category *string
	Price    *decimal.Decimal
}

// ValidatePatch valida solo los campos presentes.
func ValidatePatch(p ProductPatch) error {
	v := &domain.ValidationError{}
	if p.Name != nil && *p.Name != "" {
		validateName(v, *p.Name)
	}
	if p.Category != nil && *p.Category != "" {
		validateCategory(v, *p.Category)
	}
	if p.Price != nil {
		validatePrice(v, *p.Price)
	}
	return v.OrNil()
}

func validateName(v *domain.ValidationError, name string) {
	switch {
	case name == "":
		v.Add("nombre", "el nombre es requerido")
	case utf8.RuneCountInString(name) > MaxNameLen:
		v.Add("nombre", "el nombre no puede superar 100 caracteres")
	}
}

func validateCategory(v *domain.ValidationError, category string) {
	if utf8.RuneCountInString(category) > MaxCategoryLen {
		v.Add("categoria", "la categoría no puede superar 50 caracteres")
	}
}

func validatePrice(v *domain.ValidationError, price decimal.Decimal) {
	if price.IsNegative() {
		v.Add("precio", "el valor no puede ser negativo")
	}
}

// ValidateCredentials valida usuario y contraseña de un alta de usuario.
func ValidateCredentials(username, password string) error {
	v := &domain.ValidationError{}
	if username == "" {
		v.Add("username", "el usuario es requerido")
	}
	if password == "" {
		v.Add("password", "la contraseña es requerida")
	}
	return v.OrNil()
}
