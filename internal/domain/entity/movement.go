package entity

import (
	"strings"
	"time"
)

// MovementKind tipo de movimiento del historial.
type MovementKind string

// Tipos de movimiento. ENTRY/EXIT cambian stock; el resto son eventos del ciclo de vida del producto.
const (
	MovementEntry   MovementKind = "ENTRADA"
	MovementExit    MovementKind = "SALIDA"
	MovementCreated MovementKind = "CREACION"
	MovementEdited  MovementKind = "EDICION"
	MovementDeleted MovementKind = "ELIMINACION"
)

// ParseMovementKind acepta el nombre en español o en inglés (entry, exit, ...).
func ParseMovementKind(s string) (MovementKind, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "ENTRADA", "ENTRY", "IN":
		return MovementEntry, true
	case "SALIDA", "EXIT", "OUT":
		return MovementExit, true
	case "CREACION", "CREATED":
		return MovementCreated, true
	case "EDICION", "EDITED":
		return MovementEdited, true
	case "ELIMINACION", "DELETED":
		return MovementDeleted, true
	}
	return "", false
}

// IsStockChange indica si el tipo modifica la cantidad del producto.
func (k MovementKind) IsStockChange() bool {
	return k == MovementEntry || k == MovementExit
}

// Sign devuelve +1, -1 o 0 según el efecto sobre el stock.
func (k MovementKind) Sign() int64 {
	switch k {
	case MovementEntry:
		return 1
	case MovementExit:
		return -1
	}
	return 0
}

// RefState estado de la referencia al producto.
type RefState string

const (
	RefLive      RefState = "live"
	RefTombstone RefState = "tombstone"
)

// ProductRef referencia no propietaria de un movimiento a su producto.
// Live apunta a un producto existente; Tombstone conserva nombre y SKU después del borrado.
type ProductRef struct {
	State RefState `json:"estado"`
	SKU   string   `json:"sku"`
	Name  string   `json:"nombre"`
}

// LiveRef construye una referencia viva.
func LiveRef(sku, name string) ProductRef {
	return ProductRef{State: RefLive, SKU: sku, Name: name}
}

// TombstoneRef construye una referencia a un producto eliminado.
func TombstoneRef(name, sku string) ProductRef {
	return ProductRef{State: RefTombstone, SKU: sku, Name: name}
}

// IsLive indica si el producto referenciado sigue existiendo.
func (r ProductRef) IsLive() bool { return r.State == RefLive }

// Tombstoned devuelve la referencia convertida en lápida con el nombre final del producto,
// para que todo su historial se encuentre por ese nombre aunque haya sido renombrado.
func (r ProductRef) Tombstoned(finalName string) ProductRef {
	if finalName == "" {
		finalName = r.Name
	}
	return TombstoneRef(finalName, r.SKU)
}

// Matches compara la referencia con un SKU (ya normalizado) o, si es lápida, con el nombre guardado.
func (r ProductRef) Matches(sku, name string) bool {
	if sku != "" && r.SKU == sku {
		return true
	}
	return name != "" && r.State == RefTombstone && strings.EqualFold(r.Name, name)
}

// Label texto para mostrar en reportes.
func (r ProductRef) Label() string {
	if r.IsLive() {
		return r.Name + " (" + r.SKU + ")"
	}
	if r.Name == "" {
		return "Desconocido"
	}
	return r.Name + " [eliminado]"
}

// Movement representa una entrada del historial. Inmutable una vez creado.
type Movement struct {
	ID        string       `json:"id"`
	Product   ProductRef   `json:"producto"`
	Kind      MovementKind `json:"tipo"`
	Quantity  int64        `json:"cantidad"` // magnitud; el signo lo da Kind
	Actor     string       `json:"usuario"`
	Timestamp time.Time    `json:"fecha"`
}

// SignedQuantity cantidad con signo según el tipo.
func (m *Movement) SignedQuantity() int64 {
	return m.Kind.Sign() * m.Quantity
}
