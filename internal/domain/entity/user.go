package entity

import "time"

// Roles válidos para User.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// User representa un usuario del sistema.
type User struct {
	ID           int       `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"password_hash"` // bcrypt, nunca en texto plano
	Role         string    `json:"rol"`
	CreatedAt    time.Time `json:"fecha_creacion"`
}

// IsAdmin indica si el usuario tiene rol admin.
func (u *User) IsAdmin() bool { return u != nil && u.Role == RoleAdmin }

// Actor identifica a quien ejecuta una mutación. Se pasa explícitamente a cada caso de uso.
type Actor struct {
	Username string
	Role     string
}

// IsAdmin indica si el actor puede ejecutar operaciones administrativas.
func (a Actor) IsAdmin() bool { return a.Role == RoleAdmin }

// ActorOf construye el Actor de un usuario autenticado.
func ActorOf(u *User) Actor {
	return Actor{Username: u.Username, Role: u.Role}
}

// SystemActor se usa para tareas internas (bootstrap).
var SystemActor = Actor{Username: "sistema", Role: RoleAdmin}
