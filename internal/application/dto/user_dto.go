package dto

import (
	"time"

	"github.com/jhoicas/sistema-inventario/internal/domain/entity"
)

// CreateUserRequest entrada para crear un usuario (password en texto, se hashea en el caso de uso).
type CreateUserRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
	Role     string `json:"rol" validate:"omitempty,oneof=admin user"`
}

// ChangePasswordRequest entrada para cambiar la contraseña de un usuario.
type ChangePasswordRequest struct {
	Password string `json:"password" validate:"required"`
}

// UserResponse salida de un usuario (sin password).
type UserResponse struct {
	ID        int       `json:"id"`
	Username  string    `json:"username"`
	Role      string    `json:"rol"`
	CreatedAt time.Time `json:"fecha_creacion"`
}

// NewUserResponse mapea la entidad a la respuesta.
func NewUserResponse(u *entity.User) UserResponse {
	return UserResponse{ID: u.ID, Username: u.Username, Role: u.Role, CreatedAt: u.CreatedAt}
}

// LoginRequest credenciales de acceso.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse salida con token JWT.
type LoginResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}
