package auth

import (
	"context"
	"strings"
	"time"

	"github.com/jhoicas/sistema-inventario/internal/application/dto"
	"github.com/jhoicas/sistema-inventario/internal/domain"
	"github.com/jhoicas/sistema-inventario/internal/domain/entity"
	"github.com/jhoicas/sistema-inventario/internal/domain/inventory"
	"github.com/jhoicas/sistema-inventario/internal/domain/repository"
	"github.com/jhoicas/sistema-inventario/pkg/logger"
	"golang.org/x/crypto/bcrypt"
)

// UserUseCase administración de usuarios. Todas las operaciones exigen un actor admin.
type UserUseCase struct {
	repo     repository.UserRepository
	hashCost int
	log      *logger.Logger
}

// NewUserUseCase construye el caso de uso con el puerto de persistencia.
func NewUserUseCase(repo repository.UserRepository, log *logger.Logger) *UserUseCase {
	return &UserUseCase{repo: repo, hashCost: bcrypt.DefaultCost, log: log.Component("users")}
}

// WithHashCost cambia el costo de bcrypt (tests usan bcrypt.MinCost).
func (uc *UserUseCase) WithHashCost(cost int) *UserUseCase {
	uc.hashCost = cost
	return uc
}

// List lista los usuarios registrados.
func (uc *UserUseCase) List(ctx context.Context, actor entity.Actor) ([]*entity.User, error) {
	if !actor.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	return uc.repo.List(ctx)
}

// Create registra un usuario. Un rol distinto de admin/user se reemplaza por user.
func (uc *UserUseCase) Create(ctx context.Context, actor entity.Actor, in dto.CreateUserRequest) (*entity.User, error) {
	if !actor.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	username := strings.TrimSpace(in.Username)
	password := strings.TrimSpace(in.Password)
	if err := inventory.ValidateCredentials(username, password); err != nil {
		return nil, err
	}
	existing, err := uc.repo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrDuplicateUser
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), uc.hashCost)
	if err != nil {
		return nil, err
	}
	user := &entity.User{
		Username:     username,
		PasswordHash: string(hash),
		Role:         normalizeRole(in.Role),
		CreatedAt:    time.Now(),
	}
	if err := uc.repo.Create(ctx, user); err != nil {
		return nil, err
	}
	uc.log.Info().Str("username", username).Str("rol", user.Role).Str("actor", actor.Username).Msg("usuario creado")
	return user, nil
}

// ChangePassword reemplaza la contraseña de un usuario.
func (uc *UserUseCase) ChangePassword(ctx context.Context, actor entity.Actor, username, password string) error {
	if !actor.IsAdmin() {
		return domain.ErrForbidden
	}
	if strings.TrimSpace(password) == "" {
		v := &domain.ValidationError{}
		v.Add("password", "la contraseña es requerida")
		return v
	}
	user, err := uc.repo.GetByUsername(ctx, username)
	if err != nil {
		return err
	}
	if user == nil {
		return domain.ErrNotFound
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), uc.hashCost)
	if err != nil {
		return err
	}
	user.PasswordHash = string(hash)
	if err := uc.repo.Update(ctx, user); err != nil {
		return err
	}
	uc.log.Info().Str("username", username).Str("actor", actor.Username).Msg("contraseña actualizada")
	return nil
}

// Delete elimina un usuario. Un admin no puede eliminarse a sí mismo.
func (uc *UserUseCase) Delete(ctx context.Context, actor entity.Actor, username string) error {
	if !actor.IsAdmin() {
		return domain.ErrForbidden
	}
	if username == actor.Username {
		return domain.ErrSelfDelete
	}
	user, err := uc.repo.GetByUsername(ctx, username)
	if err != nil {
		return err
	}
	if user == nil {
		return domain.ErrNotFound
	}
	if err := uc.repo.Delete(ctx, username); err != nil {
		return err
	}
	uc.log.Info().Str("username", username).Str("actor", actor.Username).Msg("usuario eliminado")
	return nil
}

func normalizeRole(role string) string {
	switch strings.ToLower(strings.TrimSpace(role)) {
	case entity.RoleAdmin:
		return entity.RoleAdmin
	default:
		return entity.RoleUser
	}
}
