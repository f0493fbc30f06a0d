package auth

import (
	"context"
	"strings"
	"time"

	"github.com/jhoicas/sistema-inventario/internal/application/dto"
	"github.com/jhoicas/sistema-inventario/internal/domain"
	"github.com/jhoicas/sistema-inventario/internal/domain/entity"
	"github.com/jhoicas/sistema-inventario/internal/domain/repository"
	"github.com/jhoicas/sistema-inventario/pkg/jwt"
	"github.com/jhoicas/sistema-inventario/pkg/logger"
	"golang.org/x/crypto/bcrypt"
)

// DefaultAdminUsername usuario creado en el primer arranque.
const DefaultAdminUsername = "admin"

// JWTConfig configuración para generación de tokens.
type JWTConfig struct {
	Secret     string
	ExpMinutes int
	Issuer     string
}

// AuthUseCase casos de uso de autenticación: login, verificación de credenciales y bootstrap.
type AuthUseCase struct {
	userRepo repository.UserRepository
	jwtCfg   JWTConfig
	hashCost int
	log      *logger.Logger
}

// NewAuthUseCase construye el caso de uso de auth.
func NewAuthUseCase(userRepo repository.UserRepository, jwtCfg JWTConfig, log *logger.Logger) *AuthUseCase {
	return &AuthUseCase{userRepo: userRepo, jwtCfg: jwtCfg, hashCost: bcrypt.DefaultCost, log: log.Component("auth")}
}

// WithHashCost cambia el costo de bcrypt (tests usan bcrypt.MinCost).
func (uc *AuthUseCase) WithHashCost(cost int) *AuthUseCase {
	uc.hashCost = cost
	return uc
}

// Authenticate verifica usuario y contraseña. Credenciales inválidas → ErrUnauthorized.
func (uc *AuthUseCase) Authenticate(ctx context.Context, username, password string) (*entity.User, error) {
	user, err := uc.userRepo.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUnauthorized
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, domain.ErrUnauthorized
	}
	return user, nil
}

// Login verifica credenciales, genera JWT y retorna token + usuario.
func (uc *AuthUseCase) Login(ctx context.Context, in dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := uc.Authenticate(ctx, in.Username, in.Password)
	if err != nil {
		uc.log.Warn().Str("username", in.Username).Msg("login rechazado")
		return nil, err
	}
	token, err := jwt.Generate(uc.jwtCfg.Secret, user.Username, user.Role, uc.jwtCfg.Issuer, uc.jwtCfg.ExpMinutes)
	if err != nil {
		return nil, err
	}
	return &dto.LoginResponse{Token: token, User: dto.NewUserResponse(user)}, nil
}

// EnsureDefaultAdmin crea el usuario admin si no hay ningún usuario registrado.
// Devuelve true si lo creó.
func (uc *AuthUseCase) EnsureDefaultAdmin(ctx context.Context, password string) (bool, error) {
	users, err := uc.userRepo.List(ctx)
	if err != nil {
		return false, err
	}
	if len(users) > 0 {
		uc.log.Info().Int("usuarios", len(users)).Msg("sistema cargado")
		return false, nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), uc.hashCost)
	if err != nil {
		return false, err
	}
	admin := &entity.User{
		Username:     DefaultAdminUsername,
		PasswordHash: string(hash),
		Role:         entity.RoleAdmin,
		CreatedAt:    time.Now(),
	}
	if err := uc.userRepo.Create(ctx, admin); err != nil {
		return false, err
	}
	uc.log.Warn().Str("username", admin.Username).Msg("no se encontraron usuarios, administrador por defecto creado")
	return true, nil
}
