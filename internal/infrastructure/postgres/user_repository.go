package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/sistema-inventario/internal/domain"
	"github.com/jhoicas/sistema-inventario/internal/domain/entity"
	"github.com/jhoicas/sistema-inventario/internal/domain/repository"
)

var _ repository.UserRepository = (*UserRepo)(nil)

// UserRepo implementación del puerto UserRepository sobre PostgreSQL.
type UserRepo struct {
	q Querier
}

// NewUserRepository construye el adaptador de persistencia para usuarios.
func NewUserRepository(q Querier) *UserRepo {
	return &UserRepo{q: q}
}

// Create persiste un nuevo usuario. El ID lo asigna la secuencia si viene en cero.
func (r *UserRepo) Create(ctx context.Context, user *entity.User) error {
	var err error
	if user.ID == 0 {
		err = r.q.QueryRow(ctx,
			`INSERT INTO users (username, password_hash, role, created_at) VALUES ($1, $2, $3, $4) RETURNING id`,
			user.Username, user.PasswordHash, user.Role, user.CreatedAt,
		).Scan(&user.ID)
	} else {
		_, err = r.q.Exec(ctx,
			`INSERT INTO users (id, username, password_hash, role, created_at) VALUES ($1, $2, $3, $4, $5)`,
			user.ID, user.Username, user.PasswordHash, user.Role, user.CreatedAt,
		)
	}
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateUser
		}
		return domain.PersistenceError("insert user", err)
	}
	return nil
}

// GetByUsername obtiene un usuario por username. (nil, nil) si no existe.
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*entity.User, error) {
	var u entity.User
	err := r.q.QueryRow(ctx,
		`SELECT id, username, password_hash, role, created_at FROM users WHERE username = $1`, username,
	).Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Role, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, domain.PersistenceError("get user", err)
	}
	return &u, nil
}

// Update actualiza hash y rol.
func (r *UserRepo) Update(ctx context.Context, user *entity.User) error {
	cmd, err := r.q.Exec(ctx,
		`UPDATE users SET password_hash = $2, role = $3 WHERE username = $1`,
		user.Username, user.PasswordHash, user.Role,
	)
	if err != nil {
		return domain.PersistenceError("update user", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List usuarios en orden de alta.
func (r *UserRepo) List(ctx context.Context) ([]*entity.User, error) {
	rows, err := r.q.Query(ctx, `SELECT id, username, password_hash, role, created_at FROM users ORDER BY id`)
	if err != nil {
		return nil, domain.PersistenceError("list users", err)
	}
	defer rows.Close()
	var list []*entity.User
	for rows.Next() {
		var u entity.User
		if err := rows.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Role, &u.CreatedAt); err != nil {
			return nil, domain.PersistenceError("scan user", err)
		}
		list = append(list, &u)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.PersistenceError("list users", err)
	}
	return list, nil
}

// Delete elimina un usuario por username.
func (r *UserRepo) Delete(ctx context.Context, username string) error {
	cmd, err := r.q.Exec(ctx, `DELETE FROM users WHERE username = $1`, username)
	if err != nil {
		return domain.PersistenceError("delete user", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
