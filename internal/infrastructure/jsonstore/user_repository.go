package jsonstore

import (
	"context"
	"slices"

	"github.com/jhoicas/sistema-inventario/internal/domain"
	"github.com/jhoicas/sistema-inventario/internal/domain/entity"
	"github.com/jhoicas/sistema-inventario/internal/domain/repository"
)

var _ repository.UserRepository = (*UserRepo)(nil)

// UserRepo usuarios sobre usuarios.json.
type UserRepo struct {
	store *Store
}

// Create agrega el usuario. Sin ID asigna el último ID + 1.
func (r *UserRepo) Create(ctx context.Context, user *entity.User) error {
	return r.mutate(func(list []*entity.User) ([]*entity.User, error) {
		if indexByUsername(list, user.Username) >= 0 {
			return nil, domain.ErrDuplicateUser
		}
		if user.ID == 0 {
			user.ID = 1
			if len(list) > 0 {
				user.ID = list[len(list)-1].ID + 1
			}
		}
		c := *user
		return append(list, &c), nil
	})
}

// GetByUsername devuelve (nil, nil) si no existe.
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*entity.User, error) {
	list, err := r.read()
	if err != nil {
		return nil, err
	}
	if i := indexByUsername(list, username); i >= 0 {
		return list[i], nil
	}
	return nil, nil
}

// Update reemplaza el usuario con el mismo username.
func (r *UserRepo) Update(ctx context.Context, user *entity.User) error {
	return r.mutate(func(list []*entity.User) ([]*entity.User, error) {
		i := indexByUsername(list, user.Username)
		if i < 0 {
			return nil, domain.ErrNotFound
		}
		c := *user
		list[i] = &c
		return list, nil
	})
}

// List usuarios en orden de alta.
func (r *UserRepo) List(ctx context.Context) ([]*entity.User, error) {
	return r.read()
}

// Delete elimina por username.
func (r *UserRepo) Delete(ctx context.Context, username string) error {
	return r.mutate(func(list []*entity.User) ([]*entity.User, error) {
		i := indexByUsername(list, username)
		if i < 0 {
			return nil, domain.ErrNotFound
		}
		return slices.Delete(list, i, i+1), nil
	})
}

func (r *UserRepo) read() ([]*entity.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return r.store.users.readAll()
}

func (r *UserRepo) mutate(fn func([]*entity.User) ([]*entity.User, error)) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	list, err := r.store.users.readAll()
	if err != nil {
		return err
	}
	list, err = fn(list)
	if err != nil {
		return err
	}
	return r.store.users.writeAll(list)
}

func indexByUsername(list []*entity.User, username string) int {
	return slices.IndexFunc(list, func(u *entity.User) bool { return u.Username == username })
}
