package domain

import (
	"errors"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidationError(t *testing.T) {
	v := &ValidationError{}
	assert.NoError(t, v.OrNil())

	v.Add("precio", "el valor no puede ser negativo")
	err := v.OrNil()
	assert.ErrorIs(t, err, ErrInvalidValue)
	assert.Contains(t, err.Error(), "precio: el valor no puede ser negativo")
}

func TestPersistenceError(t *testing.T) {
	assert.NoError(t, PersistenceError("leer", nil))

	err := PersistenceError("leer productos.json", fs.ErrPermission)
	assert.ErrorIs(t, err, ErrPersistence)
	assert.ErrorIs(t, err, fs.ErrPermission)
	assert.False(t, errors.Is(err, ErrNotFound))
	assert.Contains(t, err.Error(), "leer productos.json")
}
