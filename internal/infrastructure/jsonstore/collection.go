package jsonstore

import (
	"bytes"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/jhoicas/sistema-inventario/internal/domain"
	"github.com/jhoicas/sistema-inventario/pkg/logger"
)

// collection archivo JSON que guarda un arreglo de T.
// Archivo ausente o vacío = colección vacía. Archivo corrupto = colección vacía con advertencia.
type collection[T any] struct {
	path string
	log  *logger.Logger
}

func newCollection[T any](dir, name string, log *logger.Logger) collection[T] {
	return collection[T]{path: filepath.Join(dir, name), log: log}
}

// readAll decodifica el archivo completo.
func (c collection[T]) readAll() ([]T, error) {
	raw, err := os.ReadFile(c.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, domain.PersistenceError("leer "+filepath.Base(c.path), err)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, nil
	}
	var items []T
	if err := json.Unmarshal(raw, &items); err != nil {
		c.log.Warn().Err(err).Str("archivo", c.path).Msg("archivo corrupto, se trata como vacío")
		return nil, nil
	}
	return items, nil
}

// writeAll reemplaza el archivo de forma atómica (archivo temporal + rename).
func (c collection[T]) writeAll(items []T) error {
	if items == nil {
		items = []T{}
	}
	raw, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return domain.PersistenceError("serializar "+filepath.Base(c.path), err)
	}
	return c.writeRaw(raw)
}

// backup devuelve el contenido actual del archivo; exists=false si no existe.
func (c collection[T]) backup() (raw []byte, exists bool, err error) {
	raw, err = os.ReadFile(c.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, domain.PersistenceError("respaldar "+filepath.Base(c.path), err)
	}
	return raw, true, nil
}

// restore deja el archivo como estaba antes de backup.
func (c collection[T]) restore(raw []byte, exists bool) error {
	if !exists {
		if err := os.Remove(c.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return domain.PersistenceError("restaurar "+filepath.Base(c.path), err)
		}
		return nil
	}
	return c.writeRaw(raw)
}

func (c collection[T]) writeRaw(raw []byte) error {
	op := "escribir " + filepath.Base(c.path)
	tmp, err := os.CreateTemp(filepath.Dir(c.path), "."+filepath.Base(c.path)+"-*.tmp")
	if err != nil {
		return domain.PersistenceError(op, err)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.Write(raw); err != nil {
		_ = tmp.Close()
		cleanup()
		return domain.PersistenceError(op, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()
		return domain.PersistenceError(op, err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return domain.PersistenceError(op, err)
	}
	if err := os.Rename(tmpName, c.path); err != nil {
		cleanup()
		return domain.PersistenceError(op, err)
	}
	return nil
}
