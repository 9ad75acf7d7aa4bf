// Package backend selects and constructs the persistence backend for
// the store service.
package backend

import (
	"fmt"

	"fincas/internal/store"
	"fincas/internal/store/memory"
	"fincas/internal/storage"
)

type Type string

const (
	Memory Type = "memory"
	SQLite Type = "sqlite"
)

func (t Type) IsValid() bool {
	switch t {
	case Memory, SQLite:
		return true
	default:
		return false
	}
}

// Config holds what backend construction needs.
type Config struct {
	Type         Type
	SQLiteDBPath string
}

// CleanupFunc releases backend resources.
type CleanupFunc func() error

// Open constructs the configured backend. The returned cleanup closes
// it and is never nil.
func Open(cfg Config) (store.Store, CleanupFunc, error) {
	switch cfg.Type {
	case Memory:
		s := memory.New(nil)
		return s, s.Close, nil
	case SQLite:
		repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite backend: %w", err)
		}
		return repo, repo.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown backend type %q", cfg.Type)
	}
}
