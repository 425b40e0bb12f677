// Package store содержит хранилища индексов для bimap: в памяти, в файле,
// в SQLite и в PostgreSQL.
package store

import (
	"context"

	"github.com/aseptimu/bijective-shortener/internal/app/bimap"
)

// Store - бэкенд bimap, который умеет проверять доступность и закрываться.
type Store interface {
	bimap.Backend
	Ping(ctx context.Context) error
	Close() error
}

var (
	_ Store = (*InMemoryStore)(nil)
	_ Store = (*FileStore)(nil)
	_ Store = (*SQLiteStore)(nil)
	_ Store = (*Database)(nil)
)
