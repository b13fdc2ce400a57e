// Package storage persists quotes, the selected category and the last shown
// quote through a small key/value abstraction with interchangeable backends.
package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jsamuelsen/quotesync/internal/platform/config"
)

// ErrKeyNotFound is returned by KV.Get for a key that was never set or has
// been deleted.
var ErrKeyNotFound = errors.New("key not found")

// KV is a string key/value store holding raw JSON values.
type KV interface {
	// Get returns the stored value or ErrKeyNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set creates or overwrites a key.
	Set(ctx context.Context, key string, value []byte) error

	// Delete removes a key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases the backend.
	Close() error
}

// Open creates the durable backend selected by cfg.Driver.
func Open(cfg config.StorageConfig, logger *slog.Logger) (KV, error) {
	switch cfg.Driver {
	case config.StorageDriverSQLite:
		return OpenSQLite(cfg.Path, logger)
	case config.StorageDriverFile:
		return NewFileKV(cfg.Path, logger)
	case config.StorageDriverMemory:
		return NewMemoryKV(), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}
