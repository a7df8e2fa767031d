// Package kv provides the durable string key-value stores that back note persistence.
package kv

import (
	"fmt"
	"strings"

	"github.com/starford/lumina/internal/apperr"
)

// Backend names accepted by Open.
const (
	BackendSQLite = "sqlite"
	BackendFile   = "file"
	BackendMemory = "memory"
)

// Store is a durable string key-value store.
type Store interface {
	// Get returns the value under key. ok is false when the key is absent.
	Get(key string) (value string, ok bool, err error)
	// Set replaces the value under key in full.
	Set(key, value string) error
	// Close releases the underlying resources.
	Close() error
}

// Open builds the backend named by backend. path is a database file for
// sqlite, a directory for file, and ignored for memory.
func Open(backend, path string) (Store, error) {
	switch backend {
	case BackendSQLite, "":
		return OpenSQLite(path)
	case BackendFile:
		return NewFile(path)
	case BackendMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("kv: unknown backend %q: %w", backend, apperr.ErrInvalid)
	}
}

func validKey(key string) error {
	if key == "" || strings.TrimSpace(key) != key {
		return fmt.Errorf("kv: bad key %q: %w", key, apperr.ErrInvalid)
	}
	return nil
}
