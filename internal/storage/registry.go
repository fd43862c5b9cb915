package storage

import (
	"context"
	"fmt"
	"sync"

	"dbseed/internal/config"
)

// Factory opens a backend-specific Repository from the shared DB config and
// returns it together with a close function for cleanup.
//
// Backends (postgres, mysql, mssql, sqlite) register their implementation for
// a given storage kind (e.g., "postgres") at init time.
type Factory func(ctx context.Context, cfg config.DBConfig) (Repository, func(), error)

var (
	regMu     sync.RWMutex
	factories = map[string]Factory{}
)

// Register registers (or replaces) a Factory for the given storage kind. It
// is typically called from backend packages' init() functions.
func Register(kind string, fn Factory) {
	regMu.Lock()
	defer regMu.Unlock()
	factories[kind] = fn
}

// Kinds returns the registered storage kinds. Order is unspecified.
func Kinds() []string {
	regMu.RLock()
	defer regMu.RUnlock()
	out := make([]string, 0, len(factories))
	for k := range factories {
		out = append(out, k)
	}
	return out
}

// Open locates the Factory for s.Kind and invokes it. Callers do not need to
// know which backend they are using; they pass the storage config and get the
// already-open Repository back.
//
// If no factory has been registered for the storage kind, an error is
// returned.
func Open(ctx context.Context, s config.Storage) (Repository, func(), error) {
	regMu.RLock()
	fn, ok := factories[s.Kind]
	regMu.RUnlock()
	if !ok {
		return nil, nil, fmt.Errorf("no storage backend registered for storage.kind=%q", s.Kind)
	}
	return fn(ctx, s.DB)
}
