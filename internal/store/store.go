package store

import (
	"context"
	"errors"
)

// Store is a scoped key/value store for the session credential pair. Keys passed to
// a Store are unscoped; implementations prefix them with their scope.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	// SetMulti writes every pair or none of them
	SetMulti(ctx context.Context, values map[string][]byte) error
	Delete(ctx context.Context, keys ...string) error
	Close() error
}

// ErrNotFound is returned when a key is absent
var ErrNotFound = errors.New("store: key not found")

// Key builds the scoped key for name
func Key(scope, name string) string {
	if scope == "" {
		return name
	}
	return scope + ":" + name
}
