// Package repository defines the record store interface and its
// in-memory and Redis implementations.
package repository

import "context"

// Store provides durable key/value access for pipeline records.
// Keys are namespaced by a slash-separated prefix, for example
// "assignment/<id>" or "state/<patient-id>".
type Store interface {
	// Get returns the value for key. Returns ErrNotFound if the
	// key is unknown.
	Get(ctx context.Context, key string) ([]byte, error)

	// Put writes the value for key, overwriting any previous value.
	Put(ctx context.Context, key string, value []byte) error

	// Find returns all key/value pairs whose key starts with prefix.
	Find(ctx context.Context, prefix string) (map[string][]byte, error)

	// Close releases any underlying resources.
	Close() error
}
