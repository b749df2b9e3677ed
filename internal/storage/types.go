// Package storage provides the durable key-value store used to persist the
// engagement ledger.
//
// Every backend stores opaque string values under string keys. The ledger is
// written as a single JSON document under one fixed key, so backends only need
// whole-value get and set semantics; no backend interprets the values it holds.
package storage

import "errors"

var (
	// ErrUnknownBackend is returned by NewBackend for an unrecognised backend name.
	ErrUnknownBackend = errors.New("unknown storage backend")

	// ErrCorruptData is returned when a backend's on-disk data cannot be decoded.
	ErrCorruptData = errors.New("corrupt data file")
)

// Backend names accepted by NewBackend.
const (
	BackendJSON     = "json"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

// KeyValueStore defines the contract for durable string storage.
//
// Implementations must make Set atomic per key: a reader either sees the
// previous value or the new one, never a partial write.
type KeyValueStore interface {
	// Get returns the value stored under key.
	//
	// ok is false when the key has never been written or was deleted.
	// Returns an error only for storage access failures.
	Get(key string) (value string, ok bool, err error)

	// Set replaces the value stored under key.
	Set(key, value string) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(key string) error

	// Close releases any resources held by the backend.
	Close() error
}
