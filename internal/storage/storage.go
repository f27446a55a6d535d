// Package storage defines the Storage interface, the key-value contract
// the record store persists through.
//
// The record store owns serialization. A backend only ever sees one opaque
// string per key and must replace any previous value on Set; there is no
// append, no per-record granularity and no transaction log.
//
// Backends live in sub-packages (sqlite, file, memory) and satisfy this
// interface implicitly. The backend is picked in main from configuration.
package storage

import "context"

// Storage is a dumb string store.
type Storage interface {
	// Get returns the value stored under key. ok is false (and err nil)
	// when nothing has been stored under key yet.
	Get(ctx context.Context, key string) (value string, ok bool, err error)

	// Set stores value under key, replacing any prior value.
	Set(ctx context.Context, key, value string) error
}
