// Package store provides the shared key-value channel instances use to see
// each other. A write is delivered to every other handle watching the key,
// never to the handle that wrote it, and only the newest value per key is
// ever delivered.
package store

import (
	"context"
	"errors"
)

var (
	// ErrClosed is returned by operations on a closed store.
	ErrClosed = errors.New("store closed")
	// ErrNotFound is returned by Get for a key that was never written.
	ErrNotFound = errors.New("key not found")
)

// Store is one participant's handle on the shared key-value store.
type Store interface {
	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key string, value []byte) error
	// Get returns the current value of key.
	Get(ctx context.Context, key string) ([]byte, error)
	// Watch calls fn with each new value of key written by another handle
	// until ctx is done. Values written while fn runs collapse into the
	// latest one.
	Watch(ctx context.Context, key string, fn func(value []byte)) error
	Close() error
}
