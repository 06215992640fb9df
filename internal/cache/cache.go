// Package cache stores fetched raw markup per resource key so that repeated
// crawls skip resources that were already retrieved. A key maps to exactly
// one record; concurrent writers to different keys never conflict.
package cache

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Read when no record exists for the key. Callers
// treat it as "must refetch", never as a fatal condition.
var ErrNotFound = errors.New("cache: key not found")

// Store is the resource cache contract used by the fetcher.
type Store interface {
	// Exists reports whether a record is present for the key.
	Exists(ctx context.Context, key string) bool

	// Read returns the stored bytes, or ErrNotFound.
	Read(ctx context.Context, key string) ([]byte, error)

	// Write stores the bytes durably before returning.
	Write(ctx context.Context, key string, data []byte) error
}
