// Package storage provides object storage for finished video artifacts.
// It defines the Store port and implementations for S3-compatible
// services and in-memory use.
package storage

import "context"

// Store defines the interface for artifact persistence. Writes are
// best-effort from the caller's perspective: a failed Put never fails the
// generation it belongs to.
type Store interface {
	// Put stores the artifact under the given key and returns a URL the
	// artifact can be served from.
	Put(ctx context.Context, key string, data []byte, contentType string) (url string, err error)

	// Delete removes a stored artifact. Deleting a missing key is not an
	// error.
	Delete(ctx context.Context, key string) error
}
