// Package blobstore persists opaque state blobs behind a small key-value
// port. The state store serializes its whole model into a single blob and
// neither knows nor cares which implementation holds it.
package blobstore

import "context"

// Store is the persistence port.
type Store interface {
	// Get returns the blob stored under key. The second return value is
	// false when the key is absent; absence is not an error.
	Get(ctx context.Context, key string) (string, bool, error)

	// Set stores value under key, replacing any previous blob.
	Set(ctx context.Context, key, value string) error
}
