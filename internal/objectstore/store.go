package objectstore

import "context"

// Store is the bucket-scoped object storage port. One concrete adapter per
// backing service; application code depends only on this interface.
type Store interface {
	// Put writes data under folder/name and returns a durable public URL.
	Put(ctx context.Context, folder, name string, data []byte, contentType string) (string, error)
}
