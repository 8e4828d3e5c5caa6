package port

import "context"

// ObjectStore stores attachment bytes by opaque path. The workflow core only
// reads attachment metadata; bytes pass through this interface at the edges.
type ObjectStore interface {
	Put(ctx context.Context, path string, content []byte, contentType string) error
	Get(ctx context.Context, path string) ([]byte, error)
}
