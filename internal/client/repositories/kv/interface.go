// Package kv is the local key/value table backing the client's persistent
// state (session, cached lists, read-marker).
package kv

import (
	"context"
)

// Repository stores opaque values by key. Get returns (nil, nil) for a
// missing key; Set is an upsert; Delete of a missing key is not an error.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}
