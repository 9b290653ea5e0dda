// Package storage wraps the object store behind a small gateway interface
// enforcing a single logical bucket.
package storage

import (
	"context"
	"errors"
	"io"
)

var (
	// ErrObjectNotFound indicates the requested key does not exist in the bucket.
	ErrObjectNotFound = errors.New("object not found")
	// ErrGatewayUnavailable indicates the object store cannot be reached.
	ErrGatewayUnavailable = errors.New("object store unavailable")
)

// Gateway is the durable blob interface used by the intake pipeline and
// the privileged admin commands. Implementations must be safe for
// concurrent use across distinct keys; concurrent writes to the same key
// are harmless because keys are content-derived.
type Gateway interface {
	// Put stores the object bytes at key, overwriting any existing object.
	Put(ctx context.Context, key string, r io.Reader) error
	// Exists reports whether an object is stored at key.
	Exists(ctx context.Context, key string) (bool, error)
	// Delete removes the object at key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// List returns all object keys under the given prefix.
	List(ctx context.Context, prefix string) ([]string, error)
}
