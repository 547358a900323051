// Package storage provides the object stores that hold spilled batches.
package storage

import (
	"context"
	"errors"
)

// Common errors for storage operations.
var (
	ErrObjectNotFound = errors.New("object not found")
	ErrPutFailed      = errors.New("put failed")
	ErrGetFailed      = errors.New("get failed")
	ErrDeleteFailed   = errors.New("delete failed")
)

// ObjectStorage abstracts the store that receives spilled batch archives.
// Keys use forward slashes regardless of platform. Objects are small
// (one compressed batch each), so everything moves as byte slices.
type ObjectStorage interface {
	// Put writes an object, replacing any existing object at the key.
	Put(ctx context.Context, key string, data []byte) error

	// Get reads an object. Returns ErrObjectNotFound if the key is absent.
	Get(ctx context.Context, key string) ([]byte, error)

	// Delete removes an object. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Exists reports whether an object is present at the key.
	Exists(ctx context.Context, key string) (bool, error)

	// List returns all keys under the given prefix.
	List(ctx context.Context, prefix string) ([]string, error)
}
