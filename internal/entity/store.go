// Package entity defines the store contract and kind descriptors shared by every
// managed record type.
package entity

import "context"

// Store is the asynchronous CRUD capability over one named collection.
// T is the record shape and P its partial update shape.
type Store[T any, P any] interface {
	// GetAll returns the collection in insertion order.
	GetAll(ctx context.Context) ([]T, error)
	// Get returns a single record or shared.ErrNotFound.
	Get(ctx context.Context, id int64) (T, error)
	// Create persists draft under a freshly assigned id.
	Create(ctx context.Context, draft T) (T, error)
	// Update merges the fields present in patch into the record.
	Update(ctx context.Context, id int64, patch P) (T, error)
	// Delete removes the record. Removing an absent id is not an error.
	Delete(ctx context.Context, id int64) error
}
