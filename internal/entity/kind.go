package entity

import (
	"github.com/odyssey-erp/admindash/internal/projector"
)

// Kind names one of the managed collections.
type Kind string

const (
	// KindUsers selects the user collection.
	KindUsers Kind = "users"
	// KindRoles selects the role collection.
	KindRoles Kind = "roles"
	// KindPermissions selects the permission collection.
	KindPermissions Kind = "permissions"
)

// Kinds lists every managed kind in navigation order.
var Kinds = []Kind{KindUsers, KindRoles, KindPermissions}

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	switch k {
	case KindUsers, KindRoles, KindPermissions:
		return true
	}
	return false
}

// Descriptor injects everything kind specific into the generic store and
// controller code.
type Descriptor[T any, P any] struct {
	Kind Kind
	// Noun is the singular display name, e.g. "User".
	Noun string

	ID    func(T) int64
	SetID func(T, int64) T
	// Clone returns a copy sharing no mutable memory with the input.
	Clone func(T) T
	// Normalize canonicalises a draft before it is validated and stored.
	// Optional.
	Normalize func(T) T
	// Apply merges the present fields of P into T.
	Apply func(T, P) T
	// Diff returns the patch turning from into to. Unchanged fields are absent.
	Diff func(from, to T) P
	// EmptyPatch reports whether a patch changes nothing.
	EmptyPatch func(P) bool
	// NewDraft returns a blank add-form draft.
	NewDraft func() T
	// Validate checks a record before it is persisted.
	Validate func(T) error

	// Search is the projector spec: search fields and filter table.
	Search projector.Spec[T]
	// ParseFilter converts a presentation filter label into a criterion.
	ParseFilter func(string) (projector.Criterion, error)
	// FilterOptions are the default filter labels offered for the kind.
	FilterOptions []string
}

// IndexOf returns the position of id in items or -1.
func (d Descriptor[T, P]) IndexOf(items []T, id int64) int {
	for i, it := range items {
		if d.ID(it) == id {
			return i
		}
	}
	return -1
}

// Prepare returns a normalised copy of draft, ready for validation.
func (d Descriptor[T, P]) Prepare(draft T) T {
	out := d.Clone(draft)
	if d.Normalize != nil {
		out = d.Normalize(out)
	}
	return out
}

// CloneAll deep copies a collection.
func (d Descriptor[T, P]) CloneAll(items []T) []T {
	out := make([]T, len(items))
	for i, it := range items {
		out[i] = d.Clone(it)
	}
	return out
}

// MaxID returns the largest id in items, zero when empty.
func (d Descriptor[T, P]) MaxID(items []T) int64 {
	var max int64
	for _, it := range items {
		if id := d.ID(it); id > max {
			max = id
		}
	}
	return max
}
