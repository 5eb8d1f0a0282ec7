package rbac

import "github.com/odyssey-erp/admindash/internal/projector"

// Permission represents an atomic capability referenced by roles.
type Permission struct {
	ID          int64  `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name" validate:"required"`
	Description string `json:"description" yaml:"description"`
}

// PermissionPatch carries the fields of a partial permission update.
type PermissionPatch struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
}

// IsEmpty reports whether the patch changes nothing.
func (p PermissionPatch) IsEmpty() bool {
	return p.Name == nil && p.Description == nil
}

// NewDraft returns the empty add-form draft.
func NewDraft() Permission {
	return Permission{}
}

// DefaultFilterOptions mirrors the permissions seeded by default.
var DefaultFilterOptions = []string{projector.AllLabel, "Read", "Write", "Delete"}
