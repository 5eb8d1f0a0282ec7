package users

import (
	"github.com/odyssey-erp/admindash/internal/projector"
)

// Status is the account state of a user.
type Status string

const (
	// StatusActive marks an enabled account.
	StatusActive Status = "Active"
	// StatusInactive marks a disabled account.
	StatusInactive Status = "Inactive"
)

// User represents a user account for management.
type User struct {
	ID     int64  `json:"id" yaml:"id"`
	Name   string `json:"name" yaml:"name" validate:"required"`
	Email  string `json:"email" yaml:"email" validate:"required,email"`
	Role   string `json:"role" yaml:"role" validate:"required"`
	Status Status `json:"status" yaml:"status" validate:"oneof=Active Inactive"`
}

// Patch carries the fields of a partial user update. Nil fields are left untouched.
type Patch struct {
	Name   *string `json:"name,omitempty"`
	Email  *string `json:"email,omitempty"`
	Role   *string `json:"role,omitempty"`
	Status *Status `json:"status,omitempty"`
}

// IsEmpty reports whether the patch changes nothing.
func (p Patch) IsEmpty() bool {
	return p.Name == nil && p.Email == nil && p.Role == nil && p.Status == nil
}

// NewDraft returns the empty add-form draft.
func NewDraft() User {
	return User{Status: StatusActive}
}

// DefaultFilterOptions mirrors the role names seeded by default.
var DefaultFilterOptions = []string{projector.AllLabel, "Admin", "Editor", "Viewer"}
