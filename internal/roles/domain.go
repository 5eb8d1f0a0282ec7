package roles

import (
	"strings"

	"github.com/odyssey-erp/admindash/internal/projector"
)

// Role represents a named grouping of permissions.
type Role struct {
	ID          int64         `json:"id" yaml:"id"`
	Name        string        `json:"name" yaml:"name" validate:"required"`
	Permissions PermissionSet `json:"permissions" yaml:"permissions" validate:"dive,required"`
}

// PermissionSet holds permission names. Membership is what matters; order is
// kept only for stable display.
type PermissionSet []string

// NewPermissionSet builds a set, trimming names and dropping duplicates and blanks.
func NewPermissionSet(names ...string) PermissionSet {
	seen := make(map[string]struct{}, len(names))
	out := make(PermissionSet, 0, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}

// Has reports whether name is granted.
func (s PermissionSet) Has(name string) bool {
	for _, p := range s {
		if p == name {
			return true
		}
	}
	return false
}

// Toggle returns a copy with name added when absent and removed when present.
func (s PermissionSet) Toggle(name string) PermissionSet {
	if s.Has(name) {
		out := make(PermissionSet, 0, len(s))
		for _, p := range s {
			if p != name {
				out = append(out, p)
			}
		}
		return out
	}
	return append(s.Clone(), name)
}

// Clone copies the set.
func (s PermissionSet) Clone() PermissionSet {
	if s == nil {
		return nil
	}
	out := make(PermissionSet, len(s))
	copy(out, s)
	return out
}

// Equal compares membership, ignoring order.
func (s PermissionSet) Equal(other PermissionSet) bool {
	a, b := NewPermissionSet(s...), NewPermissionSet(other...)
	if len(a) != len(b) {
		return false
	}
	for _, p := range a {
		if !b.Has(p) {
			return false
		}
	}
	return true
}

// Patch carries the fields of a partial role update.
type Patch struct {
	Name        *string        `json:"name,omitempty"`
	Permissions *PermissionSet `json:"permissions,omitempty"`
}

// IsEmpty reports whether the patch changes nothing.
func (p Patch) IsEmpty() bool {
	return p.Name == nil && p.Permissions == nil
}

// NewDraft returns the empty add-form draft.
func NewDraft() Role {
	return Role{Permissions: PermissionSet{}}
}

// DefaultFilterOptions are the role filters offered in the list view.
var DefaultFilterOptions = []string{projector.AllLabel, "With Delete", "Without Delete"}
