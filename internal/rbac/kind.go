package rbac

import (
	"strings"

	"github.com/odyssey-erp/admindash/internal/entity"
	"github.com/odyssey-erp/admindash/internal/projector"
)

// PermissionDescriptor returns the kind descriptor for permissions.
func PermissionDescriptor() entity.Descriptor[Permission, PermissionPatch] {
	return entity.Descriptor[Permission, PermissionPatch]{
		Kind:       entity.KindPermissions,
		Noun:       "Permission",
		ID:         func(p Permission) int64 { return p.ID },
		SetID:      func(p Permission, id int64) Permission { p.ID = id; return p },
		Clone:      func(p Permission) Permission { return p },
		Apply:      ApplyPermission,
		Diff:       DiffPermission,
		EmptyPatch: PermissionPatch.IsEmpty,
		NewDraft:   NewDraft,
		Validate: func(p Permission) error {
			return entity.Validate(p)
		},
		Search: projector.Spec[Permission]{
			Fields: func(p Permission) []string { return []string{p.Name} },
			Filters: map[projector.Op]projector.Predicate[Permission]{
				projector.OpByName: func(p Permission, name string) bool { return p.Name == name },
			},
		},
		ParseFilter:   ParsePermissionFilter,
		FilterOptions: DefaultFilterOptions,
	}
}

// ApplyPermission merges the present fields of patch into p.
func ApplyPermission(p Permission, patch PermissionPatch) Permission {
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.Description != nil {
		p.Description = *patch.Description
	}
	return p
}

// DiffPermission returns the patch turning from into to.
func DiffPermission(from, to Permission) PermissionPatch {
	var patch PermissionPatch
	if from.Name != to.Name {
		name := to.Name
		patch.Name = &name
	}
	if from.Description != to.Description {
		desc := to.Description
		patch.Description = &desc
	}
	return patch
}

// ParsePermissionFilter maps "All" to the sentinel and anything else to an exact name.
func ParsePermissionFilter(raw string) (projector.Criterion, error) {
	if projector.IsAllLabel(raw) {
		return projector.All(), nil
	}
	return projector.ByName(strings.TrimSpace(raw)), nil
}
