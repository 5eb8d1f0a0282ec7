package roles

import (
	"fmt"
	"strings"

	"github.com/odyssey-erp/admindash/internal/entity"
	"github.com/odyssey-erp/admindash/internal/projector"
	"github.com/odyssey-erp/admindash/internal/shared"
)

// Descriptor returns the kind descriptor for roles.
func Descriptor() entity.Descriptor[Role, Patch] {
	return entity.Descriptor[Role, Patch]{
		Kind:       entity.KindRoles,
		Noun:       "Role",
		ID:         func(r Role) int64 { return r.ID },
		SetID:      func(r Role, id int64) Role { r.ID = id; return r },
		Clone:      Clone,
		Normalize:  Normalize,
		Apply:      Apply,
		Diff:       Diff,
		EmptyPatch: Patch.IsEmpty,
		NewDraft:   NewDraft,
		Validate: func(r Role) error {
			return entity.Validate(r)
		},
		Search: projector.Spec[Role]{
			Fields: func(r Role) []string { return []string{r.Name} },
			Filters: map[projector.Op]projector.Predicate[Role]{
				projector.OpWithPermission:    func(r Role, p string) bool { return r.Permissions.Has(p) },
				projector.OpWithoutPermission: func(r Role, p string) bool { return !r.Permissions.Has(p) },
			},
		},
		ParseFilter:   ParseFilter,
		FilterOptions: DefaultFilterOptions,
	}
}

// Clone deep copies r.
func Clone(r Role) Role {
	r.Permissions = r.Permissions.Clone()
	return r
}

// Normalize turns the permissions of r into a proper set.
func Normalize(r Role) Role {
	r.Permissions = NewPermissionSet(r.Permissions...)
	return r
}

// Apply merges the present fields of p into r. Permissions are normalised.
func Apply(r Role, p Patch) Role {
	r = Clone(r)
	if p.Name != nil {
		r.Name = *p.Name
	}
	if p.Permissions != nil {
		r.Permissions = NewPermissionSet(*p.Permissions...)
	}
	return r
}

// Diff returns the patch turning from into to.
func Diff(from, to Role) Patch {
	var p Patch
	if from.Name != to.Name {
		name := to.Name
		p.Name = &name
	}
	if !from.Permissions.Equal(to.Permissions) {
		perms := NewPermissionSet(to.Permissions...)
		p.Permissions = &perms
	}
	return p
}

// ParseFilter understands "All", "With <permission>" and "Without <permission>".
func ParseFilter(raw string) (projector.Criterion, error) {
	if projector.IsAllLabel(raw) {
		return projector.All(), nil
	}
	raw = strings.TrimSpace(raw)
	if rest, ok := cutPrefixFold(raw, "without "); ok && rest != "" {
		return projector.WithoutPermission(rest), nil
	}
	if rest, ok := cutPrefixFold(raw, "with "); ok && rest != "" {
		return projector.WithPermission(rest), nil
	}
	return projector.Criterion{}, fmt.Errorf("roles: parse filter %q: %w", raw, shared.ErrInvalidFilter)
}

func cutPrefixFold(s, prefix string) (string, bool) {
	if len(s) < len(prefix) || !strings.EqualFold(s[:len(prefix)], prefix) {
		return s, false
	}
	return strings.TrimSpace(s[len(prefix):]), true
}
