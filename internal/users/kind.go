package users

import (
	"strings"

	"github.com/odyssey-erp/admindash/internal/entity"
	"github.com/odyssey-erp/admindash/internal/projector"
)

// Descriptor returns the kind descriptor wiring users into the generic
// stores and list controller.
func Descriptor() entity.Descriptor[User, Patch] {
	return entity.Descriptor[User, Patch]{
		Kind:       entity.KindUsers,
		Noun:       "User",
		ID:         func(u User) int64 { return u.ID },
		SetID:      func(u User, id int64) User { u.ID = id; return u },
		Clone:      func(u User) User { return u },
		Apply:      Apply,
		Diff:       Diff,
		EmptyPatch: Patch.IsEmpty,
		NewDraft:   NewDraft,
		Validate: func(u User) error {
			return entity.Validate(u)
		},
		Search: projector.Spec[User]{
			Fields: func(u User) []string { return []string{u.Name, u.Email} },
			Filters: map[projector.Op]projector.Predicate[User]{
				projector.OpByRole: func(u User, role string) bool { return u.Role == role },
			},
		},
		ParseFilter:   ParseFilter,
		FilterOptions: DefaultFilterOptions,
	}
}

// Apply merges the present fields of p into u.
func Apply(u User, p Patch) User {
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.Role != nil {
		u.Role = *p.Role
	}
	if p.Status != nil {
		u.Status = *p.Status
	}
	return u
}

// Diff returns the patch turning from into to.
func Diff(from, to User) Patch {
	var p Patch
	if from.Name != to.Name {
		p.Name = ptr(to.Name)
	}
	if from.Email != to.Email {
		p.Email = ptr(to.Email)
	}
	if from.Role != to.Role {
		p.Role = ptr(to.Role)
	}
	if from.Status != to.Status {
		p.Status = ptr(to.Status)
	}
	return p
}

// ParseFilter maps "All" to the sentinel and anything else to a role name.
func ParseFilter(raw string) (projector.Criterion, error) {
	if projector.IsAllLabel(raw) {
		return projector.All(), nil
	}
	return projector.ByRole(strings.TrimSpace(raw)), nil
}

func ptr[T any](v T) *T { return &v }
