package projector

import "strings"

// Op names a filter predicate in a kind's filter table.
type Op string

const (
	// OpAll is the sentinel that matches every record.
	OpAll Op = "all"
	// OpByRole matches users whose role equals the value.
	OpByRole Op = "by_role"
	// OpWithPermission matches roles granting the value.
	OpWithPermission Op = "with_permission"
	// OpWithoutPermission matches roles not granting the value.
	OpWithoutPermission Op = "without_permission"
	// OpByName matches records whose name equals the value.
	OpByName Op = "by_name"
)

// AllLabel is the presentation label of the All sentinel.
const AllLabel = "All"

// Criterion is a categorical filter selector.
type Criterion struct {
	Op    Op     `json:"op"`
	Value string `json:"value,omitempty"`
}

// All returns the match-everything criterion.
func All() Criterion { return Criterion{Op: OpAll} }

// ByRole builds a user role criterion.
func ByRole(role string) Criterion { return Criterion{Op: OpByRole, Value: role} }

// WithPermission builds a role membership criterion.
func WithPermission(p string) Criterion { return Criterion{Op: OpWithPermission, Value: p} }

// WithoutPermission builds a role non-membership criterion.
func WithoutPermission(p string) Criterion { return Criterion{Op: OpWithoutPermission, Value: p} }

// ByName builds an exact name criterion.
func ByName(name string) Criterion { return Criterion{Op: OpByName, Value: name} }

// IsAll reports whether the criterion is the All sentinel. The zero value counts as All.
func (c Criterion) IsAll() bool {
	return c.Op == OpAll || c.Op == ""
}

// String renders the criterion the way the dashboard labels it.
func (c Criterion) String() string {
	switch c.Op {
	case OpAll, "":
		return AllLabel
	case OpWithPermission:
		return "With " + c.Value
	case OpWithoutPermission:
		return "Without " + c.Value
	default:
		return c.Value
	}
}

// IsAllLabel reports whether raw selects the All sentinel.
func IsAllLabel(raw string) bool {
	raw = strings.TrimSpace(raw)
	return raw == "" || strings.EqualFold(raw, AllLabel)
}
