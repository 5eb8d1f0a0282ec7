package projector

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type item struct {
	ID    int
	Name  string
	Email string
	Tags  []string
}

func itemSpec() Spec[item] {
	return Spec[item]{
		Fields: func(it item) []string { return []string{it.Name, it.Email} },
		Filters: map[Op]Predicate[item]{
			OpByName: func(it item, v string) bool { return it.Name == v },
			OpWithPermission: func(it item, v string) bool {
				for _, t := range it.Tags {
					if t == v {
						return true
					}
				}
				return false
			},
			OpWithoutPermission: func(it item, v string) bool {
				for _, t := range it.Tags {
					if t == v {
						return false
					}
				}
				return true
			},
		},
	}
}

func sample() []item {
	return []item{
		{ID: 1, Name: "Read", Email: "r@example.com"},
		{ID: 2, Name: "Editor", Email: "ed@example.com", Tags: []string{"Read", "Write"}},
		{ID: 3, Name: "Admin", Email: "root@example.com", Tags: []string{"Read", "Write", "Delete"}},
		{ID: 4, Name: "ÉCRIRE", Email: "fr@example.com"},
	}
}

func TestProjectIdentityWithoutFilters(t *testing.T) {
	items := sample()
	got := Project(items, "", All(), itemSpec())
	assert.Equal(t, items, got)

	zero := Project(items, "", Criterion{}, itemSpec())
	assert.Equal(t, items, zero)
}

func TestProjectSearchIsCaseInsensitiveSubstring(t *testing.T) {
	items := []item{{ID: 1, Name: "Read"}}

	assert.Equal(t, items, Project(items, "rea", All(), itemSpec()))
	assert.Empty(t, Project(items, "xyz", All(), itemSpec()))
	assert.Equal(t, items, Project(items, "READ", All(), itemSpec()))
}

func TestProjectSearchesAnyField(t *testing.T) {
	got := Project(sample(), "ROOT@", All(), itemSpec())
	require.Len(t, got, 1)
	assert.Equal(t, 3, got[0].ID)

	got = Project(sample(), "écr", All(), itemSpec())
	require.Len(t, got, 1)
	assert.Equal(t, 4, got[0].ID)
}

func TestProjectPermissionMembership(t *testing.T) {
	editor := []item{{ID: 2, Name: "Editor", Tags: []string{"Read", "Write"}}}

	assert.Equal(t, editor, Project(editor, "", WithoutPermission("Delete"), itemSpec()))
	assert.Empty(t, Project(editor, "", WithPermission("Delete"), itemSpec()))
}

func TestProjectRequiresBothPredicates(t *testing.T) {
	got := Project(sample(), "e", WithPermission("Write"), itemSpec())
	require.Len(t, got, 2)
	assert.Equal(t, []int{2, 3}, []int{got[0].ID, got[1].ID})

	assert.Empty(t, Project(sample(), "read", WithPermission("Write"), itemSpec()))
}

func TestProjectUnknownOperatorMatchesNothing(t *testing.T) {
	assert.Empty(t, Project(sample(), "", ByRole("Admin"), itemSpec()))
}

func TestProjectIsOrderPreservingSubsequence(t *testing.T) {
	items := sample()
	queries := []string{"", "e", "a", "example", "zzz", "R"}
	criteria := []Criterion{All(), WithPermission("Read"), WithoutPermission("Delete"), ByName("Admin")}
	for _, q := range queries {
		for _, c := range criteria {
			got := Project(items, q, c, itemSpec())
			idx := 0
			for _, g := range got {
				for idx < len(items) && items[idx].ID != g.ID {
					idx++
				}
				require.Less(t, idx, len(items), "query %q criterion %s: %d out of order", q, c, g.ID)
				idx++
			}
		}
	}
}

func TestProjectDoesNotMutateSource(t *testing.T) {
	items := sample()
	before := make([]item, len(items))
	copy(before, items)

	_ = Project(items, strings.ToUpper("a"), WithPermission("Read"), itemSpec())
	assert.Equal(t, before, items)
}

func TestCriterionString(t *testing.T) {
	assert.Equal(t, "All", All().String())
	assert.Equal(t, "With Delete", WithPermission("Delete").String())
	assert.Equal(t, "Without Delete", WithoutPermission("Delete").String())
	assert.Equal(t, "Admin", ByRole("Admin").String())
	assert.True(t, IsAllLabel(" all "))
	assert.True(t, IsAllLabel(""))
	assert.False(t, IsAllLabel("Admin"))
}
