package notify

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/admindash/internal/entity"
	"github.com/odyssey-erp/admindash/internal/shared"
)

func TestMessagesMatchDashboardWording(t *testing.T) {
	ok := Success(entity.KindUsers, "User", ActionAdd, 4)
	assert.Equal(t, "Success", ok.Title)
	assert.Equal(t, "User added successfully", ok.Description)
	assert.Equal(t, SeverityDefault, ok.Severity)
	assert.NotEmpty(t, ok.ID)

	fail := Failure(entity.KindRoles, "Role", ActionDelete, 2, shared.ErrTimeout)
	assert.Equal(t, "Error", fail.Title)
	assert.Equal(t, "Failed to delete role", fail.Description)
	assert.Equal(t, SeverityDestructive, fail.Severity)
	assert.Equal(t, "The store did not respond in time", fail.Detail)

	fetch := Failure(entity.KindPermissions, "Permission", ActionFetch, 0, errors.New("boom"))
	assert.Equal(t, "Failed to fetch permissions", fetch.Description)
}

func TestStreamDropsWhenFull(t *testing.T) {
	s := NewStream(1)
	s.Notify(Success(entity.KindUsers, "User", ActionAdd, 1))
	s.Notify(Success(entity.KindUsers, "User", ActionAdd, 2))

	assert.Equal(t, 1, s.Dropped())
	first := <-s.C()
	assert.Equal(t, int64(1), first.RecordID)

	s.Close()
	s.Notify(Success(entity.KindUsers, "User", ActionAdd, 3))
	_, open := <-s.C()
	require.False(t, open)
}

func TestMultiSkipsNil(t *testing.T) {
	var got []Notification
	m := Multi{nil, NotifierFunc(func(n Notification) { got = append(got, n) }), Discard}
	m.Notify(Discarded(entity.KindUsers, "User", 7))

	require.Len(t, got, 1)
	assert.Equal(t, "Unsaved changes to user 7 were discarded", got[0].Description)
}
