package realtime

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRooms_JoinIsIdempotent(t *testing.T) {
	r := NewRooms()
	s := newFakeSession(1)

	r.Join(s, "community_42")
	r.Join(s, "community_42")

	assert.Len(t, r.Members("community_42", nil), 1)
	assert.Equal(t, []string{"community_42"}, r.MemberRooms(s))
}

func TestRooms_LeaveNeverJoinedIsNoOp(t *testing.T) {
	r := NewRooms()
	s := newFakeSession(1)

	assert.NotPanics(t, func() {
		r.Leave(s, "community_9")
	})
	assert.Empty(t, r.Members("community_9", nil))
}

func TestRooms_LeaveAllRemovesEveryMembership(t *testing.T) {
	r := NewRooms()
	leaving := newFakeSession(1)
	staying := newFakeSession(2)

	r.Join(leaving, "community_1")
	r.Join(leaving, "community_2")
	r.Join(staying, "community_1")

	left := r.LeaveAll(leaving)

	assert.ElementsMatch(t, []string{"community_1", "community_2"}, left)
	assert.Empty(t, r.MemberRooms(leaving))

	// Other members are unaffected.
	members := r.Members("community_1", nil)
	assert.Len(t, members, 1)
	assert.Same(t, staying, members[0].(*fakeSession))
}

func TestRooms_MembersExcludesSender(t *testing.T) {
	r := NewRooms()
	a := newFakeSession(1)
	b := newFakeSession(2)
	r.Join(a, "community_5")
	r.Join(b, "community_5")

	members := r.Members("community_5", a)
	assert.Len(t, members, 1)
	assert.Same(t, b, members[0].(*fakeSession))
}
