package realtime

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBind_RequiresTrackedConn(t *testing.T) {
	r := NewRegistry()
	c := &Conn{}
	cameOnline, wentOffline, bound := r.Bind(c, "u1")
	assert.False(t, bound)
	assert.False(t, cameOnline)
	assert.False(t, wentOffline)
	assert.False(t, r.IsOnline("u1"))
}

func TestBind_FirstConnectionComesOnline(t *testing.T) {
	r := NewRegistry()
	c := &Conn{}
	r.Track(c)

	cameOnline, _, bound := r.Bind(c, "u1")
	assert.True(t, bound)
	assert.True(t, cameOnline)
	assert.True(t, r.IsOnline("u1"))
	assert.Equal(t, []string{"u1"}, r.ListOnline())
}

func TestBind_Idempotent(t *testing.T) {
	r := NewRegistry()
	c := &Conn{}
	r.Track(c)

	r.Bind(c, "u1")
	cameOnline, wentOffline, bound := r.Bind(c, "u1")
	assert.True(t, bound)
	assert.False(t, cameOnline, "re-binding the same conn must be a no-op")
	assert.False(t, wentOffline)
	assert.Equal(t, []string{"u1"}, r.ListOnline())
	assert.Len(t, r.Connections("u1"), 1)
}

func TestBind_SecondConnectionSameUser(t *testing.T) {
	r := NewRegistry()
	c1, c2 := &Conn{}, &Conn{}
	r.Track(c1)
	r.Track(c2)

	r.Bind(c1, "u1")
	cameOnline, _, bound := r.Bind(c2, "u1")
	assert.True(t, bound)
	assert.False(t, cameOnline, "user already online")
	assert.Len(t, r.Connections("u1"), 2)
}

func TestBind_MoveToDifferentUser(t *testing.T) {
	r := NewRegistry()
	c := &Conn{}
	r.Track(c)

	r.Bind(c, "u1")
	cameOnline, wentOffline, _ := r.Bind(c, "u2")
	assert.True(t, cameOnline)
	assert.True(t, wentOffline, "u1 lost its only connection")
	assert.False(t, r.IsOnline("u1"))
	assert.True(t, r.IsOnline("u2"))
}

func TestBind_MoveLeavesPreviousUserOnlineViaOtherConn(t *testing.T) {
	r := NewRegistry()
	c1, c2 := &Conn{}, &Conn{}
	r.Track(c1)
	r.Track(c2)
	r.Bind(c1, "u1")
	r.Bind(c2, "u1")

	_, wentOffline, _ := r.Bind(c2, "u2")
	assert.False(t, wentOffline, "u1 still owns c1")
	assert.True(t, r.IsOnline("u1"))
	assert.True(t, r.IsOnline("u2"))
}

func TestBind_MoveToAlreadyOnlineUser(t *testing.T) {
	r := NewRegistry()
	c1, c2 := &Conn{}, &Conn{}
	r.Track(c1)
	r.Track(c2)
	r.Bind(c1, "u2")
	r.Bind(c2, "u1")

	// c2 switches to u2: no one came online, but u1 went offline.
	cameOnline, wentOffline, bound := r.Bind(c2, "u2")
	assert.True(t, bound)
	assert.False(t, cameOnline, "u2 was already online via c1")
	assert.True(t, wentOffline, "u1 lost its only connection")
	assert.Equal(t, []string{"u2"}, r.ListOnline())
}

func TestForget_RoundTrip(t *testing.T) {
	r := NewRegistry()
	c := &Conn{}
	r.Track(c)
	r.Bind(c, "u1")

	userID, wentOffline := r.Forget(c)
	assert.Equal(t, "u1", userID)
	assert.True(t, wentOffline)
	assert.False(t, r.IsOnline("u1"))
	assert.NotContains(t, r.ListOnline(), "u1")
}

func TestForget_Idempotent(t *testing.T) {
	r := NewRegistry()
	c := &Conn{}
	r.Track(c)
	r.Bind(c, "u1")

	r.Forget(c)
	userID, wentOffline := r.Forget(c)
	assert.Empty(t, userID)
	assert.False(t, wentOffline)
}

func TestForget_NeverTrackedIsNoop(t *testing.T) {
	r := NewRegistry()
	userID, wentOffline := r.Forget(&Conn{})
	assert.Empty(t, userID)
	assert.False(t, wentOffline)
}

func TestForget_AnonymousConn(t *testing.T) {
	r := NewRegistry()
	c := &Conn{}
	r.Track(c)

	userID, wentOffline := r.Forget(c)
	assert.Empty(t, userID)
	assert.False(t, wentOffline)
	assert.Empty(t, r.All())
}

func TestForget_LastConnectionRemovesUserEntry(t *testing.T) {
	r := NewRegistry()
	c1, c2 := &Conn{}, &Conn{}
	r.Track(c1)
	r.Track(c2)
	r.Bind(c1, "u1")
	r.Bind(c2, "u1")

	_, wentOffline := r.Forget(c1)
	assert.False(t, wentOffline, "one connection left")
	assert.True(t, r.IsOnline("u1"))

	_, wentOffline = r.Forget(c2)
	assert.True(t, wentOffline)
	assert.False(t, r.IsOnline("u1"))
}

func TestListOnline_Sorted(t *testing.T) {
	r := NewRegistry()
	for _, id := range []string{"charlie", "alice", "bob"} {
		c := &Conn{}
		r.Track(c)
		r.Bind(c, id)
	}
	assert.Equal(t, []string{"alice", "bob", "charlie"}, r.ListOnline())
}

func TestAll_IncludesAnonymous(t *testing.T) {
	r := NewRegistry()
	bound, anon := &Conn{}, &Conn{}
	r.Track(bound)
	r.Track(anon)
	r.Bind(bound, "u1")

	assert.Len(t, r.All(), 2)
}
