package lobby

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryKeepsInsertionOrder(t *testing.T) {
	r := newRegistry()
	for _, id := range []SessionID{"c", "a", "b"} {
		r.add(newSession(id, &fakeConn{}))
	}
	r.remove("a")
	r.add(newSession("a", &fakeConn{}))

	var order []SessionID
	r.each(func(s *Session) bool {
		order = append(order, s.id)
		return true
	})
	assert.Equal(t, []SessionID{"c", "b", "a"}, order)
	assert.Equal(t, 3, r.len())
}

func TestRegistryFindByConn(t *testing.T) {
	r := newRegistry()
	connA, connB := &fakeConn{}, &fakeConn{}
	r.add(newSession("a", connA))
	r.add(newSession("b", connB))

	s, ok := r.findByConn(connB)
	require.True(t, ok)
	assert.Equal(t, SessionID("b"), s.id)

	r.remove("b")
	_, ok = r.findByConn(connB)
	assert.False(t, ok)
	_, ok = r.findByConn(&fakeConn{})
	assert.False(t, ok)
}

func TestRegistrySetStateUnknownIsNoop(t *testing.T) {
	r := newRegistry()
	r.add(newSession("a", &fakeConn{}))

	r.setState("missing", Ready{})
	r.setState("a", Ready{})

	s, ok := r.find("a")
	require.True(t, ok)
	assert.Equal(t, StatusReady, s.Status())
	assert.Equal(t, 1, r.countStatus(StatusReady))
}

func TestSessionRoomOnlyWhileTalking(t *testing.T) {
	s := newSession("a", &fakeConn{})
	_, ok := s.Room()
	assert.False(t, ok)
	assert.Equal(t, StatusDisconnected, s.Status())

	s.state = Talking{Room: "r1"}
	room, ok := s.Room()
	assert.True(t, ok)
	assert.Equal(t, RoomID("r1"), room)

	s.state = Disconnected{}
	_, ok = s.Room()
	assert.False(t, ok)
}

func TestRegisterSendsHandshake(t *testing.T) {
	e := newTestEngine()
	conn, id := connect(t, e)

	require.Equal(t, 1, conn.count())
	assert.JSONEq(t, `{"id":"`+string(id)+`"}`, string(conn.frames[0]))

	snap, ok := e.Find(id)
	require.True(t, ok)
	assert.Equal(t, StatusDisconnected, snap.Status)
}

func TestRegisterSkipsLiveIDs(t *testing.T) {
	ids := []string{"dup", "dup", "fresh"}
	e := New(WithIDGenerator(func() (string, error) {
		id := ids[0]
		ids = ids[1:]
		return id, nil
	}))

	_, first := connect(t, e)
	_, second := connect(t, e)
	assert.Equal(t, SessionID("dup"), first)
	assert.Equal(t, SessionID("fresh"), second)
}

func TestRegisterSameConnTwice(t *testing.T) {
	e := newTestEngine()
	conn, id := connect(t, e)

	again, err := e.Register(conn)
	assert.True(t, IsNotApplicable(err))
	assert.Equal(t, id, again)
	assert.Equal(t, 1, e.Stats().Sessions)
}

func TestUnregisterUnknownConn(t *testing.T) {
	e := newTestEngine()
	err := e.Unregister(&fakeConn{})
	assert.True(t, IsNotApplicable(err))
}

func TestNanoIDShape(t *testing.T) {
	id, err := NanoID()
	require.NoError(t, err)
	assert.Len(t, id, idLength)
	assert.Regexp(t, `^[0-9a-z]+$`, id)
}
