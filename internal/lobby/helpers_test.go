package lobby

import (
	"encoding/json"
	"fmt"
	"sync"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
)

// fakeConn records every frame the engine sends to it.
type fakeConn struct {
	mu     sync.Mutex
	frames [][]byte
	fail   bool
}

func (c *fakeConn) Send(payload []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fail {
		return errors.New("send buffer full")
	}
	c.frames = append(c.frames, append([]byte(nil), payload...))
	return nil
}

func (c *fakeConn) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.frames)
}

// responses decodes every frame after the handshake.
func (c *fakeConn) responses(t *testing.T) []Response {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()

	var out []Response
	for _, f := range c.frames[1:] {
		var r Response
		require.NoError(t, json.Unmarshal(f, &r))
		out = append(out, r)
	}
	return out
}

func (c *fakeConn) last(t *testing.T) Response {
	t.Helper()
	rs := c.responses(t)
	require.NotEmpty(t, rs, "no response received")
	return rs[len(rs)-1]
}

func (c *fakeConn) codes(t *testing.T) []Code {
	t.Helper()
	var codes []Code
	for _, r := range c.responses(t) {
		codes = append(codes, r.Code)
	}
	return codes
}

func sequentialIDs() IDGenerator {
	var mu sync.Mutex
	n := 0
	return func() (string, error) {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("id-%03d", n), nil
	}
}

func newTestEngine() *Engine {
	return New(WithIDGenerator(sequentialIDs()))
}

func connect(t *testing.T, e *Engine) (*fakeConn, SessionID) {
	t.Helper()
	conn := &fakeConn{}
	id, err := e.Register(conn)
	require.NoError(t, err)
	return conn, id
}

func command(t *testing.T, name string, id SessionID, text ...string) []byte {
	t.Helper()
	cmd := map[string]string{"command": name, "id": string(id)}
	if len(text) > 0 {
		cmd["message"] = text[0]
	}
	payload, err := json.Marshal(cmd)
	require.NoError(t, err)
	return payload
}

// checkInvariants verifies the Talking <-> room membership invariants.
func (e *Engine) checkInvariants() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	seen := make(map[SessionID]RoomID)
	for id, room := range e.rooms.rooms {
		if room.id != id {
			return fmt.Errorf("room stored under %s has id %s", id, room.id)
		}
		a, b := room.participants[0], room.participants[1]
		if a == "" || b == "" || a == b {
			return fmt.Errorf("room %s has participants %q and %q", id, a, b)
		}
		for _, p := range room.participants {
			if other, dup := seen[p]; dup {
				return fmt.Errorf("session %s in rooms %s and %s", p, other, id)
			}
			seen[p] = id
			s, ok := e.sessions.find(p)
			if !ok {
				return fmt.Errorf("room %s lists unknown session %s", id, p)
			}
			if r, talking := s.Room(); !talking || r != id {
				return fmt.Errorf("session %s in room %s has state %s", p, id, s.Status())
			}
		}
	}

	var err error
	e.sessions.each(func(s *Session) bool {
		r, talking := s.Room()
		if talking && seen[s.id] != r {
			err = fmt.Errorf("session %s talking in %s but not listed there", s.id, r)
			return false
		}
		if !talking {
			if _, listed := seen[s.id]; listed {
				err = fmt.Errorf("session %s listed in a room but %s", s.id, s.Status())
				return false
			}
		}
		return true
	})
	return err
}
