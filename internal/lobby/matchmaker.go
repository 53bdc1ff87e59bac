package lobby

import "github.com/cockroachdb/errors"

// TryMatch marks the session Ready and pairs it with the earliest connected
// other Ready session. Both sides get Found when a room is created; otherwise
// the caller gets Waiting. A Talking session must disconnect first.
func (e *Engine) TryMatch(id SessionID) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	defer e.observe()
	return e.tryMatchLocked(id)
}

func (e *Engine) tryMatchLocked(id SessionID) error {
	s, ok := e.sessions.find(id)
	if !ok {
		return notApplicable("session %s not found", id)
	}
	if room, talking := s.Room(); talking {
		return notApplicable("session %s is already talking in room %s", id, room)
	}
	prev := s.state
	s.state = Ready{}

	other := e.firstWaiting(id)
	if other == nil {
		e.send(s, waitingResponse())
		e.log.Debug().Str("session", string(id)).Msg("Waiting for stranger")
		return nil
	}

	room, err := e.createRoomLocked(s, other)
	if err != nil {
		s.state = prev
		e.log.Error().Err(err).Str("session", string(id)).Msg("Matching aborted")
		return err
	}
	e.broadcast(foundResponse(), other, s)

	e.log.Debug().
		Str("room", string(room.id)).
		Str("session", string(id)).
		Str("peer", string(other.id)).
		Msg("Strangers paired")
	return nil
}

// firstWaiting returns the first Ready session in connection order other than self.
func (e *Engine) firstWaiting(self SessionID) *Session {
	var found *Session
	e.sessions.each(func(s *Session) bool {
		if s.id != self && s.Status() == StatusReady {
			found = s
			return false
		}
		return true
	})
	return found
}

// createRoomLocked pairs two Ready sessions into a new room.
func (e *Engine) createRoomLocked(a, b *Session) (*Room, error) {
	if a.Status() != StatusReady || b.Status() != StatusReady {
		return nil, errors.AssertionFailedf("pairing %s (%s) with %s (%s): both must be ready",
			a.id, a.Status(), b.id, b.Status())
	}
	id, err := e.newRoomID()
	if err != nil {
		return nil, err
	}
	room, err := newRoom(id, a.id, b.id)
	if err != nil {
		return nil, err
	}
	if err := e.rooms.put(room); err != nil {
		return nil, err
	}
	a.state = Talking{Room: id}
	b.state = Talking{Room: id}
	e.metrics.roomOpened()
	return room, nil
}
