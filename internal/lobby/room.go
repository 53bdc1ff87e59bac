package lobby

import (
	"github.com/cockroachdb/errors"
)

// Message is one chat turn in a room.
type Message struct {
	Sender SessionID
	Text   string
}

// Room is a two-party pairing. Participants are fixed for the room's lifetime
// and the history is append-only.
type Room struct {
	id           RoomID
	participants [2]SessionID
	messages     []Message
}

func newRoom(id RoomID, a, b SessionID) (*Room, error) {
	if a == "" || b == "" || a == b {
		return nil, errors.AssertionFailedf("room %s needs two distinct participants, got %q and %q", id, a, b)
	}
	return &Room{id: id, participants: [2]SessionID{a, b}}, nil
}

func (r *Room) has(id SessionID) bool {
	return r.participants[0] == id || r.participants[1] == id
}

// peerOf returns the participant that is not id.
func (r *Room) peerOf(id SessionID) (SessionID, bool) {
	switch id {
	case r.participants[0]:
		return r.participants[1], true
	case r.participants[1]:
		return r.participants[0], true
	default:
		return "", false
	}
}

func (r *Room) append(m Message) []Message {
	r.messages = append(r.messages, m)
	return r.history()
}

func (r *Room) history() []Message {
	out := make([]Message, len(r.messages))
	copy(out, r.messages)
	return out
}

// RoomSnapshot is a copy of a room, safe to hold outside the engine lock.
type RoomSnapshot struct {
	ID           RoomID
	Participants [2]SessionID
	Messages     []Message
}

func (r *Room) snapshot() RoomSnapshot {
	return RoomSnapshot{ID: r.id, Participants: r.participants, Messages: r.history()}
}

// roomStore holds the active rooms. Callers hold the engine lock.
type roomStore struct {
	rooms map[RoomID]*Room
	// member indexes which room a session is in.
	member map[SessionID]RoomID
}

func newRoomStore() *roomStore {
	return &roomStore{
		rooms:  make(map[RoomID]*Room),
		member: make(map[SessionID]RoomID),
	}
}

func (s *roomStore) has(id RoomID) bool {
	_, ok := s.rooms[id]
	return ok
}

func (s *roomStore) get(id RoomID) (*Room, bool) {
	r, ok := s.rooms[id]
	return r, ok
}

func (s *roomStore) put(r *Room) error {
	for _, p := range r.participants {
		if other, busy := s.member[p]; busy {
			return errors.AssertionFailedf("session %s already in room %s", p, other)
		}
	}
	s.rooms[r.id] = r
	for _, p := range r.participants {
		s.member[p] = r.id
	}
	return nil
}

func (s *roomStore) delete(id RoomID) {
	r, ok := s.rooms[id]
	if !ok {
		return
	}
	for _, p := range r.participants {
		if s.member[p] == id {
			delete(s.member, p)
		}
	}
	delete(s.rooms, id)
}

func (s *roomStore) len() int {
	return len(s.rooms)
}

// DestroyRoom tears down a room because leaving quit it. Both participants go
// back to Disconnected; the leaver is told it disconnected and the peer that
// its stranger left. A room that is already gone is a no-op.
func (e *Engine) DestroyRoom(id RoomID, leaving SessionID) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	defer e.observe()
	return e.destroyRoomLocked(id, leaving, true)
}

func (e *Engine) destroyRoomLocked(id RoomID, leaving SessionID, notifyLeaver bool) error {
	room, ok := e.rooms.get(id)
	if !ok {
		return notApplicable("room %s not found", id)
	}
	peerID, ok := room.peerOf(leaving)
	if !ok {
		err := errors.AssertionFailedf("session %s is not a participant of room %s", leaving, id)
		e.log.Error().Err(err).Str("room", string(id)).Msg("Room teardown aborted")
		return err
	}

	e.sessions.setState(leaving, Disconnected{})
	e.sessions.setState(peerID, Disconnected{})
	e.rooms.delete(id)
	e.metrics.roomClosed()

	if notifyLeaver {
		if leaver, ok := e.sessions.find(leaving); ok {
			e.send(leaver, disconnectedResponse())
		}
	}

	peer, ok := e.sessions.find(peerID)
	if !ok {
		return notApplicable("peer %s of room %s already gone", peerID, id)
	}
	e.send(peer, strangerLeftResponse())

	e.log.Debug().
		Str("room", string(id)).
		Str("session", string(leaving)).
		Str("peer", string(peerID)).
		Msg("Room destroyed")
	return nil
}

// PostMessage appends text to the room's history and sends the full history
// to both participants. The sender must be Talking in that room and text must
// not be empty.
func (e *Engine) PostMessage(id RoomID, sender SessionID, text string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.postMessageLocked(id, sender, text)
}

func (e *Engine) postMessageLocked(id RoomID, sender SessionID, text string) error {
	if text == "" {
		return notApplicable("empty message from %s", sender)
	}
	s, ok := e.sessions.find(sender)
	if !ok {
		return notApplicable("session %s not found", sender)
	}
	current, talking := s.Room()
	if !talking || current != id {
		return notApplicable("session %s is not talking in room %s", sender, id)
	}
	room, ok := e.rooms.get(id)
	if !ok {
		return notApplicable("room %s not found", id)
	}
	peerID, ok := room.peerOf(sender)
	if !ok {
		return errors.AssertionFailedf("session %s is talking in room %s but is not a participant", sender, id)
	}

	history := room.append(Message{Sender: sender, Text: text})
	e.metrics.messagePosted()

	recipients := []*Session{s}
	if peer, ok := e.sessions.find(peerID); ok {
		recipients = append(recipients, peer)
	}
	e.broadcast(messagesResponse(history), recipients...)
	return nil
}
