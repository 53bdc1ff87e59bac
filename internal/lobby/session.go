package lobby

// SessionID identifies a connected client for the lifetime of its connection.
type SessionID string

// RoomID identifies a two-party room.
type RoomID string

// Status is the externally visible matchmaking status of a session.
type Status int

const (
	StatusDisconnected Status = iota
	StatusReady
	StatusTalking
)

func (s Status) String() string {
	switch s {
	case StatusDisconnected:
		return "disconnected"
	case StatusReady:
		return "ready"
	case StatusTalking:
		return "talking"
	default:
		return "unknown"
	}
}

// State is the tagged status of a session. Only Talking carries a room, so a
// room id can never be read from a session that is not in one.
type State interface {
	Status() Status
}

// Disconnected is the state of a session that is neither waiting nor paired.
type Disconnected struct{}

// Ready is the state of a session waiting for a partner.
type Ready struct{}

// Talking is the state of a session placed into Room.
type Talking struct {
	Room RoomID
}

func (Disconnected) Status() Status { return StatusDisconnected }
func (Ready) Status() Status        { return StatusReady }
func (Talking) Status() Status      { return StatusTalking }

// Conn is the transport handle of a session. Send must not block; delivery is
// best effort and failures are not reported back into engine state.
type Conn interface {
	Send(payload []byte) error
}

// Session is one connected client's matchmaking and chat state.
type Session struct {
	id    SessionID
	state State
	conn  Conn
}

func newSession(id SessionID, conn Conn) *Session {
	return &Session{id: id, state: Disconnected{}, conn: conn}
}

// ID returns the session id.
func (s *Session) ID() SessionID { return s.id }

// Status returns the session's current status.
func (s *Session) Status() Status { return s.state.Status() }

// Room returns the session's room while it is Talking.
func (s *Session) Room() (RoomID, bool) {
	t, ok := s.state.(Talking)
	return t.Room, ok
}

// SessionSnapshot is a copy of a session's state, safe to hold outside the engine lock.
type SessionSnapshot struct {
	ID     SessionID `json:"id"`
	Status Status    `json:"-"`
	State  string    `json:"status"`
	Room   RoomID    `json:"room,omitempty"`
}

func (s *Session) snapshot() SessionSnapshot {
	room, _ := s.Room()
	return SessionSnapshot{
		ID:     s.id,
		Status: s.Status(),
		State:  s.Status().String(),
		Room:   room,
	}
}
