package lobby

import (
	"sync"

	"github.com/rs/zerolog"
)

// Engine owns the session registry and the room store. All methods are safe
// for concurrent use; every mutation is serialized on one lock.
type Engine struct {
	mu       sync.Mutex
	sessions *registry
	rooms    *roomStore
	newID    IDGenerator
	log      zerolog.Logger
	metrics  *Metrics
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(l zerolog.Logger) Option {
	return func(e *Engine) { e.log = l.With().Str("component", "lobby").Logger() }
}

// WithMetrics makes the engine report to m.
func WithMetrics(m *Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// WithIDGenerator replaces the nanoid generator used for session and room ids.
func WithIDGenerator(gen IDGenerator) Option {
	return func(e *Engine) { e.newID = gen }
}

// New creates an empty engine.
func New(opts ...Option) *Engine {
	e := &Engine{
		sessions: newRegistry(),
		rooms:    newRoomStore(),
		newID:    NanoID,
		log:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Register adds a Disconnected session owning conn and sends it the handshake.
func (e *Engine) Register(conn Conn) (SessionID, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if s, ok := e.sessions.findByConn(conn); ok {
		return s.id, notApplicable("connection already registered as %s", s.id)
	}
	id, err := e.newSessionID()
	if err != nil {
		return "", err
	}
	s := newSession(id, conn)
	e.sessions.add(s)
	e.send(s, Handshake{ID: id})
	e.observe()

	e.log.Debug().Str("session", string(id)).Int("sessions", e.sessions.len()).Msg("Session registered")
	return id, nil
}

// Unregister removes the session owning conn. A session that was Talking
// has its room torn down in the same step; only the peer is notified.
func (e *Engine) Unregister(conn Conn) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	s, ok := e.sessions.findByConn(conn)
	if !ok {
		return notApplicable("connection not registered")
	}
	var teardownErr error
	if room, talking := s.Room(); talking {
		if err := e.destroyRoomLocked(room, s.id, false); err != nil && !IsNotApplicable(err) {
			teardownErr = err
		}
	}
	// the transport is gone either way
	e.sessions.remove(s.id)
	e.observe()

	e.log.Debug().Str("session", string(s.id)).Int("sessions", e.sessions.len()).Msg("Session unregistered")
	return teardownErr
}

// Find returns a snapshot of the session with id.
func (e *Engine) Find(id SessionID) (SessionSnapshot, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	s, ok := e.sessions.find(id)
	if !ok {
		return SessionSnapshot{}, false
	}
	return s.snapshot(), true
}

// Room returns a snapshot of the room with id.
func (e *Engine) Room(id RoomID) (RoomSnapshot, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	r, ok := e.rooms.get(id)
	if !ok {
		return RoomSnapshot{}, false
	}
	return r.snapshot(), true
}

// Rooms returns snapshots of every active room.
func (e *Engine) Rooms() []RoomSnapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]RoomSnapshot, 0, e.rooms.len())
	for _, r := range e.rooms.rooms {
		out = append(out, r.snapshot())
	}
	return out
}

// Snapshot lists every session in connection order.
func (e *Engine) Snapshot() []SessionSnapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

func (e *Engine) snapshotLocked() []SessionSnapshot {
	out := make([]SessionSnapshot, 0, e.sessions.len())
	e.sessions.each(func(s *Session) bool {
		out = append(out, s.snapshot())
		return true
	})
	return out
}

// Stats is a point-in-time count of engine state.
type Stats struct {
	Sessions int `json:"sessions"`
	Waiting  int `json:"waiting"`
	Talking  int `json:"talking"`
	Rooms    int `json:"rooms"`
}

// Stats counts sessions by status and active rooms.
func (e *Engine) Stats() Stats {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.statsLocked()
}

func (e *Engine) statsLocked() Stats {
	return Stats{
		Sessions: e.sessions.len(),
		Waiting:  e.sessions.countStatus(StatusReady),
		Talking:  e.sessions.countStatus(StatusTalking),
		Rooms:    e.rooms.len(),
	}
}

func (e *Engine) observe() {
	if e.metrics == nil {
		return
	}
	e.metrics.observe(e.statsLocked())
}

func (e *Engine) send(s *Session, v interface{}) {
	e.broadcast(v, s)
}

// broadcast encodes v once and pushes it to every session. Delivery failures
// are logged and otherwise ignored.
func (e *Engine) broadcast(v interface{}, to ...*Session) {
	payload, err := encode(v)
	if err != nil {
		e.log.Error().Err(err).Msg("Dropping outbound frame")
		return
	}
	for _, s := range to {
		if err := s.conn.Send(payload); err != nil {
			e.log.Debug().Err(err).Str("session", string(s.id)).Msg("Outbound frame not delivered")
		}
	}
}
