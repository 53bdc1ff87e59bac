package lobby

import "container/list"

// registry holds every connected session in connection order. Iteration order
// is insertion order, which gives the matchmaker its FIFO tie-break.
// Callers hold the engine lock.
type registry struct {
	order  *list.List
	byID   map[SessionID]*list.Element
	byConn map[Conn]SessionID
}

func newRegistry() *registry {
	return &registry{
		order:  list.New(),
		byID:   make(map[SessionID]*list.Element),
		byConn: make(map[Conn]SessionID),
	}
}

func (r *registry) add(s *Session) {
	r.byID[s.id] = r.order.PushBack(s)
	r.byConn[s.conn] = s.id
}

func (r *registry) has(id SessionID) bool {
	_, ok := r.byID[id]
	return ok
}

func (r *registry) find(id SessionID) (*Session, bool) {
	el, ok := r.byID[id]
	if !ok {
		return nil, false
	}
	return el.Value.(*Session), true
}

// findByConn locates the session owning a transport handle.
func (r *registry) findByConn(conn Conn) (*Session, bool) {
	id, ok := r.byConn[conn]
	if !ok {
		return nil, false
	}
	return r.find(id)
}

func (r *registry) remove(id SessionID) {
	el, ok := r.byID[id]
	if !ok {
		return
	}
	s := r.order.Remove(el).(*Session)
	delete(r.byID, id)
	delete(r.byConn, s.conn)
}

// setState is a no-op for unknown ids.
func (r *registry) setState(id SessionID, state State) {
	if s, ok := r.find(id); ok {
		s.state = state
	}
}

// each visits sessions in insertion order until fn returns false.
func (r *registry) each(fn func(*Session) bool) {
	for el := r.order.Front(); el != nil; el = el.Next() {
		if !fn(el.Value.(*Session)) {
			return
		}
	}
}

func (r *registry) len() int {
	return r.order.Len()
}

func (r *registry) countStatus(status Status) int {
	n := 0
	r.each(func(s *Session) bool {
		if s.Status() == status {
			n++
		}
		return true
	})
	return n
}
