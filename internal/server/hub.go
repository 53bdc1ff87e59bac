// Package server coordinates client registration, inbound frame dispatch, and
// connection cleanup for the stranger chat websocket layer via the Hub type.
package server

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/Tyrowin/strangerchat/internal/lobby"
)

// Hub feeds connection events and inbound frames into the lobby engine from a
// single goroutine, and owns the lifetime of every client's pumps.
type Hub struct {
	engine     *lobby.Engine
	clients    map[*Client]bool
	inbound    chan Frame
	register   chan *Client
	unregister chan *Client
	mutex      sync.RWMutex
	wg         sync.WaitGroup
	ctx        context.Context
	cancel     context.CancelFunc
	done       chan struct{}
	log        zerolog.Logger
}

// NewHub creates a hub that drives engine. The returned Hub is ready to Run.
func NewHub(engine *lobby.Engine, logger zerolog.Logger) *Hub {
	ctx, cancel := context.WithCancel(context.Background())
	return &Hub{
		engine:     engine,
		clients:    make(map[*Client]bool),
		inbound:    make(chan Frame),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		ctx:        ctx,
		cancel:     cancel,
		done:       make(chan struct{}),
		log:        logger.With().Str("component", "hub").Logger(),
	}
}

// Engine returns the lobby engine the hub drives.
func (h *Hub) Engine() *lobby.Engine {
	return h.engine
}

// GetRegisterChan returns the channel used for registering new clients to the hub.
func (h *Hub) GetRegisterChan() chan<- *Client {
	return h.register
}

// GetUnregisterChan returns the channel used for unregistering clients from the hub.
func (h *Hub) GetUnregisterChan() chan<- *Client {
	return h.unregister
}

// GetInboundChan returns the channel carrying inbound client frames.
func (h *Hub) GetInboundChan() chan<- Frame {
	return h.inbound
}

// ClientCount returns the number of registered clients.
func (h *Hub) ClientCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}

// join hands a freshly upgraded client to the hub. It returns false once the
// hub is shutting down.
func (h *Hub) join(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.ctx.Done():
		return false
	}
}

// leave reports that a client's read side has ended.
func (h *Hub) leave(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.ctx.Done():
	}
}

// deliver forwards a frame to the hub loop. It returns false once the hub is
// shutting down.
func (h *Hub) deliver(f Frame) bool {
	select {
	case h.inbound <- f:
		return true
	case <-h.ctx.Done():
		return false
	}
}

// Run starts the hub's main event loop. It returns after Shutdown.
func (h *Hub) Run() {
	defer close(h.done)

	for {
		select {
		case <-h.ctx.Done():
			h.shutdownClients()
			return

		case client := <-h.register:
			h.handleRegister(client)

		case client := <-h.unregister:
			h.handleUnregister(client)

		case frame := <-h.inbound:
			h.handleFrame(frame)
		}
	}
}

func (h *Hub) handleRegister(client *Client) {
	if client == nil {
		h.log.Warn().Msg("Received nil client registration; skipping")
		return
	}

	// The handshake is queued on the client before its pumps start.
	id, err := h.engine.Register(client)
	if err != nil {
		h.log.Error().Err(err).Str("remote", client.addr).Msg("Failed to register session")
		client.close()
		if client.conn != nil {
			_ = client.conn.Close()
		}
		return
	}

	h.mutex.Lock()
	h.clients[client] = true
	clientCount := len(h.clients)
	h.mutex.Unlock()

	client.log = client.log.With().Str("session", string(id)).Logger()
	h.log.Info().
		Str("session", string(id)).
		Str("remote", client.addr).
		Int("clients", clientCount).
		Msg("Client connected")

	if client.conn == nil {
		return
	}
	h.wg.Add(2)
	go func() {
		defer h.wg.Done()
		client.writePump()
	}()
	go func() {
		defer h.wg.Done()
		client.readPump()
	}()
}

func (h *Hub) handleUnregister(client *Client) {
	h.mutex.Lock()
	if _, ok := h.clients[client]; !ok {
		h.mutex.Unlock()
		return
	}
	delete(h.clients, client)
	clientCount := len(h.clients)
	h.mutex.Unlock()

	if err := h.engine.Unregister(client); err != nil && !lobby.IsNotApplicable(err) {
		h.log.Error().Err(err).Str("remote", client.addr).Msg("Session teardown failed")
	}
	client.close()
	h.log.Info().Str("remote", client.addr).Int("clients", clientCount).Msg("Client disconnected")
}

func (h *Hub) handleFrame(frame Frame) {
	h.mutex.RLock()
	_, ok := h.clients[frame.Client]
	h.mutex.RUnlock()
	if !ok {
		return
	}
	// Outcomes are logged by the engine; nothing goes back to the transport.
	_ = h.engine.Dispatch(frame.Client, frame.Payload)
}

// shutdownClients gracefully closes all active client connections
func (h *Hub) shutdownClients() {
	h.log.Info().Msg("Shutting down all client connections...")

	h.mutex.Lock()
	clients := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	h.clients = make(map[*Client]bool)
	h.mutex.Unlock()

	for _, client := range clients {
		_ = h.engine.Unregister(client)
		client.close()
		if client.conn != nil {
			if err := client.conn.Close(); err != nil && !isExpectedCloseError(err) {
				h.log.Warn().Err(err).Str("remote", client.addr).Msg("Error closing client connection")
			}
		}
	}

	h.log.Info().Int("closed", len(clients)).Msg("Closed client connections")
}

// Shutdown stops the hub and waits for all client goroutines to complete,
// or until the timeout is reached.
func (h *Hub) Shutdown(timeout time.Duration) error {
	h.log.Info().Msg("Initiating hub shutdown...")

	h.cancel()
	<-h.done

	done := make(chan struct{})
	go func() {
		h.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		h.log.Info().Msg("Hub shutdown completed successfully")
		return nil
	case <-time.After(timeout):
		h.log.Warn().Msg("Hub shutdown timeout reached, some goroutines may still be running")
		return context.DeadlineExceeded
	}
}
