// Package server defines the frame envelope passed from client pumps to the
// hub and shared connection helpers.
package server

import (
	"strings"

	"github.com/cockroachdb/errors"
)

var (
	// ErrClientClosed is returned when sending to a client whose send
	// channel has been closed.
	ErrClientClosed = errors.New("client closed")

	// ErrSendBufferFull is returned when a client's outbound queue is full.
	ErrSendBufferFull = errors.New("client send buffer full")
)

// Frame is one raw inbound websocket message from a client.
type Frame struct {
	Client  *Client
	Payload []byte
}

// isExpectedCloseError checks if an error is expected during connection closure.
func isExpectedCloseError(err error) bool {
	if err == nil {
		return true
	}
	errStr := err.Error()
	return strings.Contains(errStr, "use of closed network connection") ||
		strings.Contains(errStr, "websocket: close sent") ||
		strings.Contains(errStr, "broken pipe")
}
