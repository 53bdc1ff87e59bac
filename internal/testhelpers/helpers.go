// Package testhelpers provides websocket and HTTP helpers shared by the
// server tests.
package testhelpers

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"github.com/Tyrowin/strangerchat/internal/lobby"
)

// DefaultOrigin is the origin the server allows with its default config.
const DefaultOrigin = "http://localhost:8080"

// WebSocketURL turns an httptest server URL into its /ws endpoint.
func WebSocketURL(serverURL string) string {
	return "ws" + strings.TrimPrefix(serverURL, "http") + "/ws"
}

// AssertStatusCode checks if the HTTP response has the expected status code.
func AssertStatusCode(t *testing.T, resp *http.Response, expected int) {
	t.Helper()
	require.Equal(t, expected, resp.StatusCode, "unexpected status code")
}

// MakeRequest creates and executes an HTTP request with a 5 second timeout.
func MakeRequest(t *testing.T, method, url string) *http.Response {
	t.Helper()

	client := &http.Client{Timeout: 5 * time.Second}
	req, err := http.NewRequest(method, url, http.NoBody)
	require.NoError(t, err)

	resp, err := client.Do(req)
	require.NoError(t, err)
	return resp
}

// Dial opens a websocket connection with the given Origin header.
func Dial(url, origin string) (*websocket.Conn, *http.Response, error) {
	dialer := websocket.Dialer{HandshakeTimeout: 5 * time.Second}
	headers := http.Header{}
	if origin != "" {
		headers.Set("Origin", origin)
	}
	return dialer.Dial(url, headers)
}

// Stranger is a connected test client that has read its handshake.
type Stranger struct {
	Conn *websocket.Conn
	ID   lobby.SessionID
}

// Connect dials url and reads the session handshake.
func Connect(t *testing.T, url string) *Stranger {
	t.Helper()

	conn, resp, err := Dial(url, DefaultOrigin)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	require.NoError(t, err)

	var hs lobby.Handshake
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	require.NoError(t, conn.ReadJSON(&hs))
	require.NotEmpty(t, hs.ID)

	t.Cleanup(func() { _ = conn.Close() })
	return &Stranger{Conn: conn, ID: hs.ID}
}

// Send writes a command frame for this session.
func (s *Stranger) Send(t *testing.T, command string, text ...string) {
	t.Helper()
	frame := map[string]string{"command": command, "id": string(s.ID)}
	if len(text) > 0 {
		frame["message"] = text[0]
	}
	payload, err := json.Marshal(frame)
	require.NoError(t, err)
	require.NoError(t, s.Conn.WriteMessage(websocket.TextMessage, payload))
}

// SendRaw writes payload as a text frame.
func (s *Stranger) SendRaw(t *testing.T, payload string) {
	t.Helper()
	require.NoError(t, s.Conn.WriteMessage(websocket.TextMessage, []byte(payload)))
}

// Expect reads the next response and checks its code.
func (s *Stranger) Expect(t *testing.T, code lobby.Code) lobby.Response {
	t.Helper()
	var resp lobby.Response
	require.NoError(t, s.Conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	require.NoError(t, s.Conn.ReadJSON(&resp))
	require.Equal(t, code, resp.Code, "unexpected response %+v", resp)
	return resp
}

// ExpectNothing fails if any frame arrives within timeout. A timed out
// websocket cannot be read again, so call it last.
func (s *Stranger) ExpectNothing(t *testing.T, timeout time.Duration) {
	t.Helper()
	require.NoError(t, s.Conn.SetReadDeadline(time.Now().Add(timeout)))
	_, payload, err := s.Conn.ReadMessage()
	require.Error(t, err, "unexpected frame %s", payload)
}

// Eventually polls cond until it holds or two seconds pass.
func Eventually(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	require.Eventually(t, cond, 2*time.Second, 10*time.Millisecond, msg)
}
