// Package server exposes HTTP handlers, including WebSocket upgrades, health
// checks, lobby stats, and the built-in test page.
package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/Tyrowin/strangerchat/internal/lobby"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     checkOrigin,
}

// WebSocketHandler upgrades GET requests to a websocket and hands the new
// client to hub, which registers a session and starts the client's pumps.
func WebSocketHandler(hub *Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed. WebSocket endpoint only accepts GET requests.", http.StatusMethodNotAllowed)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Debug().Err(err).Str("remote", r.RemoteAddr).Msg("WebSocket upgrade failed")
			return
		}

		client := NewClient(conn, hub, r.RemoteAddr)
		if !hub.join(client) {
			_ = conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
			_ = conn.Close()
		}
	}
}

// HealthHandler reports that the server is up.
func HealthHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	_, _ = fmt.Fprint(w, "Server works.")
}

// statsResponse is the body of the stats endpoint.
type statsResponse struct {
	lobby.Stats
	Lobby []lobby.SessionSnapshot `json:"lobby"`
}

// StatsHandler reports session and room counts plus every session's status.
func StatsHandler(hub *Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		engine := hub.Engine()
		body := statsResponse{Stats: engine.Stats(), Lobby: engine.Snapshot()}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(body); err != nil {
			log.Error().Err(err).Msg("Error writing stats response")
		}
	}
}

// TestPageHandler serves an HTML page for trying the stranger protocol from a
// browser: connect, look for a stranger, chat, and leave.
func TestPageHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html")
	if _, err := fmt.Fprint(w, testPage); err != nil {
		log.Error().Err(err).Msg("Error writing HTML response")
	}
}

const testPage = `<!DOCTYPE html>
<html>
<head>
    <title>Stranger Chat Test</title>
    <style>
        body { font-family: Arial, sans-serif; margin: 20px; }
        #messages {
            border: 1px solid #ccc;
            height: 300px;
            padding: 10px;
            overflow-y: scroll;
            margin: 10px 0;
            background-color: #f9f9f9;
        }
        input[type="text"] { width: 300px; padding: 5px; margin-right: 10px; }
        button {
            padding: 5px 15px;
            background-color: #007cba;
            color: white;
            border: none;
            cursor: pointer;
        }
        button:disabled { background-color: #9bbfd1; cursor: default; }
        .status { margin: 10px 0; padding: 5px; border-radius: 3px; }
        .talking { background-color: #d4edda; color: #155724; }
        .idle { background-color: #f8d7da; color: #721c24; }
    </style>
</head>
<body>
    <h1>Stranger Chat Test</h1>

    <div id="status" class="status idle">Not connected</div>

    <div>
        <button id="connectButton" onclick="toggleConnection()">Connect</button>
        <button id="readyButton" onclick="command('ready')" disabled>Find stranger</button>
        <button id="leaveButton" onclick="command('disconnect')" disabled>Leave</button>
    </div>
    <div style="margin-top: 10px">
        <input type="text" id="messageInput" placeholder="Type a message..." disabled>
        <button id="sendButton" onclick="sendMessage()" disabled>Send</button>
    </div>

    <div id="messages"></div>

    <script>
        const Codes = { Waiting: 0, Found: 1, NotFound: 2, Disconnected: 3, StrangerLeft: 4, MessagesSent: 5 };
        let ws = null;
        let sessionId = null;
        const messagesDiv = document.getElementById('messages');
        const messageInput = document.getElementById('messageInput');
        const statusDiv = document.getElementById('status');

        function setStatus(text, talking) {
            statusDiv.textContent = text;
            statusDiv.className = 'status ' + (talking ? 'talking' : 'idle');
            messageInput.disabled = !talking;
            document.getElementById('sendButton').disabled = !talking;
            document.getElementById('leaveButton').disabled = !talking;
            document.getElementById('readyButton').disabled = !sessionId || talking;
        }

        function note(text) {
            const el = document.createElement('div');
            el.style.color = 'gray';
            el.textContent = text;
            messagesDiv.appendChild(el);
            messagesDiv.scrollTop = messagesDiv.scrollHeight;
        }

        function renderHistory(history) {
            messagesDiv.innerHTML = '';
            history.forEach(function(m) {
                const el = document.createElement('div');
                const mine = m.id === sessionId;
                el.style.color = mine ? 'blue' : 'green';
                el.textContent = (mine ? 'You: ' : 'Stranger: ') + m.message;
                messagesDiv.appendChild(el);
            });
            messagesDiv.scrollTop = messagesDiv.scrollHeight;
        }

        function connect() {
            const scheme = location.protocol === 'https:' ? 'wss://' : 'ws://';
            ws = new WebSocket(scheme + location.host + '/ws');
            document.getElementById('connectButton').textContent = 'Close';

            ws.onmessage = function(event) {
                const data = JSON.parse(event.data);
                if (data.code === undefined && data.id) {
                    sessionId = data.id;
                    note('Connected as ' + sessionId);
                    setStatus('Connected', false);
                    return;
                }
                switch (data.code) {
                    case Codes.Waiting: setStatus(data.info, false); break;
                    case Codes.Found: messagesDiv.innerHTML = ''; setStatus(data.info, true); break;
                    case Codes.Disconnected: setStatus(data.info, false); break;
                    case Codes.StrangerLeft: note(data.info); setStatus(data.info, false); break;
                    case Codes.MessagesSent: renderHistory(data.messages || []); break;
                }
            };

            ws.onclose = function() {
                sessionId = null;
                ws = null;
                note('Connection closed');
                setStatus('Not connected', false);
                document.getElementById('connectButton').textContent = 'Connect';
            };
        }

        function toggleConnection() {
            if (ws) { ws.close(); } else { connect(); }
        }

        function command(name, text) {
            if (!ws || ws.readyState !== WebSocket.OPEN || !sessionId) { return; }
            const frame = { command: name, id: sessionId };
            if (text !== undefined) { frame.message = text; }
            ws.send(JSON.stringify(frame));
        }

        function sendMessage() {
            const text = messageInput.value;
            if (text) {
                command('message', text);
                messageInput.value = '';
            }
        }

        messageInput.addEventListener('keypress', function(e) {
            if (e.key === 'Enter') { sendMessage(); }
        });
    </script>
</body>
</html>`
