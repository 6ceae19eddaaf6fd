// Package server exposes HTTP handlers, including WebSocket upgrades, health
// checks, and the built-in test page.
package server

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     checkOrigin,
}

// WebSocketHandler handles WebSocket upgrade requests and manages client connections.
// It validates that the request uses the GET method, upgrades the HTTP connection
// to WebSocket, creates a new Client instance with a fresh connection id, and
// registers it with the hub, which launches the read/write pumps and acks with
// a connected event.
func WebSocketHandler(w http.ResponseWriter, r *http.Request) {
	NewWebSocketHandler(hub)(w, r)
}

// NewWebSocketHandler returns a WebSocket upgrade handler bound to a
// specific hub. Tests exercising shutdown behavior use it with a hub of
// their own; production traffic goes through the global hub.
func NewWebSocketHandler(h *Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed. WebSocket endpoint only accepts GET requests.", http.StatusMethodNotAllowed)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("WebSocket upgrade failed: %v", err)
			return
		}

		client := NewClient(conn, h, r.RemoteAddr)

		// Register the client with the hub; the hub will launch the pump goroutines.
		client.hub.register <- client
	}
}

// HealthHandler provides a simple health check endpoint that returns server status.
// It responds with a plain text message indicating the server is running.
func HealthHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	_, _ = fmt.Fprintf(w, "Chat relay server is running!")
}

// TestPageHandler serves an HTML test page for exercising the chat protocol.
// It provides a simple web interface to connect, join a room, send messages,
// and watch presence and typing events arrive.
func TestPageHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html")
	html := `<!DOCTYPE html>
<html>
<head>
    <title>Chat Relay Test</title>
    <style>
        body { font-family: Arial, sans-serif; margin: 20px; }
        #events {
            border: 1px solid #ccc;
            height: 300px;
            padding: 10px;
            overflow-y: scroll;
            margin: 10px 0;
            background-color: #f9f9f9;
        }
        input[type="text"] { padding: 5px; margin-right: 10px; }
        button {
            padding: 5px 15px;
            background-color: #007cba;
            color: white;
            border: none;
            cursor: pointer;
        }
        button:hover { background-color: #005a87; }
        #users { color: #555; margin: 10px 0; }
    </style>
</head>
<body>
    <h1>Chat Relay Test</h1>

    <div>
        <input type="text" id="username" placeholder="Username">
        <input type="text" id="room" placeholder="Room id" value="lobby">
        <button onclick="joinRoom()">Join</button>
        <button onclick="leaveRoom()">Leave</button>
    </div>
    <div id="users">No presence yet</div>
    <div id="events"></div>
    <div>
        <input type="text" id="messageInput" placeholder="Type a message...">
        <button onclick="sendMessage()">Send</button>
    </div>

    <script>
        const eventsDiv = document.getElementById('events');
        const usersDiv = document.getElementById('users');
        const messageInput = document.getElementById('messageInput');
        let ws = new WebSocket('ws://' + location.host + '/ws');

        function logEvent(text) {
            const el = document.createElement('div');
            el.textContent = text;
            eventsDiv.appendChild(el);
            eventsDiv.scrollTop = eventsDiv.scrollHeight;
        }

        function emit(event, data) {
            if (ws && ws.readyState === WebSocket.OPEN) {
                ws.send(JSON.stringify({event: event, data: data}));
            }
        }

        ws.onmessage = function(e) {
            const env = JSON.parse(e.data);
            const d = env.data;
            switch (env.event) {
            case 'connected':
                logEvent(d.message);
                break;
            case 'room_joined':
                logEvent('Joined ' + d.room_id + ' (' + d.messages.length + ' messages of history)');
                d.messages.forEach(m => logEvent(m.username + ': ' + m.message));
                usersDiv.textContent = 'Present: ' + d.users.map(u => u.username).join(', ');
                break;
            case 'user_joined':
                logEvent(d.username + ' joined');
                usersDiv.textContent = 'Present: ' + d.users.map(u => u.username).join(', ');
                break;
            case 'user_left':
                logEvent(d.username + ' left');
                usersDiv.textContent = 'Present: ' + d.users.map(u => u.username).join(', ');
                break;
            case 'new_message':
                logEvent(d.username + ': ' + d.message);
                break;
            case 'user_typing':
                logEvent(d.username + (d.is_typing ? ' is typing...' : ' stopped typing'));
                break;
            case 'error':
                logEvent('Error: ' + d.message);
                break;
            }
        };

        function joinRoom() {
            emit('join_room', {
                username: document.getElementById('username').value,
                room_id: document.getElementById('room').value
            });
        }

        function leaveRoom() {
            emit('leave_room', {room_id: document.getElementById('room').value});
        }

        function sendMessage() {
            const text = messageInput.value.trim();
            if (text) {
                emit('send_message', {room_id: document.getElementById('room').value, message: text});
                messageInput.value = '';
            }
        }

        messageInput.addEventListener('input', function() {
            emit('typing', {room_id: document.getElementById('room').value, is_typing: messageInput.value.length > 0});
        });
        messageInput.addEventListener('keypress', function(e) {
            if (e.key === 'Enter') {
                sendMessage();
            }
        });
    </script>
</body>
</html>`
	if _, err := fmt.Fprint(w, html); err != nil {
		log.Printf("Error writing HTML response: %v", err)
	}
}
