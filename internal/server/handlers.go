package server

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/Tyrowin/roomchat/internal/chat"
)

// RoomLister reports the occupied rooms.
type RoomLister interface {
	Rooms() []string
}

// Handlers holds the HTTP endpoints of the chat service.
type Handlers struct {
	log      *slog.Logger
	hub      *Hub
	rooms    RoomLister
	upgrader websocket.Upgrader
}

// NewHandlers builds the endpoints. Only origins in allowedOrigins may open a
// WebSocket; "*" allows every origin.
func NewHandlers(log *slog.Logger, hub *Hub, rooms RoomLister, allowedOrigins []string) *Handlers {
	policy := newOriginPolicy(log, allowedOrigins)
	return &Handlers{
		log:   log,
		hub:   hub,
		rooms: rooms,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     policy.checkOrigin,
		},
	}
}

// WebSocket upgrades the request and hands the connection to the hub.
func (h *Handlers) WebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("WebSocket upgrade failed", "remote_addr", r.RemoteAddr, "error", err)
		return
	}

	client := NewClient(conn, h.hub, r.RemoteAddr)
	if !h.hub.Register(client) {
		_ = conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
		_ = conn.Close()
	}
}

// Health reports that the process is serving.
func (h *Handlers) Health(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	_, _ = fmt.Fprint(w, "Chat server is running!")
}

// Rooms lists the occupied rooms.
func (h *Handlers) Rooms(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, chat.RoomsList{Rooms: h.rooms.Rooms()})
}

func (h *Handlers) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Warn("Error writing JSON response", "error", err)
	}
}

// ChatPage serves a small browser client speaking the frame protocol.
func (h *Handlers) ChatPage(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := fmt.Fprint(w, chatPage); err != nil {
		h.log.Warn("Error writing HTML response", "error", err)
	}
}

const chatPage = `<!DOCTYPE html>
<html>
<head>
    <title>Chat</title>
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
        #sidebar { float: right; width: 200px; }
        input[type="text"] { width: 300px; padding: 5px; margin-right: 10px; }
        button {
            padding: 5px 15px;
            background-color: #007cba;
            color: white;
            border: none;
            cursor: pointer;
        }
        button:hover { background-color: #005a87; }
        .meta { color: gray; font-size: 0.8em; }
        .error { color: #721c24; }
    </style>
</head>
<body>
    <div id="join">
        <h1>Join</h1>
        <input type="text" id="username" placeholder="Display name">
        <input type="text" id="room" placeholder="Room" list="rooms">
        <datalist id="rooms"></datalist>
        <button onclick="join()">Join</button>
        <div id="joinError" class="error"></div>
    </div>

    <div id="chat" style="display:none">
        <div id="sidebar">
            <h2 id="roomTitle"></h2>
            <ul id="users"></ul>
        </div>
        <div id="messages"></div>
        <input type="text" id="messageInput" placeholder="Type a message...">
        <button onclick="sendMessage()">Send</button>
        <button onclick="sendLocation()">Send location</button>
    </div>

    <script>
        const ws = new WebSocket((location.protocol === 'https:' ? 'wss://' : 'ws://') + location.host + '/ws');
        const pending = {};
        let nextAck = 1;

        function emit(event, data, callback) {
            const frame = { event: event, data: data };
            if (callback) {
                frame.ack = nextAck++;
                pending[frame.ack] = callback;
            }
            ws.send(JSON.stringify(frame));
        }

        function text(tag, value, className) {
            const el = document.createElement(tag);
            el.textContent = value;
            if (className) el.className = className;
            return el;
        }

        function addMessage(username, body, createdAt) {
            const row = document.createElement('div');
            row.appendChild(text('strong', username + ' '));
            row.appendChild(text('span', new Date(createdAt).toLocaleTimeString(), 'meta'));
            row.appendChild(document.createElement('br'));
            row.appendChild(body);
            const messages = document.getElementById('messages');
            messages.appendChild(row);
            messages.scrollTop = messages.scrollHeight;
        }

        ws.onopen = function() { emit('roomsListQuery'); };

        ws.onmessage = function(event) {
            const frame = JSON.parse(event.data);
            switch (frame.event) {
            case 'ack': {
                const callback = pending[frame.ack];
                delete pending[frame.ack];
                if (callback) callback(frame.error);
                break;
            }
            case 'message':
                addMessage(frame.data.username, text('span', frame.data.text), frame.data.createdAt);
                break;
            case 'locationMessage': {
                const link = text('a', 'My current location');
                link.href = frame.data.url;
                link.target = '_blank';
                addMessage(frame.data.username, link, frame.data.createdAt);
                break;
            }
            case 'roomData': {
                document.getElementById('roomTitle').textContent = frame.data.room;
                const users = document.getElementById('users');
                users.innerHTML = '';
                frame.data.users.forEach(function(u) { users.appendChild(text('li', u.username)); });
                break;
            }
            case 'roomsList': {
                const rooms = document.getElementById('rooms');
                rooms.innerHTML = '';
                frame.data.rooms.forEach(function(r) {
                    const option = document.createElement('option');
                    option.value = r;
                    rooms.appendChild(option);
                });
                break;
            }
            }
        };

        function join() {
            const data = {
                username: document.getElementById('username').value,
                room: document.getElementById('room').value
            };
            emit('join', data, function(error) {
                if (error) {
                    document.getElementById('joinError').textContent = error.message;
                    return;
                }
                document.getElementById('join').style.display = 'none';
                document.getElementById('chat').style.display = '';
            });
        }

        function sendMessage() {
            const input = document.getElementById('messageInput');
            emit('sendMessage', { text: input.value }, function(error) {
                if (error) console.log(error.message);
                input.value = '';
                input.focus();
            });
        }

        function sendLocation() {
            if (!navigator.geolocation) {
                alert('Geolocation is not supported by your browser.');
                return;
            }
            navigator.geolocation.getCurrentPosition(function(position) {
                emit('sendLocation', {
                    latitude: position.coords.latitude,
                    longitude: position.coords.longitude
                }, function(error) {
                    if (error) console.log(error.message);
                });
            });
        }

        document.getElementById('messageInput').addEventListener('keypress', function(e) {
            if (e.key === 'Enter') sendMessage();
        });
    </script>
</body>
</html>`
