package server

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/samber/lo"

	"github.com/Tyrowin/roomchat/internal/chat"
)

// HubOptions sizes the per-connection resources.
type HubOptions struct {
	SendBufferSize int
	MaxMessageSize int64
	RateLimit      RateLimitConfig
}

// HubOptionsFromConfig extracts the hub settings from cfg.
func HubOptionsFromConfig(cfg Config) HubOptions {
	return HubOptions{
		SendBufferSize: cfg.SendBufferSize,
		MaxMessageSize: int64(cfg.MaxMessageSize),
		RateLimit:      cfg.RateLimit(),
	}
}

// Hub manages all WebSocket client connections and their room groups. It
// implements chat.Transport: payloads are encoded once per emit and queued on
// every recipient's send channel, so each connection sees its frames in
// emission order.
type Hub struct {
	log        *slog.Logger
	opts       HubOptions
	sessions   Sessions
	clients    map[chat.ConnectionID]*Client
	rooms      map[string]map[chat.ConnectionID]struct{}
	register   chan *Client
	unregister chan *Client
	mutex      sync.RWMutex
	wg         sync.WaitGroup
	ctx        context.Context
	cancel     context.CancelFunc
	done       chan struct{}
}

var _ chat.Transport = (*Hub)(nil)

// NewHub creates a Hub. Attach must be called before Run.
func NewHub(log *slog.Logger, opts HubOptions) *Hub {
	if opts.SendBufferSize <= 0 || opts.MaxMessageSize <= 0 {
		defaults := HubOptionsFromConfig(DefaultConfig())
		if opts.SendBufferSize <= 0 {
			opts.SendBufferSize = defaults.SendBufferSize
		}
		if opts.MaxMessageSize <= 0 {
			opts.MaxMessageSize = defaults.MaxMessageSize
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Hub{
		log:        log,
		opts:       opts,
		clients:    make(map[chat.ConnectionID]*Client),
		rooms:      make(map[string]map[chat.ConnectionID]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		ctx:        ctx,
		cancel:     cancel,
		done:       make(chan struct{}),
	}
}

// Attach sets the controller driven by the hub's clients.
func (h *Hub) Attach(sessions Sessions) {
	h.sessions = sessions
}

// Register hands a new client to the hub, which starts its pumps. It returns
// false once the hub is shutting down.
func (h *Hub) Register(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.ctx.Done():
		return false
	}
}

func (h *Hub) unregisterClient(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// ClientCount returns the number of live connections.
func (h *Hub) ClientCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}

// Run starts the hub's event loop. It returns after Shutdown.
func (h *Hub) Run() {
	defer close(h.done)

	for {
		select {
		case <-h.ctx.Done():
			h.shutdownClients()
			return

		case client := <-h.register:
			if client == nil {
				h.log.Warn("Received nil client registration; skipping")
				continue
			}

			clientCount := h.addClient(client)
			client.log.Info("Client registered", "clients", clientCount)

			h.wg.Add(2)
			go func() {
				defer h.wg.Done()
				client.writePump()
			}()
			go func() {
				defer h.wg.Done()
				client.readPump()
			}()

		case client := <-h.unregister:
			h.removeClients([]*Client{client})
			client.log.Info("Client unregistered", "clients", h.ClientCount())
			if h.sessions != nil {
				h.sessions.Disconnect(client.id)
			}
		}
	}
}

func (h *Hub) addClient(client *Client) int {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	client.closed = false
	h.clients[client.id] = client
	return len(h.clients)
}

// JoinRoom adds a live connection to a room group.
func (h *Hub) JoinRoom(id chat.ConnectionID, room string) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if _, ok := h.clients[id]; !ok {
		return
	}
	members, ok := h.rooms[room]
	if !ok {
		members = make(map[chat.ConnectionID]struct{})
		h.rooms[room] = members
	}
	members[id] = struct{}{}
}

// LeaveRoom removes a connection from a room group.
func (h *Hub) LeaveRoom(id chat.ConnectionID, room string) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	h.leaveRoomLocked(id, room)
}

func (h *Hub) leaveRoomLocked(id chat.ConnectionID, room string) {
	members, ok := h.rooms[room]
	if !ok {
		return
	}
	delete(members, id)
	if len(members) == 0 {
		delete(h.rooms, room)
	}
}

// EmitToConnection queues an event for a single connection.
func (h *Hub) EmitToConnection(id chat.ConnectionID, event string, payload any) {
	frame, ok := h.encode(event, payload)
	if !ok {
		return
	}

	h.mutex.RLock()
	client, exists := h.clients[id]
	h.mutex.RUnlock()
	if !exists {
		return
	}
	h.deliver([]*Client{client}, frame)
}

// EmitToRoom queues an event for every member of room.
func (h *Hub) EmitToRoom(room string, event string, payload any) {
	frame, ok := h.encode(event, payload)
	if !ok {
		return
	}
	h.deliver(h.roomSnapshot(room, nil), frame)
}

// EmitToRoomExcept queues an event for every member of room but exclude.
func (h *Hub) EmitToRoomExcept(room string, exclude chat.ConnectionID, event string, payload any) {
	frame, ok := h.encode(event, payload)
	if !ok {
		return
	}
	h.deliver(h.roomSnapshot(room, &exclude), frame)
}

func (h *Hub) sendToClient(client *Client, frame []byte) {
	h.deliver([]*Client{client}, frame)
}

func (h *Hub) encode(event string, payload any) ([]byte, bool) {
	frame, err := encodeFrame(event, payload)
	if err != nil {
		h.log.Error("Error encoding frame", "event", event, "error", err)
		return nil, false
	}
	return frame, true
}

// roomSnapshot returns the clients of room, leaving out exclude when set.
func (h *Hub) roomSnapshot(room string, exclude *chat.ConnectionID) []*Client {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	members := h.rooms[room]
	clients := make([]*Client, 0, len(members))
	for id := range members {
		if exclude != nil && id == *exclude {
			continue
		}
		if client, ok := h.clients[id]; ok {
			clients = append(clients, client)
		}
	}
	return clients
}

// deliver queues frame for clients and drops those whose queue is full.
func (h *Hub) deliver(clients []*Client, frame []byte) {
	failed := lo.Filter(clients, func(client *Client, _ int) bool {
		return !h.safeSend(client, frame)
	})
	if len(failed) == 0 {
		return
	}
	for _, client := range failed {
		client.log.Warn("Dropping client with full send buffer")
	}
	h.removeClients(failed)
}

func (h *Hub) safeSend(client *Client, frame []byte) bool {
	defer func() {
		if r := recover(); r != nil {
			h.log.Error("Recovered from panic in safeSend", "panic", r)
		}
	}()

	// The read lock keeps removeClients from closing the channel mid-send.
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	if current, exists := h.clients[client.id]; !exists || current != client || client.closed {
		return true
	}

	select {
	case client.send <- frame:
		return true
	default:
		return false
	}
}

// removeClients forgets clients and closes their send channels, which makes
// their write pumps close the connections.
func (h *Hub) removeClients(clients []*Client) {
	h.mutex.Lock()
	var channelsToClose []chan []byte
	for _, client := range clients {
		current, exists := h.clients[client.id]
		if !exists || current != client {
			continue
		}
		delete(h.clients, client.id)
		for room := range h.rooms {
			h.leaveRoomLocked(client.id, room)
		}
		client.closed = true
		channelsToClose = append(channelsToClose, client.send)
	}
	h.mutex.Unlock()

	for _, ch := range channelsToClose {
		close(ch)
	}
}

// shutdownClients closes every live connection.
func (h *Hub) shutdownClients() {
	h.mutex.RLock()
	clients := lo.Values(h.clients)
	h.mutex.RUnlock()

	h.log.Info("Shutting down all client connections", "clients", len(clients))

	h.removeClients(clients)
	for _, client := range clients {
		if client.conn != nil {
			client.closeConnection()
		}
	}
}

// Shutdown stops the hub and waits for every client goroutine to finish, or
// until timeout.
func (h *Hub) Shutdown(timeout time.Duration) error {
	h.log.Info("Initiating hub shutdown")

	h.cancel()
	<-h.done

	done := make(chan struct{})
	go func() {
		h.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		h.log.Info("Hub shutdown completed")
		return nil
	case <-time.After(timeout):
		h.log.Warn("Hub shutdown timeout reached, some goroutines may still be running")
		return context.DeadlineExceeded
	}
}
