package chat

import (
	"fmt"
	"log/slog"
	"sync"
)

const (
	welcomeText      = "Welcome!"
	joinedTextFormat = "%s has joined!"
	leftTextFormat   = "%s has left!"
	profanityNotice  = "Profanity is not allowed. Please be polite!"
)

// SessionController reacts to the events of every connection. A connection is
// Unjoined until Join succeeds, Joined afterwards, and Closed after Disconnect.
// Calls for one connection must come from a single goroutine; calls for
// different connections may run concurrently.
//
// The controller never holds the registry lock while talking to the Transport:
// recipients and payloads are computed first, then delivered. Joins and
// disconnects are serialized by membership from the registry change to the
// last roster emit, so every room sees its rosters in the order the registry
// produced them. Transport emits only enqueue.
type SessionController struct {
	membership sync.Mutex

	log       *slog.Logger
	registry  *Registry
	transport Transport
	policy    ContentPolicy
	factory   *MessageFactory
	mode      ProfanityMode
}

// NewSessionController wires the controller to its collaborators.
func NewSessionController(
	log *slog.Logger,
	registry *Registry,
	transport Transport,
	policy ContentPolicy,
	factory *MessageFactory,
	opts Options,
) *SessionController {
	mode := opts.ProfanityMode
	if mode == "" {
		mode = ProfanityCensor
	}
	return &SessionController{
		log:       log,
		registry:  registry,
		transport: transport,
		policy:    policy,
		factory:   factory,
		mode:      mode,
	}
}

// Join registers the connection in room under username. On failure nothing is
// delivered and the registry is left untouched.
func (c *SessionController) Join(id ConnectionID, username, room string) error {
	c.membership.Lock()
	defer c.membership.Unlock()

	user, roomData, err := c.registry.Join(id, username, room)
	if err != nil {
		c.log.Debug("Join rejected",
			"connection_id", id,
			"username", username,
			"room", room,
			"error", err)
		return err
	}

	c.transport.JoinRoom(id, user.Room)

	// The welcome is queued before the announcement so the joiner never sees
	// its own arrival first.
	c.transport.EmitToConnection(id, EventMessage,
		c.factory.GenerateMessage(AdminSender, welcomeText))
	c.transport.EmitToRoomExcept(user.Room, id, EventMessage,
		c.factory.GenerateMessage(AdminSender, fmt.Sprintf(joinedTextFormat, user.Username)))
	c.transport.EmitToRoom(user.Room, EventRoomData, roomData)

	c.log.Info("User joined",
		"connection_id", id,
		"username", user.Username,
		"room", user.Room,
		"occupants", len(roomData.Users))
	return nil
}

// SendMessage relays text from a joined connection to its room.
func (c *SessionController) SendMessage(id ConnectionID, text string) error {
	user, ok := c.registry.GetUser(id)
	if !ok {
		c.log.Warn("Message from connection that has not joined", "connection_id", id)
		return ErrNotJoined
	}

	if c.policy.IsProfane(text) {
		return c.handleProfane(user, text)
	}

	c.transport.EmitToConnection(id, EventMessage,
		c.factory.GenerateMessage(SelfSender, text))
	c.transport.EmitToRoomExcept(user.Room, id, EventMessage,
		c.factory.GenerateMessage(user.Username, text))
	return nil
}

func (c *SessionController) handleProfane(user User, text string) error {
	c.log.Info("Profane message",
		"connection_id", user.ConnectionID,
		"username", user.Username,
		"room", user.Room,
		"mode", string(c.mode))

	if c.mode == ProfanityReject {
		return ErrProfane
	}

	c.transport.EmitToRoom(user.Room, EventMessage,
		c.factory.GenerateMessage(user.Username, c.policy.Clean(text)))
	c.transport.EmitToConnection(user.ConnectionID, EventMessage,
		c.factory.GenerateMessage(SelfSender, profanityNotice))
	return ErrProfane
}

// SendLocation shares coordinates from a joined connection with its room.
func (c *SessionController) SendLocation(id ConnectionID, latitude, longitude float64) error {
	user, ok := c.registry.GetUser(id)
	if !ok {
		c.log.Warn("Location from connection that has not joined", "connection_id", id)
		return ErrNotJoined
	}

	c.transport.EmitToConnection(id, EventLocationMessage,
		c.factory.GenerateLocationMessage(SelfSender, latitude, longitude))
	c.transport.EmitToRoomExcept(user.Room, id, EventLocationMessage,
		c.factory.GenerateLocationMessage(user.Username, latitude, longitude))
	return nil
}

// ListRooms answers the connection with the currently occupied rooms.
func (c *SessionController) ListRooms(id ConnectionID) {
	c.transport.EmitToConnection(id, EventRoomsList, RoomsList{Rooms: c.Rooms()})
}

// Rooms returns the occupied rooms.
func (c *SessionController) Rooms() []string {
	return c.registry.GetAllRooms()
}

// Disconnect closes the session. Connections that never joined are ignored.
func (c *SessionController) Disconnect(id ConnectionID) {
	c.membership.Lock()
	defer c.membership.Unlock()

	user, roomData, ok := c.registry.Leave(id)
	if !ok {
		return
	}

	c.transport.LeaveRoom(id, user.Room)
	c.transport.EmitToRoom(user.Room, EventMessage,
		c.factory.GenerateMessage(AdminSender, fmt.Sprintf(leftTextFormat, user.Username)))
	c.transport.EmitToRoom(user.Room, EventRoomData, roomData)

	c.log.Info("User left",
		"connection_id", id,
		"username", user.Username,
		"room", user.Room,
		"occupants", len(roomData.Users))
}
