package server

import (
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"github.com/Tyrowin/roomchat/internal/chat"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// Client is one WebSocket connection. Its read pump is the only caller of
// the session controller for this connection, which keeps the connection's
// events in order.
type Client struct {
	id             chat.ConnectionID
	conn           *websocket.Conn
	send           chan []byte
	hub            *Hub
	sessions       Sessions
	log            *slog.Logger
	addr           string
	closed         bool
	maxMessageSize int64
	limiter        *rate.Limiter
}

// NewClient creates a Client for conn with a fresh connection id. The
// outbound queue, read limit and rate limit come from the hub's options.
func NewClient(conn *websocket.Conn, hub *Hub, addr string) *Client {
	opts := hub.opts
	if conn != nil {
		conn.SetReadLimit(opts.MaxMessageSize)
	}
	id := chat.ConnectionID(uuid.NewString())

	return &Client{
		id:             id,
		conn:           conn,
		send:           make(chan []byte, opts.SendBufferSize),
		hub:            hub,
		sessions:       hub.sessions,
		log:            hub.log.With("connection_id", id, "remote_addr", addr),
		addr:           addr,
		maxMessageSize: opts.MaxMessageSize,
		limiter:        newRateLimiter(opts.RateLimit),
	}
}

// ID returns the connection id.
func (c *Client) ID() chat.ConnectionID {
	return c.id
}

// GetSendChan returns the client's outbound queue.
func (c *Client) GetSendChan() <-chan []byte {
	return c.send
}

func (c *Client) setupReadConnection() {
	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		c.log.Warn("Error setting initial read deadline", "error", err)
	}
	c.conn.SetPongHandler(func(string) error {
		if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
			c.log.Warn("Error setting read deadline in pong handler", "error", err)
		}
		return nil
	})
}

// logReadError reports why the read loop stopped.
func (c *Client) logReadError(err error) {
	switch {
	case errors.Is(err, websocket.ErrReadLimit):
		c.log.Warn("Frame exceeded maximum size", "limit", c.maxMessageSize)
	case websocket.IsCloseError(err,
		websocket.CloseNormalClosure,
		websocket.CloseGoingAway,
		websocket.CloseAbnormalClosure):
		c.log.Info("Client disconnected", "error", err)
	case errors.Is(err, io.EOF) || isExpectedCloseError(err):
		c.log.Info("Client connection closed", "error", err)
	case websocket.IsUnexpectedCloseError(err,
		websocket.CloseGoingAway,
		websocket.CloseAbnormalClosure,
		websocket.CloseMessageTooBig):
		c.log.Warn("Unexpected WebSocket error", "error", err)
	default:
		c.log.Warn("WebSocket read error", "error", err)
	}
}

func (c *Client) readPump() {
	defer func() {
		c.hub.unregisterClient(c)
		c.closeConnection()
	}()

	c.setupReadConnection()

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			c.logReadError(err)
			return
		}
		c.handleFrame(raw)
	}
}

// handleFrame runs one request and acknowledges it when the client asked for it.
func (c *Client) handleFrame(raw []byte) {
	allowed := c.limiter.Allow()

	req, err := decodeRequest(raw)
	switch {
	case err != nil:
		c.log.Warn("Invalid frame", "error", err)
	case !allowed:
		err = ErrRateLimited
		c.log.Warn("Rate limit exceeded; discarding frame", "event", req.Event)
	default:
		err = c.dispatch(req)
		if errors.Is(err, ErrInvalidRequest) {
			c.log.Warn("Invalid event data", "event", req.Event, "error", err)
		}
	}

	c.acknowledge(req, err)
}

func (c *Client) dispatch(req Request) error {
	switch req.Event {
	case eventJoin:
		var data JoinData
		if err := decodeData(req.Data, &data); err != nil {
			return err
		}
		return c.sessions.Join(c.id, data.Username, data.Room)

	case eventSendMessage:
		var data MessageData
		if err := decodeData(req.Data, &data); err != nil {
			return err
		}
		return c.sessions.SendMessage(c.id, data.Text)

	case eventSendLocation:
		var data LocationData
		if err := decodeData(req.Data, &data); err != nil {
			return err
		}
		return c.sessions.SendLocation(c.id, *data.Latitude, *data.Longitude)

	case eventRoomsListQuery:
		c.sessions.ListRooms(c.id)
		return nil

	default:
		return ErrInvalidRequest
	}
}

func (c *Client) acknowledge(req Request, err error) {
	if req.Ack == nil {
		return
	}
	frame, encErr := encodeAck(*req.Ack, err)
	if encErr != nil {
		c.log.Error("Error encoding acknowledgement", "error", encErr)
		return
	}
	c.hub.sendToClient(c, frame)
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.closeConnection()
	}()

	for c.processWriteEvent(ticker) {
	}
}

// processWriteEvent waits for the next write event and returns false when the
// pump should stop processing.
func (c *Client) processWriteEvent(ticker *time.Ticker) bool {
	select {
	case frame, ok := <-c.send:
		return c.handleFrameOut(frame, ok)
	case <-ticker.C:
		return c.handlePing()
	}
}

func (c *Client) closeConnection() {
	if err := c.conn.Close(); err != nil && !isExpectedCloseError(err) {
		c.log.Warn("Error closing connection", "error", err)
	}
}

// handleFrameOut writes a frame and whatever is already queued behind it.
// It returns false if the connection should be closed.
func (c *Client) handleFrameOut(frame []byte, ok bool) bool {
	if !ok {
		return c.writeCloseMessage()
	}

	if !c.writeTextMessage(frame) {
		return false
	}

	n := len(c.send)
	for i := 0; i < n; i++ {
		queued, ok := <-c.send
		if !ok {
			return c.writeCloseMessage()
		}
		if !c.writeTextMessage(queued) {
			return false
		}
	}
	return true
}

func (c *Client) writeCloseMessage() bool {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return false
	}
	if err := c.conn.WriteMessage(websocket.CloseMessage, []byte{}); err != nil && !isExpectedCloseError(err) {
		c.log.Warn("Error writing close message", "error", err)
	}
	return false
}

// writeTextMessage writes one frame as its own WebSocket message.
func (c *Client) writeTextMessage(frame []byte) bool {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		c.log.Warn("Error setting write deadline", "error", err)
		return false
	}
	if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
		if !isExpectedCloseError(err) {
			c.log.Warn("Error writing frame", "error", err)
		}
		return false
	}
	return true
}

// handlePing sends a ping message to keep the connection alive
func (c *Client) handlePing() bool {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		c.log.Warn("Error setting write deadline for ping", "error", err)
		return false
	}
	if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
		c.log.Warn("Error writing ping message", "error", err)
		return false
	}
	return true
}
