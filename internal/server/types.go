package server

import (
	"strings"

	"github.com/Tyrowin/roomchat/internal/chat"
)

// Sessions is the part of the session controller a connection drives.
type Sessions interface {
	Join(id chat.ConnectionID, username, room string) error
	SendMessage(id chat.ConnectionID, text string) error
	SendLocation(id chat.ConnectionID, latitude, longitude float64) error
	ListRooms(id chat.ConnectionID)
	Disconnect(id chat.ConnectionID)
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
