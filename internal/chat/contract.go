//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=mocks/mock_contract.go -package=mocks
package chat

// Outbound event names.
const (
	EventMessage         = "message"
	EventLocationMessage = "locationMessage"
	EventRoomData        = "roomData"
	EventRoomsList       = "roomsList"
)

// Transport delivers payloads to live connections. Implementations keep their
// own room groups and must preserve per-connection FIFO order.
type Transport interface {
	JoinRoom(id ConnectionID, room string)
	LeaveRoom(id ConnectionID, room string)
	EmitToConnection(id ConnectionID, event string, payload any)
	EmitToRoomExcept(room string, exclude ConnectionID, event string, payload any)
	EmitToRoom(room string, event string, payload any)
}

// ContentPolicy decides whether free text may be relayed.
type ContentPolicy interface {
	IsProfane(text string) bool
	Clean(text string) string
}
