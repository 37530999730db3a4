// Package chat holds the room registry and the routing rules that decide who
// receives each chat event. It has no knowledge of sockets or HTTP; delivery
// goes through the Transport interface.
package chat

// ConnectionID identifies one live transport connection. The core treats it as
// an opaque key.
type ConnectionID string

// User is a connection that has successfully joined a room.
type User struct {
	ConnectionID ConnectionID `json:"-"`
	Username     string       `json:"username"`
	Room         string       `json:"room"`
}

// RosterEntry is one line of a room roster.
type RosterEntry struct {
	Username string `json:"username"`
}

// RoomData is the roster payload broadcast to a room after membership changes.
type RoomData struct {
	Room  string        `json:"room"`
	Users []RosterEntry `json:"users"`
}

// RoomsList is the payload answering a rooms list query.
type RoomsList struct {
	Rooms []string `json:"rooms"`
}
