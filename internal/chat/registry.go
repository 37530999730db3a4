package chat

import (
	"fmt"
	"strings"
	"sync"

	"github.com/samber/lo"
)

// Registry is the single source of truth for who is connected to which room.
// Every mutation and every roster read goes through one RWMutex, so a roster is
// always consistent with the mutation that produced it.
type Registry struct {
	mu    sync.RWMutex
	users map[ConnectionID]User
	// rooms keeps members in join order; a key exists only while the room is
	// occupied.
	rooms map[string][]ConnectionID
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		users: make(map[ConnectionID]User),
		rooms: make(map[string][]ConnectionID),
	}
}

// AddUser registers the connection under username in room. Both values are
// trimmed. Usernames are compared case-insensitively within a room but stored
// with their original casing.
func (r *Registry) AddUser(id ConnectionID, username, room string) (User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.addLocked(id, username, room)
}

// Join adds the user and returns the room roster computed under the same lock.
func (r *Registry) Join(id ConnectionID, username, room string) (User, RoomData, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, err := r.addLocked(id, username, room)
	if err != nil {
		return User{}, RoomData{}, err
	}
	return user, r.roomDataLocked(user.Room), nil
}

// RemoveUser drops the connection. It reports false when the connection never
// joined, which is expected for clients that disconnect before joining.
func (r *Registry) RemoveUser(id ConnectionID) (User, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.removeLocked(id)
}

// Leave removes the user and returns the roster of the room left behind.
func (r *Registry) Leave(id ConnectionID) (User, RoomData, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.removeLocked(id)
	if !ok {
		return User{}, RoomData{}, false
	}
	return user, r.roomDataLocked(user.Room), true
}

// GetUser looks up the user registered for a connection.
func (r *Registry) GetUser(id ConnectionID) (User, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[id]
	return user, ok
}

// GetUsersInRoom returns the roster of room in join order. An unknown room
// yields an empty, non-nil slice.
func (r *Registry) GetUsersInRoom(room string) []RosterEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.rosterLocked(room)
}

// Len returns the number of joined connections.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.users)
}

func (r *Registry) addLocked(id ConnectionID, username, room string) (User, error) {
	username = strings.TrimSpace(username)
	room = strings.TrimSpace(room)
	if username == "" || room == "" {
		return User{}, ErrMissingField
	}

	if _, exists := r.users[id]; exists {
		return User{}, ErrAlreadyJoined
	}

	taken := lo.ContainsBy(r.rooms[room], func(other ConnectionID) bool {
		return strings.EqualFold(r.users[other].Username, username)
	})
	if taken {
		return User{}, ErrNameTaken
	}

	user := User{ConnectionID: id, Username: username, Room: room}
	r.users[id] = user
	r.rooms[room] = append(r.rooms[room], id)
	return user, nil
}

func (r *Registry) removeLocked(id ConnectionID) (User, bool) {
	user, ok := r.users[id]
	if !ok {
		return User{}, false
	}
	delete(r.users, id)

	members := lo.Without(r.rooms[user.Room], id)
	if len(members) == 0 {
		delete(r.rooms, user.Room)
	} else {
		r.rooms[user.Room] = members
	}
	return user, true
}

func (r *Registry) rosterLocked(room string) []RosterEntry {
	return lo.Map(r.rooms[room], func(id ConnectionID, _ int) RosterEntry {
		user, ok := r.users[id]
		if !ok {
			panic(fmt.Sprintf("chat: room %q lists unknown connection %q", room, id))
		}
		return RosterEntry{Username: user.Username}
	})
}

func (r *Registry) roomDataLocked(room string) RoomData {
	return RoomData{Room: room, Users: r.rosterLocked(room)}
}
