package chat

import (
	"slices"

	"github.com/samber/lo"
)

// GetAllRooms returns the occupied rooms in lexical order. Rooms are not
// stored separately: the set is the key set of the membership index, which is
// updated under the registry lock on every join and leave.
func (r *Registry) GetAllRooms() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rooms := lo.Keys(r.rooms)
	slices.Sort(rooms)
	return rooms
}
