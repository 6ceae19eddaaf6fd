// Package chat tracks room membership in the RoomDirectory.
package chat

import "sync"

// Member is one entry in a room's member set.
type Member struct {
	Username string `json:"username"`
	ConnID   string `json:"connection_id"`
}

// RoomDirectory maps room ids to member sets. Rooms are created lazily on
// first join and never pruned: a room whose last member left remains as an
// empty entry. Member order is join order.
type RoomDirectory struct {
	mu    sync.RWMutex
	rooms map[string][]Member
}

// NewRoomDirectory returns an empty directory.
func NewRoomDirectory() *RoomDirectory {
	return &RoomDirectory{rooms: make(map[string][]Member)}
}

// AddMember adds username to the room, creating the room if needed. The
// call is idempotent per username: if the name is already present the set
// is left untouched. It reports whether the member set changed.
func (d *RoomDirectory) AddMember(roomID, username, connID string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	members := d.rooms[roomID]
	for _, m := range members {
		if m.Username == username {
			return false
		}
	}
	d.rooms[roomID] = append(members, Member{Username: username, ConnID: connID})
	return true
}

// RemoveMember removes any entry matching username from the room. It is a
// no-op for an unknown room or absent username, and reports whether an
// entry was removed.
func (d *RoomDirectory) RemoveMember(roomID, username string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	members, ok := d.rooms[roomID]
	if !ok {
		return false
	}
	for i, m := range members {
		if m.Username == username {
			d.rooms[roomID] = append(members[:i:i], members[i+1:]...)
			return true
		}
	}
	return false
}

// ListMembers returns a snapshot of the room's member set. Unknown rooms
// yield an empty slice; room-not-found is not an error under lazy creation.
func (d *RoomDirectory) ListMembers(roomID string) []Member {
	d.mu.RLock()
	defer d.mu.RUnlock()

	members := d.rooms[roomID]
	out := make([]Member, len(members))
	copy(out, members)
	return out
}

// Contains reports whether username is currently a member of the room.
func (d *RoomDirectory) Contains(roomID, username string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()

	for _, m := range d.rooms[roomID] {
		if m.Username == username {
			return true
		}
	}
	return false
}

// Rooms returns the ids of every room the directory has seen, including
// rooms that are now empty.
func (d *RoomDirectory) Rooms() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	ids := make([]string, 0, len(d.rooms))
	for id := range d.rooms {
		ids = append(ids, id)
	}
	return ids
}
