// Package chat orchestrates joins, leaves, disconnects, and message relay
// through the Coordinator.
package chat

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
)

// defaultHistoryLimit is the number of messages replayed to a joining
// connection when no limit is configured.
const defaultHistoryLimit = 50

// MessageStore is the persistence collaborator consumed by the coordinator.
type MessageStore interface {
	InsertMessage(ctx context.Context, msg Message) error
	// RecentMessages returns at most limit messages for the room, ordered
	// oldest to newest.
	RecentMessages(ctx context.Context, roomID string, limit int) ([]Message, error)
}

// Coordinator keeps the session registry and room directory mutually
// consistent and drives event fanout. Every mutating operation is
// serialized by a single mutex; member-list snapshots are taken and events
// are enqueued inside the critical section so that all members of a room
// observe joins, leaves, and messages in the same order. Persistence and
// history reads happen outside the critical section.
type Coordinator struct {
	mu       sync.Mutex
	sessions *SessionRegistry
	rooms    *RoomDirectory
	bus      *Broadcaster
	store    MessageStore
	history  int
}

// NewCoordinator wires the coordinator to its collaborators. historyLimit
// bounds the message replay at join time; values <= 0 fall back to the
// default of 50.
func NewCoordinator(sessions *SessionRegistry, rooms *RoomDirectory, bus *Broadcaster, store MessageStore, historyLimit int) *Coordinator {
	if historyLimit <= 0 {
		historyLimit = defaultHistoryLimit
	}
	return &Coordinator{
		sessions: sessions,
		rooms:    rooms,
		bus:      bus,
		store:    store,
		history:  historyLimit,
	}
}

// Rooms exposes the room directory for the query surface.
func (c *Coordinator) Rooms() *RoomDirectory {
	return c.rooms
}

// Sessions exposes the session registry for diagnostics and tests.
func (c *Coordinator) Sessions() *SessionRegistry {
	return c.sessions
}

// Join registers (or overwrites) the session for connID, adds the username
// to the room, answers the joiner with a room_joined payload carrying the
// member list and recent history, and, when the member set actually grew,
// broadcasts user_joined to the whole room including the joiner.
//
// Join never leaves a previously joined room: the session's room pointer is
// overwritten and the old room's member entry stays behind. This mirrors
// the upstream behavior and is intentional.
func (c *Coordinator) Join(ctx context.Context, connID, username, roomID string) error {
	if username == "" {
		return ValidationError{Field: "username"}
	}
	if roomID == "" {
		return ValidationError{Field: "room_id"}
	}

	c.mu.Lock()
	c.sessions.Register(connID, username, roomID)
	changed := c.rooms.AddMember(roomID, username, connID)
	c.mu.Unlock()

	// Membership is established before the history read: a message relayed
	// while the read is in flight reaches the joiner by fanout. The race
	// resolves toward a possible duplicate in history plus fanout, never a
	// lost message.
	history, err := c.store.RecentMessages(ctx, roomID, c.history)
	if err != nil {
		log.Printf("Error loading history for room %s: %v", roomID, err)
		history = nil
	}
	if history == nil {
		history = []Message{}
	}

	c.mu.Lock()
	members := c.rooms.ListMembers(roomID)
	c.bus.SendTo(connID, EventRoomJoined, RoomJoinedPayload{
		RoomID:   roomID,
		Messages: history,
		Users:    members,
	})
	if changed {
		c.bus.Broadcast(roomID, EventUserJoined, PresencePayload{Username: username, Users: members}, "")
	}
	c.mu.Unlock()

	log.Printf("Connection %s joined room %s as %q (members: %d)", connID, roomID, username, len(members))
	return nil
}

// Leave removes the session's username from the room, notifies the
// remaining members, and clears the session's room pointer. The session
// itself is retained until disconnect. An unknown session is a silent
// no-op.
func (c *Coordinator) Leave(connID, roomID string) {
	if roomID == "" {
		return
	}

	c.mu.Lock()
	sess, err := c.sessions.Get(connID)
	if err != nil {
		c.mu.Unlock()
		return
	}

	removed := c.rooms.RemoveMember(roomID, sess.Username)
	if removed {
		members := c.rooms.ListMembers(roomID)
		c.bus.Broadcast(roomID, EventUserLeft, PresencePayload{Username: sess.Username, Users: members}, "")
	}
	if err := c.sessions.SetRoom(connID, ""); err != nil {
		log.Printf("Error clearing room for %s: %v", connID, err)
	}
	c.mu.Unlock()

	if removed {
		log.Printf("Connection %s left room %s", connID, roomID)
	}
}

// Disconnect removes the session unconditionally and, if it was joined to
// a room, performs the same member removal and user_left broadcast as
// Leave. An unknown session is a silent no-op, which tolerates out-of-order
// disconnect/leave races.
func (c *Coordinator) Disconnect(connID string) {
	c.mu.Lock()
	sess, err := c.sessions.Remove(connID)
	if err != nil {
		c.mu.Unlock()
		return
	}

	if sess.RoomID != "" && c.rooms.RemoveMember(sess.RoomID, sess.Username) {
		members := c.rooms.ListMembers(sess.RoomID)
		c.bus.Broadcast(sess.RoomID, EventUserLeft, PresencePayload{Username: sess.Username, Users: members}, "")
	}
	c.mu.Unlock()

	log.Printf("Connection %s disconnected", connID)
}

// SendMessage validates the outbound message, persists it, then broadcasts
// it to every member of the room including the sender. Persistence happens
// before fanout so a client reconnecting right after the broadcast can
// already retrieve the message from history; if persistence fails the
// message is not broadcast at all.
func (c *Coordinator) SendMessage(ctx context.Context, connID, roomID, text string) (Message, error) {
	sess, err := c.sessions.Get(connID)
	if err != nil {
		return Message{}, err
	}
	if roomID == "" {
		return Message{}, ValidationError{Field: "room_id"}
	}
	if text == "" {
		return Message{}, ValidationError{Field: "message"}
	}

	msg := Message{
		ID:        uuid.NewString(),
		RoomID:    roomID,
		Username:  sess.Username,
		Text:      text,
		Timestamp: time.Now().UTC(),
	}

	if err := c.store.InsertMessage(ctx, msg); err != nil {
		return Message{}, fmt.Errorf("persist message: %w", err)
	}

	c.mu.Lock()
	c.bus.Broadcast(roomID, EventNewMessage, msg, "")
	c.mu.Unlock()

	return msg, nil
}

// Typing fans an ephemeral typing notification out to the room, excluding
// the originator so clients never see their own indicator echoed back.
// Typing state is never persisted and never fails loudly: an unknown
// session is a silent no-op.
func (c *Coordinator) Typing(connID, roomID string, isTyping bool) {
	if roomID == "" {
		return
	}
	sess, err := c.sessions.Get(connID)
	if err != nil {
		return
	}
	c.bus.Broadcast(roomID, EventUserTyping, TypingPayload{Username: sess.Username, IsTyping: isTyping}, connID)
}
