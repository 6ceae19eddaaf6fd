// Package chat fans events out to room members through the Broadcaster.
package chat

import "log"

// ConnectionSender delivers an encoded event to a single connection. The
// transport hub implements it. Send must not block: delivery failure for
// one connection is reported by error and never stalls the caller.
type ConnectionSender interface {
	Send(connID string, data []byte) error
}

// Broadcaster delivers events to every connection currently a member of a
// room. Delivery is fire-and-forget: a failure to reach one recipient is
// logged and does not affect the others or the triggering operation.
type Broadcaster struct {
	rooms  *RoomDirectory
	sender ConnectionSender
}

// NewBroadcaster returns a broadcaster fanning out over sender to the
// members tracked by rooms.
func NewBroadcaster(rooms *RoomDirectory, sender ConnectionSender) *Broadcaster {
	return &Broadcaster{rooms: rooms, sender: sender}
}

// Broadcast delivers the event to every member of roomID, skipping
// excludeConnID when non-empty. The payload is marshaled once.
func (b *Broadcaster) Broadcast(roomID, event string, payload any, excludeConnID string) {
	data, err := Encode(event, payload)
	if err != nil {
		log.Printf("Error encoding %s event for room %s: %v", event, roomID, err)
		return
	}

	for _, m := range b.rooms.ListMembers(roomID) {
		if excludeConnID != "" && m.ConnID == excludeConnID {
			continue
		}
		if err := b.sender.Send(m.ConnID, data); err != nil {
			log.Printf("Error delivering %s event to %s in room %s: %v", event, m.ConnID, roomID, err)
		}
	}
}

// SendTo delivers the event to a single connection.
func (b *Broadcaster) SendTo(connID, event string, payload any) {
	data, err := Encode(event, payload)
	if err != nil {
		log.Printf("Error encoding %s event for %s: %v", event, connID, err)
		return
	}
	if err := b.sender.Send(connID, data); err != nil {
		log.Printf("Error delivering %s event to %s: %v", event, connID, err)
	}
}
