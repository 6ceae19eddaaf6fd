// Package chat defines the wire-level event vocabulary shared by the
// coordinator and the transport layer.
package chat

import (
	"encoding/json"
	"time"
)

// Inbound event names accepted from clients.
const (
	EventJoinRoom    = "join_room"
	EventLeaveRoom   = "leave_room"
	EventSendMessage = "send_message"
	EventTyping      = "typing"
)

// Outbound event names emitted to clients.
const (
	EventConnected  = "connected"
	EventRoomJoined = "room_joined"
	EventUserJoined = "user_joined"
	EventUserLeft   = "user_left"
	EventNewMessage = "new_message"
	EventUserTyping = "user_typing"
	EventError      = "error"
)

// Envelope is the framing for every event exchanged over a connection.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// Encode wraps a payload in an Envelope and marshals it.
func Encode(event string, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Event: event, Data: data})
}

// Message is one chat message. The authoritative copy lives in the
// message store; the coordinator only constructs and hands it off.
type Message struct {
	ID        string    `json:"id"`
	RoomID    string    `json:"room_id"`
	Username  string    `json:"username"`
	Text      string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// JoinRequest is the payload of a join_room event.
type JoinRequest struct {
	Username string `json:"username"`
	RoomID   string `json:"room_id"`
}

// LeaveRequest is the payload of a leave_room event.
type LeaveRequest struct {
	RoomID string `json:"room_id"`
}

// SendRequest is the payload of a send_message event.
type SendRequest struct {
	RoomID string `json:"room_id"`
	Text   string `json:"message"`
}

// TypingRequest is the payload of a typing event.
type TypingRequest struct {
	RoomID   string `json:"room_id"`
	IsTyping bool   `json:"is_typing"`
}

// ConnectedPayload acknowledges a successful connection.
type ConnectedPayload struct {
	Message string `json:"message"`
}

// RoomJoinedPayload is sent to the joining connection only.
type RoomJoinedPayload struct {
	RoomID   string    `json:"room_id"`
	Messages []Message `json:"messages"`
	Users    []Member  `json:"users"`
}

// PresencePayload announces a membership change to a room. It carries the
// member list snapshot taken at the moment of the change.
type PresencePayload struct {
	Username string   `json:"username"`
	Users    []Member `json:"users"`
}

// TypingPayload is the ephemeral typing notification fanned out to a room.
type TypingPayload struct {
	Username string `json:"username"`
	IsTyping bool   `json:"is_typing"`
}

// ErrorPayload reports a failure to the originating connection.
type ErrorPayload struct {
	Message string `json:"message"`
}
