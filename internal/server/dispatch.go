// Package server routes inbound client events to the chat coordinator
// through an explicit dispatch table.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log"

	"github.com/tidechat/relay/internal/chat"
)

// eventHandler processes one inbound event for a client. Handlers report
// failures only to the originating connection; no inbound event can
// terminate the connection or the process.
type eventHandler func(c *Client, data json.RawMessage)

var eventHandlers = map[string]eventHandler{
	chat.EventJoinRoom:    handleJoinRoom,
	chat.EventLeaveRoom:   handleLeaveRoom,
	chat.EventSendMessage: handleSendMessage,
	chat.EventTyping:      handleTyping,
}

// processEvent decodes the {event, data} envelope and dispatches it.
// Malformed frames and unknown event names answer the sender with an
// error event and nothing else.
func (c *Client) processEvent(raw []byte) {
	var env chat.Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		log.Printf("Invalid event frame from %s: %v", c.addr, err)
		c.sendError("Invalid event frame")
		return
	}

	handler, ok := eventHandlers[env.Event]
	if !ok {
		log.Printf("Unknown event %q from %s", env.Event, c.addr)
		c.sendError("Unknown event")
		return
	}

	if chatCoordinator() == nil {
		c.sendError("Chat service is not ready")
		return
	}

	handler(c, env.Data)
}

// sendError pushes an error event onto the client's own send queue.
func (c *Client) sendError(message string) {
	data, err := chat.Encode(chat.EventError, chat.ErrorPayload{Message: message})
	if err != nil {
		log.Printf("Error encoding error event for %s: %v", c.addr, err)
		return
	}
	c.hub.safeSend(c, data)
}

func handleJoinRoom(c *Client, data json.RawMessage) {
	var req chat.JoinRequest
	if err := json.Unmarshal(data, &req); err != nil {
		c.sendError("Failed to join room")
		return
	}

	if err := chatCoordinator().Join(context.Background(), c.id, req.Username, req.RoomID); err != nil {
		if chat.IsValidation(err) {
			c.sendError(err.Error())
			return
		}
		log.Printf("Error joining room %q for %s: %v", req.RoomID, c.addr, err)
		c.sendError("Failed to join room")
	}
}

func handleLeaveRoom(c *Client, data json.RawMessage) {
	var req chat.LeaveRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return
	}
	chatCoordinator().Leave(c.id, req.RoomID)
}

func handleSendMessage(c *Client, data json.RawMessage) {
	var req chat.SendRequest
	if err := json.Unmarshal(data, &req); err != nil {
		c.sendError("Failed to send message")
		return
	}

	if _, err := chatCoordinator().SendMessage(context.Background(), c.id, req.RoomID, req.Text); err != nil {
		switch {
		case errors.Is(err, chat.ErrSessionNotFound):
			c.sendError("No active session")
		case chat.IsValidation(err):
			c.sendError(err.Error())
		default:
			log.Printf("Error sending message to room %q from %s: %v", req.RoomID, c.addr, err)
			c.sendError("Failed to send message")
		}
	}
}

func handleTyping(c *Client, data json.RawMessage) {
	var req chat.TypingRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return
	}
	chatCoordinator().Typing(c.id, req.RoomID, req.IsTyping)
}
