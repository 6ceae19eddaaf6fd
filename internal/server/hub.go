// Package server coordinates client registration, event delivery, and
// connection cleanup for the WebSocket transport via the Hub type.
package server

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/tidechat/relay/internal/chat"
)

// PresenceNotifier is told when a connection is gone so session and room
// state can follow the transport. The chat coordinator implements it.
type PresenceNotifier interface {
	Disconnect(connID string)
}

// ErrConnectionUnavailable reports a delivery attempt to a connection that
// is not registered, already closed, or whose send buffer is full. Fanout
// treats it as a per-recipient soft failure.
var ErrConnectionUnavailable = errors.New("connection unavailable")

// Hub manages all WebSocket client connections keyed by connection id and
// delivers encoded events to individual connections. It maintains client
// registration/unregistration and ensures thread-safe operations through
// mutex protection.
type Hub struct {
	clients    map[string]*Client
	register   chan *Client
	unregister chan *Client
	presence   PresenceNotifier
	mutex      sync.RWMutex
	wg         sync.WaitGroup
	ctx        context.Context
	cancel     context.CancelFunc
	done       chan struct{}
}

// NewHub creates and initializes a new Hub instance with all necessary
// channels and the client map. The returned Hub is ready to manage
// WebSocket connections once Run is started.
func NewHub() *Hub {
	ctx, cancel := context.WithCancel(context.Background())
	return &Hub{
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		ctx:        ctx,
		cancel:     cancel,
		done:       make(chan struct{}),
	}
}

// SetPresence installs the presence notifier invoked on unregistration.
// It must be called before Run.
func (h *Hub) SetPresence(p PresenceNotifier) {
	h.presence = p
}

// Send delivers an encoded event to the connection identified by connID.
// It never blocks: if the connection is unknown, closed, or its buffer is
// full, ErrConnectionUnavailable is returned and the caller decides whether
// that matters. Implements chat.ConnectionSender.
func (h *Hub) Send(connID string, data []byte) error {
	h.mutex.RLock()
	client, ok := h.clients[connID]
	h.mutex.RUnlock()
	if !ok {
		return ErrConnectionUnavailable
	}
	if !h.safeSend(client, data) {
		return ErrConnectionUnavailable
	}
	return nil
}

func (h *Hub) safeSend(client *Client, message []byte) bool {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Recovered from panic in safeSend: %v", r)
		}
	}()

	// Hold the lock during the entire send operation to prevent race conditions
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	// Check if client is still registered and not closed
	_, exists := h.clients[client.id]
	if !exists || client.closed {
		return false
	}

	// Try to send the message (channel might be closed, so we need to recover from panic)
	select {
	case client.send <- message:
		return true
	default:
		return false
	}
}

// Run starts the hub's main event loop, handling client registration and
// unregistration. This method should be called in a separate goroutine as
// it runs indefinitely.
func (h *Hub) Run() {
	defer close(h.done)

	for {
		select {
		case <-h.ctx.Done():
			h.shutdownClients()
			return

		case client := <-h.register:
			if client == nil {
				log.Printf("Received nil client registration; skipping")
				continue
			}
			h.handleRegister(client)

		case client := <-h.unregister:
			h.handleUnregister(client)
		}
	}
}

func (h *Hub) handleRegister(client *Client) {
	h.mutex.Lock()
	client.closed = false
	h.clients[client.id] = client
	clientCount := len(h.clients)
	h.mutex.Unlock()
	log.Printf("Client %s registered from %s. Total clients: %d", client.id, client.addr, clientCount)

	// The ack is queued before the pumps start, so it is the first frame
	// the client observes even if an event arrives immediately after the
	// upgrade.
	if ack, err := chat.Encode(chat.EventConnected, chat.ConnectedPayload{Message: "Connected to server"}); err == nil {
		h.safeSend(client, ack)
	}

	h.wg.Add(2)
	go func() {
		defer h.wg.Done()
		client.writePump()
	}()
	go func() {
		defer h.wg.Done()
		client.readPump()
	}()
}

func (h *Hub) handleUnregister(client *Client) {
	h.mutex.Lock()
	_, ok := h.clients[client.id]
	if ok {
		delete(h.clients, client.id)
		client.closed = true
	}
	clientCount := len(h.clients)
	h.mutex.Unlock()

	if !ok {
		return
	}

	// Close the channel after releasing the lock
	close(client.send)
	log.Printf("Client %s unregistered from %s. Total clients: %d", client.id, client.addr, clientCount)

	// Presence is notified outside the hub lock: the coordinator fans out
	// user_left through Send, which takes the lock again.
	if h.presence != nil {
		h.presence.Disconnect(client.id)
	}
}

// shutdownClients gracefully closes all active client connections
func (h *Hub) shutdownClients() {
	log.Println("Shutting down all client connections...")

	h.mutex.Lock()
	clients := make([]*Client, 0, len(h.clients))
	for _, client := range h.clients {
		clients = append(clients, client)
	}
	h.mutex.Unlock()

	// Close all client connections
	for _, client := range clients {
		if client.conn != nil {
			if err := client.conn.Close(); err != nil {
				if !isExpectedCloseError(err) {
					log.Printf("Error closing client connection from %s: %v", client.addr, err)
				}
			}
		}
	}

	log.Printf("Closed %d client connections", len(clients))
}

// Shutdown initiates graceful shutdown of the hub and waits for all goroutines to complete.
// It returns after all client connections are closed and goroutines have finished,
// or when the timeout is reached.
func (h *Hub) Shutdown(timeout time.Duration) error {
	log.Println("Initiating hub shutdown...")

	// Signal shutdown
	h.cancel()

	// Wait for Run() to complete
	<-h.done

	// Wait for all client goroutines to finish with timeout
	done := make(chan struct{})
	go func() {
		h.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		log.Println("Hub shutdown completed successfully")
		return nil
	case <-time.After(timeout):
		log.Println("Hub shutdown timeout reached, some goroutines may still be running")
		return context.DeadlineExceeded
	}
}
