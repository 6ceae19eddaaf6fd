// Package server constructs and starts the chat relay HTTP service and
// wires the transport hub to the chat coordinator and message store.
package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/tidechat/relay/internal/chat"
	"github.com/tidechat/relay/internal/store/sqlite"
)

var (
	hub     = NewHub()
	hubOnce sync.Once

	chatMu      sync.RWMutex
	coordinator *chat.Coordinator
	relayStore  *sqlite.Store
)

// SetupChat wires a fresh room directory and session registry to the hub
// and the given store. It must be called before clients start joining
// rooms; calling it again resets presence state, which tests rely on.
func SetupChat(store *sqlite.Store) {
	rooms := chat.NewRoomDirectory()
	bus := chat.NewBroadcaster(rooms, hub)
	c := chat.NewCoordinator(chat.NewSessionRegistry(), rooms, bus, store, currentConfig().HistoryLimit)

	chatMu.Lock()
	coordinator = c
	relayStore = store
	chatMu.Unlock()

	hub.SetPresence(c)
}

func chatCoordinator() *chat.Coordinator {
	chatMu.RLock()
	defer chatMu.RUnlock()
	return coordinator
}

func currentStore() *sqlite.Store {
	chatMu.RLock()
	defer chatMu.RUnlock()
	return relayStore
}

// CreateServer creates and configures an HTTP server with the specified port and handler.
// It sets reasonable timeout values for production use.
func CreateServer(port string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:         port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

// StartHub starts the global hub in a separate goroutine. This should be
// called before starting the HTTP server. Subsequent calls are no-ops so
// test suites can share the hub.
func StartHub() {
	hubOnce.Do(func() {
		go hub.Run()
		log.Println("Hub started and ready to manage WebSocket connections")
	})
}

// StartServer starts the HTTP server and begins listening for connections.
// It returns an error if the server fails to start.
func StartServer(server *http.Server) error {
	fmt.Printf("Server listening on port %s\n", server.Addr)
	return server.ListenAndServe()
}

// ShutdownServer gracefully shuts down the HTTP server without interrupting active connections.
// It waits for active connections to close or until the timeout is reached.
func ShutdownServer(server *http.Server, timeout time.Duration) error {
	log.Println("Shutting down HTTP server...")

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
		return err
	}

	log.Println("HTTP server shutdown completed")
	return nil
}

// GetHub returns the global hub instance for shutdown coordination
func GetHub() *Hub {
	return hub
}
