// Package unit contains unit tests for individual components of the chat relay server.
//
// These tests focus on testing specific functions and methods in isolation,
// using mocks and stubs where necessary to avoid dependencies on external systems.
// Unit tests ensure that each component behaves correctly under various conditions.
package unit

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/tidechat/relay/internal/server"
)

// TestNewHub verifies that NewHub returns a properly initialized Hub.
func TestNewHub(t *testing.T) {
	hub := server.NewHub()

	if hub == nil {
		t.Fatal("NewHub() returned nil")
	}
}

// TestSendToUnknownConnection verifies that delivery to an unregistered
// connection id reports ErrConnectionUnavailable instead of blocking.
func TestSendToUnknownConnection(t *testing.T) {
	hub := server.NewHub()

	err := hub.Send("no-such-connection", []byte("hello"))
	if !errors.Is(err, server.ErrConnectionUnavailable) {
		t.Errorf("Expected ErrConnectionUnavailable, got %v", err)
	}
}

// TestHubRunStartsWithoutPanic verifies that the hub can be started in a
// goroutine and runs for a short period without runtime errors.
func TestHubRunStartsWithoutPanic(t *testing.T) {
	hub := server.NewHub()

	done := make(chan bool, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				t.Errorf("Hub.Run() panicked: %v", r)
			}
			done <- true
		}()
		go hub.Run()
		time.Sleep(10 * time.Millisecond)
	}()

	select {
	case <-done:
	case <-time.After(100 * time.Millisecond):
		t.Error("Hub.Run() test timed out")
	}
}

// TestNewClientAssignsUniqueIDs verifies that every client receives its own
// non-empty connection id.
func TestNewClientAssignsUniqueIDs(t *testing.T) {
	hub := server.NewHub()

	first := server.NewClient(nil, hub, "127.0.0.1:12345")
	second := server.NewClient(nil, hub, "127.0.0.1:12346")

	if first == nil || second == nil {
		t.Fatal("NewClient() returned nil")
	}
	if first.ID() == "" {
		t.Error("Client id is empty")
	}
	if first.ID() == second.ID() {
		t.Errorf("Expected unique client ids, both were %q", first.ID())
	}
}

// TestConcurrentHubSends verifies that concurrent Send calls are safe even
// when every target connection is unknown.
func TestConcurrentHubSends(t *testing.T) {
	hub := server.NewHub()
	go hub.Run()
	time.Sleep(10 * time.Millisecond)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer func() {
				if r := recover(); r != nil {
					t.Errorf("Send panicked: %v", r)
				}
				wg.Done()
			}()
			_ = hub.Send("missing", []byte("concurrent message"))
		}()
	}
	wg.Wait()
}
