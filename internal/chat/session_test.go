package chat

import (
	"errors"
	"sync"
	"testing"
)

// TestSessionRegistryRegisterAndGet verifies that a registered session can
// be retrieved and that registering again overwrites the previous state.
func TestSessionRegistryRegisterAndGet(t *testing.T) {
	reg := NewSessionRegistry()

	created := reg.Register("c1", "alice", "r1")
	if created.ConnID != "c1" || created.Username != "alice" || created.RoomID != "r1" {
		t.Errorf("Register returned unexpected session: %+v", created)
	}

	got, err := reg.Get("c1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got != created {
		t.Errorf("Get returned %+v, want %+v", got, created)
	}

	// Re-register overwrites username and room for the same connection.
	reg.Register("c1", "alice", "r2")
	got, err = reg.Get("c1")
	if err != nil {
		t.Fatalf("Get after overwrite failed: %v", err)
	}
	if got.RoomID != "r2" {
		t.Errorf("Expected room r2 after overwrite, got %q", got.RoomID)
	}

	if reg.Len() != 1 {
		t.Errorf("Expected one session, got %d", reg.Len())
	}
}

// TestSessionRegistryGetUnknown verifies the not-found sentinel.
func TestSessionRegistryGetUnknown(t *testing.T) {
	reg := NewSessionRegistry()

	if _, err := reg.Get("nope"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound, got %v", err)
	}
}

// TestSessionRegistrySetRoom verifies room pointer updates, including
// clearing it with the empty string.
func TestSessionRegistrySetRoom(t *testing.T) {
	reg := NewSessionRegistry()
	reg.Register("c1", "alice", "r1")

	if err := reg.SetRoom("c1", ""); err != nil {
		t.Fatalf("SetRoom failed: %v", err)
	}
	got, err := reg.Get("c1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.RoomID != "" {
		t.Errorf("Expected cleared room, got %q", got.RoomID)
	}

	if err := reg.SetRoom("ghost", "r1"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound for unknown session, got %v", err)
	}
}

// TestSessionRegistryRemove verifies removal returns the removed session
// and that removing twice reports not found.
func TestSessionRegistryRemove(t *testing.T) {
	reg := NewSessionRegistry()
	reg.Register("c1", "alice", "r1")

	removed, err := reg.Remove("c1")
	if err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if removed.Username != "alice" {
		t.Errorf("Removed session has username %q, want alice", removed.Username)
	}

	if _, err := reg.Get("c1"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound after removal, got %v", err)
	}
	if _, err := reg.Remove("c1"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound on double remove, got %v", err)
	}
}

// TestSessionRegistryConcurrentDistinctIDs verifies that operations on
// distinct connection ids do not interfere.
func TestSessionRegistryConcurrentDistinctIDs(t *testing.T) {
	reg := NewSessionRegistry()

	var wg sync.WaitGroup
	ids := []string{"c1", "c2", "c3", "c4", "c5", "c6", "c7", "c8"}
	for _, id := range ids {
		wg.Add(1)
		go func(connID string) {
			defer wg.Done()
			reg.Register(connID, "user-"+connID, "r1")
			if _, err := reg.Get(connID); err != nil {
				t.Errorf("Get(%s) failed: %v", connID, err)
			}
		}(id)
	}
	wg.Wait()

	if reg.Len() != len(ids) {
		t.Errorf("Expected %d sessions, got %d", len(ids), reg.Len())
	}
}
