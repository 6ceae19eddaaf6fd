package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/tidechat/relay/internal/chat"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "chat.db"))
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("Failed to close store: %v", err)
		}
	})
	return store
}

func seedMessage(t *testing.T, store *Store, id, roomID, text string, ts time.Time) {
	t.Helper()
	err := store.InsertMessage(context.Background(), chat.Message{
		ID:        id,
		RoomID:    roomID,
		Username:  "alice",
		Text:      text,
		Timestamp: ts,
	})
	if err != nil {
		t.Fatalf("Insert %s failed: %v", id, err)
	}
}

// TestOpenRequiresPath verifies the empty-path rejection.
func TestOpenRequiresPath(t *testing.T) {
	if _, err := Open("  "); err == nil {
		t.Fatal("Expected Open to reject an empty path")
	}
}

// TestRecentMessagesOrdering verifies chronological replay and the limit.
func TestRecentMessagesOrdering(t *testing.T) {
	store := openTestStore(t)
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	seedMessage(t, store, "m1", "r1", "first", base)
	seedMessage(t, store, "m2", "r1", "second", base.Add(time.Second))
	seedMessage(t, store, "m3", "r1", "third", base.Add(2*time.Second))
	seedMessage(t, store, "other", "r2", "elsewhere", base)

	messages, err := store.RecentMessages(context.Background(), "r1", 50)
	if err != nil {
		t.Fatalf("RecentMessages failed: %v", err)
	}
	if len(messages) != 3 {
		t.Fatalf("Expected 3 messages, got %d", len(messages))
	}
	for i, want := range []string{"first", "second", "third"} {
		if messages[i].Text != want {
			t.Errorf("Position %d is %q, want %q", i, messages[i].Text, want)
		}
	}

	// The limit keeps the newest messages.
	limited, err := store.RecentMessages(context.Background(), "r1", 2)
	if err != nil {
		t.Fatalf("RecentMessages with limit failed: %v", err)
	}
	if len(limited) != 2 || limited[0].Text != "second" || limited[1].Text != "third" {
		t.Errorf("Expected the two newest messages, got %+v", limited)
	}
}

// TestRecentMessagesTieBreak verifies that messages sharing a timestamp
// replay in insertion order.
func TestRecentMessagesTieBreak(t *testing.T) {
	store := openTestStore(t)
	ts := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	seedMessage(t, store, "m1", "r1", "first", ts)
	seedMessage(t, store, "m2", "r1", "second", ts)

	messages, err := store.RecentMessages(context.Background(), "r1", 50)
	if err != nil {
		t.Fatalf("RecentMessages failed: %v", err)
	}
	if len(messages) != 2 || messages[0].Text != "first" || messages[1].Text != "second" {
		t.Errorf("Expected insertion order on timestamp tie, got %+v", messages)
	}
}

// TestRecentMessagesUnknownRoom verifies that an unknown room is empty,
// not an error.
func TestRecentMessagesUnknownRoom(t *testing.T) {
	store := openTestStore(t)

	messages, err := store.RecentMessages(context.Background(), "never-seen", 10)
	if err != nil {
		t.Fatalf("RecentMessages failed: %v", err)
	}
	if len(messages) != 0 {
		t.Errorf("Expected no messages, got %d", len(messages))
	}
}

// TestInsertMessageValidation verifies required-field checks.
func TestInsertMessageValidation(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if err := store.InsertMessage(ctx, chat.Message{RoomID: "r1"}); err == nil {
		t.Error("Expected rejection of a message without an id")
	}
	if err := store.InsertMessage(ctx, chat.Message{ID: "m1"}); err == nil {
		t.Error("Expected rejection of a message without a room id")
	}
}

// TestRoomsRoundtrip verifies create-then-list, oldest first.
func TestRoomsRoundtrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	first := Room{ID: "room-1", Name: "general", CreatedBy: "alice", CreatedAt: base}
	second := Room{ID: "room-2", Name: "random", CreatedBy: "bob", CreatedAt: base.Add(time.Minute)}
	if err := store.CreateRoom(ctx, first); err != nil {
		t.Fatalf("CreateRoom failed: %v", err)
	}
	if err := store.CreateRoom(ctx, second); err != nil {
		t.Fatalf("CreateRoom failed: %v", err)
	}

	rooms, err := store.ListRooms(ctx)
	if err != nil {
		t.Fatalf("ListRooms failed: %v", err)
	}
	if len(rooms) != 2 {
		t.Fatalf("Expected 2 rooms, got %d", len(rooms))
	}
	if rooms[0].ID != "room-1" || rooms[1].ID != "room-2" {
		t.Errorf("Expected rooms oldest first, got %+v", rooms)
	}
	if !rooms[0].CreatedAt.Equal(base) {
		t.Errorf("CreatedAt mismatch: got %v, want %v", rooms[0].CreatedAt, base)
	}
}

// TestCreateRoomValidation verifies required-field checks on rooms.
func TestCreateRoomValidation(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if err := store.CreateRoom(ctx, Room{Name: "general"}); err == nil {
		t.Error("Expected rejection of a room without an id")
	}
	if err := store.CreateRoom(ctx, Room{ID: "room-1", Name: "  "}); err == nil {
		t.Error("Expected rejection of a room without a name")
	}
}

// TestCanceledContext verifies that canceled contexts short-circuit.
func TestCanceledContext(t *testing.T) {
	store := openTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := store.InsertMessage(ctx, chat.Message{ID: "m1", RoomID: "r1"}); err == nil {
		t.Error("Expected InsertMessage to fail with a canceled context")
	}
	if _, err := store.RecentMessages(ctx, "r1", 10); err == nil {
		t.Error("Expected RecentMessages to fail with a canceled context")
	}
}
