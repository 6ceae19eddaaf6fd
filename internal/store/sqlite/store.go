// Package sqlite provides the SQLite-backed message and room store.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/tidechat/relay/internal/chat"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS rooms (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	created_by TEXT NOT NULL,
	created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS messages (
	id        TEXT PRIMARY KEY,
	room_id   TEXT NOT NULL,
	username  TEXT NOT NULL,
	message   TEXT NOT NULL,
	timestamp INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_messages_room_time ON messages(room_id, timestamp);
`

// Room is a persisted chat room.
type Room struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedBy string    `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
}

// Store persists messages and rooms in SQLite. It implements
// chat.MessageStore.
type Store struct {
	sqlDB *sql.DB
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens a SQLite store at path and ensures the schema exists.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := sqlDB.Exec(schema); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// InsertMessage persists one chat message.
func (s *Store) InsertMessage(ctx context.Context, msg chat.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if msg.ID == "" {
		return fmt.Errorf("message id is required")
	}
	if msg.RoomID == "" {
		return fmt.Errorf("room id is required")
	}

	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO messages (id, room_id, username, message, timestamp)
		 VALUES (?, ?, ?, ?, ?)`,
		msg.ID,
		msg.RoomID,
		msg.Username,
		msg.Text,
		toMillis(msg.Timestamp),
	)
	if err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	return nil
}

// RecentMessages returns at most limit messages for the room, ordered
// oldest to newest. The newest messages win when the room holds more than
// limit; insertion order breaks timestamp ties.
func (s *Store) RecentMessages(ctx context.Context, roomID string, limit int) ([]chat.Message, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		return []chat.Message{}, nil
	}

	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT id, room_id, username, message, timestamp
		 FROM messages
		 WHERE room_id = ?
		 ORDER BY timestamp DESC, rowid DESC
		 LIMIT ?`,
		roomID,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var messages []chat.Message
	for rows.Next() {
		var msg chat.Message
		var ts int64
		if err := rows.Scan(&msg.ID, &msg.RoomID, &msg.Username, &msg.Text, &ts); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		msg.Timestamp = fromMillis(ts)
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate messages: %w", err)
	}

	// The query walks newest-first; reverse into chronological order.
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

// CreateRoom inserts one room record.
func (s *Store) CreateRoom(ctx context.Context, room Room) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if room.ID == "" {
		return fmt.Errorf("room id is required")
	}
	if strings.TrimSpace(room.Name) == "" {
		return fmt.Errorf("room name is required")
	}
	createdAt := room.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO rooms (id, name, created_by, created_at) VALUES (?, ?, ?, ?)`,
		room.ID,
		room.Name,
		room.CreatedBy,
		toMillis(createdAt),
	)
	if err != nil {
		return fmt.Errorf("insert room: %w", err)
	}
	return nil
}

// ListRooms returns every persisted room, oldest first.
func (s *Store) ListRooms(ctx context.Context) ([]Room, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT id, name, created_by, created_at FROM rooms ORDER BY created_at ASC, rowid ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("query rooms: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var rooms []Room
	for rows.Next() {
		var room Room
		var ts int64
		if err := rows.Scan(&room.ID, &room.Name, &room.CreatedBy, &ts); err != nil {
			return nil, fmt.Errorf("scan room: %w", err)
		}
		room.CreatedAt = fromMillis(ts)
		rooms = append(rooms, room)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rooms: %w", err)
	}
	return rooms, nil
}
