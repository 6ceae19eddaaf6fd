// Package chat tracks per-connection session state in the SessionRegistry.
package chat

import "sync"

// Session binds a connection to a username and, when joined, a room.
type Session struct {
	ConnID   string
	Username string
	RoomID   string
}

// SessionRegistry maps connection ids to sessions. A connection id appears
// in at most one session at a time. Operations on distinct connection ids
// never interfere; operations on the same id are serialized by the
// Coordinator.
type SessionRegistry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewSessionRegistry returns an empty registry.
func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{sessions: make(map[string]*Session)}
}

// Register creates or overwrites the session for connID and returns a copy.
func (r *SessionRegistry) Register(connID, username, roomID string) Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := &Session{ConnID: connID, Username: username, RoomID: roomID}
	r.sessions[connID] = s
	return *s
}

// Get returns a copy of the session for connID, or ErrSessionNotFound.
func (r *SessionRegistry) Get(connID string) (Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sessions[connID]
	if !ok {
		return Session{}, ErrSessionNotFound
	}
	return *s, nil
}

// SetRoom updates the room pointer of an existing session. Setting it to
// the empty string marks the session as joined to no room.
func (r *SessionRegistry) SetRoom(connID, roomID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[connID]
	if !ok {
		return ErrSessionNotFound
	}
	s.RoomID = roomID
	return nil
}

// Remove deletes the session for connID and returns a copy of the removed
// session, or ErrSessionNotFound if none was registered.
func (r *SessionRegistry) Remove(connID string) (Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[connID]
	if !ok {
		return Session{}, ErrSessionNotFound
	}
	delete(r.sessions, connID)
	return *s, nil
}

// Len returns the number of registered sessions.
func (r *SessionRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
