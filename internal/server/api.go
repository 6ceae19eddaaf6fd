// Package server serves the REST query surface: room listing and creation,
// message history paging, and live presence lookups.
package server

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/tidechat/relay/internal/chat"
	"github.com/tidechat/relay/internal/store/sqlite"
)

// maxHistoryPage caps the limit query parameter on history requests.
const maxHistoryPage = 200

type createRoomRequest struct {
	Name      string `json:"name"`
	CreatedBy string `json:"created_by"`
}

type roomUsersResponse struct {
	Users []chat.Member `json:"users"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Error writing JSON response: %v", err)
	}
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// ListRoomsHandler returns every persisted room.
func ListRoomsHandler(w http.ResponseWriter, r *http.Request) {
	store := currentStore()
	if store == nil {
		writeJSONError(w, http.StatusServiceUnavailable, "storage is not configured")
		return
	}

	rooms, err := store.ListRooms(r.Context())
	if err != nil {
		log.Printf("Error listing rooms: %v", err)
		writeJSONError(w, http.StatusInternalServerError, "failed to list rooms")
		return
	}
	if rooms == nil {
		rooms = []sqlite.Room{}
	}
	writeJSON(w, http.StatusOK, rooms)
}

// CreateRoomHandler creates a persisted room from a JSON body and returns it.
func CreateRoomHandler(w http.ResponseWriter, r *http.Request) {
	store := currentStore()
	if store == nil {
		writeJSONError(w, http.StatusServiceUnavailable, "storage is not configured")
		return
	}

	var req createRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		writeJSONError(w, http.StatusBadRequest, "room name is required")
		return
	}

	room := sqlite.Room{
		ID:        uuid.NewString(),
		Name:      req.Name,
		CreatedBy: req.CreatedBy,
		CreatedAt: time.Now().UTC(),
	}
	if err := store.CreateRoom(r.Context(), room); err != nil {
		log.Printf("Error creating room %q: %v", req.Name, err)
		writeJSONError(w, http.StatusInternalServerError, "failed to create room")
		return
	}
	writeJSON(w, http.StatusCreated, room)
}

// RoomMessagesHandler returns the last N messages of a room, oldest to
// newest. The limit defaults to the configured history limit and is capped.
func RoomMessagesHandler(w http.ResponseWriter, r *http.Request) {
	store := currentStore()
	if store == nil {
		writeJSONError(w, http.StatusServiceUnavailable, "storage is not configured")
		return
	}

	roomID := r.PathValue("id")
	limit := currentConfig().HistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeJSONError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = parsed
	}
	if limit > maxHistoryPage {
		limit = maxHistoryPage
	}

	messages, err := store.RecentMessages(r.Context(), roomID, limit)
	if err != nil && !errors.Is(err, r.Context().Err()) {
		log.Printf("Error fetching messages for room %s: %v", roomID, err)
		writeJSONError(w, http.StatusInternalServerError, "failed to fetch messages")
		return
	}
	if messages == nil {
		messages = []chat.Message{}
	}
	writeJSON(w, http.StatusOK, messages)
}

// RoomUsersHandler returns the live presence list for a room as tracked by
// the room directory. Unknown rooms yield an empty list.
func RoomUsersHandler(w http.ResponseWriter, r *http.Request) {
	c := chatCoordinator()
	if c == nil {
		writeJSONError(w, http.StatusServiceUnavailable, "chat service is not ready")
		return
	}
	writeJSON(w, http.StatusOK, roomUsersResponse{Users: c.Rooms().ListMembers(r.PathValue("id"))})
}
