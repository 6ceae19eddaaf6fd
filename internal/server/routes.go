// Package server wires HTTP handlers into a ServeMux for the chat relay
// application via routing helpers.
package server

import "net/http"

// SetupRoutes configures and returns an HTTP ServeMux with all application routes.
// It sets up handlers for the health check, WebSocket endpoint, test page, and
// the REST query surface for rooms, history, and presence.
func SetupRoutes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/", HealthHandler)
	mux.HandleFunc("/ws", WebSocketHandler)
	mux.HandleFunc("/test", TestPageHandler)
	mux.HandleFunc("GET /api/rooms", ListRoomsHandler)
	mux.HandleFunc("POST /api/rooms", CreateRoomHandler)
	mux.HandleFunc("GET /api/rooms/{id}/messages", RoomMessagesHandler)
	mux.HandleFunc("GET /api/rooms/{id}/users", RoomUsersHandler)
	return mux
}
