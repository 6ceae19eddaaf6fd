// Package server implements the HTTP and WebSocket transport for the chat
// relay.
//
// The implementation is organized into specialized files for configuration,
// hub management, clients, event dispatch, routing, and HTTP handlers. The
// room and session semantics live in the chat package; this package owns
// connections and delivery only.
package server
