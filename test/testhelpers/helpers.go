// Package testhelpers provides common utilities and helper functions for testing the chat relay server.
//
// This package contains reusable test utilities that are shared across unit and integration tests.
// It provides functions for creating test servers, making HTTP requests, speaking the
// {event, data} envelope protocol over WebSocket connections, and asserting response
// properties to reduce code duplication in test files.
package testhelpers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/tidechat/relay/internal/chat"
)

// CreateTestServer creates a test HTTP server with the given handler.
// It returns a running httptest.Server that should be closed after use.
func CreateTestServer(handler http.Handler) *httptest.Server {
	return httptest.NewServer(handler)
}

// AssertStatusCode checks if the HTTP response has the expected status code.
// It fails the test with a descriptive error message if the status codes don't match.
func AssertStatusCode(t *testing.T, resp *http.Response, expected int) {
	t.Helper()
	if resp.StatusCode != expected {
		t.Errorf("Expected status code %d, got %d", expected, resp.StatusCode)
	}
}

// AssertContentType checks if the HTTP response has the expected Content-Type header.
// It fails the test with a descriptive error message if the content types don't match.
func AssertContentType(t *testing.T, resp *http.Response, expected string) {
	t.Helper()
	contentType := resp.Header.Get("Content-Type")
	if contentType != expected {
		t.Errorf("Expected content type %s, got %s", expected, contentType)
	}
}

// MakeRequest creates and executes an HTTP request, returning the response.
// It includes a 5-second timeout and fails the test if the request cannot be
// created or executed successfully.
func MakeRequest(t *testing.T, method, url string) *http.Response {
	t.Helper()

	client := &http.Client{
		Timeout: 5 * time.Second,
	}

	req, err := http.NewRequest(method, url, http.NoBody)
	if err != nil {
		t.Fatalf("Failed to create request: %v", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("Failed to make request: %v", err)
	}

	return resp
}

// ConnectWebSocket creates a WebSocket connection to the specified URL using
// the given Origin header. It returns the connection or an error if the
// connection fails.
func ConnectWebSocket(url, origin string) (*websocket.Conn, error) {
	dialer := websocket.Dialer{
		HandshakeTimeout: 5 * time.Second,
	}

	headers := http.Header{}
	if origin != "" {
		headers.Set("Origin", origin)
	}

	conn, resp, err := dialer.Dial(url, headers)
	if resp != nil {
		_ = resp.Body.Close()
	}
	return conn, err
}

// EmitEvent sends one {event, data} envelope over the connection.
func EmitEvent(t *testing.T, conn *websocket.Conn, event string, payload any) {
	t.Helper()

	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("Failed to marshal %s payload: %v", event, err)
	}
	if err := conn.WriteJSON(chat.Envelope{Event: event, Data: data}); err != nil {
		t.Fatalf("Failed to send %s event: %v", event, err)
	}
}

// JoinRoom emits a join_room event for the given username and room.
func JoinRoom(t *testing.T, conn *websocket.Conn, username, roomID string) {
	t.Helper()
	EmitEvent(t, conn, chat.EventJoinRoom, chat.JoinRequest{Username: username, RoomID: roomID})
}

// SendChatMessage emits a send_message event to the given room.
func SendChatMessage(t *testing.T, conn *websocket.Conn, roomID, text string) {
	t.Helper()
	EmitEvent(t, conn, chat.EventSendMessage, chat.SendRequest{RoomID: roomID, Text: text})
}

// ReadEnvelope reads the next envelope from the connection, failing the
// test if nothing arrives within the timeout.
func ReadEnvelope(t *testing.T, conn *websocket.Conn, timeout time.Duration) chat.Envelope {
	t.Helper()

	if err := conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
		t.Fatalf("Failed to set read deadline: %v", err)
	}
	var env chat.Envelope
	if err := conn.ReadJSON(&env); err != nil {
		t.Fatalf("Failed to read envelope: %v", err)
	}
	return env
}

// WaitForEvent reads envelopes until one with the given event name arrives,
// skipping anything else (connected acks, typing noise, interleaved
// presence events). It fails the test when the timeout elapses first.
func WaitForEvent(t *testing.T, conn *websocket.Conn, event string, timeout time.Duration) chat.Envelope {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			t.Fatalf("Timed out waiting for %s event", event)
		}
		if err := conn.SetReadDeadline(deadline); err != nil {
			t.Fatalf("Failed to set read deadline: %v", err)
		}
		var env chat.Envelope
		if err := conn.ReadJSON(&env); err != nil {
			t.Fatalf("Failed to read while waiting for %s: %v", event, err)
		}
		if env.Event == event {
			return env
		}
	}
}

// DecodeEventPayload unmarshals an envelope's data into target.
func DecodeEventPayload(t *testing.T, env chat.Envelope, target any) {
	t.Helper()
	if err := json.Unmarshal(env.Data, target); err != nil {
		t.Fatalf("Failed to decode %s payload: %v", env.Event, err)
	}
}

// ExpectNoEvent asserts that no envelope arrives on the connection within
// the given window.
func ExpectNoEvent(t *testing.T, conn *websocket.Conn, timeout time.Duration) {
	t.Helper()

	if err := conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
		t.Fatalf("Failed to set read deadline: %v", err)
	}
	var env chat.Envelope
	err := conn.ReadJSON(&env)
	if err == nil {
		t.Fatalf("Expected no event, but received %q", env.Event)
	}
	if netErr, ok := err.(interface{ Timeout() bool }); ok && netErr.Timeout() {
		return
	}
	if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
		return
	}
	t.Fatalf("Unexpected error while waiting for absence of events: %v", err)
}

// CloseWebSocket gracefully closes a WebSocket connection.
func CloseWebSocket(conn *websocket.Conn) error {
	err := conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	if err != nil {
		return err
	}
	return conn.Close()
}
