// Package chat implements the in-memory coordination core of the relay:
// per-connection sessions, room membership, presence, and event fanout.
//
// The package is transport-agnostic. It consumes a ConnectionSender for
// delivery and a MessageStore for persistence, and is driven by the
// transport layer through the Coordinator's operations.
package chat
