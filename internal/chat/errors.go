// Package chat declares the failure kinds surfaced by the coordinator so
// callers and tests can distinguish them.
package chat

import (
	"errors"
	"fmt"
)

// ErrSessionNotFound reports an operation referencing a connection with no
// registered session. Callers treat it as a soft failure: leave and
// disconnect swallow it, send_message answers the sender with an error
// event only.
var ErrSessionNotFound = errors.New("session not found")

// ValidationError reports a missing or malformed event field. It never
// mutates state and is only ever surfaced to the originating connection.
type ValidationError struct {
	Field string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("missing required field %q", e.Field)
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve ValidationError
	return errors.As(err, &ve)
}
