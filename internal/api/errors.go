package api

import (
	"errors"
	"fmt"
)

const genericFailure = "Request failed"

// Error is a non-2xx or transport-level failure from the gateway. Message
// carries the server-provided human-readable text when the response had one.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("request failed with status %d", e.Status)
}

// UserMessage returns the text to surface in a notification: the server's
// message when available, else a generic fallback.
func UserMessage(err error) string {
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return genericFailure
}
