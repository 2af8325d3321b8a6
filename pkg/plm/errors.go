package plm

import (
	"errors"
	"fmt"
)

var (
	// ErrFetchFailed wraps every failure of an outbound PLM request.
	ErrFetchFailed = errors.New("plm request failed")

	// ErrStyleNotFound is returned when a style lookup matches nothing.
	ErrStyleNotFound = errors.New("style not found")

	// ErrTokenUnavailable wraps failures to obtain or revoke an access token.
	ErrTokenUnavailable = errors.New("plm access token unavailable")
)

// StatusError carries a non-2xx response from the remote API.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.StatusCode, e.Body)
}
