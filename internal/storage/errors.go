package storage

import (
	"errors"
	"fmt"
)

// ErrUnavailable marks a backend timeout or outage. It is retryable by the
// caller and maps to HTTP 503 at the boundary.
var ErrUnavailable = errors.New("store unavailable")

// Unavailable wraps a driver error as ErrUnavailable, keeping the cause in the
// message so it shows up in logs.
func Unavailable(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrUnavailable, op, err)
}
