package registry

import (
	"errors"
	"fmt"
)

// TransportError wraps any network-level failure against the registry:
// connection errors, timeouts, and non-2xx responses. It is always
// recoverable - callers decide whether to abort, skip, or swallow it, per
// the flow they are running.
type TransportError struct {
	// Op names the API operation ("list records", "list serials",
	// "find by serial").
	Op string

	// URL is the request URL without query parameters.
	URL string

	// StatusCode is the HTTP status when the server responded; zero for
	// network-level failures.
	StatusCode int

	// Err is the underlying error, nil for plain bad-status responses.
	Err error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("registry: %s: %s returned HTTP %d", e.Op, e.URL, e.StatusCode)
	}
	return fmt.Sprintf("registry: %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsTransportError reports whether err is (or wraps) a TransportError.
func IsTransportError(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}
