package newsapi

import (
	"errors"
	"fmt"
)

// ErrUnexpectedStatus is matched by every *APIError.
var ErrUnexpectedStatus = errors.New("unexpected response status")

// APIError describes a response the service answered but did not accept:
// either a non-2xx status or an envelope whose status is not "success".
type APIError struct {
	Endpoint   string
	StatusCode int
	Status     string
	Message    string
}

func (e *APIError) Error() string {
	switch {
	case e.Message != "":
		return fmt.Sprintf("%s: %s", e.Endpoint, e.Message)
	case e.Status != "":
		return fmt.Sprintf("%s: status %q", e.Endpoint, e.Status)
	default:
		return fmt.Sprintf("%s: HTTP %d", e.Endpoint, e.StatusCode)
	}
}

func (e *APIError) Is(target error) bool {
	return target == ErrUnexpectedStatus
}
