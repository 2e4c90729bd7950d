package api

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrNotFound matches any StatusError with a 404 code.
var ErrNotFound = errors.New("not found")

// StatusError is a non-2xx response from the dashboard service.
type StatusError struct {
	Path string
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("%s: status %d: %s", e.Path, e.Code, e.Body)
	}
	return fmt.Sprintf("%s: status %d", e.Path, e.Code)
}

// Is lets errors.Is(err, ErrNotFound) match 404 responses.
func (e *StatusError) Is(target error) bool {
	return target == ErrNotFound && e.Code == http.StatusNotFound
}

// IsNotFound reports whether err is a 404 from the service.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
