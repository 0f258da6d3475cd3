package gateway

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// ErrEmptyToken is returned by Login when the backend accepted the
// credentials but did not hand out a token.
var ErrEmptyToken = errors.New("login response carried no token")

// AuthenticationError means no bearer token was available for the session.
// It is always returned before any network request is issued.
type AuthenticationError struct {
	Op  string
	Err error // optional: failure reading the session store
}

func (e *AuthenticationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: authentication token not found: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s: authentication token not found", e.Op)
}

func (e *AuthenticationError) Unwrap() error { return e.Err }

// TransportError wraps a network failure or an HTTP error status verbatim.
type TransportError struct {
	Op         string
	Method     string
	Path       string
	StatusCode int    // zero when the request never got a response
	Body       string // raw response body for HTTP errors
	Err        error  // network error, if any
}

func (e *TransportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s %s: %v", e.Op, e.Method, e.Path, e.Err)
	}
	body := strings.TrimSpace(e.Body)
	if body == "" {
		body = http.StatusText(e.StatusCode)
	}
	return fmt.Sprintf("%s: %s %s: status %d: %s", e.Op, e.Method, e.Path, e.StatusCode, body)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Unauthorized reports whether the backend rejected the bearer token.
func (e *TransportError) Unauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized
}

// ValidationError lists the required fields that were missing or invalid.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	fields := append([]string(nil), e.Fields...)
	sort.Strings(fields)
	return "missing or invalid fields: " + strings.Join(fields, ", ")
}

// IsAuthentication reports whether err means the session has no usable token,
// either locally (no token stored) or remotely (401 from the backend).
func IsAuthentication(err error) bool {
	var authErr *AuthenticationError
	if errors.As(err, &authErr) {
		return true
	}
	var tErr *TransportError
	return errors.As(err, &tErr) && tErr.Unauthorized()
}
