package liblinkup

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/pkg/errors"
)

// A Kind classifies an error so the presentation layer can react without
// matching on message strings.
type Kind string

// Error kinds surfaced by the client pipeline.
const (
	KindMissingDependency Kind = "missing_dependency"
	KindLoginFailed       Kind = "login_failed"
	KindRedirectLoop      Kind = "redirect_loop"
	KindRateLimit         Kind = "rate_limit"
	KindNoPatient         Kind = "no_patient"
	KindValidation        Kind = "validation_error"
	KindAuthExpired       Kind = "auth_expired"
	KindFetchFailed       Kind = "fetch_failed"
)

// An Error represents a failure returned by the LibreLinkUp API or raised by
// the client built on top of it.
type Error struct {
	Kind       Kind
	StatusCode int
	Message    string
}

// NewError returns a new Error with the given kind and message.
func NewError(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Error implements error interface.
func (e *Error) Error() string {
	return e.Message
}

// KindOf returns the kind carried by err. Untyped errors are classified as
// fetch_failed.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	if lerr, ok := errors.Cause(err).(*Error); ok {
		return lerr.Kind
	}
	return KindFetchFailed
}

// IsRateLimit returns true if err denotes API throttling. The upstream does
// not always use a clean 429 status so the message is checked as well.
func IsRateLimit(err error) bool {
	if err == nil {
		return false
	}
	if lerr, ok := errors.Cause(err).(*Error); ok {
		if lerr.Kind == KindRateLimit || lerr.StatusCode == http.StatusTooManyRequests {
			return true
		}
	}
	msg := err.Error()
	return strings.Contains(msg, "429") || strings.Contains(msg, "Too Many Requests")
}

// IsAuthRejection returns true if err denotes a token rejected by the backend.
func IsAuthRejection(err error) bool {
	if err == nil {
		return false
	}
	if lerr, ok := errors.Cause(err).(*Error); ok {
		return lerr.Kind == KindAuthExpired ||
			lerr.StatusCode == http.StatusUnauthorized ||
			lerr.StatusCode == http.StatusForbidden
	}
	return false
}

// parseAPIError builds an Error from an HTTP error response body.
func parseAPIError(r io.Reader, code int) error {
	var payload struct {
		Message string `json:"message"`
		Err     struct {
			Message string `json:"message"`
		} `json:"error"`
	}

	lerr := &Error{StatusCode: code, Message: http.StatusText(code)}
	dec := json.NewDecoder(r)
	if err := dec.Decode(&payload); err == nil {
		if payload.Message != "" {
			lerr.Message = payload.Message
		} else if payload.Err.Message != "" {
			lerr.Message = payload.Err.Message
		}
	}

	switch {
	case code == http.StatusTooManyRequests:
		lerr.Kind = KindRateLimit
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		lerr.Kind = KindAuthExpired
	default:
		lerr.Kind = KindFetchFailed
	}
	return lerr
}
