package session

import (
	"errors"
	"fmt"
)

// ErrorKind classifies authorization failures.
type ErrorKind int

const (
	// InvalidCredentials means the service rejected the username/password.
	InvalidCredentials ErrorKind = iota + 1
	// ServiceError covers every other failure: unexpected status codes,
	// transport errors and malformed responses.
	ServiceError
)

func (k ErrorKind) String() string {
	switch k {
	case InvalidCredentials:
		return "invalid credentials"
	case ServiceError:
		return "service error"
	default:
		return "unknown"
	}
}

// AuthError is returned by Provider.Token when no token could be obtained.
type AuthError struct {
	Kind    ErrorKind
	Status  int    // HTTP status, 0 when no response was received
	Message string // human-readable, shown to the user
	Err     error
}

func (e *AuthError) Error() string {
	msg := "authorization failed: " + e.Message
	if e.Status != 0 {
		msg += fmt.Sprintf(" (HTTP %d)", e.Status)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *AuthError) Unwrap() error { return e.Err }

// IsInvalidCredentials reports whether err is an AuthError of kind
// InvalidCredentials.
func IsInvalidCredentials(err error) bool {
	var ae *AuthError
	return errors.As(err, &ae) && ae.Kind == InvalidCredentials
}
