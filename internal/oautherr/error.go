// Package oautherr defines the error taxonomy shared by every schlussel
// component. Callers match on Kind with errors.Is/errors.As rather than on
// message text.
package oautherr

import (
	"errors"
	"fmt"
)

// Kind identifies the category of failure, independent of its message.
type Kind string

// Error kinds, grouped roughly by the component that raises them.
const (
	KindInvalidParameter  Kind = "invalid_parameter"
	KindConfiguration     Kind = "configuration_error"
	KindInsecureEndpoint  Kind = "insecure_endpoint"
	KindMissingClientID   Kind = "missing_client_id"
	KindStorage           Kind = "storage_error"
	KindTokenNotFound     Kind = "token_not_found"
	KindLock              Kind = "lock_error"
	KindHTTP              Kind = "http_error"
	KindConnectionFailed  Kind = "connection_failed"
	KindTimeout           Kind = "timeout"
	KindResponseTooLarge  Kind = "response_too_large"
	KindServerError       Kind = "server_error"
	KindAuthorizationDeny Kind = "authorization_denied"
	KindAuthPending       Kind = "authorization_pending"
	KindSlowDown          Kind = "slow_down"
	KindTokenExpired      Kind = "token_expired"
	KindNoRefreshToken    Kind = "no_refresh_token"
	KindDeviceCodeExpired Kind = "device_code_expired"
	KindInvalidState      Kind = "invalid_state"
	KindJSON              Kind = "json_error"
	KindIO                Kind = "io_error"
	KindUnsupported       Kind = "unsupported_operation"
	KindMissingField      Kind = "missing_field"
	KindInvalidField      Kind = "invalid_field"
	KindInvalidSchema     Kind = "invalid_schema"
)

// Error is the concrete error type returned by every schlussel package. It
// carries a Kind so callers can branch on failure category, and wraps an
// optional underlying cause for %w-chains and logging.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

// New constructs an Error with no underlying cause.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap constructs an Error that chains to cause.
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap lets errors.Is/errors.As traverse into the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an *Error with the same Kind, so callers can
// write errors.Is(err, oautherr.New(oautherr.KindTimeout, "")).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// Of reports whether err is (or wraps) an *Error of the given kind.
func Of(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}
