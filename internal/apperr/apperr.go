package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error by how it is reported to the caller.
type Kind int

const (
	KindUnexpected Kind = iota
	KindConfiguration
	KindValidation
	KindAuth
	KindNotFound
	KindUpstream
	KindConnectivity
)

func (k Kind) String() string {
	switch k {
	case KindConfiguration:
		return "configuration"
	case KindValidation:
		return "validation"
	case KindAuth:
		return "auth"
	case KindNotFound:
		return "not_found"
	case KindUpstream:
		return "upstream"
	case KindConnectivity:
		return "connectivity"
	default:
		return "unexpected"
	}
}

// Error is the error type handlers return to the fiber error handler.
type Error struct {
	Kind    Kind
	Status  int    // upstream status for KindUpstream
	Message string // safe to show to the caller
	Detail  string // upstream body, included in the response for upstream errors
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// HTTPStatus returns the response status for the error.
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindConfiguration, KindConnectivity, KindUnexpected:
		return http.StatusInternalServerError
	case KindValidation:
		return http.StatusBadRequest
	case KindAuth:
		return http.StatusUnauthorized
	case KindNotFound:
		return http.StatusNotFound
	case KindUpstream:
		if e.Status >= 400 && e.Status <= 599 {
			return e.Status
		}
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func Configuration(format string, args ...any) *Error {
	return &Error{Kind: KindConfiguration, Message: fmt.Sprintf(format, args...)}
}

func Validation(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func Auth(message string) *Error {
	return &Error{Kind: KindAuth, Message: message}
}

func NotFound(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// Upstream reports a non-2xx answer from a collaborator.
func Upstream(status int, body string, format string, args ...any) *Error {
	return &Error{Kind: KindUpstream, Status: status, Detail: body, Message: fmt.Sprintf(format, args...)}
}

// Connectivity reports a network failure or timeout reaching a collaborator.
func Connectivity(err error, format string, args ...any) *Error {
	return &Error{Kind: KindConnectivity, Message: fmt.Sprintf(format, args...), Err: err}
}

func Unexpected(err error, format string, args ...any) *Error {
	return &Error{Kind: KindUnexpected, Message: fmt.Sprintf(format, args...), Err: err}
}

// KindOf returns the kind of the first *Error in err's chain, or KindUnexpected.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnexpected
}

// As is a shorthand for errors.As with *Error.
func As(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}
