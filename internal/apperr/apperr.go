// Package apperr classifies failures surfaced to API callers and UI sessions.
package apperr

import (
	"errors"
	"net/http"

	"github.com/rotisserie/eris"
)

// Kind is the display category of a failure.
type Kind int

const (
	// KindUnknown is any error that carries no classification.
	KindUnknown Kind = iota
	// KindValidation means a required identifying parameter was missing.
	KindValidation
	// KindNotFound means a lookup by identifier matched zero rows.
	KindNotFound
	// KindUpstream means the data store call failed.
	KindUpstream
	// KindNetwork means the transport to the API failed.
	KindNetwork
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindUpstream:
		return "upstream"
	case KindNetwork:
		return "network"
	default:
		return "unknown"
	}
}

// GenericMessage is shown for upstream and network failures.
const GenericMessage = "An error occurred while loading results."

// Error is a classified error. Msg is safe to show to users; Err carries the
// underlying detail for logs.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Msg
	}
	if e.Msg == "" {
		return e.Err.Error()
	}
	return e.Msg + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Validation returns a validation error with a user-facing message.
func Validation(msg string) error {
	return &Error{Kind: KindValidation, Msg: msg}
}

// NotFound returns a not-found error with a user-facing message.
func NotFound(msg string) error {
	return &Error{Kind: KindNotFound, Msg: msg}
}

// Upstream classifies a data store failure. Returns nil for a nil err.
func Upstream(err error, msg string) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: KindUpstream, Msg: msg, Err: eris.Wrap(err, msg)}
}

// Network classifies a transport failure. Returns nil for a nil err.
func Network(err error, msg string) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: KindNetwork, Msg: msg, Err: eris.Wrap(err, msg)}
}

// KindOf returns the classification of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// Is reports whether err is classified as kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// UserMessage returns the text to display for err. Upstream, network and
// unclassified failures collapse to GenericMessage.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		switch e.Kind {
		case KindValidation, KindNotFound:
			return e.Msg
		}
	}
	return GenericMessage
}

// HTTPStatus maps a classification to a response status code.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindNetwork:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
