// Package apierr defines the errors returned by subject area client
// operations. Conversion failures are mapped onto this taxonomy by
// FromConversion.
package apierr

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/dnswlt/mdcat/internal/convert"
)

type Kind int

const (
	KindUnknown Kind = iota
	KindUserNotAuthorized
	KindInvalidParameter
	KindUnrecognizedGUID
	KindFunctionNotSupported
	KindServerUnreachable
	KindUnexpectedResponse
	KindEntityNotDeleted
	KindGUIDNotPurged
	KindRelationshipNotDeleted
	KindClassificationError
)

var kindNames = map[Kind]string{
	KindUnknown:                "unknown error",
	KindUserNotAuthorized:      "user not authorized",
	KindInvalidParameter:       "invalid parameter",
	KindUnrecognizedGUID:       "unrecognized GUID",
	KindFunctionNotSupported:   "function not supported",
	KindServerUnreachable:      "server unreachable",
	KindUnexpectedResponse:     "unexpected response",
	KindEntityNotDeleted:       "entity not deleted",
	KindGUIDNotPurged:          "GUID not purged",
	KindRelationshipNotDeleted: "relationship not deleted",
	KindClassificationError:    "classification error",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Error is the error type returned by client operations.
type Error struct {
	Kind      Kind
	Operation string
	Message   string
	Cause     error
}

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Operation != "" {
		msg = e.Operation + ": " + msg
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an *Error of the same kind. Operation and
// message are ignored, so errors.Is(err, &Error{Kind: k}) tests for kind k.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

func New(kind Kind, op, format string, args ...any) *Error {
	return &Error{Kind: kind, Operation: op, Message: fmt.Sprintf(format, args...)}
}

func Wrap(kind Kind, op string, cause error) *Error {
	return &Error{Kind: kind, Operation: op, Cause: cause}
}

// KindOf returns the kind of the first *Error in err's chain,
// or KindUnknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// HTTPStatus returns the HTTP status code used to report errors of kind k.
func HTTPStatus(k Kind) int {
	switch k {
	case KindUserNotAuthorized:
		return http.StatusForbidden
	case KindInvalidParameter:
		return http.StatusBadRequest
	case KindUnrecognizedGUID:
		return http.StatusNotFound
	case KindFunctionNotSupported:
		return http.StatusNotImplemented
	case KindServerUnreachable:
		return http.StatusServiceUnavailable
	case KindEntityNotDeleted, KindRelationshipNotDeleted, KindGUIDNotPurged:
		return http.StatusConflict
	case KindClassificationError:
		return http.StatusUnprocessableEntity
	case KindUnexpectedResponse:
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// FromConversion maps a conversion failure to a client error. The
// conversion error is kept as the cause. A nil err yields nil.
func FromConversion(op string, err error) error {
	if err == nil {
		return nil
	}
	kind := KindUnexpectedResponse
	switch convert.KindOf(err) {
	case convert.KindUnimplementedVariant:
		kind = KindFunctionNotSupported
	case convert.KindMalformedClassification:
		kind = KindClassificationError
	}
	return &Error{Kind: kind, Operation: op, Cause: err}
}
