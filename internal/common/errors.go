package common

import (
	"context"
	"errors"
	"fmt"
)

// Code is a stable machine-readable error class. Callers branch on codes
// with errors.Is against the sentinel values below, never on messages.
type Code string

const (
	// Protocol correlation errors: client and server have desynchronized.
	CodeUnexpectedMessageID Code = "UnexpectedMessageId"
	CodeUnexpectedType      Code = "UnexpectedType"
	CodeEndOfStream         Code = "EndOfStream"
	CodeStreamClosed        Code = "StreamClosed"

	// Caller discipline.
	CodeInflightRequests Code = "InflightTransactionRequests"
	CodeSessionClosed    Code = "SessionClosed"

	// Transport classes. The first four are never retried.
	CodeUnauthorized     Code = "Unauthorized"
	CodePermissionDenied Code = "PermissionDenied"
	CodeNotFound         Code = "NotFound"
	CodeInvalidArgument  Code = "InvalidArgument"
	CodeUnavailable      Code = "Unavailable"
	CodeTransport        Code = "Transport"

	// Item/type errors.
	CodeUnknownItemType Code = "UnknownItemType"
	CodeMarshal         Code = "Marshal"
	CodeUnmarshal       Code = "Unmarshal"
	CodeTypeMismatch    Code = "TypeMismatch"

	// Credential manager torn down.
	CodeClosed Code = "Closed"

	// The call was cancelled; matches context.Canceled too.
	CodeCanceled Code = "Canceled"
)

// Error is the single error type surfaced by the client runtime.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

// NewError builds an *Error with a formatted message.
func NewError(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// WrapError builds an *Error that keeps cause reachable through errors.Unwrap.
func WrapError(code Code, cause error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Cause: cause}
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an *Error with the same code. A Canceled
// error also matches context.Canceled.
func (e *Error) Is(target error) bool {
	if e.Code == CodeCanceled && target == context.Canceled {
		return true
	}
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// CodeOf returns the code of the first *Error in err's chain, or "".
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// Sentinels for errors.Is matching.
var (
	ErrUnexpectedMessageID = &Error{Code: CodeUnexpectedMessageID}
	ErrUnexpectedType      = &Error{Code: CodeUnexpectedType}
	ErrEndOfStream         = &Error{Code: CodeEndOfStream}
	ErrStreamClosed        = &Error{Code: CodeStreamClosed}
	ErrInflightRequests    = &Error{Code: CodeInflightRequests}
	ErrSessionClosed       = &Error{Code: CodeSessionClosed}
	ErrUnauthorized        = &Error{Code: CodeUnauthorized}
	ErrPermissionDenied    = &Error{Code: CodePermissionDenied}
	ErrNotFound            = &Error{Code: CodeNotFound}
	ErrInvalidArgument     = &Error{Code: CodeInvalidArgument}
	ErrUnavailable         = &Error{Code: CodeUnavailable}
	ErrTransport           = &Error{Code: CodeTransport}
	ErrUnknownItemType     = &Error{Code: CodeUnknownItemType}
	ErrMarshal             = &Error{Code: CodeMarshal}
	ErrUnmarshal           = &Error{Code: CodeUnmarshal}
	ErrTypeMismatch        = &Error{Code: CodeTypeMismatch}
	ErrClosed              = &Error{Code: CodeClosed}
	ErrCanceled            = &Error{Code: CodeCanceled}
)

// IsProtocol reports whether err is a correlation failure or a transport
// failure, i.e. the stream it came from can no longer be trusted.
func IsProtocol(err error) bool {
	switch CodeOf(err) {
	case CodeUnexpectedMessageID, CodeUnexpectedType, CodeEndOfStream, CodeStreamClosed,
		CodeUnauthorized, CodePermissionDenied, CodeNotFound, CodeInvalidArgument,
		CodeUnavailable, CodeTransport, CodeSessionClosed:
		return true
	}
	return false
}

// IsFatalCredential reports whether err belongs to a class that must not be
// retried when exchanging a secret for a token.
func IsFatalCredential(err error) bool {
	switch CodeOf(err) {
	case CodeUnauthorized, CodePermissionDenied, CodeNotFound, CodeInvalidArgument:
		return true
	}
	return false
}
