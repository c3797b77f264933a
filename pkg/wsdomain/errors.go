// Package wsdomain holds types and errors shared across the workspace
// service's internal packages: the repository, the blob client, the
// reconciler, and the service layer that sits above them.
package wsdomain

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes a domain error so the dispatcher can translate it
// into a JSON-RPC error code or a per-object ObjectMeta error entry
// without string-matching messages.
type ErrorCode int

const (
	// ErrNotFound indicates the requested workspace/object/download doesn't exist.
	ErrNotFound ErrorCode = iota

	// ErrPermissionDenied indicates the caller lacks the permission rank
	// required for the operation.
	ErrPermissionDenied

	// ErrAlreadyExists indicates a workspace/object with the given name
	// already exists at that location.
	ErrAlreadyExists

	// ErrInvalidArgument indicates malformed input: a bad path, an empty
	// name, an unknown permission level, and the like.
	ErrInvalidArgument

	// ErrConflict indicates the operation can't proceed given the current
	// state of the target, e.g. removing a non-empty folder without force.
	ErrConflict

	// ErrIO indicates a local storage or filesystem failure.
	ErrIO

	// ErrUpstream indicates a failure talking to the blob store or the
	// signing-cert source.
	ErrUpstream

	// ErrTokenInvalid indicates a missing, malformed, or unverifiable
	// auth token where one was required.
	ErrTokenInvalid
)

func (c ErrorCode) String() string {
	switch c {
	case ErrNotFound:
		return "not_found"
	case ErrPermissionDenied:
		return "permission_denied"
	case ErrAlreadyExists:
		return "already_exists"
	case ErrInvalidArgument:
		return "invalid_argument"
	case ErrConflict:
		return "conflict"
	case ErrIO:
		return "io_error"
	case ErrUpstream:
		return "upstream_error"
	case ErrTokenInvalid:
		return "token_invalid"
	default:
		return "unknown"
	}
}

// Error is the domain error type returned by the repository, blob client,
// reconciler, and service layer. Path carries the workspace path involved,
// when there is one, for log correlation.
type Error struct {
	Code    ErrorCode
	Message string
	Path    string
}

func (e *Error) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Message, e.Path, e.Code)
	}
	return fmt.Sprintf("%s (%s)", e.Message, e.Code)
}

// NewError constructs an *Error with the given code and message.
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WithPath returns a copy of the error with Path set, for adding context
// as an error propagates up through callers that know the path.
func (e *Error) WithPath(path string) *Error {
	return &Error{Code: e.Code, Message: e.Message, Path: path}
}

// NotFound builds an ErrNotFound domain error for path.
func NotFound(path string) *Error {
	return &Error{Code: ErrNotFound, Message: "not found", Path: path}
}

// PermissionDenied builds an ErrPermissionDenied domain error for path.
func PermissionDenied(path string) *Error {
	return &Error{Code: ErrPermissionDenied, Message: "permission denied", Path: path}
}

// AlreadyExists builds an ErrAlreadyExists domain error for path.
func AlreadyExists(path string) *Error {
	return &Error{Code: ErrAlreadyExists, Message: "already exists", Path: path}
}

// InvalidArgument builds an ErrInvalidArgument domain error with a custom message.
func InvalidArgument(message string) *Error {
	return &Error{Code: ErrInvalidArgument, Message: message}
}

// Conflict builds an ErrConflict domain error for path.
func Conflict(path, message string) *Error {
	return &Error{Code: ErrConflict, Message: message, Path: path}
}

// CodeOf extracts the ErrorCode from err if it is (or wraps) a *Error,
// returning ok=false otherwise.
func CodeOf(err error) (ErrorCode, bool) {
	var de *Error
	if !errors.As(err, &de) {
		return 0, false
	}
	return de.Code, true
}
