package registry

import (
	"errors"
	"fmt"
)

// Error codes carried by Error.
const (
	CodeInvalid          = "INVALID_REQUEST"
	CodeBuiltinCollision = "BUILTIN_COLLISION"
	CodeUnavailable      = "UNAVAILABLE"
)

// ErrNotFound is returned by Reader.Get for unknown skills.
var ErrNotFound = errors.New("skill not found")

// Error is a registration failure with an HTTP-style status. 400 means the
// registration was invalid; 409 means the name is reserved.
type Error struct {
	Status  int
	Code    string
	Message string
}

func (e *Error) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("registry: %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("registry: %d %s: %s", e.Status, e.Code, e.Message)
}

// InvalidError returns a 400 Error.
func InvalidError(msg string) *Error {
	return &Error{Status: 400, Code: CodeInvalid, Message: msg}
}

// StatusOf returns the status of a registry Error in err's chain, or 0.
func StatusOf(err error) int {
	var regErr *Error
	if errors.As(err, &regErr) {
		return regErr.Status
	}
	return 0
}
