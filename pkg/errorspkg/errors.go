// Package errorspkg provides common app errors.
package errorspkg

import "errors"

// Code identifies a kind of failure.
type Code string

// CodeInternal is the code of every unexpected failure.
const CodeInternal Code = "INTERNAL_SERVER_ERROR"

// Error is a typed failure carrying its kind and a human readable description.
type Error struct {
	Code        Code
	Description string
}

// New returns an Error with the given code and description.
func New(code Code, description string) *Error {
	return &Error{Code: code, Description: description}
}

func (e *Error) Error() string {
	return e.Description
}

// ErrInternal indicates internal server error.
var ErrInternal = New(CodeInternal, "internal")

// CodeOf returns the code of err, or CodeInternal when err is not an Error.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}

	return CodeInternal
}
