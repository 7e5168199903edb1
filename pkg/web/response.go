// Package web defines common components for a web application.
package web

import (
	"errors"
	"fmt"

	"github.com/go-petr/pet-account/pkg/errorspkg"
	"github.com/go-playground/validator/v10"
)

// CodeInvalidRequest is reported for requests rejected by binding validation.
const CodeInvalidRequest errorspkg.Code = "INVALID_REQUEST"

// JSONError provides type for explicit json encoded error response.
type JSONError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error wraps a given err into json friendly struct.
//
// Errors that are not errorspkg.Error are reported as internal so that raw
// storage or driver messages never leave the service.
func Error(err error) *JSONError {
	code := errorspkg.CodeOf(err)
	if code == errorspkg.CodeInternal {
		return &JSONError{Code: string(code), Message: errorspkg.ErrInternal.Error()}
	}

	return &JSONError{Code: string(code), Message: err.Error()}
}

// InvalidRequest builds the error returned for a request that failed binding.
func InvalidRequest(msg string) *JSONError {
	return &JSONError{Code: string(CodeInvalidRequest), Message: msg}
}

// Response holds the common response type for all APIs.
type Response struct {
	Data  any        `json:"data,omitempty"`
	Error *JSONError `json:"error,omitempty"`
}

// GetErrorMsg returns a readable message for the failed validation rule.
func GetErrorMsg(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return " field is required"
	case "min":
		return fmt.Sprintf(" must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf(" must be at most %s", fe.Param())
	case "len":
		return fmt.Sprintf(" must be %s characters long", fe.Param())
	case "numeric":
		return " must contain only digits"
	case "accountnumber":
		return " is not a valid account number"
	}

	return " is invalid"
}

// BindingError converts a gin binding error into a response error.
func BindingError(err error) *JSONError {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		field := ve[0]
		return InvalidRequest(field.Field() + GetErrorMsg(field))
	}

	return InvalidRequest("malformed request")
}
