package types

import "fmt"

// Error represents an API error with an HTTP-style code
type Error struct {
	Code    int                    `json:"code"`
	Message string                 `json:"message"`
	Data    map[string]interface{} `json:"data,omitempty"`
}

// NewError creates a new Error instance
func NewError(code int, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

// NewErrorWithData creates a new Error instance with additional data
func NewErrorWithData(code int, message string, data map[string]interface{}) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Data:    data,
	}
}

// Error implements the error interface
func (e Error) Error() string {
	if e.Data != nil {
		return fmt.Sprintf("labops error %d: %s (data: %v)", e.Code, e.Message, e.Data)
	}
	return fmt.Sprintf("labops error %d: %s", e.Code, e.Message)
}
