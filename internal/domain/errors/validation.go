package errors

import "net/http"

// ValidationError carries per-field validation failures alongside the
// standard AppError contract so the HTTP layer can render a field map.
type ValidationError struct {
	fields map[string]string
}

// NewValidationError creates a validation error from a field->message map.
func NewValidationError(fields map[string]string) *ValidationError {
	return &ValidationError{fields: fields}
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	return e.Message()
}

// HTTPCode returns the HTTP status code
func (e *ValidationError) HTTPCode() int {
	return http.StatusBadRequest
}

// ErrorCode returns the business error code
func (e *ValidationError) ErrorCode() string {
	return "VALIDATION_FAILED"
}

// Message returns the user-friendly error message
func (e *ValidationError) Message() string {
	return "Request validation failed"
}

// Details returns detailed error information
func (e *ValidationError) Details() string {
	return ""
}

// Fields returns the per-field validation messages.
func (e *ValidationError) Fields() map[string]string {
	return e.fields
}
