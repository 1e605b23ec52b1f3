// Package response defines the wire format shared by all HTTP handlers.
package response

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// ErrorBody is the payload returned by every failing endpoint.
type ErrorBody struct {
	Message   string    `json:"message"`   // User-friendly message
	Status    int       `json:"status"`    // HTTP status code
	Timestamp time.Time `json:"timestamp"` // When the error was produced

	// ValidationErrors maps field names to messages. Present only when
	// request validation failed.
	ValidationErrors map[string]string `json:"validationErrors,omitempty"`
}

// NewErrorBody builds the standard error payload.
func NewErrorBody(status int, message string) ErrorBody {
	if message == "" {
		message = http.StatusText(status)
	}

	return ErrorBody{
		Message:   message,
		Status:    status,
		Timestamp: time.Now().UTC(),
	}
}

// Error writes the standard error payload.
func Error(c echo.Context, status int, message string) error {
	return c.JSON(status, NewErrorBody(status, message))
}

// ValidationFailed writes a 400 payload carrying per-field messages.
func ValidationFailed(c echo.Context, message string, fields map[string]string) error {
	body := NewErrorBody(http.StatusBadRequest, message)
	body.ValidationErrors = fields

	return c.JSON(http.StatusBadRequest, body)
}

// JSON writes a success payload as-is.
func JSON(c echo.Context, status int, data any) error {
	return c.JSON(status, data)
}

// Message writes a success payload containing only a message.
func Message(c echo.Context, status int, message string) error {
	return c.JSON(status, map[string]string{"message": message})
}

// BindingError writes the 400 payload used when the request body cannot be parsed.
func BindingError(c echo.Context, message string) error {
	return Error(c, http.StatusBadRequest, message)
}
