package middleware

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"farmlink/internal/delivery/http/response"
	domainerrors "farmlink/internal/domain/errors"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func handleError(t *testing.T, err error) (int, response.ErrorBody) {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/orders", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	m := NewErrorMiddleware(slog.New(slog.NewTextHandler(io.Discard, nil)))
	m.HandleHTTPError(err, c)

	var body response.ErrorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	return rec.Code, body
}

func TestErrorMiddleware_AppError(t *testing.T) {
	code, body := handleError(t, domainerrors.ErrAccessTokenExpired)

	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, http.StatusUnauthorized, body.Status)
	assert.Equal(t, "The access token has expired", body.Message)
	assert.False(t, body.Timestamp.IsZero())
	assert.Nil(t, body.ValidationErrors)
}

func TestErrorMiddleware_WrappedAppErrorKeepsItsShape(t *testing.T) {
	err := domainerrors.ErrSessionNotFound.WrapMessage("terminate session")

	code, body := handleError(t, err)

	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "Session not found", body.Message)
}

func TestErrorMiddleware_ValidationErrorCarriesFieldMap(t *testing.T) {
	err := domainerrors.NewValidationError(map[string]string{
		"email":    "must be a valid email address",
		"password": "is required",
	})

	code, body := handleError(t, err)

	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Request validation failed", body.Message)
	assert.Equal(t, "is required", body.ValidationErrors["password"])
}

func TestErrorMiddleware_UnknownErrorHidesDetails(t *testing.T) {
	code, body := handleError(t, errors.New("pq: connection refused"))

	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, "Internal server error", body.Message)
	assert.NotContains(t, body.Message, "pq:")
}
