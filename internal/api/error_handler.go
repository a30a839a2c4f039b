package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/flywinger/bolt-user-auth/internal/core/domain"
)

// errorsResponse is the canonical error envelope for all API errors: a map
// of field names to user-facing messages, with "form" for errors not tied
// to a single field.
type errorsResponse struct {
	Errors map[string]string `json:"errors"`
}

// genericFailureMessage is what callers see for any unexpected failure,
// including storage outages. Internal error text never leaks.
const genericFailureMessage = "Something went wrong. Please try again."

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Renders validation failures as field-keyed messages with a 4xx status.
//   - Maps known domain errors to deterministic statuses.
//   - Logs unexpected errors internally without leaking details to the client.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, fields := resolveError(err, log, c)
		_ = c.JSON(code, errorsResponse{Errors: fields})
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, map[string]string) {
	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, map[string]string{"form": fmt.Sprintf("%v", he.Message)}
	}

	// Field-level validation failures render inline, field by field.
	var ferr domain.FieldErrors
	if errors.As(err, &ferr) {
		return http.StatusBadRequest, ferr
	}

	switch {
	case errors.Is(err, domain.ErrDuplicateUsername):
		return http.StatusConflict, map[string]string{"username": "Username already exists"}
	case errors.Is(err, domain.ErrInvalidCredentials):
		// One message for unknown username and wrong password alike.
		return http.StatusUnauthorized, map[string]string{"form": "Invalid username or password"}
	case errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound, map[string]string{"form": "User not found"}
	}

	// Unexpected error (storage outage, hashing failure): log the real
	// cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, map[string]string{"form": genericFailureMessage}
}
