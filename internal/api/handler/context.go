package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/flywinger/bolt-user-auth/internal/api/middleware"
)

// ctxUserID extracts the user id injected by the RequireUser middleware.
// Its presence proves the middleware ran; a missing id on a protected route
// means the route was wired without it.
func ctxUserID(c echo.Context) (string, error) {
	id, _ := c.Get(middleware.UserIDKey).(string)
	if id == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "missing session identity")
	}
	return id, nil
}
