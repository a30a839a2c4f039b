package middleware

import (
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"

	"github.com/flywinger/bolt-user-auth/internal/api/session"
)

// UserIDKey is the echo context key holding the authenticated user id.
const UserIDKey = "user_id"

// RequireUser reads the session cookie and injects the user id into the
// request context. Without a valid session the request is redirected to the
// login page with the originally requested path as the return target, and
// normal handling is aborted.
func RequireUser(sessions *session.Manager, loginPath string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			userID, ok := sessions.Read(c.Request()).UserID()
			if !ok {
				q := url.Values{"redirectTo": {c.Request().URL.Path}}
				return c.Redirect(http.StatusFound, loginPath+"?"+q.Encode())
			}

			c.Set(UserIDKey, userID)
			return next(c)
		}
	}
}
