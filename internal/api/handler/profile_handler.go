package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/flywinger/bolt-user-auth/internal/api/session"
	"github.com/flywinger/bolt-user-auth/internal/core/domain"
	"github.com/flywinger/bolt-user-auth/internal/core/ports"
)

// ProfileHandler serves the authenticated account view and profile mutation.
// Both routes sit behind the RequireUser middleware.
type ProfileHandler struct {
	identity ports.IdentityService
	sessions *session.Manager
}

func NewProfileHandler(identity ports.IdentityService, sessions *session.Manager) *ProfileHandler {
	return &ProfileHandler{identity: identity, sessions: sessions}
}

// Show returns the current user's profile. A session whose account no
// longer exists is cleared and sent back to the login page.
func (h *ProfileHandler) Show(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	user, err := h.identity.GetUser(c.Request().Context(), userID)
	if errors.Is(err, domain.ErrUserNotFound) {
		h.sessions.Clear(c.Response())
		return c.Redirect(http.StatusFound, "/login")
	}
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, user)
}

// Update applies email and password changes. The session cookie is left
// untouched whether the request is accepted or rejected.
func (h *ProfileHandler) Update(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	var req profileRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	if _, err := h.identity.UpdateProfile(c.Request().Context(), userID, ports.ProfileUpdateInput{
		Email:           req.Email,
		CurrentPassword: req.CurrentPassword,
		NewPassword:     req.NewPassword,
		ConfirmPassword: req.ConfirmPassword,
	}); err != nil {
		return err
	}

	return c.Redirect(http.StatusSeeOther, "/profile")
}
