package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/flywinger/bolt-user-auth/internal/api/session"
	"github.com/flywinger/bolt-user-auth/internal/core/domain"
	"github.com/flywinger/bolt-user-auth/internal/core/ports"
	"github.com/flywinger/bolt-user-auth/internal/metrics"
)

// AuthHandler serves registration, login, and logout.
type AuthHandler struct {
	identity ports.IdentityService
	sessions *session.Manager
	audit    ports.AuditSink
}

func NewAuthHandler(identity ports.IdentityService, sessions *session.Manager, audit ports.AuditSink) *AuthHandler {
	return &AuthHandler{identity: identity, sessions: sessions, audit: audit}
}

// Register creates a new account and mints a session.
//
// On success the response is a redirect carrying the freshly signed session
// cookie; rejections surface through the central error handler as a
// field-keyed error envelope.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	user, err := h.identity.Register(c.Request().Context(), ports.RegisterInput{
		Username: req.Username,
		Password: req.Password,
		Email:    req.Email,
	})
	if err != nil {
		metrics.RegistrationsTotal.WithLabelValues(resultLabel(err)).Inc()
		return err
	}
	metrics.RegistrationsTotal.WithLabelValues("success").Inc()

	if err := h.sessions.Issue(c.Response(), user.ID); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, safeRedirect(req.RedirectTo))
}

// Login verifies credentials and mints a session. Unknown usernames and
// wrong passwords produce the same response.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	user, err := h.identity.Login(c.Request().Context(), ports.LoginInput{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		metrics.LoginsTotal.WithLabelValues(resultLabel(err)).Inc()
		return err
	}
	metrics.LoginsTotal.WithLabelValues("success").Inc()

	if err := h.sessions.Issue(c.Response(), user.ID); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, safeRedirect(req.RedirectTo))
}

// Logout destroys the session unconditionally, whether or not one was
// present, and redirects to the application root.
func (h *AuthHandler) Logout(c echo.Context) error {
	if userID, ok := h.sessions.Read(c.Request()).UserID(); ok && h.audit != nil {
		h.audit.Record(domain.AuthEvent{
			Kind:      domain.EventLogout,
			UserID:    userID,
			Timestamp: time.Now().UTC(),
		})
	}

	h.sessions.Clear(c.Response())
	return c.Redirect(http.StatusSeeOther, "/")
}

// resultLabel buckets service errors for metrics: user-correctable
// rejections vs. real failures.
func resultLabel(err error) string {
	var ferr domain.FieldErrors
	switch {
	case errors.As(err, &ferr),
		errors.Is(err, domain.ErrDuplicateUsername),
		errors.Is(err, domain.ErrInvalidCredentials):
		return "rejected"
	default:
		return "error"
	}
}
