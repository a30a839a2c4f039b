package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/flywinger/bolt-user-auth/internal/api/session"
	"github.com/flywinger/bolt-user-auth/internal/core/domain"
	"github.com/flywinger/bolt-user-auth/internal/core/ports"
)

type stubIdentityService struct {
	registerFn func(ctx context.Context, in ports.RegisterInput) (*domain.User, error)
	loginFn    func(ctx context.Context, in ports.LoginInput) (*domain.User, error)
	updateFn   func(ctx context.Context, userID string, in ports.ProfileUpdateInput) (*domain.User, error)
	getFn      func(ctx context.Context, userID string) (*domain.User, error)
}

func (s *stubIdentityService) Register(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
	return s.registerFn(ctx, in)
}

func (s *stubIdentityService) Login(ctx context.Context, in ports.LoginInput) (*domain.User, error) {
	return s.loginFn(ctx, in)
}

func (s *stubIdentityService) UpdateProfile(ctx context.Context, userID string, in ports.ProfileUpdateInput) (*domain.User, error) {
	return s.updateFn(ctx, userID, in)
}

func (s *stubIdentityService) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	return s.getFn(ctx, userID)
}

func newFormContext(e *echo.Echo, path string, form url.Values) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func sessionCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == session.CookieName {
			return c
		}
	}
	return nil
}

func TestAuthHandler_Register_Success(t *testing.T) {
	e := echo.New()
	sessions := session.NewManager("test-secret", session.DefaultTTL, false)
	stub := &stubIdentityService{
		registerFn: func(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
			if in.Username != "alice" || in.Password != "secret1" || in.Email != "a@example.com" {
				t.Fatalf("unexpected input: %+v", in)
			}
			return &domain.User{ID: "user-1", Username: in.Username}, nil
		},
	}
	h := NewAuthHandler(stub, sessions, nil)

	c, rec := newFormContext(e, "/register", url.Values{
		"username":   {"alice"},
		"password":   {"secret1"},
		"email":      {"a@example.com"},
		"redirectTo": {"/chat"},
	})
	if err := h.Register(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", rec.Code)
	}
	if loc := rec.Header().Get(echo.HeaderLocation); loc != "/chat" {
		t.Fatalf("unexpected redirect: %q", loc)
	}

	cookie := sessionCookie(rec)
	if cookie == nil {
		t.Fatalf("expected session cookie on response")
	}
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookie)
	if userID, ok := sessions.Read(req).UserID(); !ok || userID != "user-1" {
		t.Fatalf("minted cookie does not identify user-1: (%q, %v)", userID, ok)
	}
}

func TestAuthHandler_Register_DuplicatePropagates(t *testing.T) {
	e := echo.New()
	stub := &stubIdentityService{
		registerFn: func(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
			return nil, domain.ErrDuplicateUsername
		},
	}
	h := NewAuthHandler(stub, session.NewManager("test-secret", session.DefaultTTL, false), nil)

	c, rec := newFormContext(e, "/register", url.Values{"username": {"bob"}, "password": {"secret1"}})
	err := h.Register(c)
	if !errors.Is(err, domain.ErrDuplicateUsername) {
		t.Fatalf("expected ErrDuplicateUsername, got %v", err)
	}
	if sessionCookie(rec) != nil {
		t.Fatalf("no cookie may be set on rejection")
	}
}

func TestAuthHandler_Login_Success(t *testing.T) {
	e := echo.New()
	sessions := session.NewManager("test-secret", session.DefaultTTL, false)
	stub := &stubIdentityService{
		loginFn: func(ctx context.Context, in ports.LoginInput) (*domain.User, error) {
			return &domain.User{ID: "user-9", Username: in.Username}, nil
		},
	}
	h := NewAuthHandler(stub, sessions, nil)

	c, rec := newFormContext(e, "/login", url.Values{"username": {"carol"}, "password": {"secret1"}})
	if err := h.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", rec.Code)
	}
	if sessionCookie(rec) == nil {
		t.Fatalf("expected session cookie on response")
	}
}

func TestAuthHandler_Login_InvalidCredentialsPropagates(t *testing.T) {
	e := echo.New()
	stub := &stubIdentityService{
		loginFn: func(ctx context.Context, in ports.LoginInput) (*domain.User, error) {
			return nil, domain.ErrInvalidCredentials
		},
	}
	h := NewAuthHandler(stub, session.NewManager("test-secret", session.DefaultTTL, false), nil)

	c, rec := newFormContext(e, "/login", url.Values{"username": {"carol"}, "password": {"wrong99"}})
	if err := h.Login(c); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if sessionCookie(rec) != nil {
		t.Fatalf("no cookie may be set on rejection")
	}
}

func TestAuthHandler_RedirectSanitized(t *testing.T) {
	e := echo.New()
	stub := &stubIdentityService{
		loginFn: func(ctx context.Context, in ports.LoginInput) (*domain.User, error) {
			return &domain.User{ID: "user-9"}, nil
		},
	}
	h := NewAuthHandler(stub, session.NewManager("test-secret", session.DefaultTTL, false), nil)

	for _, target := range []string{"https://evil.example", "//evil.example", ""} {
		c, rec := newFormContext(e, "/login", url.Values{
			"username":   {"carol"},
			"password":   {"secret1"},
			"redirectTo": {target},
		})
		if err := h.Login(c); err != nil {
			t.Fatalf("handler error: %v", err)
		}
		if loc := rec.Header().Get(echo.HeaderLocation); loc != "/" {
			t.Fatalf("redirectTo %q escaped to %q", target, loc)
		}
	}
}

func TestAuthHandler_Logout(t *testing.T) {
	e := echo.New()
	sessions := session.NewManager("test-secret", session.DefaultTTL, false)
	h := NewAuthHandler(&stubIdentityService{}, sessions, nil)

	// Logout succeeds with or without an existing session.
	req := httptest.NewRequest(http.MethodPost, "/logout", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Logout(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", rec.Code)
	}
	if loc := rec.Header().Get(echo.HeaderLocation); loc != "/" {
		t.Fatalf("unexpected redirect: %q", loc)
	}

	cookie := sessionCookie(rec)
	if cookie == nil || cookie.MaxAge >= 0 || cookie.Value != "" {
		t.Fatalf("expected invalidating cookie, got %+v", cookie)
	}
}
