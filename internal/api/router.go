package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/flywinger/bolt-user-auth/internal/api/handler"
	"github.com/flywinger/bolt-user-auth/internal/api/middleware"
	"github.com/flywinger/bolt-user-auth/internal/api/session"
	"github.com/flywinger/bolt-user-auth/internal/core/ports"
)

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(
	identity ports.IdentityService,
	sessions *session.Manager,
	audit ports.AuditSink,
	db *mongo.Database,
	rdb *redis.Client,
	log zerolog.Logger,
) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("auth"))

	// --- Auth routes ---
	authHandler := handler.NewAuthHandler(identity, sessions, audit)
	e.POST("/register", authHandler.Register)
	e.POST("/login", authHandler.Login)
	e.POST("/logout", authHandler.Logout)
	e.GET("/logout", authHandler.Logout)

	// --- Authenticated routes ---
	profileHandler := handler.NewProfileHandler(identity, sessions)
	authed := e.Group("", middleware.RequireUser(sessions, "/login"))
	authed.GET("/profile", profileHandler.Show)
	authed.POST("/profile", profileHandler.Update)

	// --- Observability (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(db, rdb)

	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthDepsHandler.Readiness)
	e.GET("/metrics", echoprometheus.NewHandler())

	return e
}
