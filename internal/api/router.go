package api

import (
	"net/http"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/cortexbuild/platform/internal/api/handler"
	"github.com/cortexbuild/platform/internal/api/middleware"
	"github.com/cortexbuild/platform/internal/api/routes"
	"github.com/cortexbuild/platform/internal/core/ports"
	"github.com/cortexbuild/platform/internal/core/service"
	redisdb "github.com/cortexbuild/platform/internal/infrastructure/db/redis"
	"github.com/cortexbuild/platform/internal/pkg/config"
	"github.com/cortexbuild/platform/internal/ratelimit"
)

// RouterDeps carries the externally owned collaborators of the router.
// Mongo and Redis are nil in demo mode; Audit may be nil when the trail is
// disabled.
type RouterDeps struct {
	Cfg   *config.Config
	Log   zerolog.Logger
	Users ports.UserRepository
	Mongo *mongo.Database
	Redis *redis.Client
	Audit ports.AuditRecorder
	// Metrics receives the HTTP request metrics. Nil means the default
	// Prometheus registry.
	Metrics *prometheus.Registry
}

// NewRouter builds and returns the Echo instance with all gates and routes
// registered.
func NewRouter(deps RouterDeps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())

	metricsHandler := echoprometheus.NewHandler()
	promCfg := echoprometheus.MiddlewareConfig{Subsystem: "cortexbuild"}
	if deps.Metrics != nil {
		promCfg.Registerer = deps.Metrics
		metricsHandler = echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: deps.Metrics})
	}
	e.Use(echoprometheus.NewMiddlewareWithConfig(promCfg))

	// --- Rate limiting ---
	// Product quota: 100 requests per 15 minutes per remote address
	// (config defaults). Single-instance deployments count in process;
	// with Redis the quota is shared across instances.
	var limiter ratelimit.Limiter
	if deps.Redis != nil {
		limiter = ratelimit.NewRedisLimiter(deps.Redis, deps.Cfg.RateLimit.MaxRequests, deps.Cfg.RateLimit.Window)
	} else {
		limiter = ratelimit.NewMemoryLimiter(deps.Cfg.RateLimit.MaxRequests, deps.Cfg.RateLimit.Window)
	}
	e.Use(middleware.RateLimit(middleware.RateLimitConfig{
		Limiter: limiter,
		Window:  deps.Cfg.RateLimit.Window,
		Audit:   deps.Audit,
	}))

	// --- Authentication gate ---
	tokens := service.NewTokenService(deps.Cfg.Auth.JWTSecret, deps.Cfg.Auth.TokenTTL)

	var revocations *redisdb.RevocationList
	authCfg := middleware.AuthConfig{
		Tokens:     tokens,
		Public:     routes.NewMatcher(deps.Cfg.Auth.PublicRoutes),
		CookieName: deps.Cfg.Auth.CookieName,
	}
	if deps.Redis != nil {
		revocations = redisdb.NewRevocationList(deps.Redis)
		authCfg.Revocations = revocations
	}
	e.Use(middleware.Auth(authCfg))

	// --- Auth routes ---
	authService := service.NewAuthService(deps.Users, tokens, deps.Audit, deps.Log)
	var revoker handler.TokenRevoker
	if revocations != nil {
		revoker = revocations
	}
	authHandler := handler.NewAuthHandler(authService, revoker, deps.Audit, deps.Cfg.Auth.CookieName)

	e.POST("/api/auth/login", authHandler.Login)
	e.POST("/api/auth/logout", authHandler.Logout, middleware.RequireAuthenticated())
	e.GET("/api/auth/me", authHandler.Me, middleware.RequireAuthenticated())
	e.POST("/api/auth/register", authHandler.Register, middleware.RequireAdmin())

	// --- Service-to-service routes (API key, no user identity) ---
	internal := e.Group("/api/internal", middleware.APIKey(deps.Cfg.Auth.APIKeys))
	internal.GET("/status", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]any{"success": true, "status": "ok"})
	})

	// --- Health probes and metrics (public) ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(deps.Mongo, deps.Redis)

	e.GET("/api/health", healthHandler.Liveness)
	e.GET("/api/health/ready", readinessHandler.Readiness)
	e.GET("/metrics", metricsHandler)

	return e
}
