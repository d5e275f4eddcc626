package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/cortexbuild/platform/internal/api/metrics"
	"github.com/cortexbuild/platform/internal/api/routes"
	"github.com/cortexbuild/platform/internal/core/ports"
	"github.com/cortexbuild/platform/pkg/logger"
)

const defaultCookieName = "token"

// RevocationChecker reports whether a token has been revoked by logout.
type RevocationChecker interface {
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// AuthConfig configures the Auth gate.
type AuthConfig struct {
	Tokens ports.TokenService
	// Public short-circuits the gate for exempt paths. Nil means every
	// path requires a token.
	Public *routes.Matcher
	// CookieName is the fallback token cookie. Defaults to "token".
	CookieName string
	// Revocations is consulted after successful verification when set.
	Revocations RevocationChecker
}

// Auth verifies the access token on every non-public request and attaches the
// decoded claims to the context. Token extraction precedence: Authorization
// Bearer header first, cookie second.
func Auth(cfg AuthConfig) echo.MiddlewareFunc {
	cookieName := cfg.CookieName
	if cookieName == "" {
		cookieName = defaultCookieName
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if cfg.Public != nil && cfg.Public.IsPublic(c.Request().URL.Path) {
				return next(c)
			}

			token := extractToken(c, cookieName)
			if token == "" {
				metrics.TokenVerificationsTotal.WithLabelValues("missing").Inc()
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authentication token")
			}

			claims, err := cfg.Tokens.Verify(token)
			if err != nil {
				metrics.TokenVerificationsTotal.WithLabelValues("invalid").Inc()
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired token")
			}

			if cfg.Revocations != nil && claims.TokenID != "" {
				revoked, err := cfg.Revocations.IsRevoked(c.Request().Context(), claims.TokenID)
				if err != nil {
					// Revocation storage being down must not lock every
					// user out; the token still carries a valid signature.
					log := logger.Get()
					log.Warn().Err(err).Msg("revocation check failed")
				} else if revoked {
					metrics.TokenVerificationsTotal.WithLabelValues("revoked").Inc()
					return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired token")
				}
			}

			metrics.TokenVerificationsTotal.WithLabelValues("valid").Inc()
			c.Set(ContextKeyClaims, claims)
			return next(c)
		}
	}
}

// extractToken pulls the token from the Authorization header, falling back to
// the configured cookie. First match wins.
func extractToken(c echo.Context, cookieName string) string {
	if authHeader := c.Request().Header.Get("Authorization"); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return parts[1]
		}
	}

	if cookie, err := c.Cookie(cookieName); err == nil {
		return cookie.Value
	}
	return ""
}
