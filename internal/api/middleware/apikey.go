package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/cortexbuild/platform/internal/api/metrics"
)

// HeaderAPIKey carries the service credential for machine-to-machine calls.
const HeaderAPIKey = "X-API-Key"

// APIKey authenticates service-to-service calls against a fixed allow-list.
// Comparison is constant-time per candidate key. A matching request is marked
// service-authenticated; it carries no user identity or role claims.
func APIKey(allowedKeys []string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			presented := c.Request().Header.Get(HeaderAPIKey)
			if presented == "" || !keyAllowed(presented, allowedKeys) {
				metrics.APIKeyAuthTotal.WithLabelValues("rejected").Inc()
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid api key")
			}

			metrics.APIKeyAuthTotal.WithLabelValues("accepted").Inc()
			c.Set(ContextKeyServiceAuth, true)
			return next(c)
		}
	}
}

func keyAllowed(presented string, allowed []string) bool {
	match := false
	for _, key := range allowed {
		if len(key) == len(presented) &&
			subtle.ConstantTimeCompare([]byte(key), []byte(presented)) == 1 {
			match = true
		}
	}
	return match
}
