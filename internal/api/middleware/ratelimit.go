package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/cortexbuild/platform/internal/api/metrics"
	"github.com/cortexbuild/platform/internal/core/domain"
	"github.com/cortexbuild/platform/internal/core/ports"
	"github.com/cortexbuild/platform/internal/ratelimit"
	"github.com/cortexbuild/platform/pkg/logger"
)

// RateLimitConfig configures the RateLimit gate.
type RateLimitConfig struct {
	Limiter ratelimit.Limiter
	// Window is the quota window, reported to rejected clients.
	Window time.Duration
	// KeyFunc derives the client identifier. Defaults to the remote
	// address. Keying on the address undercounts clients behind shared
	// NAT and overcounts multi-tab users; known trade-off.
	KeyFunc func(c echo.Context) string
	// Audit, when set, records rejected requests for the activity trail.
	Audit ports.AuditRecorder
}

// RateLimit rejects requests exceeding the sliding-window quota with 429.
// The limit and window are disclosed so legitimate clients can back off.
func RateLimit(cfg RateLimitConfig) echo.MiddlewareFunc {
	keyFunc := cfg.KeyFunc
	if keyFunc == nil {
		keyFunc = func(c echo.Context) string { return c.RealIP() }
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := keyFunc(c)

			res, err := cfg.Limiter.Allow(c.Request().Context(), key)
			if err != nil {
				// A broken limiter store must not take the API down;
				// let the request through.
				log := logger.Get()
				log.Warn().Err(err).Str("key", key).Msg("rate limit check failed")
				return next(c)
			}

			if !res.Allowed {
				metrics.RateLimitDecisionsTotal.WithLabelValues("rejected").Inc()
				if cfg.Audit != nil {
					cfg.Audit.Record(domain.AuditEvent{
						Actor:      key,
						Action:     domain.AuditRateLimited,
						Outcome:    domain.AuditOutcomeFailure,
						RemoteAddr: c.RealIP(),
						Timestamp:  time.Now().UTC(),
					})
				}
				c.Response().Header().Set("Retry-After",
					strconv.Itoa(int(res.RetryAfter/time.Second)+1))
				return echo.NewHTTPError(http.StatusTooManyRequests,
					fmt.Sprintf("rate limit exceeded: %d requests per %s", res.Limit, cfg.Window))
			}

			metrics.RateLimitDecisionsTotal.WithLabelValues("allowed").Inc()
			return next(c)
		}
	}
}
