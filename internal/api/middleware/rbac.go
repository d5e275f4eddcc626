package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/cortexbuild/platform/internal/core/domain"
)

// RequireRoles authorizes the identity attached by Auth against a required
// role set. An empty set admits any authenticated identity. Unlike auth
// failures, the 403 names the required roles; that disclosure is safe.
//
// Must run after Auth: a request without claims is treated as
// unauthenticated, not merely forbidden.
func RequireRoles(allowedRoles ...domain.Role) echo.MiddlewareFunc {
	allowed := make(map[domain.Role]struct{}, len(allowedRoles))
	names := make([]string, 0, len(allowedRoles))
	for _, r := range allowedRoles {
		allowed[r] = struct{}{}
		names = append(names, string(r))
	}
	forbiddenMsg := "requires one of roles: " + strings.Join(names, ", ")

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, ok := c.Get(ContextKeyClaims).(*domain.Claims)
			if !ok || claims == nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
			}

			if len(allowed) == 0 {
				return next(c)
			}
			if _, ok := allowed[claims.Role]; !ok {
				return echo.NewHTTPError(http.StatusForbidden, forbiddenMsg)
			}
			return next(c)
		}
	}
}

// RequireAdmin admits company admins and super admins only.
func RequireAdmin() echo.MiddlewareFunc {
	return RequireRoles(domain.RoleAdmin, domain.RoleSuperAdmin)
}

// RequireAuthenticated admits any identity that passed the Auth gate.
func RequireAuthenticated() echo.MiddlewareFunc {
	return RequireRoles()
}
