package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/cortexbuild/platform/internal/api/middleware"
	"github.com/cortexbuild/platform/internal/core/domain"
)

// ctxClaims extracts the identity attached by the Auth middleware. Absence
// means the gate did not run or was bypassed; that is an authentication
// failure, not an authorization one.
func ctxClaims(c echo.Context) (*domain.Claims, error) {
	claims, ok := c.Get(middleware.ContextKeyClaims).(*domain.Claims)
	if !ok || claims == nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return claims, nil
}
