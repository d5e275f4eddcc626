package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/cortexbuild/platform/internal/api/routes"
	"github.com/cortexbuild/platform/internal/core/domain"
	"github.com/cortexbuild/platform/internal/core/service"
)

func newAuthTestContext(t *testing.T, req *http.Request) (echo.Context, *httptest.ResponseRecorder, *echo.Echo) {
	t.Helper()
	e := echo.New()
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec, e
}

func issueToken(t *testing.T, role domain.Role, ttl time.Duration) string {
	t.Helper()
	token, err := service.NewTokenService("secret", ttl).Issue(&domain.User{
		ID:    "u-1",
		Email: "demo@cortexbuild.com",
		Role:  role,
	})
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return token
}

func authGate(extra ...func(*AuthConfig)) echo.MiddlewareFunc {
	cfg := AuthConfig{Tokens: service.NewTokenService("secret", time.Hour)}
	for _, fn := range extra {
		fn(&cfg)
	}
	return Auth(cfg)
}

func TestAuth_ValidBearerToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/projects", nil)
	req.Header.Set("Authorization", "Bearer "+issueToken(t, domain.RoleAdmin, time.Hour))
	c, rec, _ := newAuthTestContext(t, req)

	called := false
	handler := authGate()(func(c echo.Context) error {
		called = true
		claims, ok := c.Get(ContextKeyClaims).(*domain.Claims)
		if !ok || claims == nil {
			t.Fatalf("claims not attached")
		}
		if claims.SubjectID != "u-1" || claims.Role != domain.RoleAdmin {
			t.Fatalf("unexpected claims: %+v", claims)
		}
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next not called")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAuth_CookieFallback(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/projects", nil)
	req.AddCookie(&http.Cookie{Name: "token", Value: issueToken(t, domain.RoleUser, time.Hour)})
	c, rec, _ := newAuthTestContext(t, req)

	handler := authGate()(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAuth_HeaderTakesPrecedenceOverCookie(t *testing.T) {
	// A valid cookie does not rescue a garbage Bearer token.
	req := httptest.NewRequest(http.MethodGet, "/api/projects", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	req.AddCookie(&http.Cookie{Name: "token", Value: issueToken(t, domain.RoleUser, time.Hour)})
	c, rec, e := newAuthTestContext(t, req)

	handler := authGate()(func(c echo.Context) error {
		t.Fatalf("should not reach next")
		return nil
	})

	if err := handler(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAuth_MissingToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/projects", nil)
	c, rec, e := newAuthTestContext(t, req)

	handler := authGate()(func(c echo.Context) error {
		t.Fatalf("should not reach next")
		return nil
	})

	if err := handler(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAuth_ExpiredToken(t *testing.T) {
	token := issueToken(t, domain.RoleAdmin, 30*time.Millisecond)
	time.Sleep(80 * time.Millisecond)

	req := httptest.NewRequest(http.MethodGet, "/api/projects", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	c, rec, e := newAuthTestContext(t, req)

	handler := authGate()(func(c echo.Context) error {
		t.Fatalf("should not reach next")
		return nil
	})

	if err := handler(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAuth_PublicRouteBypassesGate(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	c, rec, _ := newAuthTestContext(t, req)

	handler := authGate(func(cfg *AuthConfig) {
		cfg.Public = routes.NewMatcher([]string{"/api/health"})
	})(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

type stubRevocations struct {
	revoked map[string]bool
	err     error
}

func (s *stubRevocations) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	return s.revoked[tokenID], nil
}

func TestAuth_RevokedToken(t *testing.T) {
	tokens := service.NewTokenService("secret", time.Hour)
	token, err := tokens.Issue(&domain.User{ID: "u-1", Role: domain.RoleAdmin})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	claims, err := tokens.Verify(token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/projects", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	c, rec, e := newAuthTestContext(t, req)

	gate := Auth(AuthConfig{
		Tokens:      tokens,
		Revocations: &stubRevocations{revoked: map[string]bool{claims.TokenID: true}},
	})
	handler := gate(func(c echo.Context) error {
		t.Fatalf("should not reach next")
		return nil
	})

	if err := handler(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}
