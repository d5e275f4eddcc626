package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/cortexbuild/platform/internal/infrastructure/db/memory"
	"github.com/cortexbuild/platform/internal/pkg/config"
)

func testConfig() *config.Config {
	return &config.Config{
		Port:     "8080",
		Env:      "test",
		DemoMode: true,
		Auth: config.AuthConfig{
			JWTSecret:    "test-secret",
			TokenTTL:     time.Hour,
			CookieName:   "token",
			PublicRoutes: []string{"/api/health", "/api/auth/login", "/metrics", "/api/internal"},
			APIKeys:      []string{"svc-key"},
		},
		RateLimit: config.RateLimitConfig{MaxRequests: 100, Window: 15 * time.Minute},
	}
}

func newTestRouter(t *testing.T, cfg *config.Config, rdb *redis.Client) *echo.Echo {
	t.Helper()
	return NewRouter(RouterDeps{
		Cfg:     cfg,
		Log:     zerolog.Nop(),
		Users:   memory.NewUserRepository(memory.SeedDemo()...),
		Redis:   rdb,
		Metrics: prometheus.NewRegistry(),
	})
}

func doJSON(e *echo.Echo, method, path, body, token string) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func login(t *testing.T, e *echo.Echo, email, password string) (string, map[string]any, *httptest.ResponseRecorder) {
	t.Helper()
	rec := doJSON(e, http.MethodPost, "/api/auth/login",
		`{"email":"`+email+`","password":"`+password+`"}`, "")

	var resp struct {
		Success bool           `json:"success"`
		Token   string         `json:"token"`
		User    map[string]any `json:"user"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode login response: %v (%s)", err, rec.Body.String())
	}
	return resp.Token, resp.User, rec
}

func TestLogin_ReturnsTokenAndUser(t *testing.T) {
	e := newTestRouter(t, testConfig(), nil)

	token, user, rec := login(t, e, "demo@cortexbuild.com", "demo-password")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if token == "" {
		t.Fatalf("expected token")
	}
	if user["role"] != "admin" {
		t.Fatalf("expected admin role, got %v", user["role"])
	}
	if user["email"] != "demo@cortexbuild.com" {
		t.Fatalf("unexpected user email: %v", user["email"])
	}

	// Login also sets the token cookie for browser clients.
	found := false
	for _, c := range rec.Result().Cookies() {
		if c.Name == "token" && c.Value != "" && c.HttpOnly {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected HttpOnly token cookie")
	}
}

func TestLogin_FailureIsUniform(t *testing.T) {
	e := newTestRouter(t, testConfig(), nil)

	_, _, wrongPass := login(t, e, "demo@cortexbuild.com", "wrong-password")
	_, _, unknown := login(t, e, "ghost@cortexbuild.com", "demo-password")

	if wrongPass.Code != http.StatusUnauthorized || unknown.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401/401, got %d/%d", wrongPass.Code, unknown.Code)
	}
	// Identical body: the response must not reveal whether the email exists.
	if wrongPass.Body.String() != unknown.Body.String() {
		t.Fatalf("login failure responses differ: %q vs %q",
			wrongPass.Body.String(), unknown.Body.String())
	}
}

func TestAdminGate_EndToEnd(t *testing.T) {
	e := newTestRouter(t, testConfig(), nil)

	adminToken, _, _ := login(t, e, "demo@cortexbuild.com", "demo-password")
	userToken, _, _ := login(t, e, "site@cortexbuild.com", "site-password")

	payload := `{"email":"new@cortexbuild.com","password":"password123","name":"New User","role":"user"}`

	// Admin token passes the admin-gated route.
	rec := doJSON(e, http.MethodPost, "/api/auth/register", payload, adminToken)
	if rec.Code != http.StatusCreated {
		t.Fatalf("admin register: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	// A user-role token on the same route is forbidden, not unauthenticated.
	rec = doJSON(e, http.MethodPost, "/api/auth/register", payload, userToken)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("user register: expected 403, got %d", rec.Code)
	}

	// No token at all is unauthenticated.
	rec = doJSON(e, http.MethodPost, "/api/auth/register", payload, "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous register: expected 401, got %d", rec.Code)
	}

	var errResp struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &errResp); err != nil {
		t.Fatalf("decode error envelope: %v", err)
	}
	if errResp.Success || errResp.Error == "" {
		t.Fatalf("unexpected error envelope: %s", rec.Body.String())
	}
}

func TestExpiredToken_Rejected(t *testing.T) {
	cfg := testConfig()
	cfg.Auth.TokenTTL = 200 * time.Millisecond
	e := newTestRouter(t, cfg, nil)

	token, _, _ := login(t, e, "demo@cortexbuild.com", "demo-password")

	if rec := doJSON(e, http.MethodGet, "/api/auth/me", "", token); rec.Code != http.StatusOK {
		t.Fatalf("fresh token: expected 200, got %d", rec.Code)
	}

	time.Sleep(400 * time.Millisecond)

	if rec := doJSON(e, http.MethodGet, "/api/auth/me", "", token); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expired token: expected 401, got %d", rec.Code)
	}
}

func TestPublicRoutes(t *testing.T) {
	e := newTestRouter(t, testConfig(), nil)

	if rec := doJSON(e, http.MethodGet, "/api/health", "", ""); rec.Code != http.StatusOK {
		t.Fatalf("health: expected 200, got %d", rec.Code)
	}
	if rec := doJSON(e, http.MethodGet, "/api/health/ready", "", ""); rec.Code != http.StatusOK {
		t.Fatalf("readiness: expected 200, got %d", rec.Code)
	}
	if rec := doJSON(e, http.MethodGet, "/metrics", "", ""); rec.Code != http.StatusOK {
		t.Fatalf("metrics: expected 200, got %d", rec.Code)
	}
}

func TestInternalRoutes_RequireAPIKey(t *testing.T) {
	e := newTestRouter(t, testConfig(), nil)

	req := httptest.NewRequest(http.MethodGet, "/api/internal/status", nil)
	req.Header.Set("X-API-Key", "svc-key")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("valid key: expected 200, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/internal/status", nil)
	req.Header.Set("X-API-Key", "wrong")
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("invalid key: expected 401, got %d", rec.Code)
	}
}

func TestLogout_RevokesToken(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	e := newTestRouter(t, testConfig(), rdb)

	token, _, _ := login(t, e, "demo@cortexbuild.com", "demo-password")

	if rec := doJSON(e, http.MethodGet, "/api/auth/me", "", token); rec.Code != http.StatusOK {
		t.Fatalf("before logout: expected 200, got %d", rec.Code)
	}

	if rec := doJSON(e, http.MethodPost, "/api/auth/logout", "", token); rec.Code != http.StatusOK {
		t.Fatalf("logout: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	// The token is denylisted server-side until its natural expiry.
	if rec := doJSON(e, http.MethodGet, "/api/auth/me", "", token); rec.Code != http.StatusUnauthorized {
		t.Fatalf("after logout: expected 401, got %d", rec.Code)
	}
}

func TestRateLimit_EndToEnd(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimit = config.RateLimitConfig{MaxRequests: 2, Window: time.Minute}
	e := newTestRouter(t, cfg, nil)

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		rec := doJSON(e, http.MethodGet, "/api/health", "", "")
		codes = append(codes, rec.Code)
	}

	want := []int{200, 200, 429}
	for i := range want {
		if codes[i] != want[i] {
			t.Fatalf("request %d: expected %d, got %d (all: %v)", i, want[i], codes[i], codes)
		}
	}
}
