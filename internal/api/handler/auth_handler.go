package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/cortexbuild/platform/internal/api/metrics"
	"github.com/cortexbuild/platform/internal/core/domain"
	"github.com/cortexbuild/platform/internal/core/ports"
)

// TokenRevoker denylists a token until its natural expiry. Nil when the
// deployment has no revocation store; logout is then client-side discard.
type TokenRevoker interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
}

type AuthHandler struct {
	authService ports.AuthService
	revoker     TokenRevoker
	audit       ports.AuditRecorder
	cookieName  string
}

func NewAuthHandler(authService ports.AuthService, revoker TokenRevoker, audit ports.AuditRecorder, cookieName string) *AuthHandler {
	if cookieName == "" {
		cookieName = "token"
	}
	return &AuthHandler{authService: authService, revoker: revoker, audit: audit, cookieName: cookieName}
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type registerRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8"`
	Name      string `json:"name"`
	Role      string `json:"role" validate:"required"`
	CompanyID string `json:"company_id"`
}

type userPayload struct {
	ID    string      `json:"id"`
	Email string      `json:"email"`
	Name  string      `json:"name"`
	Role  domain.Role `json:"role"`
}

type authResponse struct {
	Success bool         `json:"success"`
	Token   string       `json:"token,omitempty"`
	User    *userPayload `json:"user,omitempty"`
}

// Login authenticates a user and returns a signed access token.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  authResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Router       /api/auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		// Validation detail would reveal whether the email was
		// well-formed; login failures stay uniform.
		return domain.ErrInvalidCredentials
	}

	token, user, err := h.authService.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues("failure").Inc()
		return err
	}
	metrics.LoginsTotal.WithLabelValues("success").Inc()

	c.SetCookie(&http.Cookie{
		Name:     h.cookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	return c.JSON(http.StatusOK, authResponse{
		Success: true,
		Token:   token,
		User:    &userPayload{ID: user.ID, Email: user.Email, Name: user.Name, Role: user.Role},
	})
}

// Register creates a new user account. The route is admin-gated.
//
// @Summary      Register a new user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "User registration details"
// @Success      201   {object}  authResponse
// @Failure      400   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Router       /api/auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	role, err := domain.ParseRole(req.Role)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "unknown role")
	}

	user, err := h.authService.Register(c.Request().Context(), ports.RegisterInput{
		Email:     req.Email,
		Password:  req.Password,
		Name:      req.Name,
		Role:      role,
		CompanyID: req.CompanyID,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, authResponse{
		Success: true,
		User:    &userPayload{ID: user.ID, Email: user.Email, Name: user.Name, Role: user.Role},
	})
}

// Me returns the identity of the presented token.
//
// @Summary      Current identity
// @Tags         auth
// @Produce      json
// @Success      200  {object}  authResponse
// @Failure      401  {object}  map[string]string
// @Router       /api/auth/me [get]
func (h *AuthHandler) Me(c echo.Context) error {
	claims, err := ctxClaims(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, authResponse{
		Success: true,
		User:    &userPayload{ID: claims.SubjectID, Email: claims.Email, Role: claims.Role},
	})
}

// Logout ends the session. With a revocation store the token is denylisted
// until its natural expiry; otherwise the client simply discards it.
//
// @Summary      Logout
// @Tags         auth
// @Produce      json
// @Success      200  {object}  map[string]bool
// @Failure      401  {object}  map[string]string
// @Router       /api/auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	claims, err := ctxClaims(c)
	if err != nil {
		return err
	}

	if h.revoker != nil && claims.TokenID != "" {
		ttl := time.Until(claims.ExpiresAt)
		if err := h.revoker.Revoke(c.Request().Context(), claims.TokenID, ttl); err != nil {
			return err
		}
	}

	c.SetCookie(&http.Cookie{
		Name:     h.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})

	if h.audit != nil {
		h.audit.Record(domain.AuditEvent{
			Actor:      claims.Email,
			Action:     domain.AuditLogout,
			Outcome:    domain.AuditOutcomeSuccess,
			RemoteAddr: c.RealIP(),
			Timestamp:  time.Now().UTC(),
		})
	}

	return c.JSON(http.StatusOK, map[string]bool{"success": true})
}
