package ports

import "github.com/cortexbuild/platform/internal/core/domain"

// TokenService issues and verifies signed access tokens. Verify reports a
// single error kind for every invalid token so callers never learn whether
// the signature, the format, or the expiry was at fault.
type TokenService interface {
	Issue(user *domain.User) (string, error)
	Verify(token string) (*domain.Claims, error)
}
