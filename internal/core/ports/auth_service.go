package ports

import (
	"context"

	"github.com/cortexbuild/platform/internal/core/domain"
)

// RegisterInput carries the fields required to create a new account.
type RegisterInput struct {
	Email     string
	Password  string
	Name      string
	Role      domain.Role
	CompanyID string
}

type AuthService interface {
	Login(ctx context.Context, email, password string) (string, *domain.User, error)
	Register(ctx context.Context, input RegisterInput) (*domain.User, error)
}
