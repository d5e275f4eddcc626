package ports

import (
	"context"

	"github.com/cortexbuild/platform/internal/core/domain"
)

// UserRepository defines the interface for user credential persistence.
// Lookups are exact, case-sensitive matches.
type UserRepository interface {
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
}
