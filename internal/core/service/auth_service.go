package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/cortexbuild/platform/internal/core/domain"
	"github.com/cortexbuild/platform/internal/core/ports"
)

// AuthService implements login and registration over a UserRepository.
type AuthService struct {
	repo   ports.UserRepository
	tokens ports.TokenService
	audit  ports.AuditRecorder
	log    zerolog.Logger
}

func NewAuthService(repo ports.UserRepository, tokens ports.TokenService, audit ports.AuditRecorder, log zerolog.Logger) *AuthService {
	return &AuthService{repo: repo, tokens: tokens, audit: audit, log: log}
}

// Login resolves email+password to a signed token. Unknown email and wrong
// password are indistinguishable to the caller: both return
// domain.ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	if email == "" || password == "" {
		return "", nil, domain.ErrInvalidCredentials
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			s.record(domain.AuditLogin, email, domain.AuditOutcomeFailure, "unknown email")
			return "", nil, domain.ErrInvalidCredentials
		}
		return "", nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		s.record(domain.AuditLogin, email, domain.AuditOutcomeFailure, "password mismatch")
		return "", nil, domain.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return "", nil, err
	}

	s.record(domain.AuditLogin, email, domain.AuditOutcomeSuccess, "")
	return token, user, nil
}

// Register creates a new account with a bcrypt-hashed secret.
func (s *AuthService) Register(ctx context.Context, input ports.RegisterInput) (*domain.User, error) {
	if input.Email == "" || input.Password == "" {
		return nil, domain.ErrInvalidCredentials
	}
	if _, err := domain.ParseRole(string(input.Role)); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user := &domain.User{
		Email:        input.Email,
		Name:         input.Name,
		PasswordHash: string(hash),
		Role:         input.Role,
		CompanyID:    input.CompanyID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	created, err := s.repo.Create(ctx, user)
	if err != nil {
		return nil, err
	}

	s.record(domain.AuditRegister, input.Email, domain.AuditOutcomeSuccess, string(input.Role))
	return created, nil
}

func (s *AuthService) record(action domain.AuditAction, actor, outcome, detail string) {
	if s.audit == nil {
		return
	}
	s.audit.Record(domain.AuditEvent{
		Actor:     actor,
		Action:    action,
		Outcome:   outcome,
		Timestamp: time.Now().UTC(),
		Detail:    detail,
	})
}
