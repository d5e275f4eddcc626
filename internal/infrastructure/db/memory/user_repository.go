// Package memory provides the demo-mode user store: a fixed, in-process
// record set established at startup. Production deployments use the Mongo
// repository instead.
package memory

import (
	"context"
	"strconv"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/cortexbuild/platform/internal/core/domain"
)

// UserRepository implements ports.UserRepository over an in-memory record
// set guarded by an RWMutex. Returned users are copies.
type UserRepository struct {
	mu      sync.RWMutex
	byEmail map[string]*domain.User
	byID    map[string]*domain.User
	nextID  int
}

func NewUserRepository(users ...*domain.User) *UserRepository {
	r := &UserRepository{
		byEmail: make(map[string]*domain.User),
		byID:    make(map[string]*domain.User),
		nextID:  1,
	}
	for _, u := range users {
		r.insert(u)
	}
	return r
}

// SeedDemo returns the demo account set. Secrets are bcrypt-hashed at seed
// time; no plaintext is retained.
func SeedDemo() []*domain.User {
	now := time.Now().UTC()
	seed := []struct {
		email    string
		name     string
		password string
		role     domain.Role
		company  string
	}{
		{"demo@cortexbuild.com", "Demo Admin", "demo-password", domain.RoleAdmin, "acme-construction"},
		{"root@cortexbuild.com", "Platform Operator", "root-password", domain.RoleSuperAdmin, ""},
		{"site@cortexbuild.com", "Site Manager", "site-password", domain.RoleUser, "acme-construction"},
		{"client@cortexbuild.com", "Portal Client", "client-password", domain.RoleClient, "acme-construction"},
	}

	users := make([]*domain.User, 0, len(seed))
	for _, s := range seed {
		hash, err := bcrypt.GenerateFromPassword([]byte(s.password), bcrypt.DefaultCost)
		if err != nil {
			panic("seed demo users: " + err.Error())
		}
		users = append(users, &domain.User{
			Email:        s.email,
			Name:         s.name,
			PasswordHash: string(hash),
			Role:         s.role,
			CompanyID:    s.company,
			CreatedAt:    now,
			UpdatedAt:    now,
		})
	}
	return users
}

func (r *UserRepository) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.byEmail[email]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *UserRepository) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *UserRepository) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byEmail[user.Email]; exists {
		return nil, domain.ErrUserExists
	}
	return cloneUser(r.insertLocked(cloneUser(user))), nil
}

func (r *UserRepository) insert(u *domain.User) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.insertLocked(u)
}

func (r *UserRepository) insertLocked(u *domain.User) *domain.User {
	if u.ID == "" {
		u.ID = "u-" + strconv.Itoa(r.nextID)
	}
	r.nextID++
	r.byEmail[u.Email] = u
	r.byID[u.ID] = u
	return u
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}
