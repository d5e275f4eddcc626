package domain

import "time"

// Role is the closed set of identities CortexBuild recognises. Authorization
// decisions operate over this type, never over raw strings.
type Role string

const (
	// RoleSuperAdmin operates across every tenant company.
	RoleSuperAdmin Role = "superadmin"
	// RoleAdmin administers a single tenant company.
	RoleAdmin Role = "admin"
	// RoleUser is a regular company member.
	RoleUser Role = "user"
	// RoleClient is an external client-portal account.
	RoleClient Role = "client"
)

// ParseRole maps a stored role string onto the closed Role set.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleSuperAdmin, RoleAdmin, RoleUser, RoleClient:
		return Role(s), nil
	}
	return "", ErrUnknownRole
}

// User models an authenticated actor in the system. PasswordHash is always a
// bcrypt hash; plaintext secrets are never stored.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	CompanyID    string    `json:"company_id,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
