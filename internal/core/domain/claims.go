package domain

import "time"

// Claims is the decoded payload of a verified access token. It is rebuilt
// from the token on every request and discarded when the request ends;
// nothing is persisted server-side.
type Claims struct {
	SubjectID string    `json:"subject_id"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	TokenID   string    `json:"-"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"-"`
}
