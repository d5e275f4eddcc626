package domain

import "time"

// AuditAction identifies the kind of auth event being recorded.
type AuditAction string

const (
	AuditLogin       AuditAction = "login"
	AuditLogout      AuditAction = "logout"
	AuditRegister    AuditAction = "register"
	AuditRateLimited AuditAction = "rate_limited"
)

const (
	AuditOutcomeSuccess = "success"
	AuditOutcomeFailure = "failure"
)

// AuditEvent records a single auth-relevant occurrence for the activity
// trail. Actor is the email when known, the remote address otherwise.
type AuditEvent struct {
	Actor      string
	Action     AuditAction
	Outcome    string
	RemoteAddr string
	Timestamp  time.Time
	Detail     string
}
