package middleware

// Echo context keys populated by the gates in this package.
const (
	// ContextKeyClaims holds the *domain.Claims attached by Auth.
	ContextKeyClaims = "auth_claims"
	// ContextKeyServiceAuth is set to true by APIKey for requests
	// authenticated with a service key. No user claims are attached.
	ContextKeyServiceAuth = "service_auth"
)
