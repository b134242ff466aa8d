package auth

import "multipark/backoffice/internal/constants"

// Credential sources
const (
	SourceAPIKey = "API_KEY"
	SourceJWT    = "JWT"
)

// Claims identify the caller of an /api/v1 request
type Claims struct {
	Subject string
	Role    constants.APIRole
	Source  string
}

// CanWrite reports whether the caller may patch reservations or trigger a sync
func (c *Claims) CanWrite() bool {
	return c != nil && c.Role.CanWrite()
}
