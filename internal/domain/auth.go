package domain

import "time"

// TokenType discriminates access tokens from refresh tokens.
type TokenType string

const (
	TokenTypeAccess  TokenType = "ACCESS"
	TokenTypeRefresh TokenType = "REFRESH"
)

// Valid reports whether t is a known token type.
func (t TokenType) Valid() bool {
	return t == TokenTypeAccess || t == TokenTypeRefresh
}

// TokenPair holds independently signed access and refresh tokens.
type TokenPair struct {
	AccessToken      string
	RefreshToken     string
	AccessExpiresAt  time.Time
	RefreshExpiresAt time.Time
}

// LoginResult is returned by login and refresh.
type LoginResult struct {
	UserID int64
	TokenPair
}

// AuthenticatedPrincipal is the caller identity resolved for a single request.
type AuthenticatedPrincipal struct {
	UserID   int64
	Username string
	Role     Role
}
