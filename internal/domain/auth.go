package domain

import "time"

// TokenType is the OAuth2 token type returned to clients.
const TokenType = "bearer"

// AccessToken describes an issued JWT.
type AccessToken struct {
	Value     string
	ExpiresAt time.Time
}
