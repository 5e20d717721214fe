// Package auth validates the bearer tokens that guard the API routes.
// Tokens are HS256-signed by whichever platform fronts the service and share
// its secret; GenerateToken exists for operators and tests.
package auth

import (
	"context"
	"time"
)

// JWTService issues and validates access tokens.
type JWTService interface {
	// GenerateToken creates a signed access token for subject that expires
	// after ttl.
	GenerateToken(ctx context.Context, subject string, ttl time.Duration) (string, error)

	// ValidateToken validates the provided access token string and extracts the claims.
	// Returns ErrExpiredToken, ErrTokenNotYetValid or ErrInvalidToken on failure.
	ValidateToken(ctx context.Context, tokenString string) (*Claims, error)
}

// Claims are the validated contents of an access token.
type Claims struct {
	// Subject identifies the caller, typically a platform user or service name.
	Subject   string    `json:"sub,omitempty"`
	IssuedAt  time.Time `json:"iat,omitempty"`
	ExpiresAt time.Time `json:"exp,omitempty"`
	ID        string    `json:"jti,omitempty"`
}
