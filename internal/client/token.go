// ABOUTME: Read-only inspection of access tokens for display
// ABOUTME: Decodes JWT claims without verifying the signature

package client

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrOpaqueToken is returned when a token is not a decodable JWT
var ErrOpaqueToken = errors.New("token is not a JWT")

// TokenInfo holds the claims the CLI shows about the current session.
// The signature is not checked; the server remains the authority.
type TokenInfo struct {
	Subject   string
	Type      string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Expired reports whether the token's exp claim lies before now
func (ti TokenInfo) Expired(now time.Time) bool {
	return !ti.ExpiresAt.IsZero() && now.After(ti.ExpiresAt)
}

type sessionClaims struct {
	Type string `json:"type,omitempty"`
	jwt.RegisteredClaims
}

// InspectToken decodes the claims of a JWT access token
func InspectToken(token string) (TokenInfo, error) {
	var claims sessionClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return TokenInfo{}, fmt.Errorf("%w: %v", ErrOpaqueToken, err)
	}

	info := TokenInfo{
		Subject: claims.Subject,
		Type:    claims.Type,
	}
	if claims.IssuedAt != nil {
		info.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		info.ExpiresAt = claims.ExpiresAt.Time
	}
	return info, nil
}
