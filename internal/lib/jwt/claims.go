// Package jwt implements token generation and parsing for operator
// sessions, with username and role carried as custom claims.
package jwt

import (
	"time"
)

// Maker issues and parses operator session tokens.
type Maker interface {
	// GenerateToken signs a token carrying username, role and uid.
	GenerateToken(username, role, uid string) (string, error)
	// ParseToken validates a token and returns its claims.
	ParseToken(tokenStr string) (*CustomClaims, error)
}

// MakerImpl implements Maker with an HMAC secret and a token TTL.
type MakerImpl struct {
	secretKey string
	tokenTTL  time.Duration
}

// NewMaker builds a MakerImpl from the signing secret and TTL.
func NewMaker(secretKey string, ttl time.Duration) *MakerImpl {
	return &MakerImpl{
		secretKey: secretKey,
		tokenTTL:  ttl,
	}
}
