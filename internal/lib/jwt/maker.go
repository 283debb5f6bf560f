package jwt

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// CustomClaims carries the operator identity inside the token.
type CustomClaims struct {
	Username             string `json:"username"`
	Role                 string `json:"role"`
	UID                  string `json:"uid"`
	jwt.RegisteredClaims        // ExpiresAt, IssuedAt etc.
}

// GenerateToken signs an HS256 token for the given operator. Token
// lifetime is the maker's TTL.
func (j *MakerImpl) GenerateToken(username, role, uid string) (string, error) {
	claims := CustomClaims{
		Username: username,
		Role:     role,
		UID:      uid,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(j.tokenTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(j.secretKey))
}

// ParseToken checks the signature and validity of tokenStr and returns
// its claims.
func (j *MakerImpl) ParseToken(tokenStr string) (*CustomClaims, error) {
	const op = "jwt.ParseToken"
	token, err := jwt.ParseWithClaims(tokenStr, &CustomClaims{}, func(_ *jwt.Token) (any, error) {
		return []byte(j.secretKey), nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	claims, ok := token.Claims.(*CustomClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("%s: invalid token", op)
	}
	return claims, nil
}
