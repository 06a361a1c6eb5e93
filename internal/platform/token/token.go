// Package token signs and verifies the session cookie value.
// The cookie carries an HS256 JWT whose subject is the server-side session ID,
// so a tampered cookie never reaches the session store.
package token

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Codec mints and parses signed session cookie tokens.
type Codec struct {
	secret []byte
}

// NewCodec creates a new Codec with the provided signing secret.
func NewCodec(secret string) *Codec {
	return &Codec{secret: []byte(secret)}
}

// Mint creates a signed JWT carrying the session ID, expiring with the session.
func (c *Codec) Mint(sessionID string, expiresAt time.Time) (string, error) {
	claims := jwt.MapClaims{
		"sub": sessionID,
		"exp": expiresAt.Unix(),
		"iat": time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, nil
}

// Parse verifies the token signature and expiry and returns the session ID.
func (c *Codec) Parse(tokenStr string) (string, error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		// Check signing algorithm (only HMAC allowed)
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return c.secret, nil
	})
	if err != nil || !token.Valid {
		return "", fmt.Errorf("invalid session token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", fmt.Errorf("invalid session token")
	}
	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return "", fmt.Errorf("invalid session token")
	}
	return sub, nil
}
