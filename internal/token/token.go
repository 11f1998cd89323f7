package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrExpired is returned when a token is syntactically valid but past its
// expiration instant.
var ErrExpired = errors.New("token has expired")

// ErrInvalid is returned for any token that cannot be verified.
var ErrInvalid = errors.New("invalid token")

// Claims carries the registered claim set plus the owning user id.
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"user_id"`
}

// Issue signs an HS256 bearer token for the given user valid for ttl.
func Issue(userID string, secret []byte, ttl time.Duration) (string, error) {
	now := time.Now().UTC()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		UserID: userID,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify parses and validates a bearer token, returning the user id it was
// issued for. Expired tokens are reported as ErrExpired so callers can
// distinguish a stale session from a forged token.
func Verify(tokenString string, secret []byte) (string, error) {
	claims := &Claims{}

	parsed, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrExpired
		}
		return "", ErrInvalid
	}

	if !parsed.Valid || claims.UserID == "" {
		return "", ErrInvalid
	}

	return claims.UserID, nil
}

// ExpiresAt extracts the expiry instant from a token without verifying its
// signature. Clients use it to detect a locally stale session before talking
// to the server; it must never be used for authentication decisions.
func ExpiresAt(tokenString string) (time.Time, error) {
	claims := &Claims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(tokenString, claims); err != nil {
		return time.Time{}, ErrInvalid
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, ErrInvalid
	}
	return claims.ExpiresAt.Time, nil
}
