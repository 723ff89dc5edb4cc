package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/user/authcore-go/apperror"
	"github.com/user/authcore-go/config"
)

// Claims is the session token payload: the user ID plus the registered
// issued-at/expiry claims.
type Claims struct {
	UserID int `json:"user_id"`
	jwt.RegisteredClaims
}

// TokenCodec signs and verifies the session token. Verification is a pure
// function of (token, secret, clock): it performs no I/O and is safe under
// unbounded concurrent use.
type TokenCodec struct {
	cfg config.AuthConfig
}

// NewTokenCodec creates a codec bound to the configured secret and lifetime.
func NewTokenCodec(cfg config.AuthConfig) *TokenCodec {
	return &TokenCodec{cfg: cfg}
}

// Issue produces a signed HS256 token for the user, expiring after the
// configured TTL. It returns the token string and its expiry time.
func (c *TokenCodec) Issue(userID int) (string, time.Time, error) {
	if c.cfg.JWTSecret == "" {
		return "", time.Time{}, apperror.NewConfigError("token signing secret is not configured", nil)
	}

	now := time.Now()
	expiresAt := now.Add(c.cfg.TokenTTL)
	claims := &Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprintf("%d", userID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(c.cfg.JWTSecret))
	if err != nil {
		return "", time.Time{}, apperror.NewInternalError("failed to sign session token", err)
	}
	return signed, expiresAt, nil
}

// Verify checks the token's signature, signing method and expiry and returns
// the user ID it was issued for. Expired, tampered and wrong-algorithm tokens
// all surface as AuthError.
func (c *TokenCodec) Verify(tokenString string) (int, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(c.cfg.JWTSecret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return 0, apperror.NewAuthError("session expired", err)
		}
		return 0, apperror.NewAuthError("invalid session token", err)
	}
	if !token.Valid {
		return 0, apperror.NewAuthError("invalid session token", nil)
	}
	if claims.UserID == 0 {
		return 0, apperror.NewAuthError("invalid session token", nil)
	}
	return claims.UserID, nil
}
