package viewer

import (
	"crypto/rand"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	binderr "github.com/plumelab/plume/pkg/api/errors"
)

// TokenAuth protects mutating endpoints with HS256 bearer tokens.
//
// The viewer is meant for local use, so auth is off by default. When
// enabled without a configured secret, a random per-process key is
// drawn and a token for it is printed to the startup log.
type TokenAuth struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenAuth builds a TokenAuth. An empty secret draws a random key.
func NewTokenAuth(secret string, ttl time.Duration) (*TokenAuth, error) {
	key := []byte(secret)
	if len(key) == 0 {
		key = make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			return nil, err
		}
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &TokenAuth{secret: key, ttl: ttl}, nil
}

// Issue signs a fresh token.
func (a *TokenAuth) Issue(now time.Time) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:   "plume-viewer",
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
}

// Middleware rejects requests without a valid bearer token.
func (a *TokenAuth) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get("Authorization")
			token, found := strings.CutPrefix(header, "Bearer ")
			if !found {
				return binderr.Unauthorized("bearer token required", nil)
			}

			_, err := jwt.ParseWithClaims(
				token, &jwt.RegisteredClaims{},
				func(t *jwt.Token) (interface{}, error) {
					if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
						return nil, fmt.Errorf("unexpected signing method %s", t.Method.Alg())
					}
					return a.secret, nil
				},
				jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
				jwt.WithExpirationRequired(),
			)
			if err != nil {
				return binderr.Unauthorized("invalid token", err)
			}
			return next(c)
		}
	}
}
