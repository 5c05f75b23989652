package realtime

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"agrilink-backend/internal/model"
)

// ErrUnauthorized is returned for any handshake credential failure:
// missing token, bad signature, expiry, or an identity that no longer
// exists. The handshake is rejected outright; there is no partial admission.
var ErrUnauthorized = errors.New("realtime: unauthorized")

// UserFinder resolves a token subject to a live user record.
type UserFinder interface {
	UserByID(ctx context.Context, id uint) (*model.User, error)
}

// Verifier validates connection-time credentials and resolves them to a
// user. Verification is bounded: past the deadline it fails closed.
type Verifier struct {
	secret  []byte
	users   UserFinder
	timeout time.Duration
}

// NewVerifier creates a Verifier. A non-positive timeout defaults to 5s.
func NewVerifier(secret string, users UserFinder, timeout time.Duration) *Verifier {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Verifier{secret: []byte(secret), users: users, timeout: timeout}
}

type tokenClaims struct {
	UserID uint `json:"user_id"`
	jwt.RegisteredClaims
}

// Verify validates the signed token and looks up the encoded subject.
func (v *Verifier) Verify(ctx context.Context, token string) (*model.User, error) {
	if token == "" {
		return nil, fmt.Errorf("%w: missing token", ErrUnauthorized)
	}

	parsed, err := jwt.ParseWithClaims(token, &tokenClaims{}, func(t *jwt.Token) (interface{}, error) {
		return v.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, fmt.Errorf("%w: invalid token", ErrUnauthorized)
	}

	claims, ok := parsed.Claims.(*tokenClaims)
	if !ok || claims.UserID == 0 {
		return nil, fmt.Errorf("%w: invalid token", ErrUnauthorized)
	}

	lookupCtx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()

	user, err := v.users.UserByID(lookupCtx, claims.UserID)
	if err != nil {
		return nil, fmt.Errorf("%w: unknown user %d", ErrUnauthorized, claims.UserID)
	}
	return user, nil
}
