// Package auth verifies the bearer access tokens issued by the identity
// provider. Tokens are HS256-signed JWTs whose subject is the numeric user id.
package auth

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
)

// ErrUnauthorized is returned for any token that is missing, malformed,
// expired, signed with the wrong key or carries an unusable subject.
var ErrUnauthorized = errors.New("unauthorized")

// Manager signs and verifies access tokens with a shared secret.
type Manager struct {
	secret    []byte
	accessTTL time.Duration
	now       func() time.Time
}

// NewManager returns a Manager. A non-positive ttl defaults to 15 minutes.
func NewManager(secret string, accessTTL time.Duration) *Manager {
	if accessTTL <= 0 {
		accessTTL = 15 * time.Minute
	}
	return &Manager{
		secret:    []byte(secret),
		accessTTL: accessTTL,
		now:       time.Now,
	}
}

// Enabled reports whether a signing secret is configured.
func (m *Manager) Enabled() bool { return m != nil && len(m.secret) > 0 }

// IssueAccessToken signs a token for userID. The identity provider owns
// issuance in production; this exists for local tooling and tests.
func (m *Manager) IssueAccessToken(userID int64) (string, time.Time, error) {
	if !m.Enabled() {
		return "", time.Time{}, fmt.Errorf("jwt secret is empty")
	}
	if userID <= 0 {
		return "", time.Time{}, fmt.Errorf("invalid access token payload")
	}

	now := m.now().UTC()
	expiresAt := now.Add(m.accessTTL)
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatInt(userID, 10),
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign access token: %w", err)
	}
	return signed, expiresAt, nil
}

// Verify parses raw and returns the user id carried in its subject.
func (m *Manager) Verify(raw string) (int64, error) {
	if !m.Enabled() || strings.TrimSpace(raw) == "" {
		return 0, ErrUnauthorized
	}

	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(_ *jwt.Token) (interface{}, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil || token == nil || !token.Valid {
		return 0, ErrUnauthorized
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || userID <= 0 {
		return 0, ErrUnauthorized
	}
	return userID, nil
}
