// Package session signs and verifies the session cookie that carries a caller's
// external identity between requests.
package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	// ErrDisabled is returned when no signing secret is configured
	ErrDisabled = errors.New("session signing is not configured")
	// ErrInvalidToken is returned for a token that does not verify
	ErrInvalidToken = errors.New("invalid session token")
)

// Claims are the registered claims plus the caller's external identity
type Claims struct {
	jwt.RegisteredClaims
	OpenID string `json:"openId"`
	Name   string `json:"name,omitempty"`
}

// Manager issues and parses HS256 session tokens
type Manager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewManager creates a Manager. An empty secret yields a disabled Manager.
func NewManager(secret string, ttl time.Duration) *Manager {
	return &Manager{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Enabled reports whether tokens can be issued
func (m *Manager) Enabled() bool {
	return m != nil && len(m.secret) > 0
}

// TTL is the lifetime of issued tokens
func (m *Manager) TTL() time.Duration {
	return m.ttl
}

// Issue signs a token for openID
func (m *Manager) Issue(openID, name string) (string, error) {
	if !m.Enabled() {
		return "", ErrDisabled
	}

	now := m.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   openID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
		OpenID: openID,
		Name:   name,
	})

	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}
	return signed, nil
}

// Parse verifies tokenString and returns its claims
func (m *Manager) Parse(tokenString string) (*Claims, error) {
	if !m.Enabled() {
		return nil, ErrDisabled
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if !token.Valid || claims.OpenID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
