package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/iho/ledgersync/internal/domain"
)

// Issuer is the iss claim of every token this service mints and accepts.
const Issuer = "ledgersync"

// clockSkew is tolerated on exp and nbf.
const clockSkew = 30 * time.Second

// Claims carries the tenant a caller acts for. Every request acts on behalf
// of exactly one tenant.
type Claims struct {
	TenantID int64 `json:"tenant_id"`
	jwt.RegisteredClaims
}

// JWTManager mints and verifies HS256 service tokens.
type JWTManager struct {
	secret []byte
	ttl    time.Duration
	parser *jwt.Parser
}

func NewJWTManager(secret string, ttl time.Duration) *JWTManager {
	return &JWTManager{
		secret: []byte(secret),
		ttl:    ttl,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithIssuer(Issuer),
			jwt.WithLeeway(clockSkew),
			jwt.WithExpirationRequired(),
		),
	}
}

// Generate issues a token for subject acting within tenantID. The operator
// CLI uses it to mint service tokens.
func (m *JWTManager) Generate(subject string, tenantID int64) (string, error) {
	if tenantID <= 0 {
		return "", fmt.Errorf("%w: tenant id must be positive", domain.ErrUnauthorized)
	}

	now := time.Now()
	return jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		TenantID: tenantID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    Issuer,
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}).SignedString(m.secret)
}

// Verify returns the claims of a valid token. Expired tokens fail with
// domain.ErrExpiredToken, everything else with domain.ErrInvalidToken.
func (m *JWTManager) Verify(raw string) (*Claims, error) {
	claims := &Claims{}
	_, err := m.parser.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return m.secret, nil
	})
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, domain.ErrExpiredToken
	case err != nil:
		return nil, domain.ErrInvalidToken
	case claims.TenantID <= 0:
		return nil, domain.ErrInvalidToken
	}
	return claims, nil
}
