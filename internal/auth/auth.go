// Package auth issues and verifies the signed session tokens handed to clients.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Role gates access to admin endpoints.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleStylist  Role = "stylist"
	RoleAdmin    Role = "admin"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleCustomer, RoleStylist, RoleAdmin:
		return true
	}
	return false
}

// Allows reports whether r satisfies a requirement of at least min.
// Admins satisfy every requirement; stylists satisfy stylist and customer.
func (r Role) Allows(min Role) bool {
	return rank(r) >= rank(min)
}

func rank(r Role) int {
	switch r {
	case RoleAdmin:
		return 3
	case RoleStylist:
		return 2
	case RoleCustomer:
		return 1
	}
	return 0
}

var (
	ErrInvalidToken = errors.New("invalid session token")
	ErrMissingToken = errors.New("missing authorization header")
)

// Claims carried by a session token.
type Claims struct {
	SessionID string `json:"sid"`
	Role      Role   `json:"role"`
	StylistID int64  `json:"stylist_id,omitempty"`
	jwt.RegisteredClaims
}

// Issuer signs and verifies HS256 session tokens.
type Issuer struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// NewIssuer creates an issuer. ttl defaults to 24h.
func NewIssuer(secret, issuer string, ttl time.Duration) *Issuer {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Issuer{secret: []byte(secret), issuer: issuer, ttl: ttl, now: time.Now}
}

// Issue returns a signed token for a session.
func (i *Issuer) Issue(sessionID string, role Role, stylistID int64) (string, time.Time, error) {
	if len(i.secret) == 0 {
		return "", time.Time{}, errors.New("auth secret is not configured")
	}
	now := i.now()
	exp := now.Add(i.ttl)
	claims := Claims{
		SessionID: sessionID,
		Role:      role,
		StylistID: stylistID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    i.issuer,
			Subject:   sessionID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign session token: %w", err)
	}
	return signed, exp, nil
}

// Parse verifies a token and returns its claims.
func (i *Issuer) Parse(token string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return i.secret, nil
	}, jwt.WithTimeFunc(i.now))
	if err != nil || !parsed.Valid {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.SessionID == "" || !claims.Role.Valid() {
		return nil, fmt.Errorf("%w: incomplete claims", ErrInvalidToken)
	}
	return claims, nil
}

// BearerToken extracts the token from an Authorization header.
func BearerToken(r *http.Request) (string, error) {
	h := r.Header.Get("Authorization")
	if h == "" || !strings.HasPrefix(h, "Bearer ") {
		return "", ErrMissingToken
	}
	token := strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	if token == "" {
		return "", ErrMissingToken
	}
	return token, nil
}

type contextKey string

const claimsKey contextKey = "sessionClaims"

// WithClaims stores claims in ctx.
func WithClaims(ctx context.Context, c *Claims) context.Context {
	return context.WithValue(ctx, claimsKey, c)
}

// ClaimsFromContext returns the claims stored by WithClaims.
func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	c, ok := ctx.Value(claimsKey).(*Claims)
	return c, ok && c != nil
}
