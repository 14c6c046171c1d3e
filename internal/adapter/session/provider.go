// Package session issues and verifies signed session tokens and carries the
// resulting domain.Session through request contexts.
package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/mohannad-b/Wrkcodean-sub006/internal/domain"
)

// DefaultTTL is how long issued tokens stay valid when no TTL is given.
const DefaultTTL = 12 * time.Hour

// ErrInvalidToken is returned for any token that fails verification.
var ErrInvalidToken = errors.New("invalid session token")

// Claims is the JWT payload describing a session.
type Claims struct {
	Kind      string   `json:"kind"`
	UserID    string   `json:"user_id"`
	TenantID  string   `json:"tenant_id,omitempty"`
	Roles     []string `json:"roles,omitempty"`
	StaffRole string   `json:"wrk_staff_role,omitempty"`
	jwt.RegisteredClaims
}

// Session converts the claims into a domain session.
func (c *Claims) Session() domain.Session {
	return domain.Session{
		Kind:      domain.SessionKind(c.Kind),
		UserID:    c.UserID,
		TenantID:  c.TenantID,
		Roles:     append([]string(nil), c.Roles...),
		StaffRole: c.StaffRole,
	}
}

// Provider signs and verifies HS256 session tokens.
type Provider struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewProvider creates a provider. A non-positive ttl uses DefaultTTL.
func NewProvider(secret string, ttl time.Duration) *Provider {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Provider{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue signs a token for sess.
func (p *Provider) Issue(sess domain.Session) (string, error) {
	switch sess.Kind {
	case domain.SessionTenant:
		if sess.TenantID == "" {
			return "", fmt.Errorf("tenant session requires a tenant id")
		}
	case domain.SessionStaff:
		if sess.StaffRole == "" {
			return "", fmt.Errorf("staff session requires a staff role")
		}
	default:
		return "", fmt.Errorf("unknown session kind %q", sess.Kind)
	}

	now := p.now()
	claims := &Claims{
		Kind:      string(sess.Kind),
		UserID:    sess.UserID,
		TenantID:  sess.TenantID,
		Roles:     sess.Roles,
		StaffRole: sess.StaffRole,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sess.UserID,
			ExpiresAt: jwt.NewNumericDate(now.Add(p.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(p.secret)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}

// Verify parses a token and returns the session it carries. Every failure
// wraps ErrInvalidToken.
func (p *Provider) Verify(tokenString string) (domain.Session, error) {
	if tokenString == "" {
		return domain.Session{}, fmt.Errorf("%w: empty token", ErrInvalidToken)
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return p.secret, nil
	}, jwt.WithTimeFunc(p.now))
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return domain.Session{}, fmt.Errorf("%w: expired", ErrInvalidToken)
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return domain.Session{}, fmt.Errorf("%w: bad signature", ErrInvalidToken)
		case errors.Is(err, jwt.ErrTokenMalformed):
			return domain.Session{}, fmt.Errorf("%w: malformed", ErrInvalidToken)
		}
		return domain.Session{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	sess := claims.Session()
	if sess.Kind != domain.SessionTenant && sess.Kind != domain.SessionStaff {
		return domain.Session{}, fmt.Errorf("%w: unknown kind %q", ErrInvalidToken, claims.Kind)
	}
	return sess, nil
}
