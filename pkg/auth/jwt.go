// Package auth issues and verifies session tokens and hashes passwords.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/shashiranjanraj/krishi/config"
	"github.com/shashiranjanraj/krishi/internal/access"
)

// ErrInvalidToken covers malformed, badly signed and expired tokens.
var ErrInvalidToken = errors.New("auth: invalid or expired token")

// Claims holds the typed JWT payload. ID (jti) keys server-side revocation.
type Claims struct {
	UserID uint        `json:"user_id"`
	Role   access.Role `json:"role"`
	jwt.RegisteredClaims
}

// Issuer signs and parses HS256 session tokens.
type Issuer struct {
	secret   []byte
	adminTTL time.Duration
	ttl      time.Duration
	now      func() time.Time
}

// NewIssuer builds an Issuer from explicit settings.
func NewIssuer(secret string, adminTTL, ttl time.Duration) *Issuer {
	return &Issuer{secret: []byte(secret), adminTTL: adminTTL, ttl: ttl, now: time.Now}
}

// FromConfig builds an Issuer from JWT_SECRET, ADMIN_SESSION_TTL and SESSION_TTL.
func FromConfig() *Issuer {
	return NewIssuer(config.JWTSecret(), config.AdminSessionTTL(), config.SessionTTL())
}

// WithClock returns a copy of i reading time from now.
func (i *Issuer) WithClock(now func() time.Time) *Issuer {
	c := *i
	c.now = now
	return &c
}

// TTL is the session lifetime for role: short for admins, a day for others.
func (i *Issuer) TTL(role access.Role) time.Duration {
	if role == access.RoleAdmin {
		return i.adminTTL
	}
	return i.ttl
}

// Issue signs a token for user and returns it with its expiry.
func (i *Issuer) Issue(userID uint, role access.Role) (string, time.Time, error) {
	now := i.now()
	exp := now.Add(i.TTL(role)).Truncate(time.Second)
	claims := Claims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   fmt.Sprint(userID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("auth: sign: %w", err)
	}
	return signed, exp, nil
}

// Parse verifies signature and expiry.
func (i *Issuer) Parse(token string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims,
		func(*jwt.Token) (any, error) { return i.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil || !parsed.Valid {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.UserID == 0 || claims.ID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// HashCost is the bcrypt cost used by HashPassword.
var HashCost = bcrypt.DefaultCost

// HashPassword returns a bcrypt hash of the plain-text password.
func HashPassword(plain string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), HashCost)
	if err != nil {
		return "", fmt.Errorf("auth: hash: %w", err)
	}
	return string(b), nil
}

// CheckPassword compares a bcrypt hash against the plain-text candidate.
func CheckPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
