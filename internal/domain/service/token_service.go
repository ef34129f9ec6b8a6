package service

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrTokenMalformed is returned for tokens that are not three base64url segments of valid JSON.
	ErrTokenMalformed = errors.New("token is malformed")

	// ErrTokenSignature is returned when the signature does not match the content.
	ErrTokenSignature = errors.New("token signature is invalid")

	// ErrTokenExpired is returned when the expiry has passed.
	ErrTokenExpired = errors.New("token has expired")
)

// OptionalClaims holds the profile fields carried only when present.
type OptionalClaims struct {
	Phone          string `json:"phone,omitempty"`
	StudentID      string `json:"studentId,omitempty"`
	Department     string `json:"department,omitempty"`
	Level          string `json:"level,omitempty"`
	BusinessName   string `json:"businessName,omitempty"`
	Location       string `json:"location,omitempty"`
	Specialization string `json:"specialization,omitempty"`
}

// Claims is the signed payload of a session token.
// IssuedAt and ExpiresAt are seconds since the epoch.
type Claims struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"fullName"`
	Role      string    `json:"role"`
	IssuedAt  int64     `json:"iat"`
	ExpiresAt int64     `json:"exp"`
	OptionalClaims
}

// TokenService issues and verifies signed, expiring session tokens.
type TokenService interface {
	// Issue signs the claims, stamping iat and exp from the service clock and ttl.
	Issue(claims *Claims, ttl time.Duration) (string, error)

	// Verify checks structure, signature and expiry, in that order.
	Verify(token string) (*Claims, error)

	// TTL returns the configured token lifetime.
	TTL() time.Duration
}
