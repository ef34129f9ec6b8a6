package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"strings"
	"time"

	"bazaar/config"
	"bazaar/internal/domain/service"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

const (
	// MinSecretLength is the shortest accepted HMAC secret in bytes.
	MinSecretLength = 32

	algHS256 = "HS256"
)

// Strict decoding rejects non-canonical trailing bits, so every byte of a segment is significant.
var encoding = base64.RawURLEncoding.Strict()

type tokenHeader struct {
	Alg string `json:"alg"`
	Typ string `json:"typ"`
}

// hmacTokenService signs compact HS256 tokens without an external token library.
type hmacTokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// Option customizes the token service.
type Option func(*hmacTokenService)

// WithClock overrides the clock used for iat, exp and expiry checks.
func WithClock(now func() time.Time) Option {
	return func(s *hmacTokenService) {
		s.now = now
	}
}

// NewHMACTokenService is the constructor for hmacTokenService.
func NewHMACTokenService(secret string, ttl time.Duration, opts ...Option) (service.TokenService, error) {
	if len(secret) < MinSecretLength {
		return nil, errors.Errorf("token secret must be at least %d bytes", MinSecretLength)
	}

	s := &hmacTokenService{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

// NewTokenServiceFromConfig builds the token service from configuration.
func NewTokenServiceFromConfig(cfg *config.Config) (service.TokenService, error) {
	ttl := 7 * 24 * time.Hour
	if cfg.Auth != nil && cfg.Auth.TokenTTL > 0 {
		ttl = cfg.Auth.TokenTTL
	}

	return NewHMACTokenService(cfg.SecretKey.Token, ttl)
}

// TTL returns the configured token lifetime.
func (s *hmacTokenService) TTL() time.Duration {
	return s.ttl
}

// Issue stamps iat and exp and signs the claims.
func (s *hmacTokenService) Issue(claims *service.Claims, ttl time.Duration) (string, error) {
	if claims == nil {
		return "", errors.New("claims are required")
	}

	now := s.now()
	payload := *claims
	payload.IssuedAt = now.Unix()
	payload.ExpiresAt = now.Add(ttl).Unix()

	header, err := json.Marshal(tokenHeader{Alg: algHS256, Typ: "JWT"})
	if err != nil {
		return "", errors.WithStack(err)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", errors.WithStack(err)
	}

	signingInput := encoding.EncodeToString(header) + "." + encoding.EncodeToString(body)

	return signingInput + "." + encoding.EncodeToString(s.sign(signingInput)), nil
}

// Verify checks structure, signature and expiry. Every failure returns nil claims.
func (s *hmacTokenService) Verify(token string) (*service.Claims, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return nil, service.ErrTokenMalformed
	}

	signature, err := encoding.DecodeString(parts[2])
	if err != nil {
		return nil, service.ErrTokenMalformed
	}

	if !hmac.Equal(signature, s.sign(parts[0]+"."+parts[1])) {
		return nil, service.ErrTokenSignature
	}

	var header tokenHeader
	if err := decodeSegment(parts[0], &header); err != nil || header.Alg != algHS256 {
		return nil, service.ErrTokenMalformed
	}

	var claims service.Claims
	if err := decodeSegment(parts[1], &claims); err != nil {
		return nil, service.ErrTokenMalformed
	}
	if claims.ID == uuid.Nil || claims.Role == "" || claims.ExpiresAt == 0 {
		return nil, service.ErrTokenMalformed
	}

	if claims.ExpiresAt < s.now().Unix() {
		return nil, service.ErrTokenExpired
	}

	return &claims, nil
}

func (s *hmacTokenService) sign(signingInput string) []byte {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(signingInput))

	return mac.Sum(nil)
}

func decodeSegment(segment string, dst any) error {
	raw, err := encoding.DecodeString(segment)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(json.Unmarshal(raw, dst))
}
