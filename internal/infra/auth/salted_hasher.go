// Package auth provides concrete implementations for authentication-related domain services.
package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"hash"
	"strings"
	"unicode"

	"bazaar/config"
	domainerrors "bazaar/internal/domain/errors"
	"bazaar/internal/domain/service"

	"github.com/pkg/errors"
	"golang.org/x/crypto/sha3"
)

const (
	saltSize      = 16
	hashSeparator = ":"

	DigestSHA256  = "sha256"
	DigestSHA512  = "sha512"
	DigestSHA3256 = "sha3-256"
)

// saltedHasher stores hex(salt):hex(digest(password || salt)).
type saltedHasher struct {
	newDigest func() hash.Hash
	strength  config.PasswordStrengthConfig
}

// NewSaltedHasher is the constructor for saltedHasher.
// The digest name is validated once so Hash never fails on configuration.
func NewSaltedHasher(digest string, strength *config.PasswordStrengthConfig) (service.PasswordHasher, error) {
	newDigest, err := digestFunc(digest)
	if err != nil {
		return nil, err
	}

	h := &saltedHasher{newDigest: newDigest}
	if strength != nil {
		h.strength = *strength
	}

	return h, nil
}

// NewHasherFromConfig builds the process-wide hasher from configuration.
func NewHasherFromConfig(cfg *config.Config) (service.PasswordHasher, error) {
	digest := DigestSHA256
	if cfg.Auth != nil && cfg.Auth.Digest != "" {
		digest = cfg.Auth.Digest
	}

	return NewSaltedHasher(digest, cfg.PasswordStrength)
}

func digestFunc(name string) (func() hash.Hash, error) {
	switch strings.ToLower(name) {
	case "", DigestSHA256:
		return sha256.New, nil
	case DigestSHA512:
		return sha512.New, nil
	case DigestSHA3256:
		return sha3.New256, nil
	default:
		return nil, errors.Errorf("unsupported password digest: %s", name)
	}
}

// Hash generates a fresh random salt and digests password || salt.
func (h *saltedHasher) Hash(password string) (string, error) {
	salt := make([]byte, saltSize)
	if _, err := rand.Read(salt); err != nil {
		return "", errors.Wrap(err, "failed to read salt")
	}

	return hex.EncodeToString(salt) + hashSeparator + hex.EncodeToString(h.digest(password, salt)), nil
}

// Check recomputes the digest with the stored salt and compares in constant time.
func (h *saltedHasher) Check(password, storedHash string) bool {
	parts := strings.Split(storedHash, hashSeparator)
	if len(parts) != 2 {
		return false
	}

	salt, err := hex.DecodeString(parts[0])
	if err != nil || len(salt) != saltSize {
		return false
	}

	want, err := hex.DecodeString(parts[1])
	if err != nil || len(want) != h.newDigest().Size() {
		return false
	}

	return subtle.ConstantTimeCompare(h.digest(password, salt), want) == 1
}

func (h *saltedHasher) digest(password string, salt []byte) []byte {
	d := h.newDigest()
	d.Write([]byte(password))
	d.Write(salt)

	return d.Sum(nil)
}

// ValidatePasswordStrength checks the password against the configured policy.
func (h *saltedHasher) ValidatePasswordStrength(password string) error {
	cfg := h.strength
	length := len([]rune(password))

	if cfg.MinLength > 0 && length < cfg.MinLength {
		return domainerrors.ErrValidationFailed.WithDetails("password is too short")
	}
	if cfg.MaxLength > 0 && length > cfg.MaxLength {
		return domainerrors.ErrValidationFailed.WithDetails("password is too long")
	}
	if cfg.RequireUppercase && !strings.ContainsFunc(password, unicode.IsUpper) {
		return domainerrors.ErrValidationFailed.WithDetails("password must contain an uppercase letter")
	}
	if cfg.RequireLowercase && !strings.ContainsFunc(password, unicode.IsLower) {
		return domainerrors.ErrValidationFailed.WithDetails("password must contain a lowercase letter")
	}
	if cfg.RequireNumbers && !strings.ContainsFunc(password, unicode.IsDigit) {
		return domainerrors.ErrValidationFailed.WithDetails("password must contain a number")
	}
	if cfg.RequireSpecial && !strings.ContainsFunc(password, isSpecial) {
		return domainerrors.ErrValidationFailed.WithDetails("password must contain a special character")
	}

	return nil
}

func isSpecial(r rune) bool {
	return unicode.IsPunct(r) || unicode.IsSymbol(r)
}
