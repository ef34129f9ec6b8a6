// Package service defines interfaces for core, stateless domain logic.
// These services encapsulate business rules that don't naturally fit within a single entity.
package service

// PasswordHasher defines the interface for password hashing and verification.
// This abstracts the underlying salted digest, keeping the domain pure.
type PasswordHasher interface {
	// Hash generates a salted hash from a plaintext password.
	Hash(password string) (string, error)

	// Check compares a plaintext password with a stored hash.
	// A malformed stored hash never matches.
	Check(password, hash string) bool

	// ValidatePasswordStrength checks the password against the configured policy.
	ValidatePasswordStrength(password string) error
}
