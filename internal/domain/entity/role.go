// Package entity contains the core business objects of the project.
package entity

// Role represents the type of role an identity holds in the system.
type Role string

const (
	// RoleStudent indicates a student buyer.
	RoleStudent Role = "student"
	// RoleArtisan indicates a service provider that can be verified.
	RoleArtisan Role = "artisan"
	// RoleAdmin indicates an administrator allowed to review verification requests.
	RoleAdmin Role = "admin"
)

// String returns the string representation of the Role.
func (r Role) String() string {
	return string(r)
}

// IsValid checks if the Role is a valid value.
func (r Role) IsValid() bool {
	switch r {
	case RoleStudent, RoleArtisan, RoleAdmin:
		return true
	default:
		return false
	}
}

// IsSelfRegistrable reports whether the role can be chosen at sign-up.
// Admins are provisioned out of band.
func (r Role) IsSelfRegistrable() bool {
	return r == RoleStudent || r == RoleArtisan
}
