// Package entity contains the core business objects of the project,
// each representing a unique, identifiable concept within the domain.
package entity

import (
	"time"

	"github.com/google/uuid"
)

// Identity is a registered account. It carries the credential hash and the
// role-specific profile extensions.
type Identity struct {
	ID           uuid.UUID       // The Global Unique Identifier (GUID) for the identity.
	Email        string          // Unique, normalized login email.
	FullName     string          // Display name.
	PasswordHash string          // hex(salt):hex(digest), never exposed outside the auth flow.
	Role         Role            // student, artisan or admin.
	Phone        string          // Optional contact number.
	Student      *StudentProfile // Non-nil when Role is RoleStudent.
	Provider     *Provider       // Non-nil when Role is RoleArtisan.
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// StudentProfile holds data specific to the student role.
type StudentProfile struct {
	StudentID  string
	Department string
	Level      string
}

// Provider is the 1:1 extension of an artisan identity.
// Verified and VerificationStatus always move together.
type Provider struct {
	IdentityID         uuid.UUID
	BusinessName       string
	Location           string
	Specialization     string
	Experience         string
	Verified           bool
	VerificationStatus VerificationStatus
	UpdatedAt          time.Time
}

// NewProvider builds an unverified provider extension for an artisan.
func NewProvider(identityID uuid.UUID, businessName, location, specialization, experience string) *Provider {
	return &Provider{
		IdentityID:         identityID,
		BusinessName:       businessName,
		Location:           location,
		Specialization:     specialization,
		Experience:         experience,
		Verified:           false,
		VerificationStatus: VerificationPending,
	}
}

// ApplyDecision sets the verified flag and status from a terminal decision.
func (p *Provider) ApplyDecision(status VerificationStatus) {
	p.VerificationStatus = status
	p.Verified = status == VerificationApproved
}

// Clone returns a deep copy of the identity.
func (i *Identity) Clone() *Identity {
	if i == nil {
		return nil
	}

	cloned := *i
	if i.Student != nil {
		student := *i.Student
		cloned.Student = &student
	}
	if i.Provider != nil {
		provider := *i.Provider
		cloned.Provider = &provider
	}

	return &cloned
}
