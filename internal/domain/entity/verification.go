package entity

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

// VerificationStatus is the state of a verification request.
type VerificationStatus string

const (
	// VerificationPending is the initial state on submission.
	VerificationPending VerificationStatus = "pending"
	// VerificationApproved is terminal.
	VerificationApproved VerificationStatus = "approved"
	// VerificationRejected is terminal.
	VerificationRejected VerificationStatus = "rejected"
)

// String returns the string representation of the status.
func (s VerificationStatus) String() string {
	return string(s)
}

// IsValid checks if the status is a known value.
func (s VerificationStatus) IsValid() bool {
	switch s {
	case VerificationPending, VerificationApproved, VerificationRejected:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether no further transition is allowed.
func (s VerificationStatus) IsTerminal() bool {
	return s == VerificationApproved || s == VerificationRejected
}

// CanTransitionTo reports whether next is a legal successor of s.
// Only pending -> approved and pending -> rejected exist.
func (s VerificationStatus) CanTransitionTo(next VerificationStatus) bool {
	return s == VerificationPending && next.IsTerminal()
}

// EvidenceKind classifies an evidence artifact.
type EvidenceKind string

const (
	EvidencePortfolio   EvidenceKind = "portfolio"
	EvidenceCertificate EvidenceKind = "certificate"
	EvidenceStudentID   EvidenceKind = "student_id"
)

// IsValid checks if the kind is a known value.
func (k EvidenceKind) IsValid() bool {
	return slices.Contains([]EvidenceKind{EvidencePortfolio, EvidenceCertificate, EvidenceStudentID}, k)
}

// EvidenceArtifact is a reference to a file supporting a verification request.
type EvidenceArtifact struct {
	URL  string
	Kind EvidenceKind
}

// VerificationRequest tracks a provider's approval lifecycle.
type VerificationRequest struct {
	ID          uuid.UUID
	ProviderID  uuid.UUID
	Status      VerificationStatus
	Evidence    []EvidenceArtifact
	SubmittedAt time.Time
	ReviewedAt  *time.Time
	ReviewedBy  *uuid.UUID
	AdminNotes  *string
}

// Clone returns a deep copy of the request.
func (r *VerificationRequest) Clone() *VerificationRequest {
	if r == nil {
		return nil
	}

	cloned := *r
	cloned.Evidence = slices.Clone(r.Evidence)
	if r.ReviewedAt != nil {
		at := *r.ReviewedAt
		cloned.ReviewedAt = &at
	}
	if r.ReviewedBy != nil {
		by := *r.ReviewedBy
		cloned.ReviewedBy = &by
	}
	if r.AdminNotes != nil {
		notes := *r.AdminNotes
		cloned.AdminNotes = &notes
	}

	return &cloned
}

// Review describes the terminal transition applied to a pending request.
type Review struct {
	Decision   VerificationStatus
	ReviewedBy uuid.UUID
	ReviewedAt time.Time
	Notes      *string
}
