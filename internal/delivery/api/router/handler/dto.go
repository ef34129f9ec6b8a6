package handler

import (
	"time"

	"bazaar/internal/domain/entity"
	"bazaar/internal/usecase"

	"github.com/google/uuid"
)

// IdentityResponse is the public view of an identity. The credential hash
// is never serialized.
type IdentityResponse struct {
	ID       uuid.UUID `json:"id"`
	Email    string    `json:"email"`
	FullName string    `json:"fullName"`
	Role     string    `json:"role"`
	Phone    string    `json:"phone,omitempty"`

	StudentID  string `json:"studentId,omitempty"`
	Department string `json:"department,omitempty"`
	Level      string `json:"level,omitempty"`

	BusinessName       string `json:"businessName,omitempty"`
	Location           string `json:"location,omitempty"`
	Specialization     string `json:"specialization,omitempty"`
	Experience         string `json:"experience,omitempty"`
	Verified           *bool  `json:"verified,omitempty"`
	VerificationStatus string `json:"verificationStatus,omitempty"`

	CreatedAt *time.Time `json:"createdAt,omitempty"`
}

// AuthResponse is returned by login and registration.
type AuthResponse struct {
	Identity *IdentityResponse `json:"identity"`
	Token    string            `json:"token"`
}

// EvidenceResponse describes one evidence artifact.
type EvidenceResponse struct {
	URL  string `json:"url"`
	Kind string `json:"kind"`
}

// VerificationRequestResponse is the view of a verification request.
type VerificationRequestResponse struct {
	ID          uuid.UUID          `json:"id"`
	ProviderID  uuid.UUID          `json:"providerId"`
	Status      string             `json:"status"`
	Evidence    []EvidenceResponse `json:"evidence"`
	SubmittedAt time.Time          `json:"submittedAt"`
	ReviewedAt  *time.Time         `json:"reviewedAt,omitempty"`
	ReviewedBy  *uuid.UUID         `json:"reviewedBy,omitempty"`
	AdminNotes  *string            `json:"adminNotes,omitempty"`
}

// ProviderStatusResponse is the public verification state of a provider.
type ProviderStatusResponse struct {
	ProviderID         uuid.UUID `json:"providerId"`
	BusinessName       string    `json:"businessName"`
	Verified           bool      `json:"verified"`
	VerificationStatus string    `json:"verificationStatus"`
}

func toIdentityResponse(identity *entity.Identity) *IdentityResponse {
	resp := &IdentityResponse{
		ID:       identity.ID,
		Email:    identity.Email,
		FullName: identity.FullName,
		Role:     identity.Role.String(),
		Phone:    identity.Phone,
	}
	if !identity.CreatedAt.IsZero() {
		createdAt := identity.CreatedAt
		resp.CreatedAt = &createdAt
	}

	if identity.Student != nil {
		resp.StudentID = identity.Student.StudentID
		resp.Department = identity.Student.Department
		resp.Level = identity.Student.Level
	}

	if identity.Provider != nil {
		verified := identity.Provider.Verified
		resp.BusinessName = identity.Provider.BusinessName
		resp.Location = identity.Provider.Location
		resp.Specialization = identity.Provider.Specialization
		resp.Experience = identity.Provider.Experience
		resp.Verified = &verified
		resp.VerificationStatus = identity.Provider.VerificationStatus.String()
	}

	return resp
}

func toAuthResponse(out *usecase.AuthOutput) *AuthResponse {
	return &AuthResponse{
		Identity: toIdentityResponse(out.Identity),
		Token:    out.Token,
	}
}

func toVerificationResponse(request *entity.VerificationRequest) *VerificationRequestResponse {
	evidence := make([]EvidenceResponse, 0, len(request.Evidence))
	for _, artifact := range request.Evidence {
		evidence = append(evidence, EvidenceResponse{
			URL:  artifact.URL,
			Kind: string(artifact.Kind),
		})
	}

	return &VerificationRequestResponse{
		ID:          request.ID,
		ProviderID:  request.ProviderID,
		Status:      request.Status.String(),
		Evidence:    evidence,
		SubmittedAt: request.SubmittedAt,
		ReviewedAt:  request.ReviewedAt,
		ReviewedBy:  request.ReviewedBy,
		AdminNotes:  request.AdminNotes,
	}
}

func toVerificationResponses(requests []*entity.VerificationRequest) []*VerificationRequestResponse {
	responses := make([]*VerificationRequestResponse, 0, len(requests))
	for _, request := range requests {
		responses = append(responses, toVerificationResponse(request))
	}

	return responses
}
