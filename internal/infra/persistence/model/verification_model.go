package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// EvidenceModel is one element of the evidence JSONB array.
type EvidenceModel struct {
	URL  string `json:"url"`
	Kind string `json:"kind"`
}

// VerificationRequestModel mirrors the 'verification_requests' table.
// A partial unique index allows one pending row per provider.
type VerificationRequestModel struct {
	ID          uuid.UUID                          `gorm:"type:uuid;primary_key"`
	ProviderID  uuid.UUID                          `gorm:"type:uuid;not null;index"`
	Status      string                             `gorm:"type:varchar(20);not null"`
	Evidence    datatypes.JSONSlice[EvidenceModel] `gorm:"type:jsonb;not null"`
	SubmittedAt time.Time                          `gorm:"not null"`
	ReviewedAt  *time.Time
	ReviewedBy  *uuid.UUID `gorm:"type:uuid"`
	AdminNotes  *string    `gorm:"type:text"`
}

// TableName explicitly sets the table name for GORM.
func (VerificationRequestModel) TableName() string {
	return "verification_requests"
}
