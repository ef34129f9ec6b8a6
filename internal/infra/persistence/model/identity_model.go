package model

import (
	"time"

	"github.com/google/uuid"
)

// IdentityModel mirrors the 'identities' table. Student profile columns are
// nullable and only set for students.
type IdentityModel struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key"`
	Email        string    `gorm:"type:varchar(255);uniqueIndex;not null"`
	FullName     string    `gorm:"type:varchar(100);not null"`
	PasswordHash string    `gorm:"type:varchar(255);not null"`
	Role         string    `gorm:"type:varchar(20);not null"`
	Phone        string    `gorm:"type:varchar(32)"`
	StudentID    *string   `gorm:"type:varchar(64)"`
	Department   *string   `gorm:"type:varchar(100)"`
	Level        *string   `gorm:"type:varchar(32)"`
	CreatedAt    time.Time
	UpdatedAt    time.Time

	Provider *ProviderModel `gorm:"foreignKey:IdentityID"`
}

// TableName explicitly sets the table name for GORM.
func (IdentityModel) TableName() string {
	return "identities"
}

// ProviderModel mirrors the 'providers' table. IdentityID references identities.id (UUID).
type ProviderModel struct {
	IdentityID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	BusinessName       string    `gorm:"type:varchar(100);not null"`
	Location           string    `gorm:"type:varchar(255);not null"`
	Specialization     string    `gorm:"type:varchar(100);not null"`
	Experience         string    `gorm:"type:varchar(255);not null"`
	Verified           bool      `gorm:"not null;default:false"`
	VerificationStatus string    `gorm:"type:varchar(20);not null;default:pending"`
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// TableName explicitly sets the table name for GORM.
func (ProviderModel) TableName() string {
	return "providers"
}
