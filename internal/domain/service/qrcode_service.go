package service

import (
	"github.com/google/uuid"
)

// QRCodeService defines the interface for verification badge QR codes
type QRCodeService interface {
	// GenerateVerificationBadge encodes a link to the provider's public verification status
	GenerateVerificationBadge(providerID uuid.UUID) ([]byte, error)

	// ParseVerificationBadge parses badge data and returns the provider ID
	ParseVerificationBadge(qrData string) (uuid.UUID, error)
}
