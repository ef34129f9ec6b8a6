package qrcode

import (
	"net/url"
	"strings"

	"bazaar/config"
	"bazaar/internal/domain/service"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/skip2/go-qrcode"
)

const (
	defaultSize    = 256
	defaultBaseURL = "http://localhost:8080"

	providersSegment    = "providers"
	verificationSegment = "verification"
)

type qrcodeService struct {
	size                 int
	errorCorrectionLevel qrcode.RecoveryLevel
	baseURL              string
}

// NewQRCodeService creates a badge generator. The badge encodes the public
// verification status URL of the provider under baseURL.
func NewQRCodeService(size int, errorCorrectionLevel, baseURL string) service.QRCodeService {
	if size <= 0 {
		size = defaultSize
	}
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	return &qrcodeService{
		size:                 size,
		errorCorrectionLevel: parseRecoveryLevel(errorCorrectionLevel),
		baseURL:              strings.TrimRight(baseURL, "/"),
	}
}

// NewQRCodeServiceFromConfig builds the badge generator from configuration.
func NewQRCodeServiceFromConfig(cfg *config.Config) service.QRCodeService {
	if cfg.QRCode == nil {
		return NewQRCodeService(defaultSize, "M", defaultBaseURL)
	}

	return NewQRCodeService(cfg.QRCode.Size, cfg.QRCode.ErrorCorrectionLevel, cfg.QRCode.BaseURL)
}

func parseRecoveryLevel(level string) qrcode.RecoveryLevel {
	switch strings.ToLower(level) {
	case "l", "low":
		return qrcode.Low
	case "q", "high":
		return qrcode.High
	case "h", "highest":
		return qrcode.Highest
	default:
		return qrcode.Medium
	}
}

// GenerateVerificationBadge renders the provider's verification URL as a PNG QR code.
func (s *qrcodeService) GenerateVerificationBadge(providerID uuid.UUID) ([]byte, error) {
	link := s.baseURL + "/" + providersSegment + "/" + providerID.String() + "/" + verificationSegment

	qrCode, err := qrcode.New(link, s.errorCorrectionLevel)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create QR code")
	}

	pngBytes, err := qrCode.PNG(s.size)
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate PNG")
	}

	return pngBytes, nil
}

// ParseVerificationBadge extracts the provider ID from scanned badge content.
func (s *qrcodeService) ParseVerificationBadge(qrData string) (uuid.UUID, error) {
	link, err := url.Parse(strings.TrimSpace(qrData))
	if err != nil {
		return uuid.Nil, errors.Wrap(err, "failed to parse badge URL")
	}

	segments := strings.Split(strings.Trim(link.Path, "/"), "/")
	if len(segments) < 3 ||
		segments[len(segments)-3] != providersSegment ||
		segments[len(segments)-1] != verificationSegment {
		return uuid.Nil, errors.Errorf("not a verification badge: %s", qrData)
	}

	providerID, err := uuid.Parse(segments[len(segments)-2])
	if err != nil {
		return uuid.Nil, errors.Wrap(err, "failed to parse provider ID")
	}

	return providerID, nil
}
