package service

import (
	"context"
)

// VerificationReviewedEvent is emitted after a review commits.
type VerificationReviewedEvent struct {
	RequestID        string `json:"request_id,omitempty"` // For distributed tracing
	ReviewID         string `json:"verification_request_id"`
	ProviderID       string `json:"provider_id"`
	ReviewerID       string `json:"reviewer_id"`
	Decision         string `json:"decision"`
	ReviewedAt       string `json:"reviewed_at"`
	AdminNotes       string `json:"admin_notes,omitempty"`
	ProviderVerified bool   `json:"provider_verified"`
}

// EventPublisher defines the interface for publishing events to a message queue
type EventPublisher interface {
	// PublishVerificationReviewed publishes a review outcome for downstream consumers
	PublishVerificationReviewed(ctx context.Context, event *VerificationReviewedEvent) error

	// Close releases any resources held by the publisher
	Close() error
}
