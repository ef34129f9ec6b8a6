package pubsub

import (
	"context"
	"log/slog"

	"bazaar/config"
	"bazaar/internal/domain/constants"
	"bazaar/internal/domain/service"

	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// noopPublisher is a no-op implementation when Pub/Sub is disabled
type noopPublisher struct {
	logger *slog.Logger
}

// NewNoopPublisher returns a publisher that only logs.
func NewNoopPublisher(logger *slog.Logger) service.EventPublisher {
	return &noopPublisher{logger: logger}
}

func (p *noopPublisher) PublishVerificationReviewed(ctx context.Context, event *service.VerificationReviewedEvent) error {
	p.logger.DebugContext(ctx, "[NoopPubSub] Event publishing disabled, skipping",
		slog.String("verification_request_id", event.ReviewID),
		slog.String("decision", event.Decision),
	)

	return nil
}

func (p *noopPublisher) Close() error {
	return nil
}

// PublisherParams holds dependencies for EventPublisher, injected by Fx
type PublisherParams struct {
	fx.In

	Lc     fx.Lifecycle
	Ctx    context.Context
	Config *config.Config
	Logger *slog.Logger
}

// NewEventPublisher creates an EventPublisher based on configuration
func NewEventPublisher(params PublisherParams) (service.EventPublisher, error) {
	cfg := params.Config.PubSub
	logger := params.Logger

	if cfg == nil || cfg.Provider == "" || cfg.Provider == constants.PubSubProviderNone {
		logger.Info("PubSub not configured, using no-op publisher")

		return NewNoopPublisher(logger), nil
	}

	var publisher service.EventPublisher
	var err error

	switch cfg.Provider {
	case constants.PubSubProviderLocal:
		if cfg.LocalEndpoint == "" {
			return nil, errors.New("local endpoint is required for local provider")
		}
		logger.Info("Using local HTTP publisher for Pub/Sub",
			slog.String("endpoint", cfg.LocalEndpoint),
		)

		publisher = NewLocalHTTPPublisher(cfg.LocalEndpoint, logger)

	case constants.PubSubProviderGoogle:
		if cfg.ProjectID == "" {
			return nil, errors.New("project ID is required for google provider")
		}
		if cfg.TopicID == "" {
			return nil, errors.New("topic ID is required for google provider")
		}
		logger.Info("Using Google Pub/Sub publisher",
			slog.String("project_id", cfg.ProjectID),
			slog.String("topic_id", cfg.TopicID),
		)

		publisher, err = NewGooglePubSubPublisher(params.Ctx, cfg.ProjectID, cfg.TopicID, cfg.CredentialsPath, logger)
		if err != nil {
			return nil, err
		}

	case constants.PubSubProviderGoCloud:
		if cfg.TopicURL == "" {
			return nil, errors.New("topic URL is required for gocloud provider")
		}
		logger.Info("Using Go CDK Pub/Sub publisher",
			slog.String("topic_url", cfg.TopicURL),
		)

		publisher, err = NewGoCloudPublisher(params.Ctx, cfg.TopicURL, logger)
		if err != nil {
			return nil, err
		}

	default:
		return nil, errors.Errorf("unknown pubsub provider: %s", cfg.Provider)
	}

	params.Lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			logger.Info("Closing EventPublisher")

			return publisher.Close()
		},
	})

	return publisher, nil
}

// eventAttributes are the message attributes used for filtering and tracing.
func eventAttributes(event *service.VerificationReviewedEvent) map[string]string {
	attributes := map[string]string{
		"event_type":              "verification.reviewed",
		"verification_request_id": event.ReviewID,
		"provider_id":             event.ProviderID,
		"decision":                event.Decision,
	}
	if event.RequestID != "" {
		attributes["request_id"] = event.RequestID
	}

	return attributes
}

// Module provides the Pub/Sub FX module
//
//nolint:gochecknoglobals
var Module = fx.Options(
	fx.Provide(NewEventPublisher),
)
