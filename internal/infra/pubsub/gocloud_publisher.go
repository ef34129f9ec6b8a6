package pubsub

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"bazaar/internal/domain/service"

	"github.com/pkg/errors"
	"gocloud.dev/pubsub"
	// Registers the mem:// URL opener.
	_ "gocloud.dev/pubsub/mempubsub"
)

const goCloudShutdownTimeout = 5 * time.Second

// goCloudPublisher publishes through a portable Go CDK topic.
type goCloudPublisher struct {
	topic  *pubsub.Topic
	logger *slog.Logger
}

// NewGoCloudPublisher opens the topic named by a Go CDK URL such as mem://reviews.
func NewGoCloudPublisher(ctx context.Context, topicURL string, logger *slog.Logger) (service.EventPublisher, error) {
	topic, err := pubsub.OpenTopic(ctx, topicURL)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open topic %s", topicURL)
	}

	return newGoCloudPublisher(topic, logger), nil
}

func newGoCloudPublisher(topic *pubsub.Topic, logger *slog.Logger) *goCloudPublisher {
	return &goCloudPublisher{topic: topic, logger: logger}
}

// PublishVerificationReviewed sends the event as a JSON body with tracing metadata
func (p *goCloudPublisher) PublishVerificationReviewed(ctx context.Context, event *service.VerificationReviewedEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return errors.WithStack(err)
	}

	if err := p.topic.Send(ctx, &pubsub.Message{
		Body:     body,
		Metadata: eventAttributes(event),
	}); err != nil {
		return errors.WithStack(err)
	}

	p.logger.InfoContext(ctx, "[GoCloudPubSub] Event published",
		slog.String("verification_request_id", event.ReviewID),
	)

	return nil
}

// Close flushes pending sends and releases the topic
func (p *goCloudPublisher) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), goCloudShutdownTimeout)
	defer cancel()

	return errors.WithStack(p.topic.Shutdown(ctx))
}
