package pubsub

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"bazaar/internal/domain/service"

	"cloud.google.com/go/pubsub/v2"
	pubsubpb "cloud.google.com/go/pubsub/v2/apiv1/pubsubpb"
	"github.com/pkg/errors"
	"google.golang.org/api/option"
)

// googlePubSubPublisher implements EventPublisher using Google Cloud Pub/Sub
type googlePubSubPublisher struct {
	client    *pubsub.Client
	publisher *pubsub.Publisher
	logger    *slog.Logger
}

// NewGooglePubSubPublisher creates a Google Pub/Sub publisher. An empty
// credentialsPath falls back to application default credentials.
func NewGooglePubSubPublisher(ctx context.Context, projectID, topicID, credentialsPath string, logger *slog.Logger) (service.EventPublisher, error) {
	var opts []option.ClientOption
	if credentialsPath != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsPath))
	}

	client, err := pubsub.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	topicPath := fmt.Sprintf("projects/%s/topics/%s", projectID, topicID)
	if _, err = client.TopicAdminClient.GetTopic(ctx, &pubsubpb.GetTopicRequest{
		Topic: topicPath,
	}); err != nil {
		client.Close()

		return nil, errors.Wrapf(err, "failed to get topic %s", topicID)
	}

	logger.Info("Google Pub/Sub publisher initialized",
		slog.String("project_id", projectID),
		slog.String("topic_id", topicID),
	)

	return &googlePubSubPublisher{
		client:    client,
		publisher: client.Publisher(topicID),
		logger:    logger,
	}, nil
}

// PublishVerificationReviewed publishes the review outcome and waits for the server ID
func (p *googlePubSubPublisher) PublishVerificationReviewed(ctx context.Context, event *service.VerificationReviewedEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return errors.WithStack(err)
	}

	result := p.publisher.Publish(ctx, &pubsub.Message{
		Data:       data,
		Attributes: eventAttributes(event),
	})

	serverID, err := result.Get(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	p.logger.InfoContext(ctx, "[GooglePubSub] Event published",
		slog.String("verification_request_id", event.ReviewID),
		slog.String("server_id", serverID),
	)

	return nil
}

// Close releases Pub/Sub client resources
func (p *googlePubSubPublisher) Close() error {
	if p.publisher != nil {
		p.publisher.Stop()
	}
	if p.client != nil {
		return errors.WithStack(p.client.Close())
	}

	return nil
}
