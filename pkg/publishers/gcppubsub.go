package publishers

import (
	"context"
	"fmt"

	"cloud.google.com/go/pubsub"
	"google.golang.org/api/option"
)

type gcpPubSubSender struct {
	topic *pubsub.Topic
	log   Logger
}

func newGCPPubSubSender(ctx context.Context, cfg *GCPQueueConfig, log Logger) (queueSender, error) {
	if cfg == nil {
		return nil, fmt.Errorf("gcp queue configuration is missing")
	}

	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	client, err := pubsub.NewClient(ctx, cfg.ProjectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("create pubsub client: %w", err)
	}

	return &gcpPubSubSender{
		topic: client.Topic(cfg.Topic),
		log:   ensureLogger(log),
	}, nil
}

// Send delivers the digest to the topic; the routing attributes become
// Pub/Sub message attributes directly.
func (s *gcpPubSubSender) Send(ctx context.Context, evt Event) error {
	body, attrs, err := digestPayload(evt)
	if err != nil {
		return err
	}

	res := s.topic.Publish(ctx, &pubsub.Message{Data: body, Attributes: attrs})
	msgID, err := res.Get(ctx)
	if err != nil {
		s.log.ErrorObj("gcp pubsub digest delivery failed", "publisher_gcp_pubsub_error", map[string]any{
			"topic": s.topic.ID(),
			"error": err.Error(),
		})
		return fmt.Errorf("send digest to pubsub: %w", err)
	}

	s.log.DebugObj("gcp pubsub delivered digest event", "publisher_gcp_pubsub_delivery", map[string]any{
		"message_id": msgID,
	})
	return nil
}
