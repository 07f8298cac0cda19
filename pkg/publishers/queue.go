package publishers

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
)

// queueSender abstracts provider-specific queue senders.
type queueSender interface {
	Send(ctx context.Context, evt Event) error
}

// digestPayload serializes an event for queue delivery and derives the
// routing attributes consumers can filter on without decoding the body.
func digestPayload(evt Event) ([]byte, map[string]string, error) {
	body, err := json.Marshal(evt)
	if err != nil {
		return nil, nil, fmt.Errorf("marshal digest event: %w", err)
	}

	attrs := map[string]string{
		"run_id":   evt.RunID,
		"month":    evt.Month,
		"sites":    strconv.Itoa(evt.Sites),
		"articles": strconv.Itoa(evt.Articles),
	}
	return body, attrs, nil
}

// queuePublisher hands digest events to one cloud queue provider.
type queuePublisher struct {
	id       string
	provider string
	sender   queueSender
}

func newQueuePublisher(ctx context.Context, cfg PublisherConfig, log Logger) (Publisher, error) {
	if cfg.Queue == nil {
		return nil, fmt.Errorf("publisher %q missing queue configuration", cfg.ID)
	}
	if ctx == nil {
		ctx = context.Background()
	}

	var (
		sender queueSender
		err    error
	)
	switch cfg.Queue.Provider {
	case QueueProviderAWSSQS:
		sender, err = newAWSSQSSender(ctx, cfg.Queue.AWS, log)
	case QueueProviderAWSSNS:
		sender, err = newAWSSNSSender(ctx, cfg.Queue.SNS, log)
	case QueueProviderGCP:
		sender, err = newGCPPubSubSender(ctx, cfg.Queue.GCP, log)
	default:
		err = fmt.Errorf("queue provider %q is not supported", cfg.Queue.Provider)
	}
	if err != nil {
		return nil, err
	}

	return &queuePublisher{id: cfg.ID, provider: cfg.Queue.Provider, sender: sender}, nil
}

func (p *queuePublisher) ID() string   { return p.id }
func (p *queuePublisher) Type() string { return TypeQueue }

// Publish forwards the digest event to the configured queue provider.
func (p *queuePublisher) Publish(ctx context.Context, evt Event) error {
	if err := p.sender.Send(ctx, evt); err != nil {
		return fmt.Errorf("queue provider %s: %w", p.provider, err)
	}
	return nil
}
