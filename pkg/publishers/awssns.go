package publishers

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
)

// snsClient is the subset of the SNS API the sender uses.
type snsClient interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

type awsSNSSender struct {
	topicARN string
	client   snsClient
	log      Logger
}

func newAWSSNSSender(ctx context.Context, cfg *AWSSNSPublisherConfig, log Logger) (queueSender, error) {
	if cfg == nil {
		return nil, fmt.Errorf("aws sns configuration is missing")
	}

	awsCfg, err := loadAWSConfig(ctx, cfg.Region, cfg.AccessKeyID, cfg.SecretAccessKey)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	return &awsSNSSender{
		topicARN: cfg.TopicARN,
		client:   sns.NewFromConfig(awsCfg),
		log:      ensureLogger(log),
	}, nil
}

// Send delivers the digest to the topic with its routing attributes attached.
func (s *awsSNSSender) Send(ctx context.Context, evt Event) error {
	body, attrs, err := digestPayload(evt)
	if err != nil {
		return err
	}

	msgAttrs := make(map[string]types.MessageAttributeValue, len(attrs))
	for name, value := range attrs {
		msgAttrs[name] = types.MessageAttributeValue{
			DataType:    aws.String("String"),
			StringValue: aws.String(value),
		}
	}

	resp, err := s.client.Publish(ctx, &sns.PublishInput{
		TopicArn:          aws.String(s.topicARN),
		Message:           aws.String(string(body)),
		MessageAttributes: msgAttrs,
	})
	if err != nil {
		s.log.ErrorObj("sns digest delivery failed", "publisher_sns_error", map[string]any{
			"topic": s.topicARN,
			"error": err.Error(),
		})
		return fmt.Errorf("send digest to sns: %w", err)
	}

	s.log.DebugObj("sns delivered digest event", "publisher_sns_delivery", map[string]any{
		"message_id": aws.ToString(resp.MessageId),
	})
	return nil
}
