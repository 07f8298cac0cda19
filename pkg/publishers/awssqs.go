package publishers

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
)

// loadAWSConfig resolves the AWS client configuration for a publisher. Static
// credentials apply when the registry entry carries both keys; otherwise the
// default credential chain (env, shared config, instance role) takes over.
func loadAWSConfig(ctx context.Context, region, accessKeyID, secretAccessKey string) (aws.Config, error) {
	opts := []func(*awscfg.LoadOptions) error{awscfg.WithRegion(region)}
	if accessKeyID != "" && secretAccessKey != "" {
		opts = append(opts, awscfg.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(accessKeyID, secretAccessKey, "")))
	}
	return awscfg.LoadDefaultConfig(ctx, opts...)
}

// sqsClient is the subset of the SQS API the sender uses.
type sqsClient interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

type awsSQSSender struct {
	queueURL string
	client   sqsClient
	log      Logger
}

func newAWSSQSSender(ctx context.Context, cfg *AWSSQSPublisherConfig, log Logger) (queueSender, error) {
	if cfg == nil {
		return nil, fmt.Errorf("aws sqs configuration is missing")
	}

	awsCfg, err := loadAWSConfig(ctx, cfg.Region, cfg.AccessKeyID, cfg.SecretAccessKey)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	return &awsSQSSender{
		queueURL: cfg.QueueURL,
		client:   sqs.NewFromConfig(awsCfg),
		log:      ensureLogger(log),
	}, nil
}

// Send delivers the digest to the queue with its routing attributes attached.
func (s *awsSQSSender) Send(ctx context.Context, evt Event) error {
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

	resp, err := s.client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:          aws.String(s.queueURL),
		MessageBody:       aws.String(string(body)),
		MessageAttributes: msgAttrs,
	})
	if err != nil {
		s.log.ErrorObj("sqs digest delivery failed", "publisher_sqs_error", map[string]any{
			"queue": s.queueURL,
			"error": err.Error(),
		})
		return fmt.Errorf("send digest to sqs: %w", err)
	}

	s.log.DebugObj("sqs delivered digest event", "publisher_sqs_delivery", map[string]any{
		"message_id": aws.ToString(resp.MessageId),
	})
	return nil
}
