package publishers

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// capturingSQS records the last SendMessage input instead of calling AWS.
type capturingSQS struct {
	input *sqs.SendMessageInput
	err   error
}

func (c *capturingSQS) SendMessage(_ context.Context, params *sqs.SendMessageInput, _ ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
	c.input = params
	if c.err != nil {
		return nil, c.err
	}
	return &sqs.SendMessageOutput{MessageId: aws.String("m-1")}, nil
}

func TestSQSSender_AttachesRoutingAttributes(t *testing.T) {
	fake := &capturingSQS{}
	sender := &awsSQSSender{queueURL: "https://sqs.local/digest", client: fake, log: nopLogger{}}

	evt := NewEvent("2026-01", 3, 7, "## report\n")
	require.NoError(t, sender.Send(context.Background(), evt))
	require.NotNil(t, fake.input)

	assert.Equal(t, "https://sqs.local/digest", aws.ToString(fake.input.QueueUrl))

	var decoded Event
	require.NoError(t, json.Unmarshal([]byte(aws.ToString(fake.input.MessageBody)), &decoded))
	assert.Equal(t, evt.RunID, decoded.RunID)
	assert.Equal(t, "## report\n", decoded.Markdown)

	attrs := fake.input.MessageAttributes
	assert.Equal(t, "2026-01", aws.ToString(attrs["month"].StringValue))
	assert.Equal(t, "3", aws.ToString(attrs["sites"].StringValue))
	assert.Equal(t, "7", aws.ToString(attrs["articles"].StringValue))
	assert.Equal(t, evt.RunID, aws.ToString(attrs["run_id"].StringValue))
}

func TestSQSSender_SendFailure(t *testing.T) {
	fake := &capturingSQS{err: errors.New("queue unavailable")}
	sender := &awsSQSSender{queueURL: "https://sqs.local/digest", client: fake, log: nopLogger{}}

	err := sender.Send(context.Background(), NewEvent("2026-01", 1, 0, ""))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "queue unavailable")
}

func TestLoadAWSConfig_CredentialModes(t *testing.T) {
	ctx := context.Background()

	static, err := loadAWSConfig(ctx, "eu-west-1", "AKIDEXAMPLE", "secret")
	require.NoError(t, err)
	creds, err := static.Credentials.Retrieve(ctx)
	require.NoError(t, err)
	assert.Equal(t, "AKIDEXAMPLE", creds.AccessKeyID)

	// Without keys the default credential chain is used; building the
	// config must still succeed.
	chain, err := loadAWSConfig(ctx, "eu-west-1", "", "")
	require.NoError(t, err)
	assert.Equal(t, "eu-west-1", chain.Region)
}
