package pubsub

import (
	"context"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/arn"
	"github.com/aws/aws-sdk-go/service/sns"
	"github.com/pkg/errors"
	"github.com/velmie/broker"
)

// SNS publishes messages to an AWS SNS topic. Message headers become SNS
// message attributes.
type SNS struct {
	snsService *sns.SNS
	accountID  string
}

// NewSNS creates an SNS-backed Publisher for topics in the given account.
func NewSNS(snsService *sns.SNS, accountID string) *SNS {
	return &SNS{snsService: snsService, accountID: accountID}
}

// Publish sends the message and returns the SNS-assigned message id.
func (p *SNS) Publish(ctx context.Context, topic string, message *broker.Message) (string, error) {
	const (
		partition = "aws"
		service   = "sns"
	)
	topicArn := arn.ARN{
		Partition: partition,
		Service:   service,
		Region:    aws.StringValue(p.snsService.Config.Region),
		AccountID: p.accountID,
		Resource:  topic,
	}.String()

	broker.SetIDHeader(message)

	input := &sns.PublishInput{
		MessageAttributes: copyMessageHeader(message),
		Message:           aws.String(string(message.Body)),
		TopicArn:          &topicArn,
	}
	out, err := p.snsService.PublishWithContext(ctx, input)
	if err != nil {
		return "", errors.Wrapf(err, "SNS: cannot publish message to the topic %q", topic)
	}

	return aws.StringValue(out.MessageId), nil
}

func copyMessageHeader(m *broker.Message) map[string]*sns.MessageAttributeValue {
	attribs := make(map[string]*sns.MessageAttributeValue)
	for k, v := range m.Header {
		attribs[k] = &sns.MessageAttributeValue{
			DataType:    aws.String("String"),
			StringValue: aws.String(v),
		}
	}
	return attribs
}
