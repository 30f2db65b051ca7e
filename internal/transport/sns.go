package transport

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	snstypes "github.com/aws/aws-sdk-go-v2/service/sns/types"
)

// snsPublisher sns.Client 的最小子集，便于替换
type snsPublisher interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// SNSSender 通过 AWS SNS 直发短信
type SNSSender struct {
	client   snsPublisher
	senderID string
}

// NewSNSSender 创建 SNSSender
func NewSNSSender(client snsPublisher, senderID string) *SNSSender {
	return &SNSSender{client: client, senderID: senderID}
}

// SendSMS 发送事务类短信
func (s *SNSSender) SendSMS(ctx context.Context, phone, body string) error {
	if phone == "" {
		return Fail(ChannelSMS, phone, ErrNoDestination)
	}

	attrs := map[string]snstypes.MessageAttributeValue{
		"AWS.SNS.SMS.SMSType": {
			DataType:    aws.String("String"),
			StringValue: aws.String("Transactional"),
		},
	}
	if s.senderID != "" {
		attrs["AWS.SNS.SMS.SenderID"] = snstypes.MessageAttributeValue{
			DataType:    aws.String("String"),
			StringValue: aws.String(s.senderID),
		}
	}

	_, err := s.client.Publish(ctx, &sns.PublishInput{
		PhoneNumber:       aws.String(phone),
		Message:           aws.String(body),
		MessageAttributes: attrs,
	})
	return Fail(ChannelSMS, phone, err)
}
