package event

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	sqstypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/segmentio/kafka-go"
)

// ErrSourceClosed 事件来源已关闭
var ErrSourceClosed = errors.New("事件来源已关闭")

// Delivery 一条待处理的原始事件
type Delivery struct {
	ID   string
	Body []byte

	kafkaMsg      *kafka.Message
	receiptHandle *string
}

// Source 事件来源；Ack 后该事件不再投递
type Source interface {
	Fetch(ctx context.Context) (*Delivery, error)
	Ack(ctx context.Context, d *Delivery) error
	Close() error
}

// ── Kafka ──

// kafkaReader kafka.Reader 的最小子集
type kafkaReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaSource 以消费组读取主题，处理完成后显式提交位移
type KafkaSource struct {
	reader kafkaReader
}

// NewKafkaSource 创建 Kafka 事件来源
func NewKafkaSource(brokers []string, topic, groupID string) *KafkaSource {
	return &KafkaSource{reader: kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  groupID,
		MinBytes: 1,
		MaxBytes: 10e6,
		MaxWait:  time.Second,
	})}
}

func (s *KafkaSource) Fetch(ctx context.Context) (*Delivery, error) {
	msg, err := s.reader.FetchMessage(ctx)
	if err != nil {
		return nil, err
	}
	return &Delivery{
		ID:       fmt.Sprintf("%s-%d-%d", msg.Topic, msg.Partition, msg.Offset),
		Body:     msg.Value,
		kafkaMsg: &msg,
	}, nil
}

func (s *KafkaSource) Ack(ctx context.Context, d *Delivery) error {
	if d.kafkaMsg == nil {
		return nil
	}
	return s.reader.CommitMessages(ctx, *d.kafkaMsg)
}

func (s *KafkaSource) Close() error {
	return s.reader.Close()
}

// ── SQS ──

// sqsAPI sqs.Client 的最小子集
type sqsAPI interface {
	ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error)
}

// SQSSource 长轮询队列，Ack 时删除消息
type SQSSource struct {
	client   sqsAPI
	queueURL string
	waitTime time.Duration

	buffered []sqstypes.Message
}

// NewSQSSource 创建 SQS 事件来源
func NewSQSSource(client *sqs.Client, queueURL string, waitTime time.Duration) *SQSSource {
	return &SQSSource{client: client, queueURL: queueURL, waitTime: waitTime}
}

func (s *SQSSource) Fetch(ctx context.Context) (*Delivery, error) {
	for len(s.buffered) == 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out, err := s.client.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
			QueueUrl:            aws.String(s.queueURL),
			MaxNumberOfMessages: 10,
			WaitTimeSeconds:     int32(s.waitTime / time.Second),
		})
		if err != nil {
			return nil, err
		}
		s.buffered = out.Messages
	}

	msg := s.buffered[0]
	s.buffered = s.buffered[1:]
	return &Delivery{
		ID:            aws.ToString(msg.MessageId),
		Body:          []byte(aws.ToString(msg.Body)),
		receiptHandle: msg.ReceiptHandle,
	}, nil
}

func (s *SQSSource) Ack(ctx context.Context, d *Delivery) error {
	if d.receiptHandle == nil {
		return nil
	}
	_, err := s.client.DeleteMessage(ctx, &sqs.DeleteMessageInput{
		QueueUrl:      aws.String(s.queueURL),
		ReceiptHandle: d.receiptHandle,
	})
	return err
}

func (s *SQSSource) Close() error {
	return nil
}
