package event

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Quarantine 隔离格式无效的事件，供人工排查
type Quarantine interface {
	Put(ctx context.Context, d *Delivery, reason error) error
	Close() error
}

// ── Kafka 死信主题 ──

type kafkaWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaQuarantine 写入死信主题，原因放在消息头
type KafkaQuarantine struct {
	writer kafkaWriter
}

// NewKafkaQuarantine 创建死信主题写入器
func NewKafkaQuarantine(brokers []string, topic string) *KafkaQuarantine {
	return &KafkaQuarantine{writer: &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
	}}
}

func (q *KafkaQuarantine) Put(ctx context.Context, d *Delivery, reason error) error {
	return q.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(d.ID),
		Value: d.Body,
		Headers: []kafka.Header{
			{Key: "reason", Value: []byte(reason.Error())},
			{Key: "quarantined_at", Value: []byte(time.Now().UTC().Format(time.RFC3339))},
		},
	})
}

func (q *KafkaQuarantine) Close() error {
	return q.writer.Close()
}

// ── S3 ──

type s3Putter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Quarantine 每条事件一个对象，键为 quarantine/<日期>/<id>.json
type S3Quarantine struct {
	client s3Putter
	bucket string
	now    func() time.Time
}

// NewS3Quarantine 创建 S3 隔离区
func NewS3Quarantine(client *s3.Client, bucket string) *S3Quarantine {
	return &S3Quarantine{client: client, bucket: bucket, now: time.Now}
}

func (q *S3Quarantine) Put(ctx context.Context, d *Delivery, reason error) error {
	key := fmt.Sprintf("quarantine/%s/%s.json", q.now().UTC().Format("2006-01-02"), d.ID)
	_, err := q.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(q.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(d.Body),
		ContentType: aws.String("application/json"),
		ACL:         s3types.ObjectCannedACLPrivate,
		Metadata:    map[string]string{"reason": url.QueryEscape(reason.Error())},
	})
	return err
}

func (q *S3Quarantine) Close() error { return nil }

// ── 仅记录日志 ──

// LogQuarantine 不落地，仅输出警告
type LogQuarantine struct {
	logger *zap.Logger
}

// NewLogQuarantine 创建日志隔离区
func NewLogQuarantine(logger *zap.Logger) *LogQuarantine {
	return &LogQuarantine{logger: logger}
}

func (q *LogQuarantine) Put(_ context.Context, d *Delivery, reason error) error {
	q.logger.Warn("丢弃格式无效的事件",
		zap.String("id", d.ID),
		zap.ByteString("body", d.Body),
		zap.Error(reason),
	)
	return nil
}

func (q *LogQuarantine) Close() error { return nil }
