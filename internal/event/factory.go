package event

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"go.uber.org/zap"

	"tutorbook/notifications/config"
)

// NewSource 按 events.source 创建事件来源
func NewSource(ctx context.Context, cfg *config.EventsConfig) (Source, error) {
	switch cfg.Source {
	case "kafka":
		return NewKafkaSource(cfg.Brokers, cfg.Topic, cfg.GroupID), nil
	case "sqs":
		if cfg.QueueURL == "" {
			return nil, fmt.Errorf("events.source=sqs 需要 queue_url")
		}
		awsCfg, err := loadAWS(ctx, cfg.Region)
		if err != nil {
			return nil, err
		}
		return NewSQSSource(sqs.NewFromConfig(awsCfg), cfg.QueueURL, cfg.WaitTime), nil
	default:
		return nil, fmt.Errorf("未知事件来源: %q", cfg.Source)
	}
}

// NewQuarantine 按 events.quarantine 创建隔离区
func NewQuarantine(ctx context.Context, cfg *config.EventsConfig, logger *zap.Logger) (Quarantine, error) {
	switch cfg.Quarantine {
	case "kafka":
		return NewKafkaQuarantine(cfg.Brokers, cfg.DLQTopic), nil
	case "s3":
		awsCfg, err := loadAWS(ctx, cfg.Region)
		if err != nil {
			return nil, err
		}
		return NewS3Quarantine(s3.NewFromConfig(awsCfg, func(o *s3.Options) {
			o.UsePathStyle = true
		}), cfg.Bucket), nil
	case "none", "":
		return NewLogQuarantine(logger), nil
	default:
		return nil, fmt.Errorf("未知隔离区: %q", cfg.Quarantine)
	}
}

func loadAWS(ctx context.Context, region string) (aws.Config, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("加载 AWS 配置失败: %w", err)
	}
	return awsCfg, nil
}
