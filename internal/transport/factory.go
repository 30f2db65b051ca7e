package transport

import (
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"go.uber.org/zap"

	"tutorbook/notifications/config"
)

// NewSenders 按配置的 driver 组装三个通道
func NewSenders(ctx context.Context, cfg *config.Config, subs SubscriptionLister, logger *zap.Logger) (Senders, error) {
	dry := NewLogSender(logger)
	senders := Senders{SMS: dry, Email: dry, WebPush: dry}

	switch cfg.SMS.Driver {
	case "sns":
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.SMS.Region))
		if err != nil {
			return Senders{}, fmt.Errorf("加载 AWS 配置失败: %w", err)
		}
		senders.SMS = NewSNSSender(sns.NewFromConfig(awsCfg), cfg.SMS.SenderID)
	case "log", "":
	default:
		return Senders{}, fmt.Errorf("未知短信 driver: %q", cfg.SMS.Driver)
	}

	switch cfg.Mail.Driver {
	case "smtp":
		if cfg.Mail.SMTPHost == "" || cfg.Mail.From == "" {
			return Senders{}, fmt.Errorf("mail.driver=smtp 需要 smtp_host 与 from")
		}
		senders.Email = NewSMTPSender(&cfg.Mail)
	case "log", "":
	default:
		return Senders{}, fmt.Errorf("未知邮件 driver: %q", cfg.Mail.Driver)
	}

	switch cfg.WebPush.Driver {
	case "vapid":
		if cfg.WebPush.VAPIDPrivateKey == "" || cfg.WebPush.VAPIDPublicKey == "" {
			return Senders{}, fmt.Errorf("webpush.driver=vapid 需要 VAPID 密钥对")
		}
		senders.WebPush = NewVAPIDSender(&cfg.WebPush, subs)
	case "log", "":
	default:
		return Senders{}, fmt.Errorf("未知推送 driver: %q", cfg.WebPush.Driver)
	}

	logger.Info("通知通道已就绪",
		zap.String("sms", cfg.SMS.Driver),
		zap.String("mail", cfg.Mail.Driver),
		zap.String("webpush", cfg.WebPush.Driver),
	)
	return senders, nil
}
