package transport

import (
	"context"

	"go.uber.org/zap"

	"tutorbook/notifications/internal/model"
)

// LogSender 只写日志的通道实现，用于本地开发与演练
type LogSender struct {
	logger *zap.Logger
}

// NewLogSender 创建 LogSender
func NewLogSender(logger *zap.Logger) *LogSender {
	return &LogSender{logger: logger.Named("transport")}
}

func (l *LogSender) SendSMS(_ context.Context, phone, body string) error {
	if phone == "" {
		return Fail(ChannelSMS, phone, ErrNoDestination)
	}
	l.logger.Info("[dry-run] 短信", zap.String("phone", phone), zap.String("body", body))
	return nil
}

func (l *LogSender) SendEmail(_ context.Context, to model.ProfileRef, email Email) error {
	if to.Email == "" {
		return Fail(ChannelEmail, to.Email, ErrNoDestination)
	}
	l.logger.Info("[dry-run] 邮件",
		zap.String("to", to.Email),
		zap.String("template", email.Template),
		zap.String("subject", email.Subject),
	)
	return nil
}

func (l *LogSender) SendPush(_ context.Context, contactKey, title, body string) error {
	l.logger.Info("[dry-run] 推送",
		zap.String("to", contactKey),
		zap.String("title", title),
		zap.String("body", body),
	)
	return nil
}
