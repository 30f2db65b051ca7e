// Package transport 出站通知通道：短信、邮件、浏览器推送。
// 每次调用同步返回结果，由调用方汇总，不做重试。
package transport

import (
	"context"
	"errors"
	"fmt"

	"tutorbook/notifications/internal/model"
)

// Channel 通知通道
type Channel string

const (
	ChannelSMS     Channel = "sms"
	ChannelEmail   Channel = "email"
	ChannelWebPush Channel = "webpush"
)

var (
	// ErrNoDestination 收件人缺少该通道所需的地址（手机号 / 邮箱）
	ErrNoDestination = errors.New("收件人缺少投递地址")
	// ErrNoSubscription 收件人没有可用的推送订阅
	ErrNoSubscription = errors.New("收件人没有推送订阅")
)

// Error 单个通道对单个收件人的投递失败
type Error struct {
	Channel     Channel
	Destination string
	Err         error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s 投递失败 (%s): %v", e.Channel, e.Destination, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Fail 包装为 *Error
func Fail(ch Channel, destination string, err error) error {
	if err == nil {
		return nil
	}
	var te *Error
	if errors.As(err, &te) {
		return err
	}
	return &Error{Channel: ch, Destination: destination, Err: err}
}

// Email 已渲染的邮件
type Email struct {
	Template string
	Subject  string
	Body     string
}

// SMSSender 短信通道
type SMSSender interface {
	SendSMS(ctx context.Context, phone, body string) error
}

// EmailSender 邮件通道
type EmailSender interface {
	SendEmail(ctx context.Context, to model.ProfileRef, email Email) error
}

// PushSender 浏览器推送通道，按联系人主键查找订阅
type PushSender interface {
	SendPush(ctx context.Context, contactKey, title, body string) error
}

// Senders 三个通道的集合
type Senders struct {
	SMS     SMSSender
	Email   EmailSender
	WebPush PushSender
}
