package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	webpush "github.com/SherClockHolmes/webpush-go"

	"tutorbook/notifications/config"
	"tutorbook/notifications/internal/model"
)

// SubscriptionLister 按联系人主键列出推送订阅
type SubscriptionLister interface {
	ListByEmail(ctx context.Context, email string) ([]model.PushSubscription, error)
}

type pushFunc func(ctx context.Context, message []byte, s *webpush.Subscription, options *webpush.Options) (*http.Response, error)

// VAPIDSender 基于 VAPID 的浏览器推送
type VAPIDSender struct {
	subs    SubscriptionLister
	options webpush.Options
	push    pushFunc
}

// NewVAPIDSender 创建 VAPIDSender
func NewVAPIDSender(cfg *config.WebPushConfig, subs SubscriptionLister) *VAPIDSender {
	ttl := int(cfg.TTL / time.Second)
	if ttl <= 0 {
		ttl = 86400
	}
	return &VAPIDSender{
		subs: subs,
		options: webpush.Options{
			Subscriber:      cfg.Subscriber,
			VAPIDPublicKey:  cfg.VAPIDPublicKey,
			VAPIDPrivateKey: cfg.VAPIDPrivateKey,
			TTL:             ttl,
			Urgency:         webpush.UrgencyNormal,
		},
		push: webpush.SendNotificationWithContext,
	}
}

type pushPayload struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// SendPush 推送到该联系人的全部订阅，任一成功即视为送达
func (s *VAPIDSender) SendPush(ctx context.Context, contactKey, title, body string) error {
	subs, err := s.subs.ListByEmail(ctx, contactKey)
	if err != nil {
		return Fail(ChannelWebPush, contactKey, fmt.Errorf("查询推送订阅失败: %w", err))
	}
	if len(subs) == 0 {
		return Fail(ChannelWebPush, contactKey, ErrNoSubscription)
	}

	payload, err := json.Marshal(pushPayload{Title: title, Body: body})
	if err != nil {
		return Fail(ChannelWebPush, contactKey, err)
	}

	var lastErr error
	delivered := 0
	for _, sub := range subs {
		opts := s.options
		resp, err := s.push(ctx, payload, &webpush.Subscription{
			Endpoint: sub.Endpoint,
			Keys:     webpush.Keys{P256dh: sub.P256dh, Auth: sub.Auth},
		}, &opts)
		if err != nil {
			lastErr = err
			continue
		}
		_, _ = io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		if resp.StatusCode >= 400 {
			lastErr = fmt.Errorf("推送服务返回 %d", resp.StatusCode)
			continue
		}
		delivered++
	}

	if delivered == 0 {
		return Fail(ChannelWebPush, contactKey, lastErr)
	}
	return nil
}
