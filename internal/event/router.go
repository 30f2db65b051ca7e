package event

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"tutorbook/notifications/internal/model"
	"tutorbook/notifications/internal/notify"
	"tutorbook/notifications/internal/service"
)

// HandlerFunc 单类事件的处理函数
type HandlerFunc func(ctx context.Context, ev *Event) error

// Result 事件处理结果，用作指标标签
type Result string

const (
	ResultOK        Result = "ok"
	ResultFailed    Result = "failed"
	ResultMalformed Result = "malformed"
	ResultUnknown   Result = "unknown"
)

// Router 按事件类型分发
type Router struct {
	handlers map[string]HandlerFunc
	logger   *zap.Logger
}

// NewRouter 创建空路由
func NewRouter(logger *zap.Logger) *Router {
	return &Router{handlers: make(map[string]HandlerFunc), logger: logger}
}

// Handle 注册事件处理函数
func (r *Router) Handle(eventType string, fn HandlerFunc) {
	r.handlers[eventType] = fn
}

// Route 执行处理函数；panic 记为失败
func (r *Router) Route(ctx context.Context, ev *Event) (result Result, err error) {
	fn, ok := r.handlers[ev.Type]
	if !ok {
		r.logger.Warn("未知事件类型，已确认", zap.String("type", ev.Type), zap.String("id", ev.ID))
		notify.MetricsTriggerEvents.WithLabelValues(ev.Type, string(ResultUnknown)).Inc()
		return ResultUnknown, nil
	}

	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("处理事件 panic: %v", p)
			result = ResultFailed
		}
		notify.MetricsTriggerEvents.WithLabelValues(ev.Type, string(result)).Inc()
		r.log(ev, result, err)
	}()

	err = fn(ctx, ev)
	switch {
	case err == nil:
		return ResultOK, nil
	case errors.Is(err, ErrMalformed), errors.Is(err, model.ErrInvalidRecord):
		return ResultMalformed, err
	default:
		return ResultFailed, err
	}
}

func (r *Router) log(ev *Event, result Result, err error) {
	fields := []zap.Field{
		zap.String("type", ev.Type),
		zap.String("id", ev.ID),
		zap.String("result", string(result)),
	}
	if err != nil {
		r.logger.Warn("事件处理未成功", append(fields, zap.Error(err))...)
		return
	}
	r.logger.Info("事件处理完成", fields...)
}

// ═══════════════════════════════════════════════════════════
// 触发器绑定
// ═══════════════════════════════════════════════════════════

// NewTriggerRouter 将全部记录变更事件绑定到 TriggerService
func NewTriggerRouter(svc service.TriggerService, logger *zap.Logger) *Router {
	r := NewRouter(logger)

	r.Handle(TypeUserCreated, func(ctx context.Context, ev *Event) error {
		var p model.Profile
		if err := ev.Bind(&p); err != nil {
			return err
		}
		return svc.UserCreated(ctx, &p)
	})

	r.Handle(TypeChatCreated, func(ctx context.Context, ev *Event) error {
		var chat model.Chat
		if err := ev.Bind(&chat); err != nil {
			return err
		}
		if chat.ChatID == "" {
			chat.ChatID = ev.Params.Chat
		}
		return svc.ChatCreated(ctx, &chat)
	})

	r.Handle(TypeMessageCreated, func(ctx context.Context, ev *Event) error {
		var msg model.ChatMessage
		if err := ev.Bind(&msg); err != nil {
			return err
		}
		if msg.ChatID == "" {
			msg.ChatID = ev.Params.Chat
		}
		return svc.MessageCreated(ctx, &msg)
	})

	r.Handle(TypeFeedbackCreated, func(ctx context.Context, ev *Event) error {
		var fb model.Feedback
		if err := ev.Bind(&fb); err != nil {
			return err
		}
		return svc.FeedbackCreated(ctx, &fb)
	})

	r.Handle(TypeRequestInCreated, func(ctx context.Context, ev *Event) error {
		var req model.Request
		if err := bindForUser(ev, &req); err != nil {
			return err
		}
		return svc.RequestReceived(ctx, ev.Params.User, &req)
	})

	r.Handle(TypeApprovedOutCreated, func(ctx context.Context, ev *Event) error {
		var approved model.ApprovedRequest
		if err := bindForUser(ev, &approved); err != nil {
			return err
		}
		return svc.RequestApproved(ctx, ev.Params.User, &approved)
	})

	for _, t := range []string{
		TypeClockInCreated,
		TypeClockOutCreated,
		TypeRequestInModified,
		TypeRequestInCanceled,
		TypeRequestOutRejected,
		TypeRequestOutModified,
		TypeAppointmentModified,
		TypeAppointmentCanceled,
	} {
		r.Handle(t, func(ctx context.Context, ev *Event) error {
			return svc.NotImplemented(ctx, ev.Type)
		})
	}

	return r
}

func bindForUser(ev *Event, v any) error {
	if ev.Params.User == "" {
		return fmt.Errorf("%w: %s 缺少 params.user", ErrMalformed, ev.Type)
	}
	return ev.Bind(v)
}
