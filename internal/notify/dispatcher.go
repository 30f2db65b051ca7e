package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"tutorbook/notifications/internal/model"
	"tutorbook/notifications/internal/transport"
)

// Status 单通道投递状态，pending → sent | failed，不可重入
type Status string

const (
	StatusPending Status = "pending"
	StatusSent    Status = "sent"
	StatusFailed  Status = "failed"
)

// errChannelUnavailable 通道未配置
var errChannelUnavailable = errors.New("通道未配置")

// Content 发给单个收件人的内容
type Content struct {
	Template TemplateName
	Rendered
}

// Result 单通道投递结果
type Result struct {
	Channel transport.Channel `json:"channel"`
	Status  Status            `json:"status"`
	Reason  string            `json:"reason,omitempty"`
	Err     error             `json:"-"`
}

// Outcome 单个收件人在各通道上的结果
type Outcome struct {
	Recipient string   `json:"recipient"`
	Results   []Result `json:"results"`
}

// OK 所有通道都已送达
func (o Outcome) OK() bool {
	for _, r := range o.Results {
		if r.Status != StatusSent {
			return false
		}
	}
	return true
}

// Failed 返回失败的通道结果
func (o Outcome) Failed() []Result {
	var failed []Result
	for _, r := range o.Results {
		if r.Status == StatusFailed {
			failed = append(failed, r)
		}
	}
	return failed
}

// Failure 汇总视图中的一条失败记录
type Failure struct {
	Recipient string            `json:"recipient"`
	Channel   transport.Channel `json:"channel,omitempty"`
	Reason    string            `json:"reason"`
}

// Report 多个收件人的派发汇总
type Report struct {
	Outcomes []Outcome
}

// Failures 扁平化所有失败
func (r Report) Failures() []Failure {
	var out []Failure
	for _, o := range r.Outcomes {
		for _, f := range o.Failed() {
			out = append(out, Failure{Recipient: o.Recipient, Channel: f.Channel, Reason: f.Reason})
		}
	}
	return out
}

// Err 存在失败时返回聚合错误，供后台任务记录
func (r Report) Err() error {
	var errs []error
	for _, o := range r.Outcomes {
		for _, f := range o.Failed() {
			errs = append(errs, f.Err)
		}
	}
	return errors.Join(errs...)
}

// ContentFunc 为收件人生成内容；返回错误时该收件人记为失败
type ContentFunc func(recipient model.ProfileRef) (Content, error)

// Dispatcher 依次调用各通道，失败只收集不中断
type Dispatcher struct {
	senders transport.Senders
	logger  *zap.Logger
}

// NewDispatcher 创建 Dispatcher
func NewDispatcher(senders transport.Senders, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{senders: senders, logger: logger.Named("dispatch")}
}

// Dispatch 按给定顺序在每个通道上投递一次
func (d *Dispatcher) Dispatch(ctx context.Context, to model.ProfileRef, channels []transport.Channel, content Content) Outcome {
	outcome := Outcome{Recipient: to.Email, Results: make([]Result, 0, len(channels))}
	for _, ch := range channels {
		outcome.Results = append(outcome.Results, d.send(ctx, to, ch, content))
	}
	return outcome
}

// DispatchAll 对每个收件人调用 Dispatch，互不影响
func (d *Dispatcher) DispatchAll(ctx context.Context, recipients []model.ProfileRef, channels []transport.Channel, fn ContentFunc) Report {
	report := Report{Outcomes: make([]Outcome, 0, len(recipients))}
	for _, r := range recipients {
		content, err := fn(r)
		if err != nil {
			report.Outcomes = append(report.Outcomes, failedOutcome(r.Email, channels, err))
			d.logger.Error("生成通知内容失败", zap.String("recipient", r.Email), zap.Error(err))
			continue
		}
		report.Outcomes = append(report.Outcomes, d.Dispatch(ctx, r, channels, content))
	}
	return report
}

// FailedOutcome 收件人在发送前即失败（如档案查询失败）
func FailedOutcome(recipient string, channels []transport.Channel, err error) Outcome {
	return failedOutcome(recipient, channels, err)
}

func failedOutcome(recipient string, channels []transport.Channel, err error) Outcome {
	o := Outcome{Recipient: recipient}
	for _, ch := range channels {
		o.Results = append(o.Results, Result{Channel: ch, Status: StatusFailed, Reason: err.Error(), Err: err})
	}
	return o
}

func (d *Dispatcher) send(ctx context.Context, to model.ProfileRef, ch transport.Channel, content Content) (res Result) {
	res = Result{Channel: ch, Status: StatusPending}
	start := time.Now()

	defer func() {
		if p := recover(); p != nil {
			err := transport.Fail(ch, to.Email, fmt.Errorf("panic: %v", p))
			res = Result{Channel: ch, Status: StatusFailed, Reason: err.Error(), Err: err}
		}
		MetricsDispatchTime.WithLabelValues(string(ch)).Observe(time.Since(start).Seconds())
		d.record(to, res)
	}()

	var err error
	switch ch {
	case transport.ChannelSMS:
		body := content.SMS
		if body == "" {
			body = content.Body
		}
		if d.senders.SMS == nil {
			err = transport.Fail(ch, to.Phone, errChannelUnavailable)
			break
		}
		err = d.senders.SMS.SendSMS(ctx, to.Phone, body)
	case transport.ChannelEmail:
		if d.senders.Email == nil {
			err = transport.Fail(ch, to.Email, errChannelUnavailable)
			break
		}
		err = d.senders.Email.SendEmail(ctx, to, transport.Email{
			Template: string(content.Template),
			Subject:  content.Subject,
			Body:     content.Body,
		})
	case transport.ChannelWebPush:
		if d.senders.WebPush == nil {
			err = transport.Fail(ch, to.Email, errChannelUnavailable)
			break
		}
		err = d.senders.WebPush.SendPush(ctx, to.Email, content.Title, content.Body)
	default:
		err = transport.Fail(ch, to.Email, fmt.Errorf("未知通道 %q", ch))
	}

	if err != nil {
		return Result{Channel: ch, Status: StatusFailed, Reason: err.Error(), Err: err}
	}
	return Result{Channel: ch, Status: StatusSent}
}

func (d *Dispatcher) record(to model.ProfileRef, res Result) {
	if res.Status == StatusSent {
		MetricsSent.WithLabelValues(string(res.Channel)).Inc()
		d.logger.Debug("通知已送达",
			zap.String("channel", string(res.Channel)),
			zap.String("recipient", to.Email),
		)
		return
	}
	MetricsFailed.WithLabelValues(string(res.Channel)).Inc()
	d.logger.Warn("通知投递失败",
		zap.String("channel", string(res.Channel)),
		zap.String("recipient", to.Email),
		zap.Error(res.Err),
	)
}
