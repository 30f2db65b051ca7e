package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"tutorbook/notifications/internal/model"
	"tutorbook/notifications/internal/notify"
	"tutorbook/notifications/internal/repository"
	"tutorbook/notifications/internal/transport"
)

// TriggerService 记录变更触发的后台通知
// 返回的错误只用于记录，调用方不重试
type TriggerService interface {
	// UserCreated 新用户：欢迎邮件 + 短信
	UserCreated(ctx context.Context, profile *model.Profile) error
	// ChatCreated 新会话：推送 + 短信给除创建者外的成员
	ChatCreated(ctx context.Context, chat *model.Chat) error
	// MessageCreated 新消息：推送 + 短信给除发送者外的成员
	MessageCreated(ctx context.Context, msg *model.ChatMessage) error
	// FeedbackCreated 新反馈：短信给管理员
	FeedbackCreated(ctx context.Context, feedback *model.Feedback) error
	// RequestReceived 导师收到新请求：短信 + 邮件
	RequestReceived(ctx context.Context, userKey string, req *model.Request) error
	// RequestApproved 学生的请求被批准：短信 + 邮件
	RequestApproved(ctx context.Context, userKey string, approved *model.ApprovedRequest) error
	// NotImplemented 尚未实现的触发器，记录警告后按成功返回
	NotImplemented(ctx context.Context, trigger string) error
}

type triggerService struct {
	repo       *repository.Repository
	formatter  *notify.Formatter
	dispatcher *notify.Dispatcher
	adminPhone string
	logger     *zap.Logger
}

// NewTriggerService 创建 TriggerService 实例
func NewTriggerService(
	repo *repository.Repository,
	formatter *notify.Formatter,
	dispatcher *notify.Dispatcher,
	adminPhone string,
	logger *zap.Logger,
) TriggerService {
	return &triggerService{
		repo:       repo,
		formatter:  formatter,
		dispatcher: dispatcher,
		adminPhone: adminPhone,
		logger:     logger,
	}
}

var (
	pushThenSMS  = []transport.Channel{transport.ChannelWebPush, transport.ChannelSMS}
	smsThenEmail = []transport.Channel{transport.ChannelSMS, transport.ChannelEmail}
	emailThenSMS = []transport.Channel{transport.ChannelEmail, transport.ChannelSMS}
	smsOnly      = []transport.Channel{transport.ChannelSMS}
)

// ────────────────────── UserCreated ──────────────────────

func (s *triggerService) UserCreated(ctx context.Context, profile *model.Profile) error {
	if err := profile.Validate(); err != nil {
		return err
	}

	s.logger.Info("发送欢迎通知", zap.String("name", profile.Name), zap.String("email", profile.Email))

	content, err := s.content(notify.TemplateWelcome, notify.WelcomeData{Profile: profile.Ref()})
	if err != nil {
		return err
	}
	outcome := s.dispatcher.Dispatch(ctx, profile.Ref(), emailThenSMS, content)
	return s.finish("欢迎通知", notify.Report{Outcomes: []notify.Outcome{outcome}})
}

// ────────────────────── ChatCreated ──────────────────────

func (s *triggerService) ChatCreated(ctx context.Context, chat *model.Chat) error {
	if err := chat.Validate(); err != nil {
		return err
	}

	content, err := s.content(notify.TemplateChatInvite, notify.ChatInviteData{Creator: chat.CreatedBy})
	if err != nil {
		return err
	}

	recipients := notify.ResolveChatters(chat.Chatters, chat.CreatedBy.Email)
	report := s.dispatcher.DispatchAll(ctx, recipients, pushThenSMS, func(model.ProfileRef) (notify.Content, error) {
		return content, nil
	})
	return s.finish("会话邀请", report)
}

// ────────────────────── MessageCreated ──────────────────────

func (s *triggerService) MessageCreated(ctx context.Context, msg *model.ChatMessage) error {
	if err := msg.Validate(); err != nil {
		return err
	}

	chat, err := s.repo.Chat.GetByID(ctx, msg.ChatID)
	if err != nil {
		s.logger.Error("查询会话失败", zap.String("chat_id", msg.ChatID), zap.Error(err))
		return fmt.Errorf("查询会话 %s 失败: %w", msg.ChatID, err)
	}

	content, err := s.content(notify.TemplateMessageAlert, notify.MessageAlertData{Message: *msg})
	if err != nil {
		return err
	}

	keys := notify.ResolveChatterKeys(chat.ChatterEmails, msg.SentBy.Email)
	recipients := make([]model.ProfileRef, 0, len(keys))
	for _, key := range keys {
		recipients = append(recipients, s.lookup(ctx, key))
	}

	report := s.dispatcher.DispatchAll(ctx, recipients, pushThenSMS, func(model.ProfileRef) (notify.Content, error) {
		return content, nil
	})
	return s.finish("新消息", report)
}

// ────────────────────── FeedbackCreated ──────────────────────

func (s *triggerService) FeedbackCreated(ctx context.Context, feedback *model.Feedback) error {
	if err := feedback.Validate(); err != nil {
		return err
	}
	if s.adminPhone == "" {
		s.logger.Warn("未配置反馈接收号码，丢弃反馈通知", zap.String("from", feedback.From.Name))
		return ErrNoAdminPhone
	}

	content, err := s.content(notify.TemplateFeedbackAlert, notify.FeedbackAlertData{Feedback: *feedback})
	if err != nil {
		return err
	}
	admin := model.ProfileRef{Email: "admin", Name: "admin", Phone: s.adminPhone}
	outcome := s.dispatcher.Dispatch(ctx, admin, smsOnly, content)
	return s.finish("反馈", notify.Report{Outcomes: []notify.Outcome{outcome}})
}

// ────────────────────── RequestReceived ──────────────────────

func (s *triggerService) RequestReceived(ctx context.Context, userKey string, req *model.Request) error {
	if err := req.Validate(); err != nil {
		return err
	}

	user, err := s.repo.Profile.GetByEmail(ctx, userKey)
	if err != nil {
		s.logger.Error("查询导师档案失败", zap.String("email", userKey), zap.Error(err))
		return fmt.Errorf("查询档案 %s 失败: %w", userKey, err)
	}

	content, err := s.content(notify.TemplateRequest, notify.RequestData{Request: *req})
	if err != nil {
		return err
	}
	outcome := s.dispatcher.Dispatch(ctx, user.Ref(), smsThenEmail, content)

	s.logger.Info("已发送请求通知",
		zap.String("name", user.Name),
		zap.String("email", user.Email),
		zap.String("phone", user.Phone),
	)
	return s.finish("请求", notify.Report{Outcomes: []notify.Outcome{outcome}})
}

// ────────────────────── RequestApproved ──────────────────────

func (s *triggerService) RequestApproved(ctx context.Context, userKey string, approved *model.ApprovedRequest) error {
	if err := approved.Validate(); err != nil {
		return err
	}

	user, err := s.repo.Profile.GetByEmail(ctx, userKey)
	if err != nil {
		s.logger.Error("查询学生档案失败", zap.String("email", userKey), zap.Error(err))
		return fmt.Errorf("查询档案 %s 失败: %w", userKey, err)
	}

	content, err := s.content(notify.TemplateApprovedAppointment, notify.ApprovedAppointmentData{Approved: *approved})
	if err != nil {
		return err
	}
	outcome := s.dispatcher.Dispatch(ctx, user.Ref(), smsThenEmail, content)

	s.logger.Info("已发送预约确认通知",
		zap.String("name", user.Name),
		zap.String("email", user.Email),
		zap.String("phone", user.Phone),
	)
	return s.finish("预约确认", notify.Report{Outcomes: []notify.Outcome{outcome}})
}

// ────────────────────── NotImplemented ──────────────────────

func (s *triggerService) NotImplemented(_ context.Context, trigger string) error {
	s.logger.Warn(ErrNotImplemented.Error(), zap.String("trigger", trigger))
	return nil
}

// ── 内部辅助方法 ──

func (s *triggerService) content(name notify.TemplateName, data any) (notify.Content, error) {
	rendered, err := s.formatter.Render(name, data)
	if err != nil {
		s.logger.Error("渲染通知模板失败", zap.String("template", string(name)), zap.Error(err))
		return notify.Content{}, err
	}
	return notify.Content{Template: name, Rendered: rendered}, nil
}

// lookup 查询档案以获得手机号；失败时退化为仅有主键的引用，短信通道会记为失败
func (s *triggerService) lookup(ctx context.Context, key string) model.ProfileRef {
	profile, err := s.repo.Profile.GetByEmail(ctx, key)
	if err != nil {
		s.logger.Warn("查询收件人档案失败", zap.String("email", key), zap.Error(err))
		return model.ProfileRef{Email: key}
	}
	return profile.Ref()
}

func (s *triggerService) finish(kind string, report notify.Report) error {
	err := report.Err()
	if err != nil {
		s.logger.Warn("部分通知投递失败",
			zap.String("kind", kind),
			zap.Int("recipients", len(report.Outcomes)),
			zap.Int("failures", len(report.Failures())),
		)
		return err
	}
	s.logger.Info("通知已全部送达", zap.String("kind", kind), zap.Int("recipients", len(report.Outcomes)))
	return nil
}
