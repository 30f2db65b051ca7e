package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"tutorbook/notifications/internal/dto"
	"tutorbook/notifications/internal/model"
	"tutorbook/notifications/internal/notify"
	"tutorbook/notifications/internal/repository"
	"tutorbook/notifications/internal/transport"
)

// ReminderService 督导批量预约提醒
type ReminderService interface {
	SendAppointmentReminders(ctx context.Context, req *dto.BulkReminderRequest) (*dto.BulkReminderResponse, error)
}

type reminderService struct {
	repo        *repository.Repository
	auth        AuthService
	formatter   *notify.Formatter
	dispatcher  *notify.Dispatcher
	concurrency int
	logger      *zap.Logger
}

// NewReminderService 创建 ReminderService 实例
func NewReminderService(
	repo *repository.Repository,
	auth AuthService,
	formatter *notify.Formatter,
	dispatcher *notify.Dispatcher,
	concurrency int,
	logger *zap.Logger,
) ReminderService {
	if concurrency < 1 {
		concurrency = 1
	}
	return &reminderService{
		repo:        repo,
		auth:        auth,
		formatter:   formatter,
		dispatcher:  dispatcher,
		concurrency: concurrency,
		logger:      logger,
	}
}

// reminderRun 单次调用的状态，不跨请求共享
type reminderRun struct {
	supervisor model.ProfileRef
	tutors     *notify.RecipientSet
	pupils     *notify.RecipientSet

	mu       sync.Mutex
	failures []notify.Failure
}

func (r *reminderRun) fail(f notify.Failure) {
	r.mu.Lock()
	r.failures = append(r.failures, f)
	r.mu.Unlock()
}

// ═══════════════════════════════════════════════════════════
// SendAppointmentReminders
// ═══════════════════════════════════════════════════════════
//
// 校验顺序：通知对象 → 督导凭证，先失败者生效
// 同一联系人在一次调用中最多收到一条短信

func (s *reminderService) SendAppointmentReminders(ctx context.Context, req *dto.BulkReminderRequest) (*dto.BulkReminderResponse, error) {
	if !req.Tutor && !req.Pupil {
		notify.MetricsBulkReminders.WithLabelValues("invalid").Inc()
		s.logger.Warn("批量提醒未指定通知对象，未发送任何通知")
		return nil, ErrInvalidRequest
	}

	claims, err := s.auth.Verify(ctx, req.Token)
	if err != nil {
		notify.MetricsBulkReminders.WithLabelValues("unauthorized").Inc()
		s.logger.Warn("批量提醒凭证无效，未发送任何通知", zap.Error(err))
		return nil, err
	}
	if !claims.Supervisor {
		notify.MetricsBulkReminders.WithLabelValues("unauthorized").Inc()
		s.logger.Warn("批量提醒凭证缺少督导权限", zap.String("email", claims.Email))
		return nil, fmt.Errorf("%w: 非督导账号", ErrUnauthorized)
	}

	supervisor, err := s.repo.Profile.GetByEmail(ctx, claims.Email)
	if err != nil {
		notify.MetricsBulkReminders.WithLabelValues("unauthorized").Inc()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: 督导档案不存在", ErrUnauthorized)
		}
		s.logger.Error("查询督导档案失败", zap.String("email", claims.Email), zap.Error(err))
		return nil, err
	}

	day := notify.TitleCase(strings.ToLower(strings.TrimSpace(req.Day)))
	appts, err := s.repo.Appointment.ListByLocationAndDay(ctx, req.Location, day)
	if err != nil {
		notify.MetricsBulkReminders.WithLabelValues("error").Inc()
		s.logger.Error("查询预约失败",
			zap.String("location", req.Location),
			zap.String("day", day),
			zap.Error(err),
		)
		return nil, err
	}

	run := &reminderRun{
		supervisor: supervisor.Ref(),
		tutors:     notify.NewRecipientSet(),
		pupils:     notify.NewRecipientSet(),
	}

	var g errgroup.Group
	g.SetLimit(s.concurrency)
	for i := range appts {
		appt := appts[i]
		if err := appt.Validate(); err != nil {
			s.logger.Warn("跳过格式无效的预约", zap.String("id", appt.AppointmentID), zap.Error(err))
			continue
		}
		g.Go(func() error {
			if req.Tutor {
				s.remind(ctx, run, run.tutors, appt, appt.For.ToUser)
			}
			if req.Pupil {
				s.remind(ctx, run, run.pupils, appt, appt.For.FromUser)
			}
			return nil
		})
	}
	_ = g.Wait()

	if appts == nil {
		appts = []model.Appointment{}
	}
	resp := &dto.BulkReminderResponse{
		Tutors:       run.tutors.Keys(),
		Pupils:       run.pupils.Keys(),
		Appointments: appts,
		Failures:     run.failures,
	}
	if resp.Failures == nil {
		resp.Failures = []notify.Failure{}
	}

	notify.MetricsBulkReminders.WithLabelValues("ok").Inc()
	s.logger.Info("批量预约提醒完成",
		zap.String("supervisor", claims.Email),
		zap.String("location", req.Location),
		zap.String("day", day),
		zap.Int("appointments", len(appts)),
		zap.Int("tutors", len(resp.Tutors)),
		zap.Int("pupils", len(resp.Pupils)),
		zap.Int("failures", len(resp.Failures)),
	)
	return resp, nil
}

// remind 认领成功后查询档案并发送提醒短信
func (s *reminderService) remind(ctx context.Context, run *reminderRun, seen *notify.RecipientSet, appt model.Appointment, party model.ProfileRef) {
	if !seen.Claim(party.Email) {
		return
	}

	profile, err := s.repo.Profile.GetByEmail(ctx, party.Email)
	if err != nil {
		s.logger.Warn("查询收件人档案失败", zap.String("email", party.Email), zap.Error(err))
		run.fail(notify.Failure{Recipient: party.Email, Channel: transport.ChannelSMS, Reason: err.Error()})
		return
	}

	rendered, err := s.formatter.Render(notify.TemplateAppointmentReminder, notify.AppointmentReminderData{
		Supervisor:  run.supervisor,
		Appointment: appt,
	})
	if err != nil {
		run.fail(notify.Failure{Recipient: party.Email, Channel: transport.ChannelSMS, Reason: err.Error()})
		return
	}

	outcome := s.dispatcher.Dispatch(ctx, profile.Ref(), []transport.Channel{transport.ChannelSMS}, notify.Content{
		Template: notify.TemplateAppointmentReminder,
		Rendered: rendered,
	})
	for _, f := range outcome.Failed() {
		run.fail(notify.Failure{Recipient: outcome.Recipient, Channel: f.Channel, Reason: f.Reason})
	}
}
