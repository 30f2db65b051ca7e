package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"tutorbook/notifications/internal/model"
)

func setupTriggerEnv() *testEnv {
	return newTestEnv(1,
		profile(tutorEmail, "Tina Tutor", tutorPhone, model.GenderFemale),
		profile(pupilEmail, "Paul Pupil", pupilPhone, model.GenderMale),
	)
}

// ── UserCreated ──

func TestTrigger_UserCreated(t *testing.T) {
	env := setupTriggerEnv()
	p := profile("new@tutorbook.app", "Nina New", "+15550004444", model.GenderFemale)

	if err := env.svc.Trigger.UserCreated(context.Background(), p); err != nil {
		t.Fatalf("UserCreated 失败: %v", err)
	}
	if len(env.senders.emails) != 1 || env.senders.emails[0] != p.Email {
		t.Errorf("期望 1 封欢迎邮件，实际 %v", env.senders.emails)
	}
	if env.senders.smsTo(p.Phone) != 1 {
		t.Errorf("期望 1 条欢迎短信，实际 %+v", env.senders.sms)
	}
}

func TestTrigger_UserCreated_NoPhone(t *testing.T) {
	env := setupTriggerEnv()
	p := profile("new@tutorbook.app", "Nina New", "", "")

	err := env.svc.Trigger.UserCreated(context.Background(), p)
	if err == nil {
		t.Fatal("缺少手机号时应返回短信失败")
	}
	if len(env.senders.emails) != 1 {
		t.Error("短信失败不应阻止邮件发送")
	}
}

func TestTrigger_UserCreated_Invalid(t *testing.T) {
	env := setupTriggerEnv()

	err := env.svc.Trigger.UserCreated(context.Background(), &model.Profile{Email: "x@y.z"})
	if !errors.Is(err, model.ErrInvalidRecord) {
		t.Errorf("期望 ErrInvalidRecord，实际: %v", err)
	}
	if env.senders.total() != 0 {
		t.Error("无效记录不应发送")
	}
}

// ── ChatCreated ──

func TestTrigger_ChatCreated_ExcludesCreator(t *testing.T) {
	env := setupTriggerEnv()
	creator := model.ProfileRef{Email: tutorEmail, Name: "Tina Tutor", Phone: tutorPhone, Gender: model.GenderFemale}
	chat := &model.Chat{
		ChatID:    "chat-1",
		CreatedBy: creator,
		Chatters: []model.ProfileRef{
			creator,
			{Email: pupilEmail, Name: "Paul Pupil", Phone: pupilPhone},
		},
	}

	if err := env.svc.Trigger.ChatCreated(context.Background(), chat); err != nil {
		t.Fatalf("ChatCreated 失败: %v", err)
	}
	if env.senders.smsTo(tutorPhone) != 0 {
		t.Error("创建者不应收到邀请")
	}
	if env.senders.smsTo(pupilPhone) != 1 {
		t.Error("成员应收到 1 条邀请短信")
	}
	if len(env.senders.pushes) != 1 || env.senders.pushes[0] != pupilEmail {
		t.Errorf("推送不符: %v", env.senders.pushes)
	}
	if !strings.Contains(env.senders.sms[0].Body, "her messages") {
		t.Errorf("文案应使用创建者的人称代词: %q", env.senders.sms[0].Body)
	}
}

// ── MessageCreated ──

func TestTrigger_MessageCreated_ExcludesSender(t *testing.T) {
	env := setupTriggerEnv()
	env.chats.chats["chat-1"] = &model.Chat{
		ChatID:        "chat-1",
		ChatterEmails: []string{tutorEmail, pupilEmail},
	}
	msg := &model.ChatMessage{
		ChatID:  "chat-1",
		SentBy:  model.ProfileRef{Email: pupilEmail, Name: "Paul Pupil"},
		Message: "See you at 3?",
	}

	if err := env.svc.Trigger.MessageCreated(context.Background(), msg); err != nil {
		t.Fatalf("MessageCreated 失败: %v", err)
	}
	if env.senders.smsTo(pupilPhone) != 0 {
		t.Error("发送者不应收到自己的消息提醒")
	}
	if env.senders.smsTo(tutorPhone) != 1 {
		t.Errorf("其他成员应收到短信: %+v", env.senders.sms)
	}
	if !strings.Contains(env.senders.sms[0].Body, "See you at 3?") {
		t.Errorf("短信应包含消息内容: %q", env.senders.sms[0].Body)
	}
}

func TestTrigger_MessageCreated_UnknownChat(t *testing.T) {
	env := setupTriggerEnv()
	msg := &model.ChatMessage{ChatID: "missing", SentBy: model.ProfileRef{Email: pupilEmail, Name: "Paul"}, Message: "hi"}

	if err := env.svc.Trigger.MessageCreated(context.Background(), msg); err == nil {
		t.Error("会话不存在时应返回错误")
	}
	if env.senders.total() != 0 {
		t.Error("不应发送任何通知")
	}
}

// ── FeedbackCreated ──

func TestTrigger_FeedbackCreated(t *testing.T) {
	env := setupTriggerEnv()
	fb := &model.Feedback{From: model.ProfileRef{Email: pupilEmail, Name: "Paul Pupil"}, Message: "Great app"}

	if err := env.svc.Trigger.FeedbackCreated(context.Background(), fb); err != nil {
		t.Fatalf("FeedbackCreated 失败: %v", err)
	}
	if env.senders.smsTo(testAdminPhone) != 1 {
		t.Errorf("管理员应收到 1 条短信: %+v", env.senders.sms)
	}
}

func TestTrigger_FeedbackCreated_NoAdminPhone(t *testing.T) {
	env := setupTriggerEnv()
	env.svc.Trigger.(*triggerService).adminPhone = ""
	fb := &model.Feedback{From: model.ProfileRef{Name: "Paul Pupil"}, Message: "Great app"}

	if err := env.svc.Trigger.FeedbackCreated(context.Background(), fb); !errors.Is(err, ErrNoAdminPhone) {
		t.Errorf("期望 ErrNoAdminPhone，实际: %v", err)
	}
	if env.senders.total() != 0 {
		t.Error("不应发送任何通知")
	}
}

// ── RequestReceived / RequestApproved ──

func testRequest() model.Request {
	return model.Request{
		FromUser: model.ProfileRef{Email: pupilEmail, Name: "Paul Pupil"},
		ToUser:   model.ProfileRef{Email: tutorEmail, Name: "Tina Tutor", Type: "Tutor"},
		Subject:  "Algebra",
		Location: model.LocationRef{ID: locationID, Name: "Gunn Library"},
		Time:     model.TimeRange{Day: "Monday", From: "3:00 PM", To: "4:00 PM"},
	}
}

func TestTrigger_RequestReceived(t *testing.T) {
	env := setupTriggerEnv()
	req := testRequest()

	if err := env.svc.Trigger.RequestReceived(context.Background(), tutorEmail, &req); err != nil {
		t.Fatalf("RequestReceived 失败: %v", err)
	}
	if env.senders.smsTo(tutorPhone) != 1 {
		t.Errorf("导师应收到 1 条短信: %+v", env.senders.sms)
	}
	if len(env.senders.emails) != 1 || env.senders.emails[0] != tutorEmail {
		t.Errorf("导师应收到 1 封邮件: %v", env.senders.emails)
	}
	if !strings.Contains(env.senders.sms[0].Body, "Paul Pupil wants you as a tutor for Algebra") {
		t.Errorf("短信文案不符: %q", env.senders.sms[0].Body)
	}
}

func TestTrigger_RequestReceived_UnknownUser(t *testing.T) {
	env := setupTriggerEnv()
	req := testRequest()

	if err := env.svc.Trigger.RequestReceived(context.Background(), "ghost@tutorbook.app", &req); err == nil {
		t.Error("档案不存在时应返回错误")
	}
	if env.senders.total() != 0 {
		t.Error("不应发送任何通知")
	}
}

func TestTrigger_RequestApproved(t *testing.T) {
	env := setupTriggerEnv()
	approved := &model.ApprovedRequest{
		For:        testRequest(),
		ApprovedBy: model.ProfileRef{Email: supEmail, Name: "Sam Supervisor"},
	}

	if err := env.svc.Trigger.RequestApproved(context.Background(), pupilEmail, approved); err != nil {
		t.Fatalf("RequestApproved 失败: %v", err)
	}
	if env.senders.smsTo(pupilPhone) != 1 || len(env.senders.emails) != 1 {
		t.Errorf("学生应收到短信与邮件: sms=%+v emails=%v", env.senders.sms, env.senders.emails)
	}
	body := env.senders.sms[0].Body
	if !strings.Contains(body, "Sam Supervisor approved your lesson request") || !strings.Contains(body, "with Tina on Mondays") {
		t.Errorf("短信文案不符: %q", body)
	}
}

// ── NotImplemented ──

func TestTrigger_NotImplemented(t *testing.T) {
	env := setupTriggerEnv()

	if err := env.svc.Trigger.NotImplemented(context.Background(), "clock_in.created"); err != nil {
		t.Errorf("未实现触发器应按成功返回，实际: %v", err)
	}
	if env.senders.total() != 0 {
		t.Error("不应发送任何通知")
	}
}
