// Package notify 通知核心：文案渲染、收件人解析与多通道派发。
package notify

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"text/template"
	"unicode"
	"unicode/utf8"

	"tutorbook/notifications/internal/model"
)

// TemplateName 文案模板名
type TemplateName string

const (
	TemplateWelcome             TemplateName = "welcome"
	TemplateRequest             TemplateName = "request"
	TemplateApprovedAppointment TemplateName = "approved-appointment"
	TemplateChatInvite          TemplateName = "chat-invite"
	TemplateMessageAlert        TemplateName = "message-alert"
	TemplateFeedbackAlert       TemplateName = "feedback-alert"
	TemplateAppointmentReminder TemplateName = "appointment-reminder"
)

// ErrUnknownTemplate 模板不存在
var ErrUnknownTemplate = errors.New("未知的通知模板")

// Rendered 渲染结果
// Subject 邮件标题；Title 推送标题；Body 邮件正文与推送正文；SMS 短信正文
type Rendered struct {
	Subject string
	Title   string
	Body    string
	SMS     string
}

// ── 模板数据 ──

type WelcomeData struct {
	Profile model.ProfileRef
}

type RequestData struct {
	Request model.Request
}

type ApprovedAppointmentData struct {
	Approved model.ApprovedRequest
}

type ChatInviteData struct {
	Creator model.ProfileRef
}

type MessageAlertData struct {
	Message model.ChatMessage
}

type FeedbackAlertData struct {
	Feedback model.Feedback
}

type AppointmentReminderData struct {
	Supervisor  model.ProfileRef
	Appointment model.Appointment
}

// ── 语法辅助 ──

// Pronoun 按性别返回物主代词，仅精确匹配 Male / Female
func Pronoun(gender string) string {
	switch gender {
	case model.GenderMale:
		return "his"
	case model.GenderFemale:
		return "her"
	default:
		return "their"
	}
}

// TitleCase 仅将首字符大写，其余保持不变
func TitleCase(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

// FirstName 取姓名中第一个空格之前的部分
func FirstName(name string) string {
	if i := strings.IndexByte(name, ' '); i >= 0 {
		return name[:i]
	}
	return name
}

// roleNoun 请求中被请求方的身份，缺省视为 tutor
func roleNoun(userType string) string {
	if userType == "" {
		return "tutor"
	}
	return strings.ToLower(userType)
}

// ── 模板定义 ──

var templateSources = map[TemplateName]string{
	TemplateWelcome: `
{{define "subject"}}Welcome to {{appName}}{{end}}
{{define "body"}}Hi {{firstName .Profile.Name}},

Welcome to {{appName}}! You can manage your tutoring requests, appointments and messages from your dashboard at {{appURL}}.{{end}}
{{define "sms"}}Welcome to {{appName}}! This is how you'll receive SMS notifications. To turn them off, go to settings and toggle SMS notifications off.{{end}}`,

	TemplateRequest: `
{{define "summary"}}{{.Request.FromUser.Name}} wants you as a {{roleNoun .Request.ToUser.Type}} for {{.Request.Subject}}. Log into your {{appName}} dashboard ({{appURL}}) to approve or modify this request.{{end}}
{{define "subject"}}New request from {{.Request.FromUser.Name}}{{end}}
{{define "title"}}Request from {{.Request.FromUser.Name}}{{end}}
{{define "body"}}{{template "summary" .}}{{end}}
{{define "sms"}}{{template "summary" .}}{{end}}`,

	TemplateApprovedAppointment: `
{{define "summary"}}{{with .Approved}}{{.ApprovedBy.Name}} approved your lesson request. You now have tutoring appointments for {{.For.Subject}} with {{firstName .For.ToUser.Name}} on {{.For.Time.Day}}s at the {{.For.Location.Name}} from {{.For.Time.From}} until {{.For.Time.To}}.{{end}}{{end}}
{{define "subject"}}Your {{.Approved.For.Subject}} appointments are confirmed{{end}}
{{define "title"}}Request approved{{end}}
{{define "body"}}{{template "summary" .}}{{end}}
{{define "sms"}}{{template "summary" .}}{{end}}`,

	TemplateChatInvite: `
{{define "summary"}}{{.Creator.Name}} wants to chat with you. Log into {{appName}} ({{appURL}}/messages) to respond to {{pronoun .Creator.Gender}} messages.{{end}}
{{define "title"}}Chat with {{.Creator.Name}}{{end}}
{{define "body"}}{{template "summary" .}}{{end}}
{{define "sms"}}{{template "summary" .}}{{end}}`,

	TemplateMessageAlert: `
{{define "title"}}Message from {{.Message.SentBy.Name}}{{end}}
{{define "body"}}{{.Message.Message}}{{end}}
{{define "sms"}}New message from {{firstName .Message.SentBy.Name}}: {{.Message.Message}}{{end}}`,

	TemplateFeedbackAlert: `
{{define "sms"}}Feedback from {{.Feedback.From.Name}}: {{.Feedback.Message}}{{end}}`,

	TemplateAppointmentReminder: `
{{define "sms"}}{{.Supervisor.Name}} wanted to remind you that you have a tutoring session for {{.Appointment.Subject}} in the {{.Appointment.Location.Name}} on {{.Appointment.Time.Day}} at {{.Appointment.Time.From}}.{{end}}`,
}

// Formatter 纯函数式文案渲染器，无 I/O
type Formatter struct {
	templates map[TemplateName]*template.Template
}

// NewFormatter 解析全部模板；appName / appURL 来自配置
func NewFormatter(appName, appURL string) (*Formatter, error) {
	appURL = strings.TrimRight(appURL, "/")
	funcs := template.FuncMap{
		"pronoun":   Pronoun,
		"titleCase": TitleCase,
		"firstName": FirstName,
		"roleNoun":  roleNoun,
		"appName":   func() string { return appName },
		"appURL":    func() string { return appURL },
	}

	f := &Formatter{templates: make(map[TemplateName]*template.Template, len(templateSources))}
	for name, src := range templateSources {
		t, err := template.New(string(name)).Funcs(funcs).Parse(src)
		if err != nil {
			return nil, fmt.Errorf("解析模板 %s 失败: %w", name, err)
		}
		f.templates[name] = t
	}
	return f, nil
}

// MustFormatter 同 NewFormatter，解析失败时 panic；模板为编译期常量
func MustFormatter(appName, appURL string) *Formatter {
	f, err := NewFormatter(appName, appURL)
	if err != nil {
		panic(err)
	}
	return f
}

// Render 渲染指定模板
func (f *Formatter) Render(name TemplateName, data any) (Rendered, error) {
	t, ok := f.templates[name]
	if !ok {
		return Rendered{}, fmt.Errorf("%w: %s", ErrUnknownTemplate, name)
	}

	var out Rendered
	parts := []struct {
		block string
		dst   *string
	}{
		{"subject", &out.Subject},
		{"title", &out.Title},
		{"body", &out.Body},
		{"sms", &out.SMS},
	}
	for _, p := range parts {
		if t.Lookup(p.block) == nil {
			continue
		}
		var buf bytes.Buffer
		if err := t.ExecuteTemplate(&buf, p.block, data); err != nil {
			return Rendered{}, fmt.Errorf("渲染模板 %s/%s 失败: %w", name, p.block, err)
		}
		*p.dst = buf.String()
	}
	return out, nil
}
