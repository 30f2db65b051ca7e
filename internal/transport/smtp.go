package transport

import (
	"context"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"tutorbook/notifications/config"
	"tutorbook/notifications/internal/model"
)

type sendMailFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// SMTPSender 通过 SMTP 发送纯文本邮件
type SMTPSender struct {
	addr     string
	auth     smtp.Auth
	from     string
	sendMail sendMailFunc
}

// NewSMTPSender 创建 SMTPSender
func NewSMTPSender(cfg *config.MailConfig) *SMTPSender {
	var auth smtp.Auth
	if cfg.Username != "" {
		auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.SMTPHost)
	}
	return &SMTPSender{
		addr:     net.JoinHostPort(cfg.SMTPHost, strconv.Itoa(cfg.SMTPPort)),
		auth:     auth,
		from:     cfg.From,
		sendMail: smtp.SendMail,
	}
}

// SendEmail 发送邮件；net/smtp 不支持 context，仅在发送前检查取消
func (s *SMTPSender) SendEmail(ctx context.Context, to model.ProfileRef, email Email) error {
	if to.Email == "" {
		return Fail(ChannelEmail, to.Email, ErrNoDestination)
	}
	if err := ctx.Err(); err != nil {
		return Fail(ChannelEmail, to.Email, err)
	}

	msg := buildMessage(s.from, to, email, time.Now())
	err := s.sendMail(s.addr, s.auth, s.from, []string{to.Email}, msg)
	return Fail(ChannelEmail, to.Email, err)
}

func buildMessage(from string, to model.ProfileRef, email Email, now time.Time) []byte {
	var b strings.Builder
	recipient := to.Email
	if to.Name != "" {
		recipient = fmt.Sprintf("%q <%s>", to.Name, to.Email)
	}
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", recipient)
	fmt.Fprintf(&b, "Subject: %s\r\n", email.Subject)
	fmt.Fprintf(&b, "Date: %s\r\n", now.Format(time.RFC1123Z))
	if email.Template != "" {
		fmt.Fprintf(&b, "X-Template: %s\r\n", email.Template)
	}
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(strings.ReplaceAll(email.Body, "\n", "\r\n"))
	return []byte(b.String())
}
