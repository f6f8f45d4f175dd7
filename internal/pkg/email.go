package pkg

import (
	"context"
	"crypto/tls"
	"fmt"
	"html"

	"ragtime/internal/logger"

	"gopkg.in/gomail.v2"
)

type SMTPConfig struct {
	Host          string
	Port          int
	Username      string // 发件人邮箱
	Password      string // 授权码/密码
	From          string // 显示的发件人，可与 Username 相同
	SubjectPrefix string
}

// Mailer 邮件发送方，测试中替换为内存实现
type Mailer interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

type SMTPMailer struct {
	cfg SMTPConfig
}

func NewSMTPMailer(cfg SMTPConfig) *SMTPMailer {
	return &SMTPMailer{cfg: cfg}
}

func (m *SMTPMailer) Send(ctx context.Context, to, subject, htmlBody string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.cfg.From)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", m.cfg.SubjectPrefix+subject)
	msg.SetBody("text/html", htmlBody)

	d := gomail.NewDialer(m.cfg.Host, m.cfg.Port, m.cfg.Username, m.cfg.Password)
	d.TLSConfig = &tls.Config{ServerName: m.cfg.Host}
	return d.DialAndSend(msg)
}

// LogMailer 未配置 SMTP 时只打日志
type LogMailer struct {
	SubjectPrefix string
}

func (m LogMailer) Send(_ context.Context, to, subject, _ string) error {
	logger.Infof("MAIL to=%s subject=%q (smtp disabled)", to, m.SubjectPrefix+subject)
	return nil
}

func WelcomeHTML(username string) string {
	return fmt.Sprintf(`<p>Hi %s,</p><p>Welcome to Ragtime!</p>`, html.EscapeString(username))
}

func ConfirmHTML(username, link string) string {
	l := html.EscapeString(link)
	return fmt.Sprintf(`<p>Hi %s,</p><p>Confirm your account by following <a href="%s">%s</a>.</p><p>The link expires in %d minutes.</p>`,
		html.EscapeString(username), l, l, int(ConfirmTTL.Minutes()))
}

func NewUserHTML(username, email string) string {
	return fmt.Sprintf(`<p>A new user has been created: <b>%s</b> (%s).</p>`, html.EscapeString(username), html.EscapeString(email))
}
