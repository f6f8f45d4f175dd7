package service

import (
	"context"

	"ragtime/internal/logger"
	"ragtime/internal/model"
	"ragtime/internal/pkg"
)

type EmailService struct {
	mailer     pkg.Mailer
	adminEmail string
}

func NewEmailService(mailer pkg.Mailer, adminEmail string) *EmailService {
	return &EmailService{mailer: mailer, adminEmail: adminEmail}
}

// SendWelcome 欢迎邮件
func (s *EmailService) SendWelcome(ctx context.Context, u *model.User) error {
	return s.mailer.Send(ctx, u.Email, "Welcome to Ragtime!", pkg.WelcomeHTML(u.Username))
}

// SendConfirmation 确认链接邮件
func (s *EmailService) SendConfirmation(ctx context.Context, u *model.User, link string) error {
	return s.mailer.Send(ctx, u.Email, "Confirm your account with Ragtime", pkg.ConfirmHTML(u.Username, link))
}

// SendNewUserNotice 通知管理员有新用户；未配置管理员邮箱时跳过
func (s *EmailService) SendNewUserNotice(ctx context.Context, u *model.User) error {
	if s.adminEmail == "" {
		return nil
	}
	return s.mailer.Send(ctx, s.adminEmail, "A new user has been created!", pkg.NewUserHTML(u.Username, u.Email))
}

// SendRegistration 注册后的全部邮件，失败只记录日志
func (s *EmailService) SendRegistration(ctx context.Context, u *model.User, link string) {
	if err := s.SendWelcome(ctx, u); err != nil {
		logger.Warningf("send welcome mail to %s: %v", u.Email, err)
	}
	if err := s.SendConfirmation(ctx, u, link); err != nil {
		logger.Warningf("send confirmation mail to %s: %v", u.Email, err)
	}
	if err := s.SendNewUserNotice(ctx, u); err != nil {
		logger.Warningf("send new user notice for %s: %v", u.Username, err)
	}
}
