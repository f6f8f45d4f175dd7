package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ragtime/internal/logger"
	"ragtime/internal/model"
	"ragtime/internal/pkg"
	"ragtime/internal/repository/rdb"
	"ragtime/internal/repository/redis"
)

// LinkFunc 把确认令牌变成可点击的外部链接
type LinkFunc func(token string) string

type UserService struct {
	store  *rdb.Store
	signer *pkg.TokenSigner
	tokens *redis.TokenRepository
	policy RolePolicy
	email  *EmailService
	now    func() time.Time
}

func NewUserService(store *rdb.Store, signer *pkg.TokenSigner, tokens *redis.TokenRepository, policy RolePolicy, email *EmailService) *UserService {
	return &UserService{
		store:  store,
		signer: signer,
		tokens: tokens,
		policy: policy,
		email:  email,
		now:    time.Now,
	}
}

func (s *UserService) users() *rdb.UserRepository {
	return &rdb.UserRepository{DB: s.store.DB}
}

type RegisterInput struct {
	Username string
	Email    string
	Password string
}

// Register 创建用户及其自关注边并提交，然后发送欢迎/确认邮件
func (s *UserService) Register(ctx context.Context, in RegisterInput, link LinkFunc) (*model.User, error) {
	var user *model.User
	err := s.store.Transaction(ctx, func(uow *rdb.UnitOfWork) error {
		taken, err := uow.Users().UsernameTaken(ctx, in.Username)
		if err != nil {
			return err
		}
		if taken {
			return ErrUsernameTaken
		}
		role, err := s.policy.ResolveRole(ctx, uow.Roles(), in.Username)
		if err != nil {
			return err
		}
		user, err = model.NewUser(in.Username, in.Email, in.Password, role)
		if err != nil {
			return err
		}
		if err := uow.Users().Create(ctx, user); err != nil {
			return err
		}
		_, err = uow.Follows().Follow(ctx, user.ID, user.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	logger.Infof("user registered id=%d username=%s", user.ID, user.Username)

	if s.email != nil {
		token, err := s.GenerateConfirmationToken(user, pkg.ConfirmTTL)
		if err != nil {
			return user, fmt.Errorf("generate confirmation token: %w", err)
		}
		s.email.SendRegistration(ctx, user, link(token))
	}
	return user, nil
}

// Login 邮箱 + 密码
func (s *UserService) Login(ctx context.Context, email, password string) (*model.User, error) {
	user, err := s.users().FindByEmail(ctx, email)
	if errors.Is(err, rdb.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !user.VerifyPassword(password) {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

func (s *UserService) FindByID(ctx context.Context, id uint64) (*model.User, error) {
	user, err := s.users().FindByID(ctx, id)
	if errors.Is(err, rdb.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	return user, err
}

func (s *UserService) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	user, err := s.users().FindByUsername(ctx, username)
	if errors.Is(err, rdb.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	return user, err
}

func (s *UserService) CountCompositions(ctx context.Context, u *model.User) (int64, error) {
	return s.users().CountCompositions(ctx, u.ID)
}

func (s *UserService) GenerateConfirmationToken(u *model.User, ttl time.Duration) (string, error) {
	return s.signer.ConfirmationToken(u.ID, ttl)
}

// Confirm 校验失败一律返回 false；成功时只在工作单元中暂存 confirmed=true，由调用方提交
func (s *UserService) Confirm(ctx context.Context, uow *rdb.UnitOfWork, u *model.User, token string) bool {
	claims, err := s.signer.Parse(pkg.ScopeConfirm, token)
	if err != nil {
		return false
	}
	if u.ID == 0 || claims.ConfirmID != u.ID {
		return false
	}
	u.Confirmed = true
	if err := uow.Users().Save(ctx, u); err != nil {
		logger.Warningf("stage confirmation for user %d: %v", u.ID, err)
		u.Confirmed = false
		return false
	}
	return true
}

// ResendConfirmation 冷却期内拒绝重复发送
func (s *UserService) ResendConfirmation(ctx context.Context, u *model.User, link LinkFunc) error {
	if u.Confirmed {
		return ErrAlreadyConfirmed
	}
	if s.tokens != nil {
		ok, err := s.tokens.AcquireResend(ctx, u.ID)
		if err != nil {
			return err
		}
		if !ok {
			return ErrResendTooSoon
		}
	}
	token, err := s.GenerateConfirmationToken(u, pkg.ConfirmTTL)
	if err != nil {
		return err
	}
	if s.email == nil {
		return nil
	}
	return s.email.SendConfirmation(ctx, u, link(token))
}

// GenerateAuthToken 签发 API 令牌并登记到 redis
func (s *UserService) GenerateAuthToken(ctx context.Context, u *model.User, ttl time.Duration) (string, error) {
	token, err := s.signer.AuthToken(u.ID, ttl)
	if err != nil {
		return "", err
	}
	if s.tokens != nil {
		if err := s.tokens.AddUserToken(ctx, u.ID, token, ttl); err != nil {
			return "", err
		}
	}
	return token, nil
}

// VerifyAuthToken 任意失败都返回 nil
func (s *UserService) VerifyAuthToken(ctx context.Context, token string) *model.User {
	claims, err := s.signer.Parse(pkg.ScopeAuth, token)
	if err != nil || claims.UserID == 0 {
		return nil
	}
	if s.tokens != nil && !s.tokens.IsActive(ctx, claims.UserID, token) {
		return nil
	}
	user, err := s.users().FindByID(ctx, claims.UserID)
	if err != nil {
		return nil
	}
	return user
}

func (s *UserService) RevokeAuthToken(ctx context.Context, u *model.User) error {
	if s.tokens == nil {
		return nil
	}
	return s.tokens.DeleteUserToken(ctx, u.ID)
}

// Ping 刷新最近活跃时间
func (s *UserService) Ping(ctx context.Context, u *model.User) error {
	u.LastSeen = s.now().UTC()
	return s.users().UpdateLastSeen(ctx, u)
}

// ChangePassword 登录态修改密码，成功后吊销 API 令牌
func (s *UserService) ChangePassword(ctx context.Context, u *model.User, oldPassword, newPassword string) error {
	if !u.VerifyPassword(oldPassword) {
		return ErrWrongPassword
	}
	if err := u.SetPassword(newPassword); err != nil {
		return err
	}
	if err := s.users().Save(ctx, u); err != nil {
		return err
	}
	return s.RevokeAuthToken(ctx, u)
}

func (s *UserService) ChangeEmail(ctx context.Context, u *model.User, oldEmail, newEmail string) error {
	if u.Email != oldEmail {
		return ErrEmailMismatch
	}
	u.UpdateEmail(newEmail)
	return s.users().Save(ctx, u)
}

type ProfileInput struct {
	Name     string
	Location string
	Bio      string
}

func (s *UserService) EditProfile(ctx context.Context, u *model.User, in ProfileInput) error {
	u.Name = in.Name
	u.Location = in.Location
	u.Bio = in.Bio
	return s.users().Save(ctx, u)
}

type AdminProfileInput struct {
	Username  string
	Confirmed bool
	RoleID    uint64
	ProfileInput
}

// AdminEditProfile 管理员修改任意用户资料与角色
func (s *UserService) AdminEditProfile(ctx context.Context, id uint64, in AdminProfileInput) (*model.User, error) {
	var user *model.User
	err := s.store.Transaction(ctx, func(uow *rdb.UnitOfWork) error {
		var err error
		user, err = uow.Users().FindByID(ctx, id)
		if errors.Is(err, rdb.ErrNotFound) {
			return ErrUserNotFound
		}
		if err != nil {
			return err
		}
		role, err := uow.Roles().FindByID(ctx, in.RoleID)
		if errors.Is(err, rdb.ErrNotFound) {
			return ErrRoleNotFound
		}
		if err != nil {
			return err
		}
		user.Username = in.Username
		user.Confirmed = in.Confirmed
		user.Name = in.Name
		user.Location = in.Location
		user.Bio = in.Bio
		user.SetRole(role)
		return uow.Users().Save(ctx, user)
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// MakeNewUsersUserRole 给缺少角色的用户补上默认角色，返回修复数量
func (s *UserService) MakeNewUsersUserRole(ctx context.Context) (int, error) {
	fixed := 0
	err := s.store.Transaction(ctx, func(uow *rdb.UnitOfWork) error {
		role, err := uow.Roles().FindDefault(ctx)
		if errors.Is(err, rdb.ErrNotFound) {
			return ErrRolesNotSeeded
		}
		if err != nil {
			return err
		}
		users, err := uow.Users().ListWithoutRole(ctx)
		if err != nil {
			return err
		}
		for i := range users {
			users[i].SetRole(role)
			if err := uow.Users().Save(ctx, &users[i]); err != nil {
				return err
			}
			fixed++
		}
		return nil
	})
	return fixed, err
}
