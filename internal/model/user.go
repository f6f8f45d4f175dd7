package model

import (
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

var ErrPasswordNotReadable = errors.New("password is not a readable attribute")

const (
	unicornifyURL     = "https://unicornify.pictures/avatar"
	DefaultAvatarSize = 128
)

type User struct {
	ID           uint64  `gorm:"primaryKey"`
	Username     string  `gorm:"uniqueIndex;size:64;not null"`
	Email        string  `gorm:"uniqueIndex;size:64;not null"`
	PasswordHash string  `gorm:"size:128"`
	RoleID       *uint64 `gorm:"index"`
	Role         *Role   `gorm:"foreignKey:RoleID"`
	Confirmed    bool    `gorm:"not null;default:false"`
	Name         string  `gorm:"size:64"`
	Location     string  `gorm:"size:64"`
	Bio          string  `gorm:"type:text"`
	LastSeen     time.Time
	AvatarHash   string `gorm:"size:32"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (User) TableName() string { return "users" }

// NewUser 构造用户：角色由调用方显式传入，头像 hash 由邮箱生成
func NewUser(username, email, password string, role *Role) (*User, error) {
	u := &User{
		Username: username,
		Email:    email,
		LastSeen: time.Now().UTC(),
	}
	u.SetRole(role)
	if email != "" {
		u.AvatarHash = u.EmailHash()
	}
	if err := u.SetPassword(password); err != nil {
		return nil, err
	}
	return u, nil
}

func (u *User) SetRole(role *Role) {
	u.Role = role
	if role != nil {
		id := role.ID
		u.RoleID = &id
		return
	}
	u.RoleID = nil
}

// Password 明文密码只写不读，调用即属编程错误
func (u *User) Password() string {
	panic(ErrPasswordNotReadable)
}

func (u *User) SetPassword(password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hash)
	return nil
}

func (u *User) VerifyPassword(password string) bool {
	if u.PasswordHash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

func (u *User) Can(perm Permission) bool {
	return u.Role != nil && u.Role.HasPermission(perm)
}

func (u *User) IsAdministrator() bool {
	return u.Can(PermAdmin)
}

func (u *User) IsAnonymous() bool { return false }

// EmailHash 小写邮箱的 md5，用作头像指纹
func (u *User) EmailHash() string {
	sum := md5.Sum([]byte(strings.ToLower(u.Email)))
	return hex.EncodeToString(sum[:])
}

// Unicornify 头像地址
func (u *User) Unicornify(size int) string {
	if size <= 0 {
		size = DefaultAvatarSize
	}
	hash := u.AvatarHash
	if hash == "" {
		hash = u.EmailHash()
	}
	return fmt.Sprintf("%s/%s?s=%d", unicornifyURL, hash, size)
}

// UpdateEmail 修改邮箱时同步头像指纹
func (u *User) UpdateEmail(email string) {
	u.Email = email
	u.AvatarHash = u.EmailHash()
}
