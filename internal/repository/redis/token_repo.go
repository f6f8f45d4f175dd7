package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	ErrTokenNotFound    = errors.New("token not found")
	ErrRedisUnavailable = errors.New("redis unavailable")
	ErrTokenDeleted     = errors.New("token delete failed")
)

const (
	APITokenPrefix = "api:user:token"
	ResendPrefix   = "mail:confirm:resend"
	ResendCooldown = time.Minute
)

// TokenRepository API 令牌登记表：每个用户只保留最新签发的令牌
type TokenRepository struct {
	Client *redis.Client
}

func tokenKey(userID uint64) string {
	return fmt.Sprintf("%s:%d", APITokenPrefix, userID)
}

func (r *TokenRepository) AddUserToken(ctx context.Context, userID uint64, token string, ttl time.Duration) error {
	if err := r.Client.Set(ctx, tokenKey(userID), token, ttl).Err(); err != nil {
		return ErrRedisUnavailable
	}
	return nil
}

func (r *TokenRepository) GetUserToken(ctx context.Context, userID uint64) (string, error) {
	token, err := r.Client.Get(ctx, tokenKey(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrTokenNotFound
	}
	if err != nil {
		return "", ErrRedisUnavailable
	}
	return token, nil
}

// IsActive 令牌必须与登记的一致
func (r *TokenRepository) IsActive(ctx context.Context, userID uint64, token string) bool {
	current, err := r.GetUserToken(ctx, userID)
	return err == nil && current == token
}

func (r *TokenRepository) DeleteUserToken(ctx context.Context, userID uint64) error {
	if err := r.Client.Del(ctx, tokenKey(userID)).Err(); err != nil {
		return ErrTokenDeleted
	}
	return nil
}

// AcquireResend 确认邮件重发冷却，冷却期内返回 false
func (r *TokenRepository) AcquireResend(ctx context.Context, userID uint64) (bool, error) {
	key := fmt.Sprintf("%s:%d", ResendPrefix, userID)
	ok, err := r.Client.SetNX(ctx, key, 1, ResendCooldown).Result()
	if err != nil {
		return false, ErrRedisUnavailable
	}
	return ok, nil
}
