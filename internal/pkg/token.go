package pkg

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrTokenInvalid = errors.New("token invalid")
	ErrTokenScope   = errors.New("token scope mismatch")
)

const (
	ScopeConfirm = "confirm"
	ScopeAuth    = "auth"

	ConfirmTTL = 15000 * time.Second
	AuthTTL    = 3600 * time.Second
)

// Claims confirm 令牌写 ConfirmID，auth 令牌写 UserID
type Claims struct {
	ConfirmID uint64 `json:"confirm_id,omitempty"`
	UserID    uint64 `json:"id,omitempty"`
	jwt.RegisteredClaims
}

// TokenSigner 持有签名密钥，进程启动时构造一次
type TokenSigner struct {
	secret []byte
	now    func() time.Time
}

func NewTokenSigner(secret string) *TokenSigner {
	return &TokenSigner{secret: []byte(secret), now: time.Now}
}

// Sign ttl<=0 的令牌立即过期
func (s *TokenSigner) Sign(scope string, claims Claims, ttl time.Duration) (string, error) {
	now := s.now()
	claims.RegisteredClaims = jwt.RegisteredClaims{
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		Subject:   scope,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// Parse 校验签名、过期与 scope
func (s *TokenSigner) Parse(scope, tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, ErrTokenInvalid
	}
	claims := token.Claims.(*Claims)
	if claims.Subject != scope {
		return nil, ErrTokenScope
	}
	return claims, nil
}

func (s *TokenSigner) ConfirmationToken(userID uint64, ttl time.Duration) (string, error) {
	return s.Sign(ScopeConfirm, Claims{ConfirmID: userID}, ttl)
}

func (s *TokenSigner) AuthToken(userID uint64, ttl time.Duration) (string, error) {
	return s.Sign(ScopeAuth, Claims{UserID: userID}, ttl)
}
