package middleware

import (
	"net/http"
	"strings"

	"ragtime/internal/logger"
	"ragtime/internal/model"
	"ragtime/internal/service"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

const (
	SessionName    = "ragtime_session"
	sessionUserKey = "user_id"
)

func SetLoginUser(c *gin.Context, user *model.User) error {
	s := sessions.Default(c)
	s.Set(sessionUserKey, user.ID)
	return s.Save()
}

func ClearSession(c *gin.Context) error {
	s := sessions.Default(c)
	s.Clear()
	s.Options(sessions.Options{
		Path:   "/",
		MaxAge: -1,
	})
	return s.Save()
}

// SessionUser 从会话加载当前用户并刷新 last_seen；未确认用户只能访问 /auth
func SessionUser(users *service.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := sessions.Default(c).Get(sessionUserKey).(uint64)
		if !ok || id == 0 {
			c.Next()
			return
		}
		ctx := c.Request.Context()
		user, err := users.FindByID(ctx, id)
		if err != nil {
			// 用户已不存在，按匿名处理
			c.Next()
			return
		}
		c.Set(ContextUserKey, user)
		if err := users.Ping(ctx, user); err != nil {
			logger.Warningf("ping user %d: %v", user.ID, err)
		}
		if !user.Confirmed && !strings.HasPrefix(c.Request.URL.Path, "/auth") {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"msg":      "Please confirm your account.",
				"redirect": "/auth/unconfirmed",
			})
			return
		}
		c.Next()
	}
}
