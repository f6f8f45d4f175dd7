package middleware

import (
	"ragtime/internal/model"

	"github.com/gin-gonic/gin"
)

const (
	ContextUserKey      = "current_user"
	ContextTokenUsedKey = "token_used"
)

// CurrentUser 未登录时返回 nil
func CurrentUser(c *gin.Context) *model.User {
	if v, ok := c.Get(ContextUserKey); ok {
		if u, ok2 := v.(*model.User); ok2 {
			return u
		}
	}
	return nil
}

// CurrentPrincipal 未登录时为匿名用户
func CurrentPrincipal(c *gin.Context) model.Principal {
	if u := CurrentUser(c); u != nil {
		return u
	}
	return model.AnonymousUser{}
}

func TokenUsed(c *gin.Context) bool {
	return c.GetBool(ContextTokenUsedKey)
}
