package middleware

import (
	"strings"

	"ragtime/internal/pkg"
	"ragtime/internal/service"

	"github.com/gin-gonic/gin"
)

// APIAuth 支持 Basic email:password、Basic token:（空密码）和 Bearer token
func APIAuth(users *service.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		credential, password, ok := c.Request.BasicAuth()
		if !ok {
			authHeader := c.GetHeader("Authorization")
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || parts[0] != "Bearer" {
				pkg.Unauthorized(c, "Invalid credentials.")
				return
			}
			credential, password = parts[1], ""
		}
		if credential == "" {
			pkg.Unauthorized(c, "Invalid credentials.")
			return
		}

		if password == "" {
			user := users.VerifyAuthToken(ctx, credential)
			if user == nil {
				pkg.Unauthorized(c, "Invalid credentials.")
				return
			}
			c.Set(ContextUserKey, user)
			c.Set(ContextTokenUsedKey, true)
		} else {
			user, err := users.Login(ctx, credential, password)
			if err != nil {
				pkg.Unauthorized(c, "Invalid credentials.")
				return
			}
			c.Set(ContextUserKey, user)
			c.Set(ContextTokenUsedKey, false)
		}
		c.Next()
	}
}
