package middleware

import (
	"ragtime/internal/model"
	"ragtime/internal/pkg"

	"github.com/gin-gonic/gin"
)

// PermissionRequired 当前主体缺少权限位时返回 403
func PermissionRequired(perm model.Permission) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !CurrentPrincipal(c).Can(perm) {
			pkg.Forbidden(c, "Insufficient permissions")
			return
		}
		c.Next()
	}
}

func AdminRequired() gin.HandlerFunc {
	return PermissionRequired(model.PermAdmin)
}

// LoginRequired 匿名访问返回 401
func LoginRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentPrincipal(c).IsAnonymous() {
			pkg.Unauthorized(c, "Please log in to access this page.")
			return
		}
		c.Next()
	}
}

// ConfirmedRequired 已登录但未确认邮箱的账号返回 403
func ConfirmedRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if u := CurrentUser(c); u != nil && !u.Confirmed {
			pkg.Forbidden(c, "Unconfirmed account")
			return
		}
		c.Next()
	}
}
