package pkg

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// AbortError 统一的 {"error","message"} 错误响应
func AbortError(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{
		"error":   strings.ToLower(http.StatusText(status)),
		"message": message,
	})
}

func BadRequest(c *gin.Context, message string) {
	AbortError(c, http.StatusBadRequest, message)
}

func Unauthorized(c *gin.Context, message string) {
	AbortError(c, http.StatusUnauthorized, message)
}

func Forbidden(c *gin.Context, message string) {
	AbortError(c, http.StatusForbidden, message)
}

func NotFound(c *gin.Context, message string) {
	AbortError(c, http.StatusNotFound, message)
}

func Conflict(c *gin.Context, message string) {
	AbortError(c, http.StatusConflict, message)
}
