package handler

import (
	"errors"
	"net/http"
	"strconv"

	"ragtime/internal/logger"
	"ragtime/internal/model"
	"ragtime/internal/pkg"
	"ragtime/internal/repository/rdb"
	"ragtime/internal/service"

	"github.com/gin-gonic/gin"
)

const conflictMessage = "username or email already in use"

// abortWithError 把服务层错误映射为 HTTP 状态码
func abortWithError(c *gin.Context, err error) {
	var verr *model.ValidationError
	switch {
	case errors.As(err, &verr):
		pkg.BadRequest(c, verr.Message)
	case errors.Is(err, service.ErrForbidden):
		pkg.Forbidden(c, "Insufficient permissions")
	case errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrCompositionNotFound),
		errors.Is(err, service.ErrRoleNotFound):
		pkg.NotFound(c, err.Error())
	case errors.Is(err, service.ErrUsernameTaken):
		pkg.Conflict(c, err.Error())
	case errors.Is(err, rdb.ErrConflict):
		// 驱动原文含表结构，不外泄
		pkg.Conflict(c, conflictMessage)
	case errors.Is(err, service.ErrInvalidCredentials):
		pkg.Unauthorized(c, "Invalid credentials.")
	case errors.Is(err, service.ErrResendTooSoon):
		pkg.AbortError(c, http.StatusTooManyRequests, err.Error())
	case errors.Is(err, service.ErrCannotUnfollowSelf),
		errors.Is(err, service.ErrInvalidUser),
		errors.Is(err, service.ErrWrongPassword),
		errors.Is(err, service.ErrEmailMismatch),
		errors.Is(err, service.ErrAlreadyConfirmed):
		pkg.BadRequest(c, err.Error())
	default:
		logger.Errorf("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		pkg.AbortError(c, http.StatusInternalServerError, "internal server error")
	}
}

func pageParam(c *gin.Context) int {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

func idParam(c *gin.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		pkg.NotFound(c, "resource not found")
		return 0, false
	}
	return id, true
}

func cursorParams(c *gin.Context) (uint64, int) {
	cursor, _ := strconv.ParseUint(c.Query("cursor"), 10, 64)
	limit, _ := strconv.Atoi(c.Query("limit"))
	return cursor, limit
}
