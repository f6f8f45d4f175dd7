package handler

import (
	"net/http"

	"ragtime/internal/logger"
	"ragtime/internal/middleware"
	"ragtime/internal/repository/rdb"
	"ragtime/internal/service"

	"github.com/gin-gonic/gin"
)

// UserHandler /auth 下的注册、登录与账户维护
type UserHandler struct {
	store *rdb.Store
	svc   *service.UserService
}

// RegisterReq 注册请求体
type RegisterReq struct {
	Username string `json:"username" binding:"required,max=64"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LoginReq struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type ChangeEmailReq struct {
	OldEmail string `json:"old_email" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
}

type ChangePasswordReq struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

func NewUserHandler(store *rdb.Store, svc *service.UserService) *UserHandler {
	return &UserHandler{store: store, svc: svc}
}

// confirmLink 生成绝对地址的确认链接
func confirmLink(c *gin.Context) service.LinkFunc {
	scheme := "http"
	if c.Request.TLS != nil || c.GetHeader("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}
	host := c.Request.Host
	return func(token string) string {
		return scheme + "://" + host + "/auth/confirm/" + token
	}
}

// Register 注册接口
func (h *UserHandler) Register(c *gin.Context) {
	var req RegisterReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid params"})
		return
	}

	in := service.RegisterInput{Username: req.Username, Email: req.Email, Password: req.Password}
	if _, err := h.svc.Register(c.Request.Context(), in, confirmLink(c)); err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"msg": "Thanks for registering!", "redirect": "/auth/login"})
}

// Login 登录接口，成功后写入会话
func (h *UserHandler) Login(c *gin.Context) {
	var req LoginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid params"})
		return
	}

	user, err := h.svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		abortWithError(c, err)
		return
	}
	if err := middleware.SetLoginUser(c, user); err != nil {
		abortWithError(c, err)
		return
	}

	next := c.Query("next")
	if next == "" || next[0] != '/' {
		next = "/"
	}
	c.JSON(http.StatusOK, gin.H{"msg": "ok", "redirect": next})
}

func (h *UserHandler) Logout(c *gin.Context) {
	if err := middleware.ClearSession(c); err != nil {
		logger.Warningf("clear session: %v", err)
	}
	c.JSON(http.StatusOK, gin.H{"msg": "You have been logged out successfully.", "redirect": "/"})
}

// Confirm 校验确认令牌，提交后账户生效
func (h *UserHandler) Confirm(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user.Confirmed {
		c.JSON(http.StatusOK, gin.H{"msg": "You are already confirmed.", "redirect": "/"})
		return
	}

	ctx := c.Request.Context()
	uow, err := h.store.Begin(ctx)
	if err != nil {
		abortWithError(c, err)
		return
	}
	defer uow.Rollback()
	if !h.svc.Confirm(ctx, uow, user, c.Param("token")) {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "Whoops, that confirmation link either expired or isn't valid.", "redirect": "/"})
		return
	}
	if err := uow.Commit(); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "You have confirmed your account! Thank you.", "redirect": "/"})
}

func (h *UserHandler) Unconfirmed(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil || user.Confirmed {
		c.JSON(http.StatusOK, gin.H{"redirect": "/"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"msg":      "You have not confirmed your account yet.",
		"username": user.Username,
		"email":    user.Email,
	})
}

func (h *UserHandler) ResendConfirmation(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if err := h.svc.ResendConfirmation(c.Request.Context(), user, confirmLink(c)); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"msg":      "Message sent! Check your email for the new confirmation link.",
		"redirect": "/auth/unconfirmed",
	})
}

func (h *UserHandler) ChangeEmail(c *gin.Context) {
	var req ChangeEmailReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid params"})
		return
	}
	if err := h.svc.ChangeEmail(c.Request.Context(), middleware.CurrentUser(c), req.OldEmail, req.Email); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "You have successfully changed your email address.", "redirect": "/auth/login"})
}

func (h *UserHandler) ChangePassword(c *gin.Context) {
	var req ChangePasswordReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid params"})
		return
	}
	if err := h.svc.ChangePassword(c.Request.Context(), middleware.CurrentUser(c), req.OldPassword, req.NewPassword); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "Your password has been changed successfully.", "redirect": "/auth/login"})
}
