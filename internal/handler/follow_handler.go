package handler

import (
	"errors"
	"net/http"

	"ragtime/internal/middleware"
	"ragtime/internal/model"
	"ragtime/internal/repository/rdb"
	"ragtime/internal/service"

	"github.com/gin-gonic/gin"
)

type FollowHandler struct {
	store   *rdb.Store
	users   *service.UserService
	svc     *service.FollowService
	perPage int
}

func NewFollowHandler(store *rdb.Store, users *service.UserService, svc *service.FollowService, perPage int) *FollowHandler {
	return &FollowHandler{store: store, users: users, svc: svc, perPage: perPage}
}

func (h *FollowHandler) target(c *gin.Context) (*model.User, bool) {
	user, err := h.users.FindByUsername(c.Request.Context(), c.Param("username"))
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"msg": "That is not a valid user.", "redirect": "/"})
			return nil, false
		}
		abortWithError(c, err)
		return nil, false
	}
	return user, true
}

// Follow 关注接口
func (h *FollowHandler) Follow(c *gin.Context) {
	h.change(c, true)
}

// Unfollow 取消关注接口
func (h *FollowHandler) Unfollow(c *gin.Context) {
	h.change(c, false)
}

func (h *FollowHandler) change(c *gin.Context, follow bool) {
	target, ok := h.target(c)
	if !ok {
		return
	}
	me := middleware.CurrentUser(c)
	profile := "/user/" + target.Username
	ctx := c.Request.Context()

	following, err := h.svc.IsFollowing(ctx, me, target)
	if err != nil {
		abortWithError(c, err)
		return
	}
	if follow && following {
		c.JSON(http.StatusOK, gin.H{"msg": "Looks like you are already following that user.", "redirect": profile, "changed": false})
		return
	}
	if !follow && !following {
		c.JSON(http.StatusOK, gin.H{"msg": "Looks like you aren't already following that user.", "redirect": profile, "changed": false})
		return
	}

	uow, err := h.store.Begin(ctx)
	if err != nil {
		abortWithError(c, err)
		return
	}
	defer uow.Rollback()
	var changed bool
	if follow {
		changed, err = h.svc.Follow(ctx, uow, me, target)
	} else {
		changed, err = h.svc.Unfollow(ctx, uow, me, target)
	}
	if err != nil {
		abortWithError(c, err)
		return
	}
	if err := uow.Commit(); err != nil {
		abortWithError(c, err)
		return
	}

	msg := "You are now following " + target.Username
	if !follow {
		msg = "You have successfully unfollowed " + target.Username + "."
	}
	c.JSON(http.StatusOK, gin.H{"msg": msg, "redirect": profile, "changed": changed})
}

// Followers 获取粉丝列表
func (h *FollowHandler) Followers(c *gin.Context) {
	user, ok := h.target(c)
	if !ok {
		return
	}
	cursor, _ := cursorParams(c)
	rows, next, err := h.svc.ListFollowers(c.Request.Context(), user.ID, cursor, h.perPage)
	if err != nil {
		abortWithError(c, err)
		return
	}
	resp := followListJSON(rows, true, next)
	resp["title"] = "Followers of " + user.Username
	c.JSON(http.StatusOK, resp)
}

// Following 获取关注列表
func (h *FollowHandler) Following(c *gin.Context) {
	user, ok := h.target(c)
	if !ok {
		return
	}
	cursor, _ := cursorParams(c)
	rows, next, err := h.svc.ListFollowings(c.Request.Context(), user.ID, cursor, h.perPage)
	if err != nil {
		abortWithError(c, err)
		return
	}
	resp := followListJSON(rows, false, next)
	resp["title"] = "Following " + user.Username
	c.JSON(http.StatusOK, resp)
}
