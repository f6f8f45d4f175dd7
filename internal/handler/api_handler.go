package handler

import (
	"net/http"

	"ragtime/internal/middleware"
	"ragtime/internal/model"
	"ragtime/internal/pkg"
	"ragtime/internal/repository/rdb"
	"ragtime/internal/service"

	"github.com/gin-gonic/gin"
)

// APIHandler /api/v1 下的 JSON 接口
type APIHandler struct {
	store   *rdb.Store
	users   *service.UserService
	follows *service.FollowService
	comps   *service.CompositionService
}

func NewAPIHandler(store *rdb.Store, users *service.UserService, follows *service.FollowService, comps *service.CompositionService) *APIHandler {
	return &APIHandler{store: store, users: users, follows: follows, comps: comps}
}

func (h *APIHandler) Index(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{})
}

// GetToken 只允许用密码换取令牌，不能用令牌换令牌
func (h *APIHandler) GetToken(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil || middleware.TokenUsed(c) {
		pkg.Unauthorized(c, "Invalid credentials.")
		return
	}
	token, err := h.users.GenerateAuthToken(c.Request.Context(), user, pkg.AuthTTL)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token, "expiration": int(pkg.AuthTTL.Seconds())})
}

func (h *APIHandler) RevokeToken(c *gin.Context) {
	if err := h.users.RevokeAuthToken(c.Request.Context(), middleware.CurrentUser(c)); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "token revoked"})
}

func (h *APIHandler) ListCompositions(c *gin.Context) {
	page, err := h.comps.List(c.Request.Context(), pageParam(c))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, pageJSON(page, apiPrefix+"/compositions/"))
}

func (h *APIHandler) NewComposition(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		pkg.BadRequest(c, "could not read request body")
		return
	}
	comp, err := model.CompositionFromJSON(body)
	if err != nil {
		abortWithError(c, err)
		return
	}

	ctx := c.Request.Context()
	uow, err := h.store.Begin(ctx)
	if err != nil {
		abortWithError(c, err)
		return
	}
	defer uow.Rollback()
	if err := h.comps.Create(ctx, uow, middleware.CurrentUser(c), comp); err != nil {
		abortWithError(c, err)
		return
	}
	if err := uow.Commit(); err != nil {
		abortWithError(c, err)
		return
	}

	c.Header("Location", compositionURL(comp.ID))
	c.JSON(http.StatusCreated, compositionJSON(comp))
}

func (h *APIHandler) GetComposition(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	comp, err := h.comps.Get(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, compositionJSON(comp))
}

// EditComposition 缺省字段保持原值
func (h *APIHandler) EditComposition(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	comp, err := h.comps.Get(ctx, id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	user := middleware.CurrentUser(c)
	if !service.CanModify(user, comp) {
		pkg.Forbidden(c, "Insufficient permissions")
		return
	}

	var req model.CompositionPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		pkg.BadRequest(c, "Composition payload is not valid JSON.")
		return
	}
	in := service.CompositionInput{
		ReleaseType: comp.ReleaseType,
		Title:       comp.Title,
		Description: comp.Description,
	}
	if req.ReleaseType != nil {
		in.ReleaseType = model.ReleaseType(*req.ReleaseType)
		if !in.ReleaseType.Valid() {
			pkg.BadRequest(c, "Composition release type must be 1 (single), 2 (EP) or 3 (album).")
			return
		}
	}
	if req.Title != nil {
		in.Title = *req.Title
	}
	if req.Description != nil {
		in.Description = *req.Description
	}

	uow, err := h.store.Begin(ctx)
	if err != nil {
		abortWithError(c, err)
		return
	}
	defer uow.Rollback()
	if err := h.comps.Edit(ctx, uow, user, comp, in); err != nil {
		abortWithError(c, err)
		return
	}
	if err := uow.Commit(); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, compositionJSON(comp))
}

func (h *APIHandler) userByID(c *gin.Context) (*model.User, bool) {
	id, ok := idParam(c)
	if !ok {
		return nil, false
	}
	user, err := h.users.FindByID(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, err)
		return nil, false
	}
	return user, true
}

func (h *APIHandler) GetUser(c *gin.Context) {
	user, ok := h.userByID(c)
	if !ok {
		return
	}
	count, err := h.users.CountCompositions(c.Request.Context(), user)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, userJSON(user, count))
}

func (h *APIHandler) GetUserCompositions(c *gin.Context) {
	user, ok := h.userByID(c)
	if !ok {
		return
	}
	page, err := h.comps.ListByArtist(c.Request.Context(), user, pageParam(c))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, pageJSON(page, userURL(user.ID)+"/compositions/"))
}

func (h *APIHandler) GetUserFollowed(c *gin.Context) {
	user, ok := h.userByID(c)
	if !ok {
		return
	}
	page, err := h.follows.FollowedCompositions(c.Request.Context(), user, pageParam(c), h.comps.PerPage())
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, pageJSON(page, userURL(user.ID)+"/followed/"))
}

func (h *APIHandler) GetUserFollowers(c *gin.Context) {
	user, ok := h.userByID(c)
	if !ok {
		return
	}
	cursor, limit := cursorParams(c)
	rows, next, err := h.follows.ListFollowers(c.Request.Context(), user.ID, cursor, limit)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, followListJSON(rows, true, next))
}

func (h *APIHandler) GetUserFollowing(c *gin.Context) {
	user, ok := h.userByID(c)
	if !ok {
		return
	}
	cursor, limit := cursorParams(c)
	rows, next, err := h.follows.ListFollowings(c.Request.Context(), user.ID, cursor, limit)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, followListJSON(rows, false, next))
}
