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

const (
	showFollowedCookie = "show_followed"
	showFollowedMaxAge = 30 * 24 * 60 * 60
)

// MainHandler 站点主页、个人资料与作品页
type MainHandler struct {
	store   *rdb.Store
	users   *service.UserService
	follows *service.FollowService
	comps   *service.CompositionService
	roles   *service.RoleService
}

type ProfileReq struct {
	Name     string `json:"name" binding:"max=64"`
	Location string `json:"location" binding:"max=64"`
	Bio      string `json:"bio"`
}

type AdminProfileReq struct {
	Username  string `json:"username" binding:"required,max=64"`
	Confirmed bool   `json:"confirmed"`
	Role      uint64 `json:"role" binding:"required"`
	ProfileReq
}

type CompositionReq struct {
	ReleaseType int    `json:"release_type" binding:"required,min=1,max=3"`
	Title       string `json:"title" binding:"required,max=64"`
	Description string `json:"description" binding:"required"`
}

func NewMainHandler(store *rdb.Store, users *service.UserService, follows *service.FollowService, comps *service.CompositionService, roles *service.RoleService) *MainHandler {
	return &MainHandler{store: store, users: users, follows: follows, comps: comps, roles: roles}
}

// Index 首页：登录用户可通过 cookie 切换为只看关注的人
func (h *MainHandler) Index(c *gin.Context) {
	ctx := c.Request.Context()
	user := middleware.CurrentUser(c)
	showFollowed := false
	if user != nil {
		v, _ := c.Cookie(showFollowedCookie)
		showFollowed = v != ""
	}

	var (
		page *rdb.CompositionPage
		err  error
	)
	if showFollowed {
		page, err = h.follows.FollowedCompositions(ctx, user, pageParam(c), h.comps.PerPage())
	} else {
		page, err = h.comps.List(ctx, pageParam(c))
	}
	if err != nil {
		abortWithError(c, err)
		return
	}
	resp := pageJSON(page, "/")
	resp["show_followed"] = showFollowed
	c.JSON(http.StatusOK, resp)
}

// Publish 首页表单发布作品
func (h *MainHandler) Publish(c *gin.Context) {
	p := middleware.CurrentPrincipal(c)
	if p.IsAnonymous() {
		pkg.Unauthorized(c, "You must be logged in to do that.")
		return
	}
	if !p.Can(model.PermPublish) {
		pkg.Forbidden(c, "Insufficient permissions")
		return
	}
	var req CompositionReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid params"})
		return
	}

	comp := model.NewComposition(model.ReleaseType(req.ReleaseType), req.Title, req.Description)
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
	c.JSON(http.StatusCreated, gin.H{"msg": "ok", "slug": comp.SlugString(), "redirect": "/"})
}

func (h *MainHandler) ShowAll(c *gin.Context) {
	c.SetCookie(showFollowedCookie, "", showFollowedMaxAge, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"redirect": "/"})
}

func (h *MainHandler) ShowFollowed(c *gin.Context) {
	c.SetCookie(showFollowedCookie, "1", showFollowedMaxAge, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"redirect": "/"})
}

func (h *MainHandler) ForAdmins(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"msg": "Welcome, administrator!"})
}

func (h *MainHandler) ForModerators(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"msg": "Greetings, moderator!"})
}

// User 个人主页
func (h *MainHandler) User(c *gin.Context) {
	ctx := c.Request.Context()
	user, err := h.users.FindByUsername(ctx, c.Param("username"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	page, err := h.comps.ListByArtist(ctx, user, pageParam(c))
	if err != nil {
		abortWithError(c, err)
		return
	}
	followers, err := h.follows.CountFollowers(ctx, user)
	if err != nil {
		abortWithError(c, err)
		return
	}
	following, err := h.follows.CountFollowings(ctx, user)
	if err != nil {
		abortWithError(c, err)
		return
	}

	me := middleware.CurrentUser(c)
	isFollowing, err := h.follows.IsFollowing(ctx, me, user)
	if err != nil {
		abortWithError(c, err)
		return
	}
	followsYou, err := h.follows.IsAFollower(ctx, me, user)
	if err != nil {
		abortWithError(c, err)
		return
	}

	resp := pageJSON(page, "/user/"+user.Username)
	resp["user"] = gin.H{
		"id":         user.ID,
		"username":   user.Username,
		"name":       user.Name,
		"location":   user.Location,
		"bio":        user.Bio,
		"last_seen":  user.LastSeen,
		"created_at": user.CreatedAt,
		"avatar":     user.Unicornify(256),
	}
	resp["followers"] = followers
	resp["following"] = following
	resp["is_following"] = isFollowing
	resp["follows_you"] = followsYou
	c.JSON(http.StatusOK, resp)
}

func (h *MainHandler) GetProfile(c *gin.Context) {
	user := middleware.CurrentUser(c)
	c.JSON(http.StatusOK, gin.H{"name": user.Name, "location": user.Location, "bio": user.Bio})
}

func (h *MainHandler) EditProfile(c *gin.Context) {
	var req ProfileReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid params"})
		return
	}
	user := middleware.CurrentUser(c)
	in := service.ProfileInput{Name: req.Name, Location: req.Location, Bio: req.Bio}
	if err := h.users.EditProfile(c.Request.Context(), user, in); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "You successfully updated your profile! Looks great.", "redirect": "/user/" + user.Username})
}

// GetAdminProfile 管理员编辑页的当前值与可选角色
func (h *MainHandler) GetAdminProfile(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	user, err := h.users.FindByID(ctx, id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	roles, err := h.roles.List(ctx)
	if err != nil {
		abortWithError(c, err)
		return
	}
	choices := make([]gin.H, 0, len(roles))
	for _, r := range roles {
		choices = append(choices, gin.H{"id": r.ID, "name": r.Name})
	}
	var roleID uint64
	if user.RoleID != nil {
		roleID = *user.RoleID
	}
	c.JSON(http.StatusOK, gin.H{
		"username":  user.Username,
		"confirmed": user.Confirmed,
		"role":      roleID,
		"name":      user.Name,
		"location":  user.Location,
		"bio":       user.Bio,
		"roles":     choices,
	})
}

func (h *MainHandler) AdminEditProfile(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req AdminProfileReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid params"})
		return
	}
	in := service.AdminProfileInput{
		Username:  req.Username,
		Confirmed: req.Confirmed,
		RoleID:    req.Role,
		ProfileInput: service.ProfileInput{
			Name:     req.Name,
			Location: req.Location,
			Bio:      req.Bio,
		},
	}
	user, err := h.users.AdminEditProfile(c.Request.Context(), id, in)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "You successfully updated " + user.Username + "'s profile.", "redirect": "/user/" + user.Username})
}

func (h *MainHandler) Composition(c *gin.Context) {
	comp, err := h.comps.GetBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	resp := compositionJSON(comp)
	if comp.Artist != nil {
		resp["artist"] = comp.Artist.Username
	}
	c.JSON(http.StatusOK, resp)
}

func (h *MainHandler) editable(c *gin.Context) (*model.Composition, bool) {
	comp, err := h.comps.GetBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		abortWithError(c, err)
		return nil, false
	}
	if !service.CanModify(middleware.CurrentUser(c), comp) {
		pkg.Forbidden(c, "Insufficient permissions")
		return nil, false
	}
	return comp, true
}

func (h *MainHandler) GetComposition(c *gin.Context) {
	comp, ok := h.editable(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"release_type": int(comp.ReleaseType),
		"title":        comp.Title,
		"description":  comp.Description,
	})
}

// EditComposition 修改后 slug 随标题变化
func (h *MainHandler) EditComposition(c *gin.Context) {
	comp, ok := h.editable(c)
	if !ok {
		return
	}
	var req CompositionReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid params"})
		return
	}

	ctx := c.Request.Context()
	uow, err := h.store.Begin(ctx)
	if err != nil {
		abortWithError(c, err)
		return
	}
	defer uow.Rollback()
	in := service.CompositionInput{
		ReleaseType: model.ReleaseType(req.ReleaseType),
		Title:       req.Title,
		Description: req.Description,
	}
	if err := h.comps.Edit(ctx, uow, middleware.CurrentUser(c), comp, in); err != nil {
		abortWithError(c, err)
		return
	}
	if err := uow.Commit(); err != nil {
		abortWithError(c, err)
		return
	}
	slug := comp.SlugString()
	c.JSON(http.StatusOK, gin.H{"msg": "You successfully updated your composition.", "slug": slug, "redirect": "/composition/" + slug})
}

func (h *MainHandler) DeleteComposition(c *gin.Context) {
	comp, ok := h.editable(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	uow, err := h.store.Begin(ctx)
	if err != nil {
		abortWithError(c, err)
		return
	}
	defer uow.Rollback()
	if err := h.comps.Delete(ctx, uow, middleware.CurrentUser(c), comp); err != nil {
		abortWithError(c, err)
		return
	}
	if err := uow.Commit(); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "You have successfully deleted the composition.", "redirect": "/"})
}
