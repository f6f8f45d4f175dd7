package router

import (
	"ragtime/internal/handler"
	"ragtime/internal/middleware"
	"ragtime/internal/model"
	"ragtime/internal/repository/rdb"
	"ragtime/internal/service"

	"github.com/gin-contrib/gzip"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
)

// Deps 路由层需要的全部依赖，由 main 构造后注入
type Deps struct {
	Store            *rdb.Store
	Users            *service.UserService
	Follows          *service.FollowService
	Compositions     *service.CompositionService
	Roles            *service.RoleService
	SecretKey        string
	HTTPSRedirect    bool
	FollowersPerPage int
}

func InitRouter(d Deps) *gin.Engine {
	r := gin.Default()
	r.Use(middleware.SecureHeaders(d.HTTPSRedirect))
	r.Use(gzip.Gzip(
		gzip.DefaultCompression,
		gzip.WithExcludedPaths([]string{"/api/"}),
	))

	api := handler.NewAPIHandler(d.Store, d.Users, d.Follows, d.Compositions)
	user := handler.NewUserHandler(d.Store, d.Users)
	site := handler.NewMainHandler(d.Store, d.Users, d.Follows, d.Compositions, d.Roles)
	follow := handler.NewFollowHandler(d.Store, d.Users, d.Follows, d.FollowersPerPage)

	// API 接口，Basic / Bearer 认证
	apiGroup := r.Group("/api/v1")
	apiGroup.Use(middleware.APIAuth(d.Users), middleware.ConfirmedRequired())
	{
		apiGroup.GET("/", api.Index)
		apiGroup.POST("/tokens/", api.GetToken)
		apiGroup.DELETE("/tokens/", api.RevokeToken)

		apiGroup.GET("/compositions/", api.ListCompositions)
		apiGroup.POST("/compositions/", middleware.PermissionRequired(model.PermPublish), api.NewComposition)
		apiGroup.GET("/compositions/:id", api.GetComposition)
		apiGroup.PUT("/compositions/:id", middleware.PermissionRequired(model.PermPublish), api.EditComposition)

		apiGroup.GET("/users/:id", api.GetUser)
		apiGroup.GET("/users/:id/compositions/", api.GetUserCompositions)
		apiGroup.GET("/users/:id/followed/", api.GetUserFollowed)
		apiGroup.GET("/users/:id/followers/", api.GetUserFollowers)
		apiGroup.GET("/users/:id/following/", api.GetUserFollowing)
	}

	// 网页接口，cookie 会话
	store := cookie.NewStore([]byte(d.SecretKey))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   7 * 24 * 60 * 60,
		HttpOnly: true,
		Secure:   d.HTTPSRedirect,
	})
	web := r.Group("/")
	web.Use(sessions.Sessions(middleware.SessionName, store), middleware.SessionUser(d.Users))

	authGroup := web.Group("/auth")
	{
		authGroup.POST("/register", user.Register)
		authGroup.POST("/login", user.Login)
		authGroup.GET("/logout", user.Logout)
		authGroup.GET("/unconfirmed", user.Unconfirmed)
	}
	authLogin := authGroup.Group("", middleware.LoginRequired())
	{
		authLogin.GET("/confirm/:token", user.Confirm)
		authLogin.GET("/resend_confirmation", user.ResendConfirmation)
		authLogin.POST("/change-email", user.ChangeEmail)
		authLogin.POST("/change-password", user.ChangePassword)
	}

	web.GET("/", site.Index)
	web.POST("/", site.Publish)
	web.GET("/user/:username", site.User)
	web.GET("/composition/:slug", site.Composition)
	web.GET("/followers/:username", follow.Followers)
	web.GET("/following/:username", follow.Following)

	loggedIn := web.Group("", middleware.LoginRequired())
	{
		loggedIn.GET("/all", site.ShowAll)
		loggedIn.GET("/followed", site.ShowFollowed)
		loggedIn.GET("/admin", middleware.AdminRequired(), site.ForAdmins)
		loggedIn.GET("/moderate", middleware.PermissionRequired(model.PermModerate), site.ForModerators)

		loggedIn.GET("/edit-profile", site.GetProfile)
		loggedIn.POST("/edit-profile", site.EditProfile)
		loggedIn.GET("/editprofile/:id", middleware.AdminRequired(), site.GetAdminProfile)
		loggedIn.POST("/editprofile/:id", middleware.AdminRequired(), site.AdminEditProfile)

		loggedIn.GET("/edit/:slug", site.GetComposition)
		loggedIn.POST("/edit/:slug", site.EditComposition)
		loggedIn.POST("/delete/:slug", site.DeleteComposition)

		loggedIn.GET("/follow/:username", middleware.PermissionRequired(model.PermFollow), follow.Follow)
		loggedIn.GET("/unfollow/:username", middleware.PermissionRequired(model.PermFollow), follow.Unfollow)
	}

	return r
}
