/*
 * @Description: 路由注册
 * @Author: inkwell
 * @Date: 2026-03-03 10:05:19
 * @LastEditTime: 2026-10-14 09:52:31
 * @LastEditors: inkwell
 */
package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/inkwell-cms/inkwell/internal/app/middleware"
	article_handler "github.com/inkwell-cms/inkwell/pkg/handler/article"
	auth_handler "github.com/inkwell-cms/inkwell/pkg/handler/auth"
	comment_handler "github.com/inkwell-cms/inkwell/pkg/handler/comment"
	moderation_handler "github.com/inkwell-cms/inkwell/pkg/handler/moderation"
	user_handler "github.com/inkwell-cms/inkwell/pkg/handler/user"
	version_handler "github.com/inkwell-cms/inkwell/pkg/handler/version"
)

// NoCacheMiddleware 全局反缓存中间件，确保所有API响应都不会被CDN缓存
func NoCacheMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Cache-Control", "no-cache, no-store, must-revalidate, private, max-age=0")
		c.Header("Pragma", "no-cache")
		c.Header("Expires", "0")
		c.Header("X-Content-Type-Options", "nosniff")
		c.Next()
	}
}

// Router 封装了应用的所有路由和其依赖的处理器。
type Router struct {
	authHandler       *auth_handler.AuthHandler
	userHandler       *user_handler.UserHandler
	articleHandler    *article_handler.Handler
	commentHandler    *comment_handler.Handler
	moderationHandler *moderation_handler.Handler
	versionHandler    *version_handler.Handler
	mw                *middleware.Middleware
}

// NewRouter 是 Router 的构造函数，通过依赖注入接收所有处理器。
func NewRouter(
	authHandler *auth_handler.AuthHandler,
	userHandler *user_handler.UserHandler,
	articleHandler *article_handler.Handler,
	commentHandler *comment_handler.Handler,
	moderationHandler *moderation_handler.Handler,
	versionHandler *version_handler.Handler,
	mw *middleware.Middleware,
) *Router {
	return &Router{
		authHandler:       authHandler,
		userHandler:       userHandler,
		articleHandler:    articleHandler,
		commentHandler:    commentHandler,
		moderationHandler: moderationHandler,
		versionHandler:    versionHandler,
		mw:                mw,
	}
}

// Setup 将所有路由注册到 Gin 引擎。
func (r *Router) Setup(engine *gin.Engine) {
	// Prometheus 抓取端点不在 /api 下
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	apiGroup := engine.Group("/api")
	apiGroup.Use(NoCacheMiddleware())

	apiGroup.GET("/version", r.versionHandler.GetVersion)

	r.registerAuthRoutes(apiGroup)
	r.registerUserRoutes(apiGroup)
	r.registerArticleRoutes(apiGroup)
	r.registerCommentRoutes(apiGroup)
	r.registerModerationRoutes(apiGroup)
}

func (r *Router) registerAuthRoutes(api *gin.RouterGroup) {
	auth := api.Group("/auth")
	{
		auth.POST("/register", r.authHandler.Register)
		auth.POST("/login", r.authHandler.Login)
		auth.POST("/refresh", r.authHandler.RefreshToken)
		auth.POST("/logout", r.mw.JWTAuth(), r.authHandler.Logout)
	}
}

func (r *Router) registerUserRoutes(api *gin.RouterGroup) {
	usersPublic := api.Group("/users").Use(r.mw.JWTAuthOptional())
	{
		usersPublic.GET("/:id", r.userHandler.GetUser)
		usersPublic.GET("/:id/articles", r.articleHandler.ListByOwner)
		usersPublic.GET("/:id/comments", r.commentHandler.ListByOwner)
	}

	// 需要登录的账户接口，具体权限由业务层判断
	users := api.Group("/users").Use(r.mw.JWTAuth())
	{
		users.GET("", r.userHandler.ListUsers)
		users.GET("/me", r.userHandler.GetCurrentUser)
		users.GET("/pending", r.userHandler.ListPendingAccounts)
		users.PUT("/:id", r.userHandler.UpdateProfile)
		users.DELETE("/:id", r.userHandler.CloseAccount)
		users.POST("/:id/validate", r.userHandler.ValidateAccount)
		users.POST("/:id/refuse", r.userHandler.RefuseAccount)
		users.PUT("/:id/role", r.userHandler.ChangeRole)
		users.PUT("/:id/ban", r.userHandler.Ban)
		users.DELETE("/:id/ban", r.userHandler.Unban)
		users.POST("/:id/report", r.userHandler.Report)
	}
}

func (r *Router) registerArticleRoutes(api *gin.RouterGroup) {
	articlesPublic := api.Group("/articles").Use(r.mw.JWTAuthOptional())
	{
		articlesPublic.GET("", r.articleHandler.List)
		articlesPublic.GET("/search", r.articleHandler.Search)
		articlesPublic.GET("/:id", r.articleHandler.Get)
		articlesPublic.GET("/:id/comments", r.commentHandler.ListByArticle)
	}

	articles := api.Group("/articles").Use(r.mw.JWTAuth())
	{
		articles.POST("", r.articleHandler.Create)
		articles.PUT("/:id", r.articleHandler.Update)
		articles.DELETE("/:id", r.articleHandler.Delete)
		articles.POST("/:id/comments", r.commentHandler.Create)
	}
}

func (r *Router) registerCommentRoutes(api *gin.RouterGroup) {
	commentsPublic := api.Group("/comments").Use(r.mw.JWTAuthOptional())
	{
		commentsPublic.GET("/recent", r.commentHandler.ListRecent)
		commentsPublic.GET("/:id", r.commentHandler.Get)
	}

	comments := api.Group("/comments").Use(r.mw.JWTAuth())
	{
		comments.PUT("/:id", r.commentHandler.Update)
		comments.DELETE("/:id", r.commentHandler.Delete)
	}
}

// registerModerationRoutes 审核员和管理员接口，统计与报表由业务层限制为管理员
func (r *Router) registerModerationRoutes(api *gin.RouterGroup) {
	mod := api.Group("/moderation").Use(r.mw.JWTAuth())
	{
		mod.GET("/articles", r.articleHandler.ListPending)
		mod.GET("/articles/stats", r.articleHandler.Stats)
		mod.POST("/articles/:id", r.articleHandler.Moderate)
		mod.GET("/articles/:id/history", r.moderationHandler.ArticleHistory)

		mod.GET("/comments", r.commentHandler.ListPending)
		mod.POST("/comments/:id", r.commentHandler.Moderate)
		mod.GET("/comments/:id/history", r.moderationHandler.CommentHistory)

		mod.GET("/users/:id/history", r.moderationHandler.UserHistory)
		mod.GET("/reports/open", r.moderationHandler.OpenReports)

		mod.GET("/history", r.moderationHandler.History)
		mod.GET("/recent", r.moderationHandler.Recent)
		mod.GET("/stats", r.moderationHandler.Statistics)
		mod.GET("/stats/moderators/:id", r.moderationHandler.ModeratorStatistics)
		mod.GET("/report", r.moderationHandler.Report)
	}
}
