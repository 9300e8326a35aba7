package router

import (
	"fmt"
	"sort"
	"strings"

	"github.com/furom/internal/authz"
	"github.com/furom/internal/cache"
	"github.com/furom/internal/config"
	"github.com/furom/internal/constants"
	adminhandlers "github.com/furom/internal/http/handlers/admin"
	publichandlers "github.com/furom/internal/http/handlers/public"
	"github.com/furom/internal/http/response"
	"github.com/furom/internal/logger"
	"github.com/furom/internal/metrics"
	"github.com/furom/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	publicHandler := publichandlers.New(c)
	adminHandler := adminhandlers.New(c)
	redisPrefix := strings.TrimSpace(cfg.Redis.Prefix)
	if redisPrefix == "" {
		redisPrefix = constants.RedisPrefixDefault
	}
	redisClient := cache.Client()
	loginRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:login", redisPrefix),
		WindowSeconds: cfg.Security.LoginRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.LoginRateLimit.MaxAttempts,
		MessageKey:    "error.login_too_many",
	}
	adminLoginRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:admin_login", redisPrefix),
		WindowSeconds: cfg.Security.LoginRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.LoginRateLimit.MaxAttempts,
		MessageKey:    "error.login_too_many",
	}
	voteRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:vote", redisPrefix),
		WindowSeconds: cfg.Security.VoteRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.VoteRateLimit.MaxAttempts,
		MessageKey:    "error.vote_too_many",
		FailOpen:      true,
	}

	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(MetricsMiddleware())
	r.Use(CORSMiddleware(cfg.CORS))

	if cfg.Metrics.Enabled {
		path := strings.TrimSpace(cfg.Metrics.Path)
		if path == "" {
			path = "/metrics"
		}
		r.GET(path, gin.WrapH(metrics.Handler()))
	}

	apiV1 := r.Group("/api/v1")
	{
		// 公开接口（携带 Token 时识别当前用户）
		public := apiV1.Group("/public")
		public.Use(OptionalUserJWTMiddleware(cfg.UserJWT.SecretKey, c.UserRepo))
		{
			public.GET("/config", publicHandler.GetConfig)
			public.GET("/captcha/config", publicHandler.GetCaptchaConfig)
			public.GET("/captcha/image", publicHandler.GetImageCaptcha)
			public.GET("/categories", publicHandler.GetCategories)
			public.GET("/categories/:slug", publicHandler.GetCategory)
			public.GET("/posts", publicHandler.GetPosts)
			public.GET("/posts/:id", publicHandler.GetPost)
			public.GET("/posts/:id/comments", publicHandler.GetPostComments)
			public.GET("/levels", publicHandler.GetLevels)
			public.GET("/leaderboard", publicHandler.GetLeaderboard)
			public.GET("/users/:username", publicHandler.GetPublicProfile)
		}

		auth := apiV1.Group("/auth")
		{
			auth.POST("/register", publicHandler.UserRegister)
			auth.POST("/verify-email", publicHandler.VerifyEmail)
			auth.POST("/login", RateLimitMiddleware(redisClient, loginRule, KeyByIPAndJSONField("login")), publicHandler.UserLogin)
		}

		user := apiV1.Group("")
		user.Use(UserJWTAuthMiddleware(cfg.UserJWT.SecretKey, c.UserRepo))
		{
			user.GET("/me", publicHandler.GetCurrentUser)
			user.GET("/me/login-logs", publicHandler.GetMyLoginLogs)
			user.PUT("/me/profile", publicHandler.UpdateUserProfile)
			user.PUT("/me/password", publicHandler.ChangeUserPassword)
			user.GET("/me/level", publicHandler.GetMyLevel)
			user.GET("/me/exp-logs", publicHandler.GetMyExpHistory)
			user.GET("/me/categories", publicHandler.GetMyCategories)
			user.GET("/me/notifications", publicHandler.GetMyNotifications)
			user.GET("/me/notifications/unread-count", publicHandler.GetUnreadNotificationCount)
			user.POST("/me/notifications/read", publicHandler.MarkNotificationsRead)

			user.POST("/categories", publicHandler.SubmitCategory)
			user.POST("/posts", publicHandler.CreatePost)
			user.POST("/posts/:id/comments", publicHandler.CreateComment)

			votes := user.Group("/votes")
			votes.Use(RateLimitMiddleware(redisClient, voteRule, KeyByUserOrIP))
			{
				votes.GET("/:kind/:id", publicHandler.GetMyVote)
				votes.POST("/:kind/:id", publicHandler.CastVote)
				votes.DELETE("/:kind/:id", publicHandler.RetractVote)
			}

			user.GET("/kyc", publicHandler.GetKYCOverview)
			user.POST("/kyc", publicHandler.SubmitKYC)
			user.POST("/kyc/draft", publicHandler.SaveKYCDraft)
			user.POST("/kyc/complete", publicHandler.CompleteKYC)
		}

		admin := apiV1.Group("/admin")
		{
			admin.POST("/login", RateLimitMiddleware(redisClient, adminLoginRule, KeyByIP), adminHandler.AdminLogin)

			authorized := admin.Use(JWTAuthMiddleware(cfg.JWT.SecretKey, c.AdminRepo), AdminRBACMiddleware(c.AuthzService))
			{
				authorized.GET("/me", adminHandler.GetAdminMe)
				authorized.PUT("/password", adminHandler.UpdateAdminPassword)

				// 分类审核
				authorized.GET("/categories", adminHandler.GetAdminCategories)
				authorized.POST("/categories/:id/approve", adminHandler.ApproveCategory)
				authorized.POST("/categories/:id/reject", adminHandler.RejectCategory)

				// 实名审核
				authorized.GET("/kyc", adminHandler.GetKYCSubmissions)
				authorized.GET("/kyc/:id", adminHandler.GetKYCSubmission)
				authorized.POST("/kyc/:id/approve", adminHandler.ApproveKYC)
				authorized.POST("/kyc/:id/reject", adminHandler.RejectKYC)

				// 内容管理
				authorized.GET("/posts", adminHandler.GetAdminPosts)
				authorized.POST("/posts/:id/moderate", adminHandler.ModeratePost)
				authorized.POST("/comments/:id/moderate", adminHandler.ModerateComment)
				authorized.GET("/moderation-logs", adminHandler.GetModerationLogs)
				authorized.GET("/notices", adminHandler.GetAdminNotices)

				// 用户管理
				authorized.GET("/users", adminHandler.GetAdminUsers)
				authorized.PUT("/users/status", adminHandler.BatchUpdateUserStatus)
				authorized.GET("/users/:id", adminHandler.GetAdminUser)
				authorized.POST("/users/:id/exp", adminHandler.AdjustUserExp)
				authorized.GET("/users/:id/exp-logs", adminHandler.GetUserExpHistory)
				authorized.GET("/user-login-logs", adminHandler.GetUserLoginLogs)

				// 排行榜与设置
				authorized.POST("/leaderboard/refresh", adminHandler.RefreshLeaderboard)
				authorized.GET("/settings/:key", adminHandler.GetSetting)
				authorized.PUT("/settings/:key", adminHandler.UpdateSetting)

				// 权限管理
				authorized.GET("/authz/me", adminHandler.GetAuthzMe)
				authorized.GET("/authz/roles", adminHandler.ListAuthzRoles)
				authorized.GET("/authz/roles/:role/policies", adminHandler.GetAuthzRolePolicies)
				authorized.POST("/authz/policies", adminHandler.GrantAuthzPolicy)
				authorized.DELETE("/authz/policies", adminHandler.RevokeAuthzPolicy)
				authorized.GET("/authz/admins", adminHandler.ListAuthzAdmins)
				authorized.POST("/authz/admins", adminHandler.CreateAuthzAdmin)
				authorized.GET("/authz/admins/:id/roles", adminHandler.GetAuthzAdminRoles)
				authorized.PUT("/authz/admins/:id/roles", adminHandler.SetAuthzAdminRoles)
				authorized.GET("/authz/permissions/catalog", func(ctx *gin.Context) {
					response.Success(ctx, buildAdminPermissionCatalog(r))
				})
			}
		}
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return r
}

type adminPermissionCatalogItem struct {
	Module     string `json:"module"`
	Method     string `json:"method"`
	Object     string `json:"object"`
	Permission string `json:"permission"`
}

// buildAdminPermissionCatalog 从已注册路由生成后台权限目录
func buildAdminPermissionCatalog(engine *gin.Engine) []adminPermissionCatalogItem {
	if engine == nil {
		return []adminPermissionCatalogItem{}
	}

	routes := engine.Routes()
	seen := make(map[string]struct{}, len(routes))
	items := make([]adminPermissionCatalogItem, 0, len(routes))

	for _, item := range routes {
		method := strings.ToUpper(strings.TrimSpace(item.Method))
		if method == "" || method == "OPTIONS" || method == "HEAD" {
			continue
		}
		if !strings.HasPrefix(item.Path, "/api/v1/admin/") || item.Path == "/api/v1/admin/login" {
			continue
		}
		object := authz.NormalizeObject(item.Path)
		permission := method + ":" + object
		if _, exists := seen[permission]; exists {
			continue
		}
		seen[permission] = struct{}{}
		items = append(items, adminPermissionCatalogItem{
			Module:     deriveAdminPermissionModule(object),
			Method:     method,
			Object:     object,
			Permission: permission,
		})
	}

	sort.Slice(items, func(i, j int) bool {
		if items[i].Module != items[j].Module {
			return items[i].Module < items[j].Module
		}
		if items[i].Object != items[j].Object {
			return items[i].Object < items[j].Object
		}
		return items[i].Method < items[j].Method
	})
	return items
}

// deriveAdminPermissionModule /admin/kyc/:id/approve -> kyc
func deriveAdminPermissionModule(object string) string {
	segments := strings.Split(strings.TrimPrefix(strings.TrimSpace(object), "/"), "/")
	if len(segments) == 0 || segments[0] == "" {
		return "system"
	}
	if segments[0] != "admin" || len(segments) == 1 {
		return segments[0]
	}
	switch segments[1] {
	case "user-login-logs":
		return "users"
	case "moderation-logs", "notices":
		return "moderation"
	}
	return segments[1]
}
