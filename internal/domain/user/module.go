package user

import (
	"vidtube/internal/domain/user/handler"
	"vidtube/internal/domain/user/repository"
	"vidtube/internal/domain/user/service"
	"vidtube/internal/pkg/middleware"
	"vidtube/internal/pkg/registry"

	"github.com/gin-gonic/gin"
)

// UserModule 用户模块
type UserModule struct{}

func init() {
	// 自动注册模块
	registry.Register(&UserModule{})
}

func (m *UserModule) Name() string {
	return "user"
}

func (m *UserModule) Priority() int {
	// 用户模块优先级最高，因为其他模块可能依赖它
	return 1
}

func (m *UserModule) Init(ctx *registry.ModuleContext) error {
	// 1. 依赖注入
	userRepo := repository.NewUserRepository(ctx.DB)
	userService := service.NewUserService(userRepo, ctx.Tokens, ctx.Uploader, ctx.Cascader)
	userService = service.NewCachedUserService(userService, ctx.Cache)
	userHandler := handler.NewUserHandler(userService)

	// 2. 路由注册
	setupRoutes(ctx.API, userHandler, ctx)

	return nil
}

func setupRoutes(api *gin.RouterGroup, h *handler.UserHandler, ctx *registry.ModuleContext) {
	users := api.Group("/users")

	// 公开路由
	users.POST("/register", h.Register)
	users.POST("/login", h.Login)
	users.POST("/refresh-token", h.Refresh)

	// 频道主页对匿名访问开放，登录时附带订阅状态
	users.GET("/c/:username", middleware.OptionalAuthMiddleware(ctx.Tokens), h.ChannelProfile)

	// 受保护的路由
	auth := users.Group("")
	auth.Use(middleware.AuthMiddleware(ctx.Tokens))
	{
		auth.POST("/logout", h.Logout)
		auth.GET("/me", h.Me)
		auth.DELETE("/me", h.DeleteAccount)
		auth.POST("/change-password", h.ChangePassword)
		auth.PATCH("/update-account", h.UpdateAccount)
		auth.PATCH("/avatar", h.UpdateAvatar)
		auth.PATCH("/cover-image", h.UpdateCover)
		auth.GET("/history", h.WatchHistory)
	}
}
