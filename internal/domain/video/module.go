package video

import (
	userRepo "vidtube/internal/domain/user/repository"
	"vidtube/internal/domain/video/handler"
	"vidtube/internal/domain/video/repository"
	"vidtube/internal/domain/video/service"
	"vidtube/internal/pkg/middleware"
	"vidtube/internal/pkg/registry"

	"github.com/gin-gonic/gin"
)

// VideoModule 视频模块
type VideoModule struct{}

func init() {
	registry.Register(&VideoModule{})
}

func (m *VideoModule) Name() string {
	return "video"
}

func (m *VideoModule) Priority() int {
	return 2
}

func (m *VideoModule) Init(ctx *registry.ModuleContext) error {
	videoRepo := repository.NewVideoRepository(ctx.DB)
	users := userRepo.NewUserRepository(ctx.DB)
	videoService := service.NewVideoService(videoRepo, users, ctx.Uploader, ctx.Cascader)
	videoHandler := handler.NewVideoHandler(videoService)

	setupRoutes(ctx.API, videoHandler, ctx)
	return nil
}

func setupRoutes(api *gin.RouterGroup, h *handler.VideoHandler, ctx *registry.ModuleContext) {
	videos := api.Group("/videos")

	// 列表公开，详情匿名可看但登录时会记观看历史
	videos.GET("", h.List)
	videos.GET("/:id", middleware.OptionalAuthMiddleware(ctx.Tokens), h.Get)

	auth := videos.Group("")
	auth.Use(middleware.AuthMiddleware(ctx.Tokens))
	{
		auth.POST("", h.Publish)
		auth.PATCH("/:id", h.Update)
		auth.DELETE("/:id", h.Delete)
		auth.PATCH("/:id/toggle-publish", h.TogglePublish)
	}
}
