package playlist

import (
	"vidtube/internal/domain/playlist/handler"
	"vidtube/internal/domain/playlist/repository"
	"vidtube/internal/domain/playlist/service"
	videoRepo "vidtube/internal/domain/video/repository"
	"vidtube/internal/pkg/middleware"
	"vidtube/internal/pkg/registry"

	"github.com/gin-gonic/gin"
)

// PlaylistModule 播放列表模块
type PlaylistModule struct{}

func init() {
	registry.Register(&PlaylistModule{})
}

func (m *PlaylistModule) Name() string {
	return "playlist"
}

func (m *PlaylistModule) Priority() int {
	return 7
}

func (m *PlaylistModule) Init(ctx *registry.ModuleContext) error {
	playlistRepo := repository.NewPlaylistRepository(ctx.DB)
	playlistService := service.NewPlaylistService(playlistRepo, videoRepo.NewVideoRepository(ctx.DB))
	playlistHandler := handler.NewPlaylistHandler(playlistService)

	setupRoutes(ctx.API, playlistHandler, ctx)
	return nil
}

func setupRoutes(api *gin.RouterGroup, h *handler.PlaylistHandler, ctx *registry.ModuleContext) {
	playlists := api.Group("/playlists")

	// 读公开
	playlists.GET("/:id", h.Get)
	playlists.GET("/user/:userId", h.ListByUser)

	auth := playlists.Group("")
	auth.Use(middleware.AuthMiddleware(ctx.Tokens))
	{
		auth.POST("", h.Create)
		auth.PATCH("/:id", h.Update)
		auth.DELETE("/:id", h.Delete)
		auth.PATCH("/:id/videos/:videoId", h.AddVideo)
		auth.DELETE("/:id/videos/:videoId", h.RemoveVideo)
	}
}
