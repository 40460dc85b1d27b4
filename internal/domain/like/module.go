package like

import (
	commentRepo "vidtube/internal/domain/comment/repository"
	"vidtube/internal/domain/like/handler"
	"vidtube/internal/domain/like/repository"
	"vidtube/internal/domain/like/service"
	tweetRepo "vidtube/internal/domain/tweet/repository"
	videoRepo "vidtube/internal/domain/video/repository"
	"vidtube/internal/pkg/middleware"
	"vidtube/internal/pkg/registry"

	"github.com/gin-gonic/gin"
)

// LikeModule 点赞模块
type LikeModule struct{}

func init() {
	registry.Register(&LikeModule{})
}

func (m *LikeModule) Name() string {
	return "like"
}

func (m *LikeModule) Priority() int {
	return 4
}

func (m *LikeModule) Init(ctx *registry.ModuleContext) error {
	likeRepo := repository.NewLikeRepository(ctx.DB)
	likeService := service.NewLikeService(
		likeRepo,
		videoRepo.NewVideoRepository(ctx.DB),
		commentRepo.NewCommentRepository(ctx.DB),
		tweetRepo.NewTweetRepository(ctx.DB),
	)
	likeHandler := handler.NewLikeHandler(likeService)

	setupRoutes(ctx.API, likeHandler, ctx)
	return nil
}

func setupRoutes(api *gin.RouterGroup, h *handler.LikeHandler, ctx *registry.ModuleContext) {
	likes := api.Group("/likes")
	likes.Use(middleware.AuthMiddleware(ctx.Tokens))
	{
		likes.POST("/videos/:id", h.ToggleVideo)
		likes.POST("/comments/:id", h.ToggleComment)
		likes.POST("/tweets/:id", h.ToggleTweet)
		likes.GET("/videos", h.LikedVideos)
	}
}
