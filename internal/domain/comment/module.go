package comment

import (
	"vidtube/internal/domain/comment/handler"
	"vidtube/internal/domain/comment/repository"
	"vidtube/internal/domain/comment/service"
	videoRepo "vidtube/internal/domain/video/repository"
	"vidtube/internal/pkg/middleware"
	"vidtube/internal/pkg/registry"

	"github.com/gin-gonic/gin"
)

// CommentModule 评论模块
type CommentModule struct{}

func init() {
	registry.Register(&CommentModule{})
}

func (m *CommentModule) Name() string {
	return "comment"
}

func (m *CommentModule) Priority() int {
	return 3
}

func (m *CommentModule) Init(ctx *registry.ModuleContext) error {
	commentRepo := repository.NewCommentRepository(ctx.DB)
	videos := videoRepo.NewVideoRepository(ctx.DB)
	commentService := service.NewCommentService(commentRepo, videos, ctx.Cascader)
	commentHandler := handler.NewCommentHandler(commentService)

	setupRoutes(ctx.API, commentHandler, ctx)
	return nil
}

func setupRoutes(api *gin.RouterGroup, h *handler.CommentHandler, ctx *registry.ModuleContext) {
	comments := api.Group("/comments")

	// 读公开
	comments.GET("/video/:videoId", h.ListByVideo)
	comments.GET("/:id/replies", h.ListReplies)

	auth := comments.Group("")
	auth.Use(middleware.AuthMiddleware(ctx.Tokens))
	{
		auth.POST("/video/:videoId", h.Add)
		auth.PATCH("/:id", h.Update)
		auth.DELETE("/:id", h.Delete)
	}
}
