package tweet

import (
	"vidtube/internal/domain/tweet/handler"
	"vidtube/internal/domain/tweet/repository"
	"vidtube/internal/domain/tweet/service"
	"vidtube/internal/pkg/middleware"
	"vidtube/internal/pkg/registry"

	"github.com/gin-gonic/gin"
)

// TweetModule 动态模块
type TweetModule struct{}

func init() {
	registry.Register(&TweetModule{})
}

func (m *TweetModule) Name() string {
	return "tweet"
}

func (m *TweetModule) Priority() int {
	return 6
}

func (m *TweetModule) Init(ctx *registry.ModuleContext) error {
	tweetRepo := repository.NewTweetRepository(ctx.DB)
	tweetService := service.NewTweetService(tweetRepo, ctx.Cascader)
	tweetHandler := handler.NewTweetHandler(tweetService)

	setupRoutes(ctx.API, tweetHandler, ctx)
	return nil
}

func setupRoutes(api *gin.RouterGroup, h *handler.TweetHandler, ctx *registry.ModuleContext) {
	tweets := api.Group("/tweets")

	// 用户动态列表公开
	tweets.GET("/user/:userId", h.ListByUser)

	auth := tweets.Group("")
	auth.Use(middleware.AuthMiddleware(ctx.Tokens))
	{
		auth.POST("", h.Create)
		auth.PATCH("/:id", h.Update)
		auth.DELETE("/:id", h.Delete)
	}
}
