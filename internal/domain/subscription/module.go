package subscription

import (
	"vidtube/internal/domain/subscription/handler"
	"vidtube/internal/domain/subscription/repository"
	"vidtube/internal/domain/subscription/service"
	userRepo "vidtube/internal/domain/user/repository"
	"vidtube/internal/pkg/middleware"
	"vidtube/internal/pkg/registry"

	"github.com/gin-gonic/gin"
)

// SubscriptionModule 订阅模块
type SubscriptionModule struct{}

func init() {
	registry.Register(&SubscriptionModule{})
}

func (m *SubscriptionModule) Name() string {
	return "subscription"
}

func (m *SubscriptionModule) Priority() int {
	return 5
}

func (m *SubscriptionModule) Init(ctx *registry.ModuleContext) error {
	subRepo := repository.NewSubscriptionRepository(ctx.DB)
	subService := service.NewSubscriptionService(subRepo, userRepo.NewUserRepository(ctx.DB))
	subHandler := handler.NewSubscriptionHandler(subService)

	setupRoutes(ctx.API, subHandler, ctx)
	return nil
}

func setupRoutes(api *gin.RouterGroup, h *handler.SubscriptionHandler, ctx *registry.ModuleContext) {
	subs := api.Group("/subscriptions")

	// 订阅者列表公开
	subs.GET("/channels/:channelId/subscribers", h.Subscribers)

	auth := subs.Group("")
	auth.Use(middleware.AuthMiddleware(ctx.Tokens))
	{
		auth.POST("/channels/:channelId", h.Toggle)
		auth.GET("/subscribed", h.Subscribed)
	}
}
