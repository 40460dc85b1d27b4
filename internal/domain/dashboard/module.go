package dashboard

import (
	"vidtube/internal/domain/dashboard/handler"
	"vidtube/internal/domain/dashboard/repository"
	"vidtube/internal/domain/dashboard/service"
	videoRepo "vidtube/internal/domain/video/repository"
	"vidtube/internal/pkg/middleware"
	"vidtube/internal/pkg/registry"

	"github.com/gin-gonic/gin"
)

// DashboardModule 创作者后台模块
type DashboardModule struct{}

func init() {
	registry.Register(&DashboardModule{})
}

func (m *DashboardModule) Name() string {
	return "dashboard"
}

func (m *DashboardModule) Priority() int {
	return 8
}

func (m *DashboardModule) Init(ctx *registry.ModuleContext) error {
	dashRepo := repository.NewDashboardRepository(ctx.DB)
	dashService := service.NewDashboardService(dashRepo, videoRepo.NewVideoRepository(ctx.DB))
	dashHandler := handler.NewDashboardHandler(dashService)

	setupRoutes(ctx.API, dashHandler, ctx)
	return nil
}

func setupRoutes(api *gin.RouterGroup, h *handler.DashboardHandler, ctx *registry.ModuleContext) {
	dash := api.Group("/dashboard")
	dash.Use(middleware.AuthMiddleware(ctx.Tokens))
	{
		dash.GET("/stats", h.Stats)
		dash.GET("/videos", h.Videos)
	}
}
