package handler

import (
	"vidtube/internal/domain/dashboard/service"
	"vidtube/internal/pkg/middleware"
	"vidtube/pkg/response"
	"vidtube/pkg/utils"

	"github.com/gin-gonic/gin"
)

// DashboardHandler 创作者后台处理器
type DashboardHandler struct {
	service service.DashboardService
}

// NewDashboardHandler 创建处理器
func NewDashboardHandler(service service.DashboardService) *DashboardHandler {
	return &DashboardHandler{service: service}
}

// Stats 频道统计
func (h *DashboardHandler) Stats(c *gin.Context) {
	channel, _ := middleware.CurrentUser(c)
	stats, err := h.service.Stats(c.Request.Context(), channel)
	if err != nil {
		response.InternalError(c, "failed to get channel stats")
		return
	}
	response.Success(c, stats)
}

// Videos 频道的全部视频（含未发布）
func (h *DashboardHandler) Videos(c *gin.Context) {
	var p utils.Pagination
	if err := c.ShouldBindQuery(&p); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	skip, limit := p.Normalize()

	channel, _ := middleware.CurrentUser(c)
	videos, total, err := h.service.Videos(c.Request.Context(), channel, skip, limit)
	if err != nil {
		response.InternalError(c, "failed to list channel videos")
		return
	}
	response.Success(c, p.NewPageResult(videos, total))
}
