package handler

import (
	"errors"
	"net/http"

	"vidtube/internal/domain/subscription/service"
	"vidtube/internal/pkg/middleware"
	base "vidtube/pkg/model"
	"vidtube/pkg/response"
	"vidtube/pkg/utils"

	"github.com/gin-gonic/gin"
)

// SubscriptionHandler 订阅处理器
type SubscriptionHandler struct {
	service service.SubscriptionService
}

// NewSubscriptionHandler 创建处理器
func NewSubscriptionHandler(service service.SubscriptionService) *SubscriptionHandler {
	return &SubscriptionHandler{service: service}
}

// Toggle 订阅开关
func (h *SubscriptionHandler) Toggle(c *gin.Context) {
	channel, err := base.ParseID(c.Param("channelId"))
	if err != nil {
		response.BadRequest(c, "invalid channel id")
		return
	}

	subscriber, _ := middleware.CurrentUser(c)
	subscribed, err := h.service.Toggle(c.Request.Context(), subscriber, channel)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSelfSubscribe):
			response.Error(c, http.StatusBadRequest, response.ErrSelfSubscribe, err.Error())
		case errors.Is(err, service.ErrChannelNotFound):
			response.NotFound(c, response.ErrUserNotFound, err.Error())
		default:
			response.InternalError(c, "failed to toggle subscription")
		}
		return
	}
	response.Success(c, gin.H{"subscribed": subscribed})
}

// Subscribers 频道的订阅者列表
func (h *SubscriptionHandler) Subscribers(c *gin.Context) {
	channel, err := base.ParseID(c.Param("channelId"))
	if err != nil {
		response.BadRequest(c, "invalid channel id")
		return
	}
	h.list(c, func(p *utils.Pagination, skip, limit int64) (interface{}, int64, error) {
		entries, total, err := h.service.ListSubscribers(c.Request.Context(), channel, skip, limit)
		return entries, total, err
	})
}

// Subscribed 当前用户订阅的频道列表
func (h *SubscriptionHandler) Subscribed(c *gin.Context) {
	subscriber, _ := middleware.CurrentUser(c)
	h.list(c, func(p *utils.Pagination, skip, limit int64) (interface{}, int64, error) {
		entries, total, err := h.service.ListSubscribed(c.Request.Context(), subscriber, skip, limit)
		return entries, total, err
	})
}

func (h *SubscriptionHandler) list(c *gin.Context,
	fetch func(p *utils.Pagination, skip, limit int64) (interface{}, int64, error)) {
	var p utils.Pagination
	if err := c.ShouldBindQuery(&p); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	skip, limit := p.Normalize()

	list, total, err := fetch(&p, skip, limit)
	if err != nil {
		response.InternalError(c, "failed to list subscriptions")
		return
	}
	response.Success(c, p.NewPageResult(list, total))
}
