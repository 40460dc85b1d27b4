package handler

import (
	"errors"

	"vidtube/internal/cascade"
	"vidtube/internal/domain/tweet/service"
	"vidtube/internal/pkg/middleware"
	base "vidtube/pkg/model"
	"vidtube/pkg/response"
	"vidtube/pkg/utils"

	"github.com/gin-gonic/gin"
)

// TweetHandler 动态处理器
type TweetHandler struct {
	service service.TweetService
}

// NewTweetHandler 创建处理器
func NewTweetHandler(service service.TweetService) *TweetHandler {
	return &TweetHandler{service: service}
}

// ContentInput 动态内容输入
type ContentInput struct {
	Content string `json:"content" binding:"required,max=280"`
}

// Create 发表动态
func (h *TweetHandler) Create(c *gin.Context) {
	var input ContentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	owner, _ := middleware.CurrentUser(c)
	tweet, err := h.service.Create(c.Request.Context(), owner, input.Content)
	if err != nil {
		response.InternalError(c, "failed to create tweet")
		return
	}
	response.Created(c, tweet)
}

// ListByUser 用户动态列表
func (h *TweetHandler) ListByUser(c *gin.Context) {
	owner, err := base.ParseID(c.Param("userId"))
	if err != nil {
		response.BadRequest(c, "invalid user id")
		return
	}

	var p utils.Pagination
	if err := c.ShouldBindQuery(&p); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	skip, limit := p.Normalize()

	tweets, total, err := h.service.ListByOwner(c.Request.Context(), owner, skip, limit)
	if err != nil {
		response.InternalError(c, "failed to list tweets")
		return
	}
	response.Success(c, p.NewPageResult(tweets, total))
}

// Update 修改动态
func (h *TweetHandler) Update(c *gin.Context) {
	id, err := base.ParseID(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid tweet id")
		return
	}

	var input ContentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	owner, _ := middleware.CurrentUser(c)
	tweet, err := h.service.Update(c.Request.Context(), id, owner, input.Content)
	if err != nil {
		if errors.Is(err, service.ErrTweetNotFound) {
			response.NotFound(c, response.ErrTweetNotFound, err.Error())
			return
		}
		response.InternalError(c, "failed to update tweet")
		return
	}
	response.Success(c, tweet)
}

// Delete 删除动态
func (h *TweetHandler) Delete(c *gin.Context) {
	id, err := base.ParseID(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid tweet id")
		return
	}

	owner, _ := middleware.CurrentUser(c)
	if err := h.service.Delete(c.Request.Context(), id, owner); err != nil {
		switch {
		case errors.Is(err, cascade.ErrNotFound):
			response.NotFound(c, response.ErrTweetNotFound, "tweet not found")
		case errors.Is(err, cascade.ErrNotOwner):
			response.Forbidden(c, "you do not own this tweet")
		default:
			response.InternalError(c, "failed to delete tweet")
		}
		return
	}
	response.Success(c, nil)
}
