package handler

import (
	"errors"
	"net/http"

	likeModel "vidtube/internal/domain/like/model"
	"vidtube/internal/domain/like/service"
	"vidtube/internal/pkg/middleware"
	base "vidtube/pkg/model"
	"vidtube/pkg/response"
	"vidtube/pkg/utils"

	"github.com/gin-gonic/gin"
)

// LikeHandler 点赞处理器
type LikeHandler struct {
	service service.LikeService
}

// NewLikeHandler 创建处理器
func NewLikeHandler(service service.LikeService) *LikeHandler {
	return &LikeHandler{service: service}
}

// ToggleVideo 视频点赞开关
func (h *LikeHandler) ToggleVideo(c *gin.Context) {
	h.toggle(c, likeModel.TargetVideo)
}

// ToggleComment 评论点赞开关
func (h *LikeHandler) ToggleComment(c *gin.Context) {
	h.toggle(c, likeModel.TargetComment)
}

// ToggleTweet 动态点赞开关
func (h *LikeHandler) ToggleTweet(c *gin.Context) {
	h.toggle(c, likeModel.TargetTweet)
}

func (h *LikeHandler) toggle(c *gin.Context, kind likeModel.TargetKind) {
	id, err := base.ParseID(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid "+string(kind)+" id")
		return
	}

	userID, _ := middleware.CurrentUser(c)
	liked, err := h.service.Toggle(c.Request.Context(), userID, likeModel.TargetRef{Kind: kind, ID: id})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTargetNotFound):
			response.Error(c, http.StatusNotFound, response.CodeError, string(kind)+" not found")
		case errors.Is(err, likeModel.ErrInvalidTarget):
			response.BadRequest(c, err.Error())
		default:
			response.InternalError(c, "failed to toggle like")
		}
		return
	}
	response.Success(c, gin.H{"liked": liked})
}

// LikedVideos 用户点赞过的视频
func (h *LikeHandler) LikedVideos(c *gin.Context) {
	var p utils.Pagination
	if err := c.ShouldBindQuery(&p); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	skip, limit := p.Normalize()

	userID, _ := middleware.CurrentUser(c)
	videos, total, err := h.service.ListLikedVideos(c.Request.Context(), userID, skip, limit)
	if err != nil {
		response.InternalError(c, "failed to list liked videos")
		return
	}
	response.Success(c, p.NewPageResult(videos, total))
}
