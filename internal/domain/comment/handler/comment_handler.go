package handler

import (
	"errors"
	"net/http"

	"vidtube/internal/cascade"
	"vidtube/internal/domain/comment/service"
	"vidtube/internal/pkg/middleware"
	base "vidtube/pkg/model"
	"vidtube/pkg/response"
	"vidtube/pkg/utils"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CommentHandler 评论处理器
type CommentHandler struct {
	service service.CommentService
}

// NewCommentHandler 创建处理器
func NewCommentHandler(service service.CommentService) *CommentHandler {
	return &CommentHandler{service: service}
}

// AddInput 发表评论输入
type AddInput struct {
	Content  string `json:"content" binding:"required,max=1000"`
	ParentID string `json:"parentId"`
}

// UpdateInput 修改评论输入
type UpdateInput struct {
	Content string `json:"content" binding:"required,max=1000"`
}

// Add 发表评论或回复
func (h *CommentHandler) Add(c *gin.Context) {
	videoID, err := base.ParseID(c.Param("videoId"))
	if err != nil {
		response.BadRequest(c, "invalid video id")
		return
	}

	var input AddInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	var parentID *primitive.ObjectID
	if input.ParentID != "" {
		pid, err := base.ParseID(input.ParentID)
		if err != nil {
			response.BadRequest(c, "invalid parent comment id")
			return
		}
		parentID = &pid
	}

	owner, _ := middleware.CurrentUser(c)
	comment, err := h.service.Add(c.Request.Context(), videoID, owner, input.Content, parentID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrVideoNotFound):
			response.NotFound(c, response.ErrVideoNotFound, err.Error())
		case errors.Is(err, service.ErrCommentNotFound):
			response.NotFound(c, response.ErrCommentNotFound, "parent comment not found")
		case errors.Is(err, service.ErrReplyTooDeep), errors.Is(err, service.ErrWrongVideo):
			response.Error(c, http.StatusBadRequest, response.ErrReplyTooDeep, err.Error())
		default:
			response.InternalError(c, "failed to add comment")
		}
		return
	}
	response.Created(c, comment)
}

// ListByVideo 视频的顶层评论列表
func (h *CommentHandler) ListByVideo(c *gin.Context) {
	videoID, err := base.ParseID(c.Param("videoId"))
	if err != nil {
		response.BadRequest(c, "invalid video id")
		return
	}

	var p utils.Pagination
	if err := c.ShouldBindQuery(&p); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	skip, limit := p.Normalize()

	comments, total, err := h.service.ListByVideo(c.Request.Context(), videoID, skip, limit)
	if err != nil {
		response.InternalError(c, "failed to list comments")
		return
	}
	response.Success(c, p.NewPageResult(comments, total))
}

// ListReplies 回复列表
func (h *CommentHandler) ListReplies(c *gin.Context) {
	parentID, err := base.ParseID(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid comment id")
		return
	}

	var p utils.Pagination
	if err := c.ShouldBindQuery(&p); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	skip, limit := p.Normalize()

	replies, total, err := h.service.ListReplies(c.Request.Context(), parentID, skip, limit)
	if err != nil {
		response.InternalError(c, "failed to list replies")
		return
	}
	response.Success(c, p.NewPageResult(replies, total))
}

// Update 修改评论
func (h *CommentHandler) Update(c *gin.Context) {
	id, err := base.ParseID(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid comment id")
		return
	}

	var input UpdateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	owner, _ := middleware.CurrentUser(c)
	comment, err := h.service.Update(c.Request.Context(), id, owner, input.Content)
	if err != nil {
		if errors.Is(err, service.ErrCommentNotFound) {
			response.NotFound(c, response.ErrCommentNotFound, err.Error())
			return
		}
		response.InternalError(c, "failed to update comment")
		return
	}
	response.Success(c, comment)
}

// Delete 删除评论
func (h *CommentHandler) Delete(c *gin.Context) {
	id, err := base.ParseID(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid comment id")
		return
	}

	owner, _ := middleware.CurrentUser(c)
	if err := h.service.Delete(c.Request.Context(), id, owner); err != nil {
		switch {
		case errors.Is(err, cascade.ErrNotFound):
			response.NotFound(c, response.ErrCommentNotFound, "comment not found")
		case errors.Is(err, cascade.ErrNotOwner):
			response.Forbidden(c, "you do not own this comment")
		default:
			response.InternalError(c, "failed to delete comment")
		}
		return
	}
	response.Success(c, nil)
}
