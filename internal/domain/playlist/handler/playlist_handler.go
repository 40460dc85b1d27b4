package handler

import (
	"context"
	"errors"

	"vidtube/internal/domain/playlist/model"
	"vidtube/internal/domain/playlist/service"
	"vidtube/internal/pkg/middleware"
	base "vidtube/pkg/model"
	"vidtube/pkg/response"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PlaylistHandler 播放列表处理器
type PlaylistHandler struct {
	service service.PlaylistService
}

// NewPlaylistHandler 创建处理器
func NewPlaylistHandler(service service.PlaylistService) *PlaylistHandler {
	return &PlaylistHandler{service: service}
}

// CreateInput 创建播放列表输入
type CreateInput struct {
	Name        string `json:"name" binding:"required,max=100"`
	Description string `json:"description" binding:"max=500"`
}

// UpdateInput 更新播放列表输入
type UpdateInput struct {
	Name        string `json:"name" binding:"max=100"`
	Description string `json:"description" binding:"max=500"`
}

// Create 创建播放列表
func (h *PlaylistHandler) Create(c *gin.Context) {
	var input CreateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	owner, _ := middleware.CurrentUser(c)
	playlist, err := h.service.Create(c.Request.Context(), owner, input.Name, input.Description)
	if err != nil {
		response.InternalError(c, "failed to create playlist")
		return
	}
	response.Created(c, playlist)
}

// Get 播放列表详情
func (h *PlaylistHandler) Get(c *gin.Context) {
	id, err := base.ParseID(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid playlist id")
		return
	}

	playlist, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrPlaylistNotFound) {
			response.NotFound(c, response.ErrPlaylistNotFound, err.Error())
			return
		}
		response.InternalError(c, "failed to get playlist")
		return
	}
	response.Success(c, playlist)
}

// ListByUser 用户的播放列表
func (h *PlaylistHandler) ListByUser(c *gin.Context) {
	owner, err := base.ParseID(c.Param("userId"))
	if err != nil {
		response.BadRequest(c, "invalid user id")
		return
	}

	playlists, err := h.service.ListByOwner(c.Request.Context(), owner)
	if err != nil {
		response.InternalError(c, "failed to list playlists")
		return
	}
	response.Success(c, playlists)
}

// Update 更新名称/描述
func (h *PlaylistHandler) Update(c *gin.Context) {
	id, err := base.ParseID(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid playlist id")
		return
	}

	var input UpdateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if input.Name == "" && input.Description == "" {
		response.BadRequest(c, "nothing to update")
		return
	}

	owner, _ := middleware.CurrentUser(c)
	playlist, err := h.service.Update(c.Request.Context(), id, owner, input.Name, input.Description)
	if err != nil {
		if errors.Is(err, service.ErrPlaylistNotFound) {
			response.NotFound(c, response.ErrPlaylistNotFound, err.Error())
			return
		}
		response.InternalError(c, "failed to update playlist")
		return
	}
	response.Success(c, playlist)
}

// AddVideo 向播放列表添加视频
func (h *PlaylistHandler) AddVideo(c *gin.Context) {
	h.mutateVideo(c, h.service.AddVideo)
}

// RemoveVideo 从播放列表移除视频
func (h *PlaylistHandler) RemoveVideo(c *gin.Context) {
	h.mutateVideo(c, h.service.RemoveVideo)
}

func (h *PlaylistHandler) mutateVideo(c *gin.Context,
	op func(ctx context.Context, id, owner, videoID primitive.ObjectID) (*model.Playlist, error)) {
	id, err := base.ParseID(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid playlist id")
		return
	}
	videoID, err := base.ParseID(c.Param("videoId"))
	if err != nil {
		response.BadRequest(c, "invalid video id")
		return
	}

	owner, _ := middleware.CurrentUser(c)
	playlist, err := op(c.Request.Context(), id, owner, videoID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPlaylistNotFound):
			response.NotFound(c, response.ErrPlaylistNotFound, err.Error())
		case errors.Is(err, service.ErrVideoNotFound):
			response.NotFound(c, response.ErrVideoNotFound, err.Error())
		default:
			response.InternalError(c, "failed to update playlist videos")
		}
		return
	}
	response.Success(c, playlist)
}

// Delete 删除播放列表
func (h *PlaylistHandler) Delete(c *gin.Context) {
	id, err := base.ParseID(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid playlist id")
		return
	}

	owner, _ := middleware.CurrentUser(c)
	if err := h.service.Delete(c.Request.Context(), id, owner); err != nil {
		if errors.Is(err, service.ErrPlaylistNotFound) {
			response.NotFound(c, response.ErrPlaylistNotFound, err.Error())
			return
		}
		response.InternalError(c, "failed to delete playlist")
		return
	}
	response.Success(c, nil)
}
