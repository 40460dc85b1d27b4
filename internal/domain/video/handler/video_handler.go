package handler

import (
	"errors"
	"net/http"

	"vidtube/internal/cascade"
	"vidtube/internal/domain/video/model"
	"vidtube/internal/domain/video/repository"
	"vidtube/internal/domain/video/service"
	"vidtube/internal/pkg/middleware"
	base "vidtube/pkg/model"
	"vidtube/pkg/response"
	"vidtube/pkg/utils"

	"github.com/gin-gonic/gin"
)

// VideoHandler 视频处理器
type VideoHandler struct {
	service service.VideoService
}

// NewVideoHandler 创建处理器
func NewVideoHandler(service service.VideoService) *VideoHandler {
	return &VideoHandler{service: service}
}

// ListQuery 列表查询参数
type ListQuery struct {
	utils.Pagination
	Query    string `form:"query"`
	Category string `form:"category"`
	Tag      string `form:"tag"`
	UserID   string `form:"userId"`
	SortBy   string `form:"sortBy"`
	SortDir  string `form:"sortDir"`
}

// Publish 发布视频（multipart：视频文件 + 缩略图）
func (h *VideoHandler) Publish(c *gin.Context) {
	var form struct {
		Title       string   `form:"title" binding:"required,max=120"`
		Description string   `form:"description"`
		Category    string   `form:"category"`
		Tags        []string `form:"tags"`
	}
	if err := c.ShouldBind(&form); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	videoFile, err := c.FormFile("videoFile")
	if err != nil {
		response.BadRequest(c, "videoFile is required")
		return
	}
	thumbnail, err := c.FormFile("thumbnail")
	if err != nil {
		response.BadRequest(c, "thumbnail is required")
		return
	}

	owner, _ := middleware.CurrentUser(c)
	video, err := h.service.Publish(c.Request.Context(), owner, service.PublishInput{
		Title:       form.Title,
		Description: form.Description,
		Category:    model.Category(form.Category),
		Tags:        form.Tags,
		VideoFile:   videoFile,
		Thumbnail:   thumbnail,
	})
	if err != nil {
		if errors.Is(err, service.ErrInvalidCategory) {
			response.Error(c, http.StatusBadRequest, response.ErrInvalidCategory, err.Error())
			return
		}
		response.Error(c, http.StatusInternalServerError, response.ErrUploadFailed, "failed to publish video")
		return
	}
	response.Created(c, video)
}

// Get 视频详情（登录用户会记录观看历史）
func (h *VideoHandler) Get(c *gin.Context) {
	id, err := base.ParseID(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid video id")
		return
	}

	viewer, _ := middleware.CurrentUser(c)
	video, err := h.service.Get(c.Request.Context(), id, viewer)
	if err != nil {
		if errors.Is(err, service.ErrVideoNotFound) {
			response.NotFound(c, response.ErrVideoNotFound, err.Error())
			return
		}
		response.InternalError(c, "failed to get video")
		return
	}
	response.Success(c, video)
}

// List 视频分页列表
func (h *VideoHandler) List(c *gin.Context) {
	var q ListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	skip, limit := q.Normalize()

	params := repository.ListParams{
		Query:    q.Query,
		Category: model.Category(q.Category),
		Tag:      q.Tag,
		SortBy:   q.SortBy,
		Skip:     skip,
		Limit:    limit,
	}
	if q.SortDir == "asc" {
		params.SortDir = 1
	} else {
		params.SortDir = -1
	}
	if q.UserID != "" {
		owner, err := base.ParseID(q.UserID)
		if err != nil {
			response.BadRequest(c, "invalid userId")
			return
		}
		params.Owner = &owner
	}

	videos, total, err := h.service.List(c.Request.Context(), params)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCategory) {
			response.Error(c, http.StatusBadRequest, response.ErrInvalidCategory, err.Error())
			return
		}
		response.InternalError(c, "failed to list videos")
		return
	}
	response.Success(c, q.NewPageResult(videos, total))
}

// Update 更新视频信息
func (h *VideoHandler) Update(c *gin.Context) {
	id, err := base.ParseID(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid video id")
		return
	}

	var form struct {
		Title       string   `form:"title"`
		Description string   `form:"description"`
		Category    string   `form:"category"`
		Tags        []string `form:"tags"`
	}
	if err := c.ShouldBind(&form); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	thumbnail, _ := c.FormFile("thumbnail")

	owner, _ := middleware.CurrentUser(c)
	video, err := h.service.Update(c.Request.Context(), id, owner, service.UpdateInput{
		Title:       form.Title,
		Description: form.Description,
		Category:    model.Category(form.Category),
		Tags:        form.Tags,
		Thumbnail:   thumbnail,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrVideoNotFound):
			response.NotFound(c, response.ErrVideoNotFound, err.Error())
		case errors.Is(err, service.ErrInvalidCategory):
			response.Error(c, http.StatusBadRequest, response.ErrInvalidCategory, err.Error())
		default:
			response.InternalError(c, "failed to update video")
		}
		return
	}
	response.Success(c, video)
}

// TogglePublish 翻转发布状态
func (h *VideoHandler) TogglePublish(c *gin.Context) {
	id, err := base.ParseID(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid video id")
		return
	}

	owner, _ := middleware.CurrentUser(c)
	video, err := h.service.TogglePublish(c.Request.Context(), id, owner)
	if err != nil {
		if errors.Is(err, service.ErrVideoNotFound) {
			response.NotFound(c, response.ErrVideoNotFound, err.Error())
			return
		}
		response.InternalError(c, "failed to toggle publish status")
		return
	}
	response.Success(c, video)
}

// Delete 删除视频
func (h *VideoHandler) Delete(c *gin.Context) {
	id, err := base.ParseID(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid video id")
		return
	}

	owner, _ := middleware.CurrentUser(c)
	if err := h.service.Delete(c.Request.Context(), id, owner); err != nil {
		switch {
		case errors.Is(err, cascade.ErrNotFound):
			response.NotFound(c, response.ErrVideoNotFound, "video not found")
		case errors.Is(err, cascade.ErrNotOwner):
			response.Forbidden(c, "you do not own this video")
		default:
			response.InternalError(c, "failed to delete video")
		}
		return
	}
	response.Success(c, nil)
}
