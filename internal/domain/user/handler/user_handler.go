package handler

import (
	"context"
	"errors"
	"mime/multipart"
	"net/http"

	"vidtube/internal/domain/user/model"
	"vidtube/internal/domain/user/service"
	"vidtube/internal/pkg/middleware"
	"vidtube/pkg/response"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserHandler 用户处理器
type UserHandler struct {
	service service.UserService
}

// NewUserHandler 创建处理器
func NewUserHandler(service service.UserService) *UserHandler {
	return &UserHandler{service: service}
}

// LoginInput 登录输入
type LoginInput struct {
	Identifier string `json:"identifier" binding:"required"`
	Password   string `json:"password" binding:"required"`
}

// RefreshInput 刷新令牌输入
type RefreshInput struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// ChangePasswordInput 修改密码输入
type ChangePasswordInput struct {
	OldPassword string `json:"oldPassword" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required,min=8"`
}

// UpdateAccountInput 更新账号输入
type UpdateAccountInput struct {
	FullName string `json:"fullName"`
	Email    string `json:"email" binding:"omitempty,email"`
}

// Register 注册（multipart 表单，头像必传、封面可选）
func (h *UserHandler) Register(c *gin.Context) {
	var form struct {
		Username string `form:"username" binding:"required,min=3,max=30"`
		Email    string `form:"email" binding:"required,email"`
		FullName string `form:"fullName" binding:"required"`
		Password string `form:"password" binding:"required,min=8"`
	}
	if err := c.ShouldBind(&form); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	avatar, err := c.FormFile("avatar")
	if err != nil {
		response.BadRequest(c, "avatar file is required")
		return
	}
	cover, _ := c.FormFile("coverImage")

	user, err := h.service.Register(c.Request.Context(), service.RegisterInput{
		Username: form.Username,
		Email:    form.Email,
		FullName: form.FullName,
		Password: form.Password,
		Avatar:   avatar,
		Cover:    cover,
	})
	if err != nil {
		if errors.Is(err, service.ErrUserExists) {
			response.Error(c, http.StatusConflict, response.ErrUserExists, err.Error())
			return
		}
		response.InternalError(c, "failed to register user")
		return
	}
	response.Created(c, user)
}

// Login 登录，返回用户信息和令牌对
func (h *UserHandler) Login(c *gin.Context) {
	var input LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	user, pair, err := h.service.Login(c.Request.Context(), input.Identifier, input.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			response.Error(c, http.StatusUnauthorized, response.ErrAuthFailed, err.Error())
			return
		}
		response.InternalError(c, "failed to login")
		return
	}
	response.Success(c, gin.H{"user": user, "tokens": pair})
}

// Refresh 用刷新令牌换新令牌对
func (h *UserHandler) Refresh(c *gin.Context) {
	var input RefreshInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	pair, err := h.service.RefreshTokens(c.Request.Context(), input.RefreshToken)
	if err != nil {
		if errors.Is(err, service.ErrInvalidRefresh) {
			response.Error(c, http.StatusUnauthorized, response.ErrTokenInvalid, err.Error())
			return
		}
		response.InternalError(c, "failed to refresh tokens")
		return
	}
	response.Success(c, pair)
}

// Logout 登出
func (h *UserHandler) Logout(c *gin.Context) {
	userID, _ := middleware.CurrentUser(c)
	if err := h.service.Logout(c.Request.Context(), userID); err != nil {
		response.InternalError(c, "failed to logout")
		return
	}
	response.Success(c, nil)
}

// Me 当前用户信息
func (h *UserHandler) Me(c *gin.Context) {
	userID, _ := middleware.CurrentUser(c)
	user, err := h.service.GetByID(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			response.NotFound(c, response.ErrUserNotFound, err.Error())
			return
		}
		response.InternalError(c, "failed to get user")
		return
	}
	response.Success(c, user)
}

// ChangePassword 修改密码
func (h *UserHandler) ChangePassword(c *gin.Context) {
	var input ChangePasswordInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	userID, _ := middleware.CurrentUser(c)
	if err := h.service.ChangePassword(c.Request.Context(), userID, input.OldPassword, input.NewPassword); err != nil {
		switch {
		case errors.Is(err, service.ErrWrongPassword):
			response.Error(c, http.StatusBadRequest, response.ErrAuthFailed, err.Error())
		case errors.Is(err, service.ErrUserNotFound):
			response.NotFound(c, response.ErrUserNotFound, err.Error())
		default:
			response.InternalError(c, "failed to change password")
		}
		return
	}
	response.Success(c, nil)
}

// UpdateAccount 更新姓名/邮箱
func (h *UserHandler) UpdateAccount(c *gin.Context) {
	var input UpdateAccountInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if input.FullName == "" && input.Email == "" {
		response.BadRequest(c, "nothing to update")
		return
	}

	userID, _ := middleware.CurrentUser(c)
	user, err := h.service.UpdateAccount(c.Request.Context(), userID, input.FullName, input.Email)
	if err != nil {
		if errors.Is(err, service.ErrUserExists) {
			response.Error(c, http.StatusConflict, response.ErrUserExists, err.Error())
			return
		}
		response.InternalError(c, "failed to update account")
		return
	}
	response.Success(c, user)
}

// UpdateAvatar 更新头像
func (h *UserHandler) UpdateAvatar(c *gin.Context) {
	h.updateImage(c, "avatar", h.service.UpdateAvatar)
}

// UpdateCover 更新封面
func (h *UserHandler) UpdateCover(c *gin.Context) {
	h.updateImage(c, "coverImage", h.service.UpdateCover)
}

func (h *UserHandler) updateImage(c *gin.Context, field string,
	update func(ctx context.Context, id primitive.ObjectID, file *multipart.FileHeader) (*model.User, error)) {
	file, err := c.FormFile(field)
	if err != nil {
		response.BadRequest(c, field+" file is required")
		return
	}

	userID, _ := middleware.CurrentUser(c)
	user, err := update(c.Request.Context(), userID, file)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			response.NotFound(c, response.ErrUserNotFound, err.Error())
			return
		}
		response.Error(c, http.StatusInternalServerError, response.ErrUploadFailed, "failed to update "+field)
		return
	}
	response.Success(c, user)
}

// ChannelProfile 频道主页
func (h *UserHandler) ChannelProfile(c *gin.Context) {
	username := c.Param("username")
	viewer, _ := middleware.CurrentUser(c)

	profile, err := h.service.ChannelProfile(c.Request.Context(), username, viewer)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			response.NotFound(c, response.ErrUserNotFound, "channel not found")
			return
		}
		response.InternalError(c, "failed to get channel profile")
		return
	}
	response.Success(c, profile)
}

// WatchHistory 观看历史
func (h *UserHandler) WatchHistory(c *gin.Context) {
	userID, _ := middleware.CurrentUser(c)
	history, err := h.service.WatchHistory(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			response.NotFound(c, response.ErrUserNotFound, err.Error())
			return
		}
		response.InternalError(c, "failed to get watch history")
		return
	}
	response.Success(c, history)
}

// DeleteAccount 注销账号
func (h *UserHandler) DeleteAccount(c *gin.Context) {
	userID, _ := middleware.CurrentUser(c)
	if err := h.service.DeleteAccount(c.Request.Context(), userID); err != nil {
		response.InternalError(c, "failed to delete account")
		return
	}
	response.Success(c, nil)
}
