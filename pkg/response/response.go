package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Response 统一响应结构
type Response struct {
	Code    int         `json:"code"`    // 业务码
	Message string      `json:"message"` // 提示信息
	Data    interface{} `json:"data"`    // 数据
}

// Success 成功响应
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    CodeSuccess,
		Message: "success",
		Data:    data,
	})
}

// Created 创建成功响应
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Code:    CodeSuccess,
		Message: "created",
		Data:    data,
	})
}

// Error 错误响应
func Error(c *gin.Context, httpCode int, errCode int, msg string) {
	c.JSON(httpCode, Response{
		Code:    errCode,
		Message: msg,
		Data:    nil,
	})
}

// BadRequest 参数错误响应
func BadRequest(c *gin.Context, msg string) {
	Error(c, http.StatusBadRequest, ErrInvalidParam, msg)
}

// NotFound 资源不存在响应
func NotFound(c *gin.Context, errCode int, msg string) {
	Error(c, http.StatusNotFound, errCode, msg)
}

// Forbidden 无权限响应
func Forbidden(c *gin.Context, msg string) {
	Error(c, http.StatusForbidden, ErrNoPermission, msg)
}

// InternalError 服务器内部错误响应
func InternalError(c *gin.Context, msg string) {
	Error(c, http.StatusInternalServerError, ErrServerInternal, msg)
}
