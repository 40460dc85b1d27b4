package handler

import (
	"context"
	"net/http"
	"time"

	"vidtube/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
)

// HealthHandler 健康检查处理器
type HealthHandler struct {
	db  *mongo.Database
	rdb *redis.Client
}

// NewHealthHandler 创建处理器
func NewHealthHandler(db *mongo.Database, rdb *redis.Client) *HealthHandler {
	return &HealthHandler{db: db, rdb: rdb}
}

// Check 健康检查：探活 MongoDB 和 Redis
func (h *HealthHandler) Check(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := gin.H{"status": "ok", "time": time.Now().Format(time.RFC3339)}

	if err := h.db.Client().Ping(ctx, nil); err != nil {
		status["status"] = "degraded"
		status["mongo"] = err.Error()
	} else {
		status["mongo"] = "up"
	}

	if err := h.rdb.Ping(ctx).Err(); err != nil {
		status["status"] = "degraded"
		status["redis"] = err.Error()
	} else {
		status["redis"] = "up"
	}

	if status["status"] != "ok" {
		response.Error(c, http.StatusServiceUnavailable, response.ErrServerInternal, "dependency check failed")
		return
	}
	response.Success(c, status)
}
