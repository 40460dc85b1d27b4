package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"vidtube/internal/cascade"
	"vidtube/internal/pkg/config"
	"vidtube/internal/pkg/middleware"
	"vidtube/internal/pkg/registry"
	"vidtube/internal/pkg/uploader"
	"vidtube/pkg/cache"
	"vidtube/pkg/database"
	"vidtube/pkg/logger"
	"vidtube/pkg/metrics"
	"vidtube/pkg/utils"

	// 模块自注册
	_ "vidtube/internal/domain/comment"
	_ "vidtube/internal/domain/common"
	_ "vidtube/internal/domain/dashboard"
	_ "vidtube/internal/domain/like"
	_ "vidtube/internal/domain/playlist"
	_ "vidtube/internal/domain/subscription"
	_ "vidtube/internal/domain/tweet"
	_ "vidtube/internal/domain/user"
	_ "vidtube/internal/domain/video"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

func main() {
	// 1. 加载配置
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// 2. 初始化日志
	if err := logger.Init(cfg.App.Env, cfg.App.Debug); err != nil {
		panic("failed to init logger: " + err.Error())
	}
	defer logger.Sync()

	// 3. 连接 MongoDB 和 Redis
	connectCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	db, err := database.InitMongo(connectCtx, cfg.Mongo)
	cancel()
	if err != nil {
		logger.Log.Fatal("failed to connect mongodb", zap.Error(err))
	}

	rdb, err := database.InitRedis(cfg.Redis)
	if err != nil {
		logger.Log.Fatal("failed to connect redis", zap.Error(err))
	}

	// 4. 对象存储、令牌、级联删除协调器
	up, err := uploader.New(cfg.OSS)
	if err != nil {
		logger.Log.Fatal("failed to init oss uploader", zap.Error(err))
	}
	tokens := utils.NewTokenManager(cfg.JWT.AccessSecret, cfg.JWT.RefreshSecret,
		cfg.JWT.AccessTTL(), cfg.JWT.RefreshTTL())
	cascader := cascade.New(db, up, logger.Log)

	// 5. HTTP 引擎和全局中间件
	gin.SetMode(cfg.Server.Mode)
	r := gin.New()
	collector := metrics.NewCollector()
	r.Use(
		gin.Recovery(),
		middleware.TraceMiddleware(),
		middleware.LoggerMiddleware(),
		middleware.MetricsMiddleware(collector),
		middleware.RateLimitMiddleware(rate.Limit(20), 50),
		cors.New(cors.Config{
			AllowOrigins:     []string{"*"},
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
			ExposeHeaders:    []string{"Content-Length"},
			AllowCredentials: false,
			MaxAge:           12 * time.Hour,
		}),
	)
	r.GET("/metrics", metrics.Handler())

	// 6. 按优先级初始化业务模块
	moduleCtx := &registry.ModuleContext{
		DB:       db,
		Redis:    rdb,
		Cache:    cache.NewRedisCache(rdb),
		Router:   r,
		API:      r.Group("/api/v1"),
		Config:   cfg,
		Tokens:   tokens,
		Uploader: up,
		Cascader: cascader,
	}
	if err := registry.InitModules(moduleCtx); err != nil {
		logger.Log.Fatal("failed to init modules", zap.Error(err))
	}

	// 7. 启动并优雅退出
	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: r,
	}

	go func() {
		logger.Log.Info("server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Fatal("server error", zap.Error(err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	logger.Log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error("forced shutdown", zap.Error(err))
	}
	if err := db.Client().Disconnect(shutdownCtx); err != nil {
		logger.Log.Error("mongodb disconnect error", zap.Error(err))
	}
	if err := rdb.Close(); err != nil {
		logger.Log.Error("redis close error", zap.Error(err))
	}
}
