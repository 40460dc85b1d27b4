package main

import (
	"context"
	"log"
	"time"

	"vidtube/internal/pkg/config"
	"vidtube/pkg/database"
)

// 独立的索引初始化工具：不启动 API，只连接 MongoDB 并确保
// 唯一约束和查询索引已创建。部署新环境时先跑一遍。
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("failed to load config: ", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := database.InitMongo(ctx, cfg.Mongo)
	if err != nil {
		log.Fatal("migration failed: ", err)
	}
	defer db.Client().Disconnect(context.Background())

	log.Printf("indexes ensured on database %q", cfg.Mongo.Database)
}
