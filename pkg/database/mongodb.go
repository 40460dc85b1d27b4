package database

import (
	"context"
	"fmt"
	"time"

	"vidtube/internal/pkg/config"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// InitMongo 初始化 MongoDB 连接并确保索引存在
func InitMongo(ctx context.Context, cfg config.MongoConfig) (*mongo.Database, error) {
	clientOptions := options.Client().ApplyURI(cfg.URI)

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("error connecting to mongodb: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, time.Second*5)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		return nil, fmt.Errorf("mongodb cannot be reached after connecting: %w", err)
	}

	db := client.Database(cfg.Database)
	if err := ensureIndexes(ctx, db); err != nil {
		return nil, fmt.Errorf("error creating indexes: %w", err)
	}
	return db, nil
}

// ensureIndexes 创建唯一约束及查询索引
// likes 的唯一约束按目标类型拆成三个 partial unique 索引，
// 保证同一用户对同一目标最多一条点赞记录（并发 toggle 依赖该约束）
func ensureIndexes(ctx context.Context, db *mongo.Database) error {
	unique := options.Index().SetUnique(true)

	indexes := map[string][]mongo.IndexModel{
		"users": {
			{Keys: bson.D{{Key: "username", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		"videos": {
			{Keys: bson.D{{Key: "owner", Value: 1}}},
			{Keys: bson.D{{Key: "title", Value: "text"}, {Key: "description", Value: "text"}}},
		},
		"comments": {
			{Keys: bson.D{{Key: "video", Value: 1}}},
			{Keys: bson.D{{Key: "owner", Value: 1}}},
		},
		"tweets": {
			{Keys: bson.D{{Key: "owner", Value: 1}}},
		},
		"likes": {
			likeTargetIndex("video"),
			likeTargetIndex("comment"),
			likeTargetIndex("tweet"),
		},
		"subscriptions": {
			{Keys: bson.D{{Key: "subscriber", Value: 1}, {Key: "channel", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "channel", Value: 1}}},
		},
		"playlists": {
			{Keys: bson.D{{Key: "owner", Value: 1}}},
		},
	}

	for coll, models := range indexes {
		if _, err := db.Collection(coll).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("collection %s: %w", coll, err)
		}
	}
	return nil
}

func likeTargetIndex(target string) mongo.IndexModel {
	return mongo.IndexModel{
		Keys: bson.D{{Key: "likedBy", Value: 1}, {Key: target, Value: 1}},
		Options: options.Index().
			SetUnique(true).
			SetPartialFilterExpression(bson.M{target: bson.M{"$exists": true}}),
	}
}
