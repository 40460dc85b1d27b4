package repository

import (
	"context"

	"vidtube/internal/domain/dashboard/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// DashboardRepository 频道统计，跨集合聚合
type DashboardRepository interface {
	ChannelStats(ctx context.Context, channel primitive.ObjectID) (*model.Stats, error)
}

type dashboardRepository struct {
	videos        *mongo.Collection
	subscriptions *mongo.Collection
}

// NewDashboardRepository 创建新的仓库实例
func NewDashboardRepository(db *mongo.Database) DashboardRepository {
	return &dashboardRepository{
		videos:        db.Collection("videos"),
		subscriptions: db.Collection("subscriptions"),
	}
}

// ChannelStats 统计频道的视频数、总播放量、总点赞数与订阅数
func (r *dashboardRepository) ChannelStats(ctx context.Context, channel primitive.ObjectID) (*model.Stats, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"owner": channel}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         "likes",
			"localField":   "_id",
			"foreignField": "video",
			"as":           "likes",
		}}},
		{{Key: "$group", Value: bson.M{
			"_id":         nil,
			"totalVideos": bson.M{"$sum": 1},
			"totalViews":  bson.M{"$sum": "$views"},
			"totalLikes":  bson.M{"$sum": bson.M{"$size": "$likes"}},
		}}},
	}

	cursor, err := r.videos.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var rows []struct {
		TotalVideos int64 `bson:"totalVideos"`
		TotalViews  int64 `bson:"totalViews"`
		TotalLikes  int64 `bson:"totalLikes"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, err
	}

	stats := &model.Stats{}
	if len(rows) > 0 {
		stats.TotalVideos = rows[0].TotalVideos
		stats.TotalViews = rows[0].TotalViews
		stats.TotalLikes = rows[0].TotalLikes
	}

	subs, err := r.subscriptions.CountDocuments(ctx, bson.M{"channel": channel})
	if err != nil {
		return nil, err
	}
	stats.TotalSubscribers = subs
	return stats, nil
}
