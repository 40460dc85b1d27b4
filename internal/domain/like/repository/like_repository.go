package repository

import (
	"context"

	"vidtube/internal/domain/like/model"
	videoModel "vidtube/internal/domain/video/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// LikeRepository 接口定义
type LikeRepository interface {
	FindByTarget(ctx context.Context, likedBy primitive.ObjectID, target model.TargetRef) (*model.Like, error)
	Create(ctx context.Context, like *model.Like) error
	DeleteByTarget(ctx context.Context, likedBy primitive.ObjectID, target model.TargetRef) (int64, error)
	DeleteByUser(ctx context.Context, userID primitive.ObjectID) (int64, error)
	DeleteAllForTarget(ctx context.Context, target model.TargetRef) (int64, error)
	ListLikedVideos(ctx context.Context, userID primitive.ObjectID, skip, limit int64) ([]videoModel.WithOwner, int64, error)
}

type likeRepository struct {
	coll *mongo.Collection
}

// NewLikeRepository 创建新的仓库实例
func NewLikeRepository(db *mongo.Database) LikeRepository {
	return &likeRepository{coll: db.Collection("likes")}
}

func targetFilter(likedBy primitive.ObjectID, target model.TargetRef) bson.M {
	return bson.M{"likedBy": likedBy, string(target.Kind): target.ID}
}

// FindByTarget 查找某用户对某目标的点赞记录
func (r *likeRepository) FindByTarget(ctx context.Context, likedBy primitive.ObjectID, target model.TargetRef) (*model.Like, error) {
	var like model.Like
	if err := r.coll.FindOne(ctx, targetFilter(likedBy, target)).Decode(&like); err != nil {
		return nil, err
	}
	return &like, nil
}

// Create 创建点赞记录，(likedBy, target) 的唯一性由 partial unique 索引保证
func (r *likeRepository) Create(ctx context.Context, like *model.Like) error {
	res, err := r.coll.InsertOne(ctx, like)
	if err != nil {
		return err
	}
	like.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

// DeleteByTarget 删除某用户对某目标的点赞记录
func (r *likeRepository) DeleteByTarget(ctx context.Context, likedBy primitive.ObjectID, target model.TargetRef) (int64, error) {
	res, err := r.coll.DeleteOne(ctx, targetFilter(likedBy, target))
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// DeleteByUser 删除某用户的全部点赞记录（级联删除用）
func (r *likeRepository) DeleteByUser(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	res, err := r.coll.DeleteMany(ctx, bson.M{"likedBy": userID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// DeleteAllForTarget 删除某目标上的全部点赞记录（级联删除用）
func (r *likeRepository) DeleteAllForTarget(ctx context.Context, target model.TargetRef) (int64, error) {
	res, err := r.coll.DeleteMany(ctx, bson.M{string(target.Kind): target.ID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// ListLikedVideos 用户点赞过的视频列表
func (r *likeRepository) ListLikedVideos(ctx context.Context, userID primitive.ObjectID, skip, limit int64) ([]videoModel.WithOwner, int64, error) {
	match := bson.M{"likedBy": userID, "video": bson.M{"$exists": true}}

	total, err := r.coll.CountDocuments(ctx, match)
	if err != nil {
		return nil, 0, err
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$sort", Value: bson.D{{Key: "createdAt", Value: -1}}}},
		{{Key: "$skip", Value: skip}},
		{{Key: "$limit", Value: limit}},
		{{Key: "$lookup", Value: bson.M{
			"from":         "videos",
			"localField":   "video",
			"foreignField": "_id",
			"as":           "likedVideo",
			"pipeline": bson.A{
				bson.M{"$lookup": bson.M{
					"from":         "users",
					"localField":   "owner",
					"foreignField": "_id",
					"as":           "ownerInfo",
					"pipeline": bson.A{
						bson.M{"$project": bson.M{"username": 1, "fullName": 1, "avatar": 1}},
					},
				}},
				bson.M{"$addFields": bson.M{"ownerInfo": bson.M{"$first": "$ownerInfo"}}},
			},
		}}},
		{{Key: "$unwind", Value: "$likedVideo"}},
		{{Key: "$replaceRoot", Value: bson.M{"newRoot": "$likedVideo"}}},
	}

	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var videos []videoModel.WithOwner
	if err := cursor.All(ctx, &videos); err != nil {
		return nil, 0, err
	}
	return videos, total, nil
}
