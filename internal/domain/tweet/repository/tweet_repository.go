package repository

import (
	"context"
	"time"

	"vidtube/internal/domain/tweet/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// TweetRepository 接口定义
type TweetRepository interface {
	Create(ctx context.Context, tweet *model.Tweet) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*model.Tweet, error)
	Update(ctx context.Context, id, owner primitive.ObjectID, content string) (*model.Tweet, error)
	ListByOwner(ctx context.Context, owner primitive.ObjectID, skip, limit int64) ([]model.Tweet, int64, error)
	FindByOwner(ctx context.Context, owner primitive.ObjectID) ([]model.Tweet, error)
	Claim(ctx context.Context, id, owner primitive.ObjectID) (*model.Tweet, error)
}

type tweetRepository struct {
	coll *mongo.Collection
}

// NewTweetRepository 创建新的仓库实例
func NewTweetRepository(db *mongo.Database) TweetRepository {
	return &tweetRepository{coll: db.Collection("tweets")}
}

// Create 创建动态
func (r *tweetRepository) Create(ctx context.Context, tweet *model.Tweet) error {
	now := time.Now()
	tweet.CreatedAt = now
	tweet.UpdatedAt = now
	res, err := r.coll.InsertOne(ctx, tweet)
	if err != nil {
		return err
	}
	tweet.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

// GetByID 根据ID获取动态
func (r *tweetRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*model.Tweet, error) {
	var tweet model.Tweet
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&tweet); err != nil {
		return nil, err
	}
	return &tweet, nil
}

// Update 属主修改动态内容
func (r *tweetRepository) Update(ctx context.Context, id, owner primitive.ObjectID, content string) (*model.Tweet, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var tweet model.Tweet
	err := r.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "owner": owner},
		bson.M{"$set": bson.M{"content": content, "updatedAt": time.Now()}}, opts).Decode(&tweet)
	if err != nil {
		return nil, err
	}
	return &tweet, nil
}

// ListByOwner 用户动态分页列表
func (r *tweetRepository) ListByOwner(ctx context.Context, owner primitive.ObjectID, skip, limit int64) ([]model.Tweet, int64, error) {
	filter := bson.M{"owner": owner}

	total, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(skip).
		SetLimit(limit)
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var tweets []model.Tweet
	if err := cursor.All(ctx, &tweets); err != nil {
		return nil, 0, err
	}
	return tweets, total, nil
}

// FindByOwner 获取用户的全部动态（级联删除用）
func (r *tweetRepository) FindByOwner(ctx context.Context, owner primitive.ObjectID) ([]model.Tweet, error) {
	cursor, err := r.coll.Find(ctx, bson.M{"owner": owner})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var tweets []model.Tweet
	if err := cursor.All(ctx, &tweets); err != nil {
		return nil, err
	}
	return tweets, nil
}

// Claim 原子取走动态文档；owner 为零值时表示系统级联，不校验属主
func (r *tweetRepository) Claim(ctx context.Context, id, owner primitive.ObjectID) (*model.Tweet, error) {
	filter := bson.M{"_id": id}
	if owner != primitive.NilObjectID {
		filter["owner"] = owner
	}
	var tweet model.Tweet
	if err := r.coll.FindOneAndDelete(ctx, filter).Decode(&tweet); err != nil {
		return nil, err
	}
	return &tweet, nil
}
