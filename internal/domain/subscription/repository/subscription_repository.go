package repository

import (
	"context"
	"time"

	"vidtube/internal/domain/subscription/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// SubscriptionRepository 接口定义
type SubscriptionRepository interface {
	Find(ctx context.Context, subscriber, channel primitive.ObjectID) (*model.Subscription, error)
	Create(ctx context.Context, sub *model.Subscription) error
	Delete(ctx context.Context, subscriber, channel primitive.ObjectID) (int64, error)
	DeleteByUser(ctx context.Context, userID primitive.ObjectID) (int64, error)
	ListSubscribers(ctx context.Context, channel primitive.ObjectID, skip, limit int64) ([]model.UserEntry, int64, error)
	ListSubscribed(ctx context.Context, subscriber primitive.ObjectID, skip, limit int64) ([]model.UserEntry, int64, error)
}

type subscriptionRepository struct {
	coll *mongo.Collection
}

// NewSubscriptionRepository 创建新的仓库实例
func NewSubscriptionRepository(db *mongo.Database) SubscriptionRepository {
	return &subscriptionRepository{coll: db.Collection("subscriptions")}
}

// Find 查找订阅关系
func (r *subscriptionRepository) Find(ctx context.Context, subscriber, channel primitive.ObjectID) (*model.Subscription, error) {
	var sub model.Subscription
	err := r.coll.FindOne(ctx, bson.M{"subscriber": subscriber, "channel": channel}).Decode(&sub)
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// Create 创建订阅，(subscriber, channel) 唯一性由索引保证
func (r *subscriptionRepository) Create(ctx context.Context, sub *model.Subscription) error {
	sub.CreatedAt = time.Now()
	res, err := r.coll.InsertOne(ctx, sub)
	if err != nil {
		return err
	}
	sub.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

// Delete 取消订阅
func (r *subscriptionRepository) Delete(ctx context.Context, subscriber, channel primitive.ObjectID) (int64, error) {
	res, err := r.coll.DeleteOne(ctx, bson.M{"subscriber": subscriber, "channel": channel})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// DeleteByUser 删除用户作为订阅者或频道的全部订阅关系（级联删除用）
func (r *subscriptionRepository) DeleteByUser(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	res, err := r.coll.DeleteMany(ctx, bson.M{"$or": bson.A{
		bson.M{"subscriber": userID},
		bson.M{"channel": userID},
	}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// ListSubscribers 频道的订阅者列表
func (r *subscriptionRepository) ListSubscribers(ctx context.Context, channel primitive.ObjectID, skip, limit int64) ([]model.UserEntry, int64, error) {
	return r.listUsers(ctx, bson.M{"channel": channel}, "subscriber", skip, limit)
}

// ListSubscribed 用户订阅的频道列表
func (r *subscriptionRepository) ListSubscribed(ctx context.Context, subscriber primitive.ObjectID, skip, limit int64) ([]model.UserEntry, int64, error) {
	return r.listUsers(ctx, bson.M{"subscriber": subscriber}, "channel", skip, limit)
}

func (r *subscriptionRepository) listUsers(ctx context.Context, match bson.M, localField string, skip, limit int64) ([]model.UserEntry, int64, error) {
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
			"from":         "users",
			"localField":   localField,
			"foreignField": "_id",
			"as":           "user",
			"pipeline": bson.A{
				bson.M{"$project": bson.M{"username": 1, "fullName": 1, "avatar": 1}},
			},
		}}},
		{{Key: "$addFields", Value: bson.M{"user": bson.M{"$first": "$user"}}}},
		{{Key: "$project", Value: bson.M{"user": 1, "createdAt": 1}}},
	}

	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var entries []model.UserEntry
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}
