package repository

import (
	"context"
	"time"

	"vidtube/internal/domain/user/model"
	videoModel "vidtube/internal/domain/video/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// UserRepository 接口定义
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	GetByUsernameOrEmail(ctx context.Context, identifier string) (*model.User, error)
	UpdateFields(ctx context.Context, id primitive.ObjectID, fields bson.M) (*model.User, error)
	SetRefreshToken(ctx context.Context, id primitive.ObjectID, token string) error
	ChannelProfile(ctx context.Context, username string, viewer primitive.ObjectID) (*model.ChannelProfile, error)
	WatchHistory(ctx context.Context, userID primitive.ObjectID) ([]videoModel.WithOwner, error)
	PushWatchHistory(ctx context.Context, userID, videoID primitive.ObjectID) error
	PullWatchHistoryAll(ctx context.Context, videoID primitive.ObjectID) (int64, error)
	Claim(ctx context.Context, id primitive.ObjectID) (*model.User, error)
}

// userRepository 实现
type userRepository struct {
	coll *mongo.Collection
}

// NewUserRepository 创建新的仓库实例
func NewUserRepository(db *mongo.Database) UserRepository {
	return &userRepository{coll: db.Collection("users")}
}

// Create 创建用户
func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	if user.WatchHistory == nil {
		user.WatchHistory = []primitive.ObjectID{}
	}
	res, err := r.coll.InsertOne(ctx, user)
	if err != nil {
		return err
	}
	user.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

// GetByID 根据ID获取用户
func (r *userRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*model.User, error) {
	var user model.User
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&user); err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByUsername 根据用户名获取用户
func (r *userRepository) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	var user model.User
	if err := r.coll.FindOne(ctx, bson.M{"username": username}).Decode(&user); err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByUsernameOrEmail 登录标识可以是用户名或邮箱
func (r *userRepository) GetByUsernameOrEmail(ctx context.Context, identifier string) (*model.User, error) {
	filter := bson.M{"$or": bson.A{
		bson.M{"username": identifier},
		bson.M{"email": identifier},
	}}
	var user model.User
	if err := r.coll.FindOne(ctx, filter).Decode(&user); err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateFields 更新指定字段并返回更新后的文档
func (r *userRepository) UpdateFields(ctx context.Context, id primitive.ObjectID, fields bson.M) (*model.User, error) {
	fields["updatedAt"] = time.Now()
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var user model.User
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": fields}, opts).Decode(&user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// SetRefreshToken 持久化刷新令牌（登出时传空串清除）
func (r *userRepository) SetRefreshToken(ctx context.Context, id primitive.ObjectID, token string) error {
	update := bson.M{"$set": bson.M{"refreshToken": token}}
	if token == "" {
		update = bson.M{"$unset": bson.M{"refreshToken": ""}}
	}
	_, err := r.coll.UpdateByID(ctx, id, update)
	return err
}

// ChannelProfile 频道主页：$lookup 订阅集合统计订阅数并判断访问者是否已订阅
func (r *userRepository) ChannelProfile(ctx context.Context, username string, viewer primitive.ObjectID) (*model.ChannelProfile, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"username": username}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         "subscriptions",
			"localField":   "_id",
			"foreignField": "channel",
			"as":           "subscribers",
		}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         "subscriptions",
			"localField":   "_id",
			"foreignField": "subscriber",
			"as":           "subscribedTo",
		}}},
		{{Key: "$addFields", Value: bson.M{
			"subscriberCount":   bson.M{"$size": "$subscribers"},
			"subscribedToCount": bson.M{"$size": "$subscribedTo"},
			"isSubscribed":      bson.M{"$in": bson.A{viewer, "$subscribers.subscriber"}},
		}}},
		{{Key: "$project", Value: bson.M{
			"username": 1, "fullName": 1, "avatar": 1, "coverImage": 1,
			"subscriberCount": 1, "subscribedToCount": 1, "isSubscribed": 1, "createdAt": 1,
		}}},
	}

	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var profiles []model.ChannelProfile
	if err := cursor.All(ctx, &profiles); err != nil {
		return nil, err
	}
	if len(profiles) == 0 {
		return nil, mongo.ErrNoDocuments
	}
	return &profiles[0], nil
}

// WatchHistory 观看历史：按记录顺序展开视频文档并附带作者摘要
func (r *userRepository) WatchHistory(ctx context.Context, userID primitive.ObjectID) ([]videoModel.WithOwner, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"_id": userID}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         "videos",
			"localField":   "watchHistory",
			"foreignField": "_id",
			"as":           "videos",
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
		{{Key: "$project", Value: bson.M{"videos": 1, "watchHistory": 1}}},
	}

	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var results []struct {
		WatchHistory []primitive.ObjectID   `bson:"watchHistory"`
		Videos       []videoModel.WithOwner `bson:"videos"`
	}
	if err := cursor.All(ctx, &results); err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, mongo.ErrNoDocuments
	}
	return orderByHistory(results[0].WatchHistory, results[0].Videos), nil
}

// orderByHistory $lookup 不保证 join 结果的顺序，按 watchHistory
// 原数组重排（最新在前），悬挂的视频引用被丢弃
func orderByHistory(history []primitive.ObjectID, videos []videoModel.WithOwner) []videoModel.WithOwner {
	byID := make(map[primitive.ObjectID]int, len(videos))
	for i := range videos {
		byID[videos[i].ID] = i
	}
	ordered := make([]videoModel.WithOwner, 0, len(videos))
	for _, id := range history {
		if i, ok := byID[id]; ok {
			ordered = append(ordered, videos[i])
		}
	}
	return ordered
}

// PushWatchHistory 将视频移到观看历史最前（先去重再插入）
func (r *userRepository) PushWatchHistory(ctx context.Context, userID, videoID primitive.ObjectID) error {
	if _, err := r.coll.UpdateByID(ctx, userID, bson.M{"$pull": bson.M{"watchHistory": videoID}}); err != nil {
		return err
	}
	_, err := r.coll.UpdateByID(ctx, userID, bson.M{
		"$push": bson.M{"watchHistory": bson.M{"$each": bson.A{videoID}, "$position": 0}},
	})
	return err
}

// PullWatchHistoryAll 从所有用户的观看历史中移除该视频（视频级联删除用）
func (r *userRepository) PullWatchHistoryAll(ctx context.Context, videoID primitive.ObjectID) (int64, error) {
	res, err := r.coll.UpdateMany(ctx, bson.M{"watchHistory": videoID},
		bson.M{"$pull": bson.M{"watchHistory": videoID}})
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

// Claim 原子取走用户文档，作为级联删除的起点
func (r *userRepository) Claim(ctx context.Context, id primitive.ObjectID) (*model.User, error) {
	var user model.User
	if err := r.coll.FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&user); err != nil {
		return nil, err
	}
	return &user, nil
}
