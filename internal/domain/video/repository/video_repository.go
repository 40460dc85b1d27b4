package repository

import (
	"context"
	"time"

	"vidtube/internal/domain/video/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ListParams 视频列表查询参数
type ListParams struct {
	Query              string
	Category           model.Category
	Tag                string
	Owner              *primitive.ObjectID
	SortBy             string // views | createdAt | duration
	SortDir            int    // 1 升序, -1 降序
	Skip               int64
	Limit              int64
	IncludeUnpublished bool
}

// VideoRepository 接口定义
type VideoRepository interface {
	Create(ctx context.Context, video *model.Video) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*model.Video, error)
	GetWithOwner(ctx context.Context, id primitive.ObjectID) (*model.WithOwner, error)
	List(ctx context.Context, p ListParams) ([]model.WithOwner, int64, error)
	Update(ctx context.Context, id, owner primitive.ObjectID, fields bson.M) (*model.Video, error)
	IncViews(ctx context.Context, id primitive.ObjectID) error
	TogglePublish(ctx context.Context, id, owner primitive.ObjectID) (*model.Video, error)
	FindByOwner(ctx context.Context, owner primitive.ObjectID) ([]model.Video, error)
	Claim(ctx context.Context, id, owner primitive.ObjectID) (*model.Video, error)
}

type videoRepository struct {
	coll *mongo.Collection
}

// NewVideoRepository 创建新的仓库实例
func NewVideoRepository(db *mongo.Database) VideoRepository {
	return &videoRepository{coll: db.Collection("videos")}
}

// Create 创建视频
func (r *videoRepository) Create(ctx context.Context, video *model.Video) error {
	now := time.Now()
	video.CreatedAt = now
	video.UpdatedAt = now
	if video.Tags == nil {
		video.Tags = []string{}
	}
	res, err := r.coll.InsertOne(ctx, video)
	if err != nil {
		return err
	}
	video.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

// GetByID 根据ID获取视频
func (r *videoRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*model.Video, error) {
	var video model.Video
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&video); err != nil {
		return nil, err
	}
	return &video, nil
}

// GetWithOwner 获取视频详情并附带作者摘要
func (r *videoRepository) GetWithOwner(ctx context.Context, id primitive.ObjectID) (*model.WithOwner, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"_id": id}}},
	}
	pipeline = append(pipeline, ownerLookupStages()...)

	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var videos []model.WithOwner
	if err := cursor.All(ctx, &videos); err != nil {
		return nil, err
	}
	if len(videos) == 0 {
		return nil, mongo.ErrNoDocuments
	}
	return &videos[0], nil
}

// List 分页列表：文本搜索、分类/标签/作者过滤、排序
func (r *videoRepository) List(ctx context.Context, p ListParams) ([]model.WithOwner, int64, error) {
	match := bson.M{}
	if !p.IncludeUnpublished {
		match["isPublished"] = true
	}
	if p.Query != "" {
		match["$text"] = bson.M{"$search": p.Query}
	}
	if p.Category != "" {
		match["category"] = p.Category
	}
	if p.Tag != "" {
		match["tags"] = p.Tag
	}
	if p.Owner != nil {
		match["owner"] = *p.Owner
	}

	total, err := r.coll.CountDocuments(ctx, match)
	if err != nil {
		return nil, 0, err
	}

	sortBy := p.SortBy
	switch sortBy {
	case "views", "duration", "createdAt":
	default:
		sortBy = "createdAt"
	}
	sortDir := p.SortDir
	if sortDir != 1 {
		sortDir = -1
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$sort", Value: bson.D{{Key: sortBy, Value: sortDir}}}},
		{{Key: "$skip", Value: p.Skip}},
		{{Key: "$limit", Value: p.Limit}},
	}
	pipeline = append(pipeline, ownerLookupStages()...)

	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var videos []model.WithOwner
	if err := cursor.All(ctx, &videos); err != nil {
		return nil, 0, err
	}
	return videos, total, nil
}

// Update 更新属主视频的指定字段并返回更新后的文档
func (r *videoRepository) Update(ctx context.Context, id, owner primitive.ObjectID, fields bson.M) (*model.Video, error) {
	fields["updatedAt"] = time.Now()
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var video model.Video
	err := r.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "owner": owner},
		bson.M{"$set": fields}, opts).Decode(&video)
	if err != nil {
		return nil, err
	}
	return &video, nil
}

// IncViews 播放计数自增，每次获取视频详情时调用
func (r *videoRepository) IncViews(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.coll.UpdateByID(ctx, id, bson.M{"$inc": bson.M{"views": 1}})
	return err
}

// TogglePublish 翻转发布状态（聚合管道 update 保证单文档原子性）
func (r *videoRepository) TogglePublish(ctx context.Context, id, owner primitive.ObjectID) (*model.Video, error) {
	update := bson.A{
		bson.M{"$set": bson.M{
			"isPublished": bson.M{"$not": "$isPublished"},
			"updatedAt":   time.Now(),
		}},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var video model.Video
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": id, "owner": owner}, update, opts).Decode(&video)
	if err != nil {
		return nil, err
	}
	return &video, nil
}

// FindByOwner 获取用户的全部视频（级联删除用）
func (r *videoRepository) FindByOwner(ctx context.Context, owner primitive.ObjectID) ([]model.Video, error) {
	cursor, err := r.coll.Find(ctx, bson.M{"owner": owner})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var videos []model.Video
	if err := cursor.All(ctx, &videos); err != nil {
		return nil, err
	}
	return videos, nil
}

// Claim 原子取走视频文档；owner 为零值时表示系统级联，不校验属主
func (r *videoRepository) Claim(ctx context.Context, id, owner primitive.ObjectID) (*model.Video, error) {
	filter := bson.M{"_id": id}
	if owner != primitive.NilObjectID {
		filter["owner"] = owner
	}
	var video model.Video
	if err := r.coll.FindOneAndDelete(ctx, filter).Decode(&video); err != nil {
		return nil, err
	}
	return &video, nil
}

// ownerLookupStages 追加作者摘要的公共阶段
func ownerLookupStages() mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$lookup", Value: bson.M{
			"from":         "users",
			"localField":   "owner",
			"foreignField": "_id",
			"as":           "ownerInfo",
			"pipeline": bson.A{
				bson.M{"$project": bson.M{"username": 1, "fullName": 1, "avatar": 1}},
			},
		}}},
		{{Key: "$addFields", Value: bson.M{"ownerInfo": bson.M{"$first": "$ownerInfo"}}}},
	}
}
