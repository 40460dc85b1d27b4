package repository

import (
	"context"
	"time"

	"vidtube/internal/domain/comment/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CommentRepository 接口定义
type CommentRepository interface {
	Create(ctx context.Context, comment *model.Comment) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*model.Comment, error)
	Update(ctx context.Context, id, owner primitive.ObjectID, content string) (*model.Comment, error)
	ListByVideo(ctx context.Context, videoID primitive.ObjectID, skip, limit int64) ([]model.WithMeta, int64, error)
	ListReplies(ctx context.Context, parentID primitive.ObjectID, skip, limit int64) ([]model.WithMeta, int64, error)
	PushReply(ctx context.Context, parentID, replyID primitive.ObjectID) error
	PullReply(ctx context.Context, parentID, replyID primitive.ObjectID) error
	FindByOwner(ctx context.Context, owner primitive.ObjectID) ([]model.Comment, error)
	FindByVideo(ctx context.Context, videoID primitive.ObjectID) ([]model.Comment, error)
	Claim(ctx context.Context, id, owner primitive.ObjectID) (*model.Comment, error)
}

type commentRepository struct {
	coll *mongo.Collection
}

// NewCommentRepository 创建新的仓库实例
func NewCommentRepository(db *mongo.Database) CommentRepository {
	return &commentRepository{coll: db.Collection("comments")}
}

// Create 创建评论
func (r *commentRepository) Create(ctx context.Context, comment *model.Comment) error {
	now := time.Now()
	comment.CreatedAt = now
	comment.UpdatedAt = now
	if comment.Replies == nil {
		comment.Replies = []primitive.ObjectID{}
	}
	res, err := r.coll.InsertOne(ctx, comment)
	if err != nil {
		return err
	}
	comment.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

// GetByID 根据ID获取评论
func (r *commentRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*model.Comment, error) {
	var comment model.Comment
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&comment); err != nil {
		return nil, err
	}
	return &comment, nil
}

// Update 属主修改评论内容
func (r *commentRepository) Update(ctx context.Context, id, owner primitive.ObjectID, content string) (*model.Comment, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var comment model.Comment
	err := r.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "owner": owner},
		bson.M{"$set": bson.M{"content": content, "updatedAt": time.Now()}}, opts).Decode(&comment)
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

// ListByVideo 视频的顶层评论列表，附带作者摘要、点赞数、回复数
func (r *commentRepository) ListByVideo(ctx context.Context, videoID primitive.ObjectID, skip, limit int64) ([]model.WithMeta, int64, error) {
	match := bson.M{"video": videoID, "parentComment": bson.M{"$exists": false}}
	return r.listWithMeta(ctx, match, skip, limit)
}

// ListReplies 某条顶层评论的回复列表
func (r *commentRepository) ListReplies(ctx context.Context, parentID primitive.ObjectID, skip, limit int64) ([]model.WithMeta, int64, error) {
	match := bson.M{"parentComment": parentID}
	return r.listWithMeta(ctx, match, skip, limit)
}

func (r *commentRepository) listWithMeta(ctx context.Context, match bson.M, skip, limit int64) ([]model.WithMeta, int64, error) {
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
			"localField":   "owner",
			"foreignField": "_id",
			"as":           "ownerInfo",
			"pipeline": bson.A{
				bson.M{"$project": bson.M{"username": 1, "fullName": 1, "avatar": 1}},
			},
		}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         "likes",
			"localField":   "_id",
			"foreignField": "comment",
			"as":           "likes",
		}}},
		{{Key: "$addFields", Value: bson.M{
			"ownerInfo":  bson.M{"$first": "$ownerInfo"},
			"likeCount":  bson.M{"$size": "$likes"},
			"replyCount": bson.M{"$size": "$replies"},
		}}},
		{{Key: "$project", Value: bson.M{"likes": 0}}},
	}

	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var comments []model.WithMeta
	if err := cursor.All(ctx, &comments); err != nil {
		return nil, 0, err
	}
	return comments, total, nil
}

// PushReply 将回复 id 追加到父评论的 replies 列表
func (r *commentRepository) PushReply(ctx context.Context, parentID, replyID primitive.ObjectID) error {
	_, err := r.coll.UpdateByID(ctx, parentID, bson.M{"$addToSet": bson.M{"replies": replyID}})
	return err
}

// PullReply 从父评论的 replies 列表中移除回复 id
func (r *commentRepository) PullReply(ctx context.Context, parentID, replyID primitive.ObjectID) error {
	_, err := r.coll.UpdateByID(ctx, parentID, bson.M{"$pull": bson.M{"replies": replyID}})
	return err
}

// FindByOwner 获取用户的全部评论（级联删除用）
func (r *commentRepository) FindByOwner(ctx context.Context, owner primitive.ObjectID) ([]model.Comment, error) {
	return r.findAll(ctx, bson.M{"owner": owner})
}

// FindByVideo 获取视频下的全部评论，含回复（级联删除用）
func (r *commentRepository) FindByVideo(ctx context.Context, videoID primitive.ObjectID) ([]model.Comment, error) {
	return r.findAll(ctx, bson.M{"video": videoID})
}

func (r *commentRepository) findAll(ctx context.Context, filter bson.M) ([]model.Comment, error) {
	cursor, err := r.coll.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var comments []model.Comment
	if err := cursor.All(ctx, &comments); err != nil {
		return nil, err
	}
	return comments, nil
}

// Claim 原子取走评论文档；owner 为零值时表示系统级联，不校验属主
func (r *commentRepository) Claim(ctx context.Context, id, owner primitive.ObjectID) (*model.Comment, error) {
	filter := bson.M{"_id": id}
	if owner != primitive.NilObjectID {
		filter["owner"] = owner
	}
	var comment model.Comment
	if err := r.coll.FindOneAndDelete(ctx, filter).Decode(&comment); err != nil {
		return nil, err
	}
	return &comment, nil
}
