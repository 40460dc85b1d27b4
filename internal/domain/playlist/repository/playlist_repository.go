package repository

import (
	"context"
	"time"

	"vidtube/internal/domain/playlist/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// PlaylistRepository 接口定义
type PlaylistRepository interface {
	Create(ctx context.Context, playlist *model.Playlist) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*model.Playlist, error)
	GetWithVideos(ctx context.Context, id primitive.ObjectID) (*model.WithVideos, error)
	ListByOwner(ctx context.Context, owner primitive.ObjectID) ([]model.Playlist, error)
	AddVideo(ctx context.Context, id, owner, videoID primitive.ObjectID) (*model.Playlist, error)
	RemoveVideo(ctx context.Context, id, owner, videoID primitive.ObjectID) (*model.Playlist, error)
	Update(ctx context.Context, id, owner primitive.ObjectID, fields bson.M) (*model.Playlist, error)
	Delete(ctx context.Context, id, owner primitive.ObjectID) (int64, error)
	DeleteByOwner(ctx context.Context, owner primitive.ObjectID) (int64, error)
	PullVideoFromAll(ctx context.Context, videoID primitive.ObjectID) (int64, error)
}

type playlistRepository struct {
	coll *mongo.Collection
}

// NewPlaylistRepository 创建新的仓库实例
func NewPlaylistRepository(db *mongo.Database) PlaylistRepository {
	return &playlistRepository{coll: db.Collection("playlists")}
}

// Create 创建播放列表
func (r *playlistRepository) Create(ctx context.Context, playlist *model.Playlist) error {
	now := time.Now()
	playlist.CreatedAt = now
	playlist.UpdatedAt = now
	if playlist.Videos == nil {
		playlist.Videos = []primitive.ObjectID{}
	}
	res, err := r.coll.InsertOne(ctx, playlist)
	if err != nil {
		return err
	}
	playlist.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

// GetByID 根据ID获取播放列表
func (r *playlistRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*model.Playlist, error) {
	var playlist model.Playlist
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&playlist); err != nil {
		return nil, err
	}
	return &playlist, nil
}

// GetWithVideos 播放列表详情，展开视频文档
func (r *playlistRepository) GetWithVideos(ctx context.Context, id primitive.ObjectID) (*model.WithVideos, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"_id": id}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         "videos",
			"localField":   "videos",
			"foreignField": "_id",
			"as":           "videoItems",
		}}},
	}

	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var playlists []model.WithVideos
	if err := cursor.All(ctx, &playlists); err != nil {
		return nil, err
	}
	if len(playlists) == 0 {
		return nil, mongo.ErrNoDocuments
	}
	return &playlists[0], nil
}

// ListByOwner 用户的播放列表
func (r *playlistRepository) ListByOwner(ctx context.Context, owner primitive.ObjectID) ([]model.Playlist, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.coll.Find(ctx, bson.M{"owner": owner}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var playlists []model.Playlist
	if err := cursor.All(ctx, &playlists); err != nil {
		return nil, err
	}
	return playlists, nil
}

// AddVideo $addToSet 保证不重复
func (r *playlistRepository) AddVideo(ctx context.Context, id, owner, videoID primitive.ObjectID) (*model.Playlist, error) {
	return r.findOneAndUpdate(ctx, id, owner, bson.M{
		"$addToSet": bson.M{"videos": videoID},
		"$set":      bson.M{"updatedAt": time.Now()},
	})
}

// RemoveVideo 从播放列表移除视频
func (r *playlistRepository) RemoveVideo(ctx context.Context, id, owner, videoID primitive.ObjectID) (*model.Playlist, error) {
	return r.findOneAndUpdate(ctx, id, owner, bson.M{
		"$pull": bson.M{"videos": videoID},
		"$set":  bson.M{"updatedAt": time.Now()},
	})
}

// Update 更新名称/描述
func (r *playlistRepository) Update(ctx context.Context, id, owner primitive.ObjectID, fields bson.M) (*model.Playlist, error) {
	fields["updatedAt"] = time.Now()
	return r.findOneAndUpdate(ctx, id, owner, bson.M{"$set": fields})
}

func (r *playlistRepository) findOneAndUpdate(ctx context.Context, id, owner primitive.ObjectID, update bson.M) (*model.Playlist, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var playlist model.Playlist
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": id, "owner": owner}, update, opts).Decode(&playlist)
	if err != nil {
		return nil, err
	}
	return &playlist, nil
}

// Delete 属主删除播放列表
func (r *playlistRepository) Delete(ctx context.Context, id, owner primitive.ObjectID) (int64, error) {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id, "owner": owner})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// DeleteByOwner 删除用户的全部播放列表（级联删除用）
func (r *playlistRepository) DeleteByOwner(ctx context.Context, owner primitive.ObjectID) (int64, error) {
	res, err := r.coll.DeleteMany(ctx, bson.M{"owner": owner})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// PullVideoFromAll 从所有播放列表移除该视频（视频级联删除用）
func (r *playlistRepository) PullVideoFromAll(ctx context.Context, videoID primitive.ObjectID) (int64, error) {
	res, err := r.coll.UpdateMany(ctx, bson.M{"videos": videoID},
		bson.M{"$pull": bson.M{"videos": videoID}})
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}
