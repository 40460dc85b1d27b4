package service

import (
	"context"
	"errors"

	"vidtube/internal/domain/playlist/model"
	"vidtube/internal/domain/playlist/repository"
	videoRepo "vidtube/internal/domain/video/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

var (
	ErrPlaylistNotFound = errors.New("playlist not found")
	ErrVideoNotFound    = errors.New("video not found")
)

// PlaylistService 播放列表服务接口
type PlaylistService interface {
	Create(ctx context.Context, owner primitive.ObjectID, name, description string) (*model.Playlist, error)
	Get(ctx context.Context, id primitive.ObjectID) (*model.WithVideos, error)
	ListByOwner(ctx context.Context, owner primitive.ObjectID) ([]model.Playlist, error)
	Update(ctx context.Context, id, owner primitive.ObjectID, name, description string) (*model.Playlist, error)
	AddVideo(ctx context.Context, id, owner, videoID primitive.ObjectID) (*model.Playlist, error)
	RemoveVideo(ctx context.Context, id, owner, videoID primitive.ObjectID) (*model.Playlist, error)
	Delete(ctx context.Context, id, owner primitive.ObjectID) error
}

// playlistService 实现
type playlistService struct {
	repo   repository.PlaylistRepository
	videos videoRepo.VideoRepository
}

// NewPlaylistService 创建播放列表服务
func NewPlaylistService(repo repository.PlaylistRepository, videos videoRepo.VideoRepository) PlaylistService {
	return &playlistService{repo: repo, videos: videos}
}

// Create 创建播放列表
func (s *playlistService) Create(ctx context.Context, owner primitive.ObjectID, name, description string) (*model.Playlist, error) {
	playlist := &model.Playlist{Name: name, Description: description, Owner: owner}
	if err := s.repo.Create(ctx, playlist); err != nil {
		return nil, err
	}
	return playlist, nil
}

// Get 播放列表详情（展开视频）
func (s *playlistService) Get(ctx context.Context, id primitive.ObjectID) (*model.WithVideos, error) {
	playlist, err := s.repo.GetWithVideos(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrPlaylistNotFound
		}
		return nil, err
	}
	return playlist, nil
}

// ListByOwner 用户的播放列表
func (s *playlistService) ListByOwner(ctx context.Context, owner primitive.ObjectID) ([]model.Playlist, error) {
	return s.repo.ListByOwner(ctx, owner)
}

// Update 更新名称和描述
func (s *playlistService) Update(ctx context.Context, id, owner primitive.ObjectID, name, description string) (*model.Playlist, error) {
	fields := bson.M{}
	if name != "" {
		fields["name"] = name
	}
	if description != "" {
		fields["description"] = description
	}
	playlist, err := s.repo.Update(ctx, id, owner, fields)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrPlaylistNotFound
		}
		return nil, err
	}
	return playlist, nil
}

// AddVideo 向播放列表添加视频（重复添加幂等）
func (s *playlistService) AddVideo(ctx context.Context, id, owner, videoID primitive.ObjectID) (*model.Playlist, error) {
	if _, err := s.videos.GetByID(ctx, videoID); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrVideoNotFound
		}
		return nil, err
	}

	playlist, err := s.repo.AddVideo(ctx, id, owner, videoID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrPlaylistNotFound
		}
		return nil, err
	}
	return playlist, nil
}

// RemoveVideo 从播放列表移除视频
func (s *playlistService) RemoveVideo(ctx context.Context, id, owner, videoID primitive.ObjectID) (*model.Playlist, error) {
	playlist, err := s.repo.RemoveVideo(ctx, id, owner, videoID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrPlaylistNotFound
		}
		return nil, err
	}
	return playlist, nil
}

// Delete 删除播放列表（只删除列表本身，不影响视频）
func (s *playlistService) Delete(ctx context.Context, id, owner primitive.ObjectID) error {
	deleted, err := s.repo.Delete(ctx, id, owner)
	if err != nil {
		return err
	}
	if deleted == 0 {
		return ErrPlaylistNotFound
	}
	return nil
}
