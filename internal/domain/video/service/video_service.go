package service

import (
	"context"
	"errors"
	"mime/multipart"

	"vidtube/internal/cascade"
	userRepo "vidtube/internal/domain/user/repository"
	"vidtube/internal/domain/video/model"
	"vidtube/internal/domain/video/repository"
	"vidtube/internal/pkg/uploader"
	"vidtube/pkg/logger"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

var (
	ErrVideoNotFound   = errors.New("video not found")
	ErrInvalidCategory = errors.New("invalid video category")
)

// PublishInput 发布视频参数
type PublishInput struct {
	Title       string
	Description string
	Category    model.Category
	Tags        []string
	VideoFile   *multipart.FileHeader
	Thumbnail   *multipart.FileHeader
}

// UpdateInput 更新视频参数
type UpdateInput struct {
	Title       string
	Description string
	Category    model.Category
	Tags        []string
	Thumbnail   *multipart.FileHeader
}

// VideoService 视频服务接口
type VideoService interface {
	Publish(ctx context.Context, owner primitive.ObjectID, in PublishInput) (*model.Video, error)
	Get(ctx context.Context, id, viewer primitive.ObjectID) (*model.WithOwner, error)
	List(ctx context.Context, p repository.ListParams) ([]model.WithOwner, int64, error)
	Update(ctx context.Context, id, owner primitive.ObjectID, in UpdateInput) (*model.Video, error)
	TogglePublish(ctx context.Context, id, owner primitive.ObjectID) (*model.Video, error)
	Delete(ctx context.Context, id, owner primitive.ObjectID) error
}

// videoService 实现
type videoService struct {
	repo     repository.VideoRepository
	users    userRepo.UserRepository
	uploader uploader.Uploader
	cascader *cascade.Coordinator
}

// NewVideoService 创建视频服务
func NewVideoService(repo repository.VideoRepository, users userRepo.UserRepository,
	up uploader.Uploader, cascader *cascade.Coordinator) VideoService {
	return &videoService{repo: repo, users: users, uploader: up, cascader: cascader}
}

// Publish 发布视频：上传视频和缩略图，探测时长后入库
func (s *videoService) Publish(ctx context.Context, owner primitive.ObjectID, in PublishInput) (*model.Video, error) {
	if in.Category == "" {
		in.Category = model.CategoryOther
	}
	if !in.Category.Valid() {
		return nil, ErrInvalidCategory
	}

	// 1. 探测时长（在上传前失败可以省一次上传）
	duration, err := uploader.ProbeDuration(in.VideoFile)
	if err != nil {
		logger.Log.Warn("failed to probe video duration", zap.Error(err))
		duration = 0
	}

	// 2. 上传视频和缩略图
	videoAsset, err := s.uploader.Upload(in.VideoFile, uploader.KindVideo)
	if err != nil {
		return nil, err
	}
	thumbAsset, err := s.uploader.Upload(in.Thumbnail, uploader.KindImage)
	if err != nil {
		// 缩略图失败时回收已上传的视频对象
		if derr := s.uploader.Delete(videoAsset.Key, uploader.KindVideo); derr != nil {
			logger.Log.Warn("failed to delete orphaned video asset",
				zap.String("key", videoAsset.Key), zap.Error(derr))
		}
		return nil, err
	}

	video := &model.Video{
		Owner:       owner,
		VideoFile:   videoAsset,
		Thumbnail:   thumbAsset,
		Title:       in.Title,
		Description: in.Description,
		Duration:    duration,
		IsPublished: true,
		Category:    in.Category,
		Tags:        model.NormalizeTags(in.Tags),
	}
	if err := s.repo.Create(ctx, video); err != nil {
		return nil, err
	}
	return video, nil
}

// Get 获取视频详情：播放数自增，登录用户写入观看历史
func (s *videoService) Get(ctx context.Context, id, viewer primitive.ObjectID) (*model.WithOwner, error) {
	video, err := s.repo.GetWithOwner(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrVideoNotFound
		}
		return nil, err
	}

	if err := s.repo.IncViews(ctx, id); err != nil {
		logger.Log.Warn("failed to increment views", zap.String("video", id.Hex()), zap.Error(err))
	} else {
		video.Views++
	}

	if viewer != primitive.NilObjectID {
		if err := s.users.PushWatchHistory(ctx, viewer, id); err != nil {
			logger.Log.Warn("failed to push watch history", zap.String("user", viewer.Hex()), zap.Error(err))
		}
	}
	return video, nil
}

// List 视频分页列表
func (s *videoService) List(ctx context.Context, p repository.ListParams) ([]model.WithOwner, int64, error) {
	if p.Category != "" && !p.Category.Valid() {
		return nil, 0, ErrInvalidCategory
	}
	return s.repo.List(ctx, p)
}

// Update 更新视频信息，换缩略图时删除旧对象
func (s *videoService) Update(ctx context.Context, id, owner primitive.ObjectID, in UpdateInput) (*model.Video, error) {
	fields := bson.M{}
	if in.Title != "" {
		fields["title"] = in.Title
	}
	if in.Description != "" {
		fields["description"] = in.Description
	}
	if in.Category != "" {
		if !in.Category.Valid() {
			return nil, ErrInvalidCategory
		}
		fields["category"] = in.Category
	}
	if in.Tags != nil {
		fields["tags"] = model.NormalizeTags(in.Tags)
	}

	var oldThumb string
	if in.Thumbnail != nil {
		current, err := s.repo.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return nil, ErrVideoNotFound
			}
			return nil, err
		}
		oldThumb = current.Thumbnail.Key

		asset, err := s.uploader.Upload(in.Thumbnail, uploader.KindImage)
		if err != nil {
			return nil, err
		}
		fields["thumbnail"] = asset
	}

	video, err := s.repo.Update(ctx, id, owner, fields)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrVideoNotFound
		}
		return nil, err
	}

	if oldThumb != "" {
		if err := s.uploader.Delete(oldThumb, uploader.KindImage); err != nil {
			logger.Log.Warn("failed to delete replaced thumbnail asset",
				zap.String("key", oldThumb), zap.Error(err))
		}
	}
	return video, nil
}

// TogglePublish 翻转发布状态
func (s *videoService) TogglePublish(ctx context.Context, id, owner primitive.ObjectID) (*model.Video, error) {
	video, err := s.repo.TogglePublish(ctx, id, owner)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrVideoNotFound
		}
		return nil, err
	}
	return video, nil
}

// Delete 删除视频，级联清理评论、点赞、观看历史和播放列表引用
func (s *videoService) Delete(ctx context.Context, id, owner primitive.ObjectID) error {
	return s.cascader.DeleteVideo(ctx, id, owner)
}
