package service

import (
	"context"
	"errors"

	commentRepo "vidtube/internal/domain/comment/repository"
	"vidtube/internal/domain/like/model"
	"vidtube/internal/domain/like/repository"
	tweetRepo "vidtube/internal/domain/tweet/repository"
	videoModel "vidtube/internal/domain/video/model"
	videoRepo "vidtube/internal/domain/video/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// ErrTargetNotFound 点赞目标不存在
var ErrTargetNotFound = errors.New("like target not found")

// LikeService 点赞服务接口
type LikeService interface {
	Toggle(ctx context.Context, userID primitive.ObjectID, target model.TargetRef) (bool, error)
	ListLikedVideos(ctx context.Context, userID primitive.ObjectID, skip, limit int64) ([]videoModel.WithOwner, int64, error)
}

// likeService 实现
type likeService struct {
	repo     repository.LikeRepository
	videos   videoRepo.VideoRepository
	comments commentRepo.CommentRepository
	tweets   tweetRepo.TweetRepository
}

// NewLikeService 创建点赞服务
func NewLikeService(repo repository.LikeRepository, videos videoRepo.VideoRepository,
	comments commentRepo.CommentRepository, tweets tweetRepo.TweetRepository) LikeService {
	return &likeService{repo: repo, videos: videos, comments: comments, tweets: tweets}
}

// Toggle 点赞开关：已点赞则取消，返回当前是否点赞
func (s *likeService) Toggle(ctx context.Context, userID primitive.ObjectID, target model.TargetRef) (bool, error) {
	// 1. 目标必须存在
	if err := s.targetExists(ctx, target); err != nil {
		return false, err
	}

	// 2. 已点赞则取消
	deleted, err := s.repo.DeleteByTarget(ctx, userID, target)
	if err != nil {
		return false, err
	}
	if deleted > 0 {
		return false, nil
	}

	// 3. 否则创建；并发下撞唯一索引说明别的请求已点上，同样算成功
	like, err := model.New(userID, target)
	if err != nil {
		return false, err
	}
	if err := s.repo.Create(ctx, like); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return true, nil
		}
		return false, err
	}
	return true, nil
}

func (s *likeService) targetExists(ctx context.Context, target model.TargetRef) error {
	var err error
	switch target.Kind {
	case model.TargetVideo:
		_, err = s.videos.GetByID(ctx, target.ID)
	case model.TargetComment:
		_, err = s.comments.GetByID(ctx, target.ID)
	case model.TargetTweet:
		_, err = s.tweets.GetByID(ctx, target.ID)
	default:
		return model.ErrInvalidTarget
	}
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrTargetNotFound
		}
		return err
	}
	return nil
}

// ListLikedVideos 用户点赞过的视频
func (s *likeService) ListLikedVideos(ctx context.Context, userID primitive.ObjectID, skip, limit int64) ([]videoModel.WithOwner, int64, error) {
	return s.repo.ListLikedVideos(ctx, userID, skip, limit)
}
