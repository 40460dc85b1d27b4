package service

import (
	"context"
	"errors"

	"vidtube/internal/cascade"
	"vidtube/internal/domain/comment/model"
	"vidtube/internal/domain/comment/repository"
	videoRepo "vidtube/internal/domain/video/repository"
	"vidtube/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

var (
	ErrCommentNotFound = errors.New("comment not found")
	ErrVideoNotFound   = errors.New("video not found")
	ErrReplyTooDeep    = errors.New("replies to replies are not allowed")
	ErrWrongVideo      = errors.New("parent comment belongs to another video")
)

// CommentService 评论服务接口
type CommentService interface {
	Add(ctx context.Context, videoID, owner primitive.ObjectID, content string, parentID *primitive.ObjectID) (*model.Comment, error)
	Update(ctx context.Context, id, owner primitive.ObjectID, content string) (*model.Comment, error)
	ListByVideo(ctx context.Context, videoID primitive.ObjectID, skip, limit int64) ([]model.WithMeta, int64, error)
	ListReplies(ctx context.Context, parentID primitive.ObjectID, skip, limit int64) ([]model.WithMeta, int64, error)
	Delete(ctx context.Context, id, owner primitive.ObjectID) error
}

// commentService 实现
type commentService struct {
	repo     repository.CommentRepository
	videos   videoRepo.VideoRepository
	cascader *cascade.Coordinator
}

// NewCommentService 创建评论服务
func NewCommentService(repo repository.CommentRepository, videos videoRepo.VideoRepository,
	cascader *cascade.Coordinator) CommentService {
	return &commentService{repo: repo, videos: videos, cascader: cascader}
}

// Add 发表评论或回复
// 回复只允许挂在顶层评论下，且父评论必须属于同一视频
func (s *commentService) Add(ctx context.Context, videoID, owner primitive.ObjectID, content string, parentID *primitive.ObjectID) (*model.Comment, error) {
	// 1. 视频必须存在
	if _, err := s.videos.GetByID(ctx, videoID); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrVideoNotFound
		}
		return nil, err
	}

	// 2. 回复时校验父评论
	if parentID != nil {
		parent, err := s.repo.GetByID(ctx, *parentID)
		if err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return nil, ErrCommentNotFound
			}
			return nil, err
		}
		if parent.IsReply() {
			return nil, ErrReplyTooDeep
		}
		if parent.Video != videoID {
			return nil, ErrWrongVideo
		}
	}

	comment := &model.Comment{
		Content:       content,
		Video:         videoID,
		Owner:         owner,
		ParentComment: parentID,
	}
	if err := s.repo.Create(ctx, comment); err != nil {
		return nil, err
	}

	// 3. 登记到父评论的回复列表
	if parentID != nil {
		if err := s.repo.PushReply(ctx, *parentID, comment.ID); err != nil {
			logger.Log.Warn("failed to register reply on parent",
				zap.String("parent", parentID.Hex()), zap.Error(err))
		}
	}
	return comment, nil
}

// Update 修改评论内容
func (s *commentService) Update(ctx context.Context, id, owner primitive.ObjectID, content string) (*model.Comment, error) {
	comment, err := s.repo.Update(ctx, id, owner, content)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrCommentNotFound
		}
		return nil, err
	}
	return comment, nil
}

// ListByVideo 视频的顶层评论列表
func (s *commentService) ListByVideo(ctx context.Context, videoID primitive.ObjectID, skip, limit int64) ([]model.WithMeta, int64, error) {
	return s.repo.ListByVideo(ctx, videoID, skip, limit)
}

// ListReplies 回复列表
func (s *commentService) ListReplies(ctx context.Context, parentID primitive.ObjectID, skip, limit int64) ([]model.WithMeta, int64, error) {
	return s.repo.ListReplies(ctx, parentID, skip, limit)
}

// Delete 删除评论，级联清理点赞和回复
func (s *commentService) Delete(ctx context.Context, id, owner primitive.ObjectID) error {
	return s.cascader.DeleteComment(ctx, id, owner)
}
