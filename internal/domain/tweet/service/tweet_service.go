package service

import (
	"context"
	"errors"

	"vidtube/internal/cascade"
	"vidtube/internal/domain/tweet/model"
	"vidtube/internal/domain/tweet/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// ErrTweetNotFound 动态不存在
var ErrTweetNotFound = errors.New("tweet not found")

// TweetService 动态服务接口
type TweetService interface {
	Create(ctx context.Context, owner primitive.ObjectID, content string) (*model.Tweet, error)
	Update(ctx context.Context, id, owner primitive.ObjectID, content string) (*model.Tweet, error)
	ListByOwner(ctx context.Context, owner primitive.ObjectID, skip, limit int64) ([]model.Tweet, int64, error)
	Delete(ctx context.Context, id, owner primitive.ObjectID) error
}

// tweetService 实现
type tweetService struct {
	repo     repository.TweetRepository
	cascader *cascade.Coordinator
}

// NewTweetService 创建动态服务
func NewTweetService(repo repository.TweetRepository, cascader *cascade.Coordinator) TweetService {
	return &tweetService{repo: repo, cascader: cascader}
}

// Create 发表动态
func (s *tweetService) Create(ctx context.Context, owner primitive.ObjectID, content string) (*model.Tweet, error) {
	tweet := &model.Tweet{Content: content, Owner: owner}
	if err := s.repo.Create(ctx, tweet); err != nil {
		return nil, err
	}
	return tweet, nil
}

// Update 修改动态内容
func (s *tweetService) Update(ctx context.Context, id, owner primitive.ObjectID, content string) (*model.Tweet, error) {
	tweet, err := s.repo.Update(ctx, id, owner, content)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrTweetNotFound
		}
		return nil, err
	}
	return tweet, nil
}

// ListByOwner 用户动态列表
func (s *tweetService) ListByOwner(ctx context.Context, owner primitive.ObjectID, skip, limit int64) ([]model.Tweet, int64, error) {
	return s.repo.ListByOwner(ctx, owner, skip, limit)
}

// Delete 删除动态，级联清理点赞
func (s *tweetService) Delete(ctx context.Context, id, owner primitive.ObjectID) error {
	return s.cascader.DeleteTweet(ctx, id, owner)
}
