package service

import (
	"context"
	"errors"

	"vidtube/internal/domain/subscription/model"
	"vidtube/internal/domain/subscription/repository"
	userRepo "vidtube/internal/domain/user/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

var (
	ErrSelfSubscribe   = errors.New("cannot subscribe to your own channel")
	ErrChannelNotFound = errors.New("channel not found")
)

// SubscriptionService 订阅服务接口
type SubscriptionService interface {
	Toggle(ctx context.Context, subscriber, channel primitive.ObjectID) (bool, error)
	ListSubscribers(ctx context.Context, channel primitive.ObjectID, skip, limit int64) ([]model.UserEntry, int64, error)
	ListSubscribed(ctx context.Context, subscriber primitive.ObjectID, skip, limit int64) ([]model.UserEntry, int64, error)
}

// subscriptionService 实现
type subscriptionService struct {
	repo  repository.SubscriptionRepository
	users userRepo.UserRepository
}

// NewSubscriptionService 创建订阅服务
func NewSubscriptionService(repo repository.SubscriptionRepository, users userRepo.UserRepository) SubscriptionService {
	return &subscriptionService{repo: repo, users: users}
}

// Toggle 订阅开关：已订阅则退订，返回当前是否订阅
func (s *subscriptionService) Toggle(ctx context.Context, subscriber, channel primitive.ObjectID) (bool, error) {
	// 1. 不允许订阅自己，在进存储层之前拦截
	if subscriber == channel {
		return false, ErrSelfSubscribe
	}

	// 2. 频道必须存在
	if _, err := s.users.GetByID(ctx, channel); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return false, ErrChannelNotFound
		}
		return false, err
	}

	// 3. 已订阅则退订
	deleted, err := s.repo.Delete(ctx, subscriber, channel)
	if err != nil {
		return false, err
	}
	if deleted > 0 {
		return false, nil
	}

	// 4. 否则创建；并发撞唯一索引按已订阅处理
	sub := &model.Subscription{Subscriber: subscriber, Channel: channel}
	if err := s.repo.Create(ctx, sub); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return true, nil
		}
		return false, err
	}
	return true, nil
}

// ListSubscribers 频道的订阅者
func (s *subscriptionService) ListSubscribers(ctx context.Context, channel primitive.ObjectID, skip, limit int64) ([]model.UserEntry, int64, error) {
	return s.repo.ListSubscribers(ctx, channel, skip, limit)
}

// ListSubscribed 用户订阅的频道
func (s *subscriptionService) ListSubscribed(ctx context.Context, subscriber primitive.ObjectID, skip, limit int64) ([]model.UserEntry, int64, error) {
	return s.repo.ListSubscribed(ctx, subscriber, skip, limit)
}
