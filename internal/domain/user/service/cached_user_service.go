package service

import (
	"context"
	"fmt"
	"mime/multipart"
	"strings"
	"time"

	"vidtube/internal/domain/user/model"
	"vidtube/pkg/cache"
	"vidtube/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// 缓存键常量
const (
	channelCacheKeyPrefix = "channel:"
	// 订阅数等统计由订阅模块写入，这里只能靠短 TTL 控制陈旧度
	channelCacheTTL = 5 * time.Minute
)

// CachedUserService 带缓存的用户服务，只对频道主页这类读多写少的聚合做缓存
type CachedUserService struct {
	UserService
	cache cache.CacheService
}

// NewCachedUserService 创建带缓存的用户服务
func NewCachedUserService(inner UserService, cache cache.CacheService) UserService {
	return &CachedUserService{UserService: inner, cache: cache}
}

func channelCacheKey(username string, viewer primitive.ObjectID) string {
	return fmt.Sprintf("%s%s:%s", channelCacheKeyPrefix, username, viewer.Hex())
}

// ChannelProfile 频道主页（带缓存）
func (s *CachedUserService) ChannelProfile(ctx context.Context, username string, viewer primitive.ObjectID) (*model.ChannelProfile, error) {
	// 缓存键和存储里的用户名一样统一小写
	username = strings.ToLower(username)
	key := channelCacheKey(username, viewer)

	var cached model.ChannelProfile
	if err := s.cache.Get(ctx, key, &cached); err == nil {
		return &cached, nil
	}

	profile, err := s.UserService.ChannelProfile(ctx, username, viewer)
	if err != nil {
		return nil, err
	}

	// 缓存失败不影响业务
	if err := s.cache.Set(ctx, key, profile, channelCacheTTL); err != nil {
		logger.Log.Warn("failed to cache channel profile", zap.String("username", username), zap.Error(err))
	}
	return profile, nil
}

// UpdateAccount 更新账号并失效频道缓存
func (s *CachedUserService) UpdateAccount(ctx context.Context, userID primitive.ObjectID, fullName, email string) (*model.User, error) {
	user, err := s.UserService.UpdateAccount(ctx, userID, fullName, email)
	if err != nil {
		return nil, err
	}
	s.invalidateChannel(ctx, user.Username)
	return user, nil
}

// UpdateAvatar 更新头像并失效频道缓存
func (s *CachedUserService) UpdateAvatar(ctx context.Context, userID primitive.ObjectID, file *multipart.FileHeader) (*model.User, error) {
	user, err := s.UserService.UpdateAvatar(ctx, userID, file)
	if err != nil {
		return nil, err
	}
	s.invalidateChannel(ctx, user.Username)
	return user, nil
}

// UpdateCover 更新封面并失效频道缓存
func (s *CachedUserService) UpdateCover(ctx context.Context, userID primitive.ObjectID, file *multipart.FileHeader) (*model.User, error) {
	user, err := s.UserService.UpdateCover(ctx, userID, file)
	if err != nil {
		return nil, err
	}
	s.invalidateChannel(ctx, user.Username)
	return user, nil
}

// DeleteAccount 注销账号并失效频道缓存
func (s *CachedUserService) DeleteAccount(ctx context.Context, userID primitive.ObjectID) error {
	user, err := s.UserService.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := s.UserService.DeleteAccount(ctx, userID); err != nil {
		return err
	}
	s.invalidateChannel(ctx, user.Username)
	return nil
}

func (s *CachedUserService) invalidateChannel(ctx context.Context, username string) {
	if err := s.cache.InvalidatePattern(ctx, channelCacheKeyPrefix+username+":*"); err != nil {
		logger.Log.Warn("failed to invalidate channel cache", zap.String("username", username), zap.Error(err))
	}
}
