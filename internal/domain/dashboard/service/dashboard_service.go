package service

import (
	"context"

	"vidtube/internal/domain/dashboard/model"
	"vidtube/internal/domain/dashboard/repository"
	videoModel "vidtube/internal/domain/video/model"
	videoRepo "vidtube/internal/domain/video/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DashboardService 创作者后台服务接口
type DashboardService interface {
	Stats(ctx context.Context, channel primitive.ObjectID) (*model.Stats, error)
	Videos(ctx context.Context, channel primitive.ObjectID, skip, limit int64) ([]videoModel.WithOwner, int64, error)
}

// dashboardService 实现
type dashboardService struct {
	repo   repository.DashboardRepository
	videos videoRepo.VideoRepository
}

// NewDashboardService 创建创作者后台服务
func NewDashboardService(repo repository.DashboardRepository, videos videoRepo.VideoRepository) DashboardService {
	return &dashboardService{repo: repo, videos: videos}
}

// Stats 频道统计
func (s *dashboardService) Stats(ctx context.Context, channel primitive.ObjectID) (*model.Stats, error) {
	return s.repo.ChannelStats(ctx, channel)
}

// Videos 频道的全部视频，含未发布的
func (s *dashboardService) Videos(ctx context.Context, channel primitive.ObjectID, skip, limit int64) ([]videoModel.WithOwner, int64, error) {
	return s.videos.List(ctx, videoRepo.ListParams{
		Owner:              &channel,
		Skip:               skip,
		Limit:              limit,
		IncludeUnpublished: true,
	})
}
