package service

import (
	"context"
	"testing"

	"vidtube/internal/domain/playlist/model"
	videoModel "vidtube/internal/domain/video/model"
	videoRepo "vidtube/internal/domain/video/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// MockPlaylistRepository 模拟播放列表仓库
type MockPlaylistRepository struct {
	mock.Mock
}

func (m *MockPlaylistRepository) Create(ctx context.Context, playlist *model.Playlist) error {
	args := m.Called(ctx, playlist)
	return args.Error(0)
}

func (m *MockPlaylistRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*model.Playlist, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Playlist), args.Error(1)
}

func (m *MockPlaylistRepository) GetWithVideos(ctx context.Context, id primitive.ObjectID) (*model.WithVideos, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.WithVideos), args.Error(1)
}

func (m *MockPlaylistRepository) ListByOwner(ctx context.Context, owner primitive.ObjectID) ([]model.Playlist, error) {
	args := m.Called(ctx, owner)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Playlist), args.Error(1)
}

func (m *MockPlaylistRepository) AddVideo(ctx context.Context, id, owner, videoID primitive.ObjectID) (*model.Playlist, error) {
	args := m.Called(ctx, id, owner, videoID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Playlist), args.Error(1)
}

func (m *MockPlaylistRepository) RemoveVideo(ctx context.Context, id, owner, videoID primitive.ObjectID) (*model.Playlist, error) {
	args := m.Called(ctx, id, owner, videoID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Playlist), args.Error(1)
}

func (m *MockPlaylistRepository) Update(ctx context.Context, id, owner primitive.ObjectID, fields bson.M) (*model.Playlist, error) {
	args := m.Called(ctx, id, owner, fields)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Playlist), args.Error(1)
}

func (m *MockPlaylistRepository) Delete(ctx context.Context, id, owner primitive.ObjectID) (int64, error) {
	args := m.Called(ctx, id, owner)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPlaylistRepository) DeleteByOwner(ctx context.Context, owner primitive.ObjectID) (int64, error) {
	args := m.Called(ctx, owner)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPlaylistRepository) PullVideoFromAll(ctx context.Context, videoID primitive.ObjectID) (int64, error) {
	args := m.Called(ctx, videoID)
	return args.Get(0).(int64), args.Error(1)
}

// MockVideoRepository 模拟视频仓库
type MockVideoRepository struct {
	mock.Mock
}

func (m *MockVideoRepository) Create(ctx context.Context, video *videoModel.Video) error {
	args := m.Called(ctx, video)
	return args.Error(0)
}

func (m *MockVideoRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*videoModel.Video, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*videoModel.Video), args.Error(1)
}

func (m *MockVideoRepository) GetWithOwner(ctx context.Context, id primitive.ObjectID) (*videoModel.WithOwner, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*videoModel.WithOwner), args.Error(1)
}

func (m *MockVideoRepository) List(ctx context.Context, p videoRepo.ListParams) ([]videoModel.WithOwner, int64, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]videoModel.WithOwner), args.Get(1).(int64), args.Error(2)
}

func (m *MockVideoRepository) Update(ctx context.Context, id, owner primitive.ObjectID, fields bson.M) (*videoModel.Video, error) {
	args := m.Called(ctx, id, owner, fields)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*videoModel.Video), args.Error(1)
}

func (m *MockVideoRepository) IncViews(ctx context.Context, id primitive.ObjectID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockVideoRepository) TogglePublish(ctx context.Context, id, owner primitive.ObjectID) (*videoModel.Video, error) {
	args := m.Called(ctx, id, owner)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*videoModel.Video), args.Error(1)
}

func (m *MockVideoRepository) FindByOwner(ctx context.Context, owner primitive.ObjectID) ([]videoModel.Video, error) {
	args := m.Called(ctx, owner)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]videoModel.Video), args.Error(1)
}

func (m *MockVideoRepository) Claim(ctx context.Context, id, owner primitive.ObjectID) (*videoModel.Video, error) {
	args := m.Called(ctx, id, owner)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*videoModel.Video), args.Error(1)
}

func TestPlaylistCreate(t *testing.T) {
	t.Run("创建播放列表", func(t *testing.T) {
		repo := new(MockPlaylistRepository)
		videos := new(MockVideoRepository)
		svc := NewPlaylistService(repo, videos)

		owner := primitive.NewObjectID()
		repo.On("Create", mock.Anything, mock.AnythingOfType("*model.Playlist")).Return(nil)

		playlist, err := svc.Create(context.Background(), owner, "favorites", "my favorite videos")

		assert.NoError(t, err)
		assert.Equal(t, "favorites", playlist.Name)
		assert.Equal(t, owner, playlist.Owner)
		repo.AssertExpectations(t)
	})
}

func TestPlaylistAddVideo(t *testing.T) {
	owner := primitive.NewObjectID()
	playlistID := primitive.NewObjectID()
	videoID := primitive.NewObjectID()

	t.Run("添加视频成功", func(t *testing.T) {
		repo := new(MockPlaylistRepository)
		videos := new(MockVideoRepository)
		svc := NewPlaylistService(repo, videos)

		videos.On("GetByID", mock.Anything, videoID).
			Return(&videoModel.Video{ID: videoID}, nil)
		repo.On("AddVideo", mock.Anything, playlistID, owner, videoID).
			Return(&model.Playlist{ID: playlistID, Owner: owner, Videos: []primitive.ObjectID{videoID}}, nil)

		playlist, err := svc.AddVideo(context.Background(), playlistID, owner, videoID)

		assert.NoError(t, err)
		assert.Contains(t, playlist.Videos, videoID)
		repo.AssertExpectations(t)
	})

	t.Run("视频不存在", func(t *testing.T) {
		repo := new(MockPlaylistRepository)
		videos := new(MockVideoRepository)
		svc := NewPlaylistService(repo, videos)

		videos.On("GetByID", mock.Anything, videoID).Return(nil, mongo.ErrNoDocuments)

		_, err := svc.AddVideo(context.Background(), playlistID, owner, videoID)

		assert.ErrorIs(t, err, ErrVideoNotFound)
		// 视频校验失败时不应该动播放列表
		repo.AssertNotCalled(t, "AddVideo", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("播放列表不存在或不属于自己", func(t *testing.T) {
		repo := new(MockPlaylistRepository)
		videos := new(MockVideoRepository)
		svc := NewPlaylistService(repo, videos)

		videos.On("GetByID", mock.Anything, videoID).
			Return(&videoModel.Video{ID: videoID}, nil)
		repo.On("AddVideo", mock.Anything, playlistID, owner, videoID).
			Return(nil, mongo.ErrNoDocuments)

		_, err := svc.AddVideo(context.Background(), playlistID, owner, videoID)

		assert.ErrorIs(t, err, ErrPlaylistNotFound)
	})
}

func TestPlaylistRemoveVideo(t *testing.T) {
	t.Run("播放列表不存在", func(t *testing.T) {
		repo := new(MockPlaylistRepository)
		videos := new(MockVideoRepository)
		svc := NewPlaylistService(repo, videos)

		playlistID := primitive.NewObjectID()
		owner := primitive.NewObjectID()
		videoID := primitive.NewObjectID()
		repo.On("RemoveVideo", mock.Anything, playlistID, owner, videoID).
			Return(nil, mongo.ErrNoDocuments)

		_, err := svc.RemoveVideo(context.Background(), playlistID, owner, videoID)

		assert.ErrorIs(t, err, ErrPlaylistNotFound)
	})
}

func TestPlaylistDelete(t *testing.T) {
	playlistID := primitive.NewObjectID()
	owner := primitive.NewObjectID()

	t.Run("删除成功", func(t *testing.T) {
		repo := new(MockPlaylistRepository)
		videos := new(MockVideoRepository)
		svc := NewPlaylistService(repo, videos)

		repo.On("Delete", mock.Anything, playlistID, owner).Return(int64(1), nil)

		err := svc.Delete(context.Background(), playlistID, owner)

		assert.NoError(t, err)
		repo.AssertExpectations(t)
	})

	t.Run("没有匹配的文档", func(t *testing.T) {
		repo := new(MockPlaylistRepository)
		videos := new(MockVideoRepository)
		svc := NewPlaylistService(repo, videos)

		repo.On("Delete", mock.Anything, playlistID, owner).Return(int64(0), nil)

		err := svc.Delete(context.Background(), playlistID, owner)

		assert.ErrorIs(t, err, ErrPlaylistNotFound)
	})
}
