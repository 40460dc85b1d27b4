package service

import (
	"context"
	"errors"
	"mime/multipart"
	"testing"
	"time"

	"vidtube/internal/domain/user/model"
	videoModel "vidtube/internal/domain/video/model"
	"vidtube/internal/pkg/uploader"
	"vidtube/pkg/logger"
	base "vidtube/pkg/model"
	"vidtube/pkg/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// MockUserRepository is a mock of UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) GetByUsernameOrEmail(ctx context.Context, identifier string) (*model.User, error) {
	args := m.Called(ctx, identifier)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) UpdateFields(ctx context.Context, id primitive.ObjectID, fields bson.M) (*model.User, error) {
	args := m.Called(ctx, id, fields)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) SetRefreshToken(ctx context.Context, id primitive.ObjectID, token string) error {
	args := m.Called(ctx, id, token)
	return args.Error(0)
}

func (m *MockUserRepository) ChannelProfile(ctx context.Context, username string, viewer primitive.ObjectID) (*model.ChannelProfile, error) {
	args := m.Called(ctx, username, viewer)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ChannelProfile), args.Error(1)
}

func (m *MockUserRepository) WatchHistory(ctx context.Context, userID primitive.ObjectID) ([]videoModel.WithOwner, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]videoModel.WithOwner), args.Error(1)
}

func (m *MockUserRepository) PushWatchHistory(ctx context.Context, userID, videoID primitive.ObjectID) error {
	args := m.Called(ctx, userID, videoID)
	return args.Error(0)
}

func (m *MockUserRepository) PullWatchHistoryAll(ctx context.Context, videoID primitive.ObjectID) (int64, error) {
	args := m.Called(ctx, videoID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockUserRepository) Claim(ctx context.Context, id primitive.ObjectID) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

// MockUploader is a mock of uploader.Uploader
type MockUploader struct {
	mock.Mock
}

func (m *MockUploader) Upload(file *multipart.FileHeader, kind uploader.Kind) (base.Asset, error) {
	args := m.Called(file, kind)
	return args.Get(0).(base.Asset), args.Error(1)
}

func (m *MockUploader) Delete(key string, kind uploader.Kind) error {
	args := m.Called(key, kind)
	return args.Error(0)
}

func newTestTokens() *utils.TokenManager {
	return utils.NewTokenManager(
		"test-access-secret-0123456789-0123456789",
		"test-refresh-secret-0123456789-0123456789",
		time.Hour, 24*time.Hour,
	)
}

func hashPassword(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	assert.NoError(t, err)
	return string(hash)
}

func TestRegister(t *testing.T) {
	ctx := context.Background()

	t.Run("Register success without images", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		mockUp := new(MockUploader)
		svc := NewUserService(mockRepo, newTestTokens(), mockUp, nil)

		mockRepo.On("GetByUsernameOrEmail", ctx, "alice").Return(nil, mongo.ErrNoDocuments)
		mockRepo.On("GetByUsernameOrEmail", ctx, "alice@example.com").Return(nil, mongo.ErrNoDocuments)
		mockRepo.On("Create", ctx, mock.AnythingOfType("*model.User")).Return(nil)

		user, err := svc.Register(ctx, RegisterInput{
			Username: "alice",
			Email:    "alice@example.com",
			FullName: "Alice",
			Password: "supersecret",
		})

		assert.NoError(t, err)
		assert.Equal(t, "alice", user.Username)
		// 明文密码绝不能入库
		assert.NotEqual(t, "supersecret", user.Password)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("supersecret")))
		mockRepo.AssertExpectations(t)
	})

	t.Run("Username normalized to lowercase", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		mockUp := new(MockUploader)
		svc := NewUserService(mockRepo, newTestTokens(), mockUp, nil)

		mockRepo.On("GetByUsernameOrEmail", ctx, "alice").Return(nil, mongo.ErrNoDocuments)
		mockRepo.On("GetByUsernameOrEmail", ctx, "alice@example.com").Return(nil, mongo.ErrNoDocuments)
		mockRepo.On("Create", ctx, mock.AnythingOfType("*model.User")).Return(nil)

		user, err := svc.Register(ctx, RegisterInput{
			Username: " Alice ",
			Email:    "alice@example.com",
			FullName: "Alice",
			Password: "supersecret",
		})

		assert.NoError(t, err)
		assert.Equal(t, "alice", user.Username)
		mockRepo.AssertExpectations(t)
	})

	t.Run("Create failure rolls back uploaded avatar", func(t *testing.T) {
		logger.Log = zap.NewNop()
		mockRepo := new(MockUserRepository)
		mockUp := new(MockUploader)
		svc := NewUserService(mockRepo, newTestTokens(), mockUp, nil)

		avatar := &multipart.FileHeader{Filename: "av.png"}
		mockRepo.On("GetByUsernameOrEmail", ctx, "alice").Return(nil, mongo.ErrNoDocuments)
		mockRepo.On("GetByUsernameOrEmail", ctx, "alice@example.com").Return(nil, mongo.ErrNoDocuments)
		mockUp.On("Upload", avatar, uploader.KindImage).
			Return(base.Asset{URL: "https://oss/images/av.png", Key: "images/av.png"}, nil)
		// 查重和入库之间被并发注册抢先，唯一索引报重复键
		mockRepo.On("Create", ctx, mock.AnythingOfType("*model.User")).
			Return(mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 11000}}})
		mockUp.On("Delete", "images/av.png", uploader.KindImage).Return(nil)

		_, err := svc.Register(ctx, RegisterInput{
			Username: "alice",
			Email:    "alice@example.com",
			FullName: "Alice",
			Password: "supersecret",
			Avatar:   avatar,
		})

		assert.ErrorIs(t, err, ErrUserExists)
		mockUp.AssertCalled(t, "Delete", "images/av.png", uploader.KindImage)
	})

	t.Run("Username already taken", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		mockUp := new(MockUploader)
		svc := NewUserService(mockRepo, newTestTokens(), mockUp, nil)

		existing := &model.User{ID: primitive.NewObjectID(), Username: "alice"}
		mockRepo.On("GetByUsernameOrEmail", ctx, "alice").Return(existing, nil)

		_, err := svc.Register(ctx, RegisterInput{
			Username: "alice",
			Email:    "other@example.com",
			FullName: "Alice",
			Password: "supersecret",
		})

		assert.ErrorIs(t, err, ErrUserExists)
		mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestLogin(t *testing.T) {
	ctx := context.Background()

	t.Run("Login success issues token pair", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		svc := NewUserService(mockRepo, newTestTokens(), new(MockUploader), nil)

		userID := primitive.NewObjectID()
		user := &model.User{ID: userID, Username: "alice", Password: hashPassword(t, "supersecret")}

		mockRepo.On("GetByUsernameOrEmail", ctx, "alice").Return(user, nil)
		mockRepo.On("SetRefreshToken", ctx, userID, mock.AnythingOfType("string")).Return(nil)

		got, pair, err := svc.Login(ctx, "alice", "supersecret")

		assert.NoError(t, err)
		assert.Equal(t, userID, got.ID)
		assert.NotEmpty(t, pair.AccessToken)
		assert.NotEmpty(t, pair.RefreshToken)
		mockRepo.AssertExpectations(t)
	})

	t.Run("Wrong password", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		svc := NewUserService(mockRepo, newTestTokens(), new(MockUploader), nil)

		user := &model.User{ID: primitive.NewObjectID(), Username: "alice", Password: hashPassword(t, "supersecret")}
		mockRepo.On("GetByUsernameOrEmail", ctx, "alice").Return(user, nil)

		_, _, err := svc.Login(ctx, "alice", "wrongpassword")

		assert.ErrorIs(t, err, ErrInvalidCredentials)
		mockRepo.AssertNotCalled(t, "SetRefreshToken", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Unknown identifier", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		svc := NewUserService(mockRepo, newTestTokens(), new(MockUploader), nil)

		mockRepo.On("GetByUsernameOrEmail", ctx, "ghost").Return(nil, mongo.ErrNoDocuments)

		_, _, err := svc.Login(ctx, "ghost", "whatever")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestRefreshTokens(t *testing.T) {
	ctx := context.Background()

	t.Run("Refresh rotates tokens", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		tokens := newTestTokens()
		svc := NewUserService(mockRepo, tokens, new(MockUploader), nil)

		userID := primitive.NewObjectID()
		refresh, err := tokens.GenerateRefreshToken(userID.Hex())
		assert.NoError(t, err)

		user := &model.User{ID: userID, RefreshToken: refresh}
		mockRepo.On("GetByID", ctx, userID).Return(user, nil)
		mockRepo.On("SetRefreshToken", ctx, userID, mock.AnythingOfType("string")).Return(nil)

		pair, err := svc.RefreshTokens(ctx, refresh)
		assert.NoError(t, err)
		assert.NotEmpty(t, pair.AccessToken)
		mockRepo.AssertExpectations(t)
	})

	t.Run("Stale refresh token rejected after logout", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		tokens := newTestTokens()
		svc := NewUserService(mockRepo, tokens, new(MockUploader), nil)

		userID := primitive.NewObjectID()
		refresh, err := tokens.GenerateRefreshToken(userID.Hex())
		assert.NoError(t, err)

		// 库里已没有持久化的刷新令牌
		user := &model.User{ID: userID, RefreshToken: ""}
		mockRepo.On("GetByID", ctx, userID).Return(user, nil)

		_, err = svc.RefreshTokens(ctx, refresh)
		assert.ErrorIs(t, err, ErrInvalidRefresh)
	})

	t.Run("Garbage token rejected", func(t *testing.T) {
		svc := NewUserService(new(MockUserRepository), newTestTokens(), new(MockUploader), nil)

		_, err := svc.RefreshTokens(ctx, "not-a-jwt")
		assert.ErrorIs(t, err, ErrInvalidRefresh)
	})
}

func TestChangePassword(t *testing.T) {
	ctx := context.Background()

	t.Run("Wrong old password", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		svc := NewUserService(mockRepo, newTestTokens(), new(MockUploader), nil)

		userID := primitive.NewObjectID()
		user := &model.User{ID: userID, Password: hashPassword(t, "oldpassword")}
		mockRepo.On("GetByID", ctx, userID).Return(user, nil)

		err := svc.ChangePassword(ctx, userID, "wrongold", "newpassword")
		assert.ErrorIs(t, err, ErrWrongPassword)
		mockRepo.AssertNotCalled(t, "UpdateFields", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Change password success", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		svc := NewUserService(mockRepo, newTestTokens(), new(MockUploader), nil)

		userID := primitive.NewObjectID()
		user := &model.User{ID: userID, Password: hashPassword(t, "oldpassword")}
		mockRepo.On("GetByID", ctx, userID).Return(user, nil)
		mockRepo.On("UpdateFields", ctx, userID, mock.AnythingOfType("primitive.M")).Return(user, nil)

		err := svc.ChangePassword(ctx, userID, "oldpassword", "newpassword")
		assert.NoError(t, err)
		mockRepo.AssertExpectations(t)
	})
}

func TestUpdateAvatar(t *testing.T) {
	ctx := context.Background()

	t.Run("Replaces and deletes old object", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		mockUp := new(MockUploader)
		svc := NewUserService(mockRepo, newTestTokens(), mockUp, nil)

		userID := primitive.NewObjectID()
		file := &multipart.FileHeader{Filename: "new.png"}
		current := &model.User{ID: userID,
			Avatar: base.Asset{URL: "https://oss/images/old.png", Key: "images/old.png"}}
		updated := &model.User{ID: userID,
			Avatar: base.Asset{URL: "https://oss/images/new.png", Key: "images/new.png"}}

		mockRepo.On("GetByID", ctx, userID).Return(current, nil)
		mockUp.On("Upload", file, uploader.KindImage).Return(updated.Avatar, nil)
		mockRepo.On("UpdateFields", ctx, userID, mock.AnythingOfType("primitive.M")).Return(updated, nil)
		mockUp.On("Delete", "images/old.png", uploader.KindImage).Return(nil)

		user, err := svc.UpdateAvatar(ctx, userID, file)

		assert.NoError(t, err)
		assert.Equal(t, "images/new.png", user.Avatar.Key)
		mockUp.AssertExpectations(t)
	})

	t.Run("Old object deletion failure is not fatal", func(t *testing.T) {
		logger.Log = zap.NewNop()
		mockRepo := new(MockUserRepository)
		mockUp := new(MockUploader)
		svc := NewUserService(mockRepo, newTestTokens(), mockUp, nil)

		userID := primitive.NewObjectID()
		file := &multipart.FileHeader{Filename: "new.png"}
		current := &model.User{ID: userID,
			Avatar: base.Asset{URL: "https://oss/images/old.png", Key: "images/old.png"}}
		updated := &model.User{ID: userID,
			Avatar: base.Asset{URL: "https://oss/images/new.png", Key: "images/new.png"}}

		mockRepo.On("GetByID", ctx, userID).Return(current, nil)
		mockUp.On("Upload", file, uploader.KindImage).Return(updated.Avatar, nil)
		mockRepo.On("UpdateFields", ctx, userID, mock.AnythingOfType("primitive.M")).Return(updated, nil)
		mockUp.On("Delete", "images/old.png", uploader.KindImage).Return(errors.New("oss unreachable"))

		user, err := svc.UpdateAvatar(ctx, userID, file)

		assert.NoError(t, err)
		assert.Equal(t, userID, user.ID)
	})
}

func TestChannelProfile(t *testing.T) {
	ctx := context.Background()

	t.Run("Username lookup is case insensitive", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		svc := NewUserService(mockRepo, newTestTokens(), new(MockUploader), nil)

		viewer := primitive.NewObjectID()
		profile := &model.ChannelProfile{Username: "alice"}
		mockRepo.On("ChannelProfile", ctx, "alice", viewer).Return(profile, nil)

		got, err := svc.ChannelProfile(ctx, "Alice", viewer)

		assert.NoError(t, err)
		assert.Equal(t, "alice", got.Username)
		mockRepo.AssertExpectations(t)
	})

	t.Run("Unknown channel", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		svc := NewUserService(mockRepo, newTestTokens(), new(MockUploader), nil)

		mockRepo.On("ChannelProfile", ctx, "ghost", primitive.NilObjectID).
			Return(nil, mongo.ErrNoDocuments)

		_, err := svc.ChannelProfile(ctx, "ghost", primitive.NilObjectID)
		assert.ErrorIs(t, err, ErrUserNotFound)
	})
}

func TestLogout(t *testing.T) {
	ctx := context.Background()

	mockRepo := new(MockUserRepository)
	svc := NewUserService(mockRepo, newTestTokens(), new(MockUploader), nil)

	userID := primitive.NewObjectID()
	mockRepo.On("SetRefreshToken", ctx, userID, "").Return(nil)

	assert.NoError(t, svc.Logout(ctx, userID))
	mockRepo.AssertExpectations(t)
}
