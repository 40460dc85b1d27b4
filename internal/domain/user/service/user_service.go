package service

import (
	"context"
	"errors"
	"mime/multipart"
	"strings"

	"vidtube/internal/cascade"
	"vidtube/internal/domain/user/model"
	"vidtube/internal/domain/user/repository"
	videoModel "vidtube/internal/domain/video/model"
	"vidtube/internal/pkg/uploader"
	"vidtube/pkg/logger"
	base "vidtube/pkg/model"
	"vidtube/pkg/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrUserExists         = errors.New("username or email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidRefresh     = errors.New("refresh token is invalid or expired")
	ErrUserNotFound       = errors.New("user not found")
	ErrWrongPassword      = errors.New("old password is incorrect")
)

// RegisterInput 注册参数
type RegisterInput struct {
	Username string
	Email    string
	FullName string
	Password string
	Avatar   *multipart.FileHeader
	Cover    *multipart.FileHeader
}

// TokenPair 一次签发的访问/刷新令牌
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// UserService 用户服务接口
type UserService interface {
	Register(ctx context.Context, in RegisterInput) (*model.User, error)
	Login(ctx context.Context, identifier, password string) (*model.User, *TokenPair, error)
	RefreshTokens(ctx context.Context, refreshToken string) (*TokenPair, error)
	Logout(ctx context.Context, userID primitive.ObjectID) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*model.User, error)
	ChangePassword(ctx context.Context, userID primitive.ObjectID, oldPassword, newPassword string) error
	UpdateAccount(ctx context.Context, userID primitive.ObjectID, fullName, email string) (*model.User, error)
	UpdateAvatar(ctx context.Context, userID primitive.ObjectID, file *multipart.FileHeader) (*model.User, error)
	UpdateCover(ctx context.Context, userID primitive.ObjectID, file *multipart.FileHeader) (*model.User, error)
	ChannelProfile(ctx context.Context, username string, viewer primitive.ObjectID) (*model.ChannelProfile, error)
	WatchHistory(ctx context.Context, userID primitive.ObjectID) ([]videoModel.WithOwner, error)
	DeleteAccount(ctx context.Context, userID primitive.ObjectID) error
}

// userService 实现
type userService struct {
	repo     repository.UserRepository
	tokens   *utils.TokenManager
	uploader uploader.Uploader
	cascader *cascade.Coordinator
}

// NewUserService 创建用户服务
func NewUserService(repo repository.UserRepository, tokens *utils.TokenManager,
	up uploader.Uploader, cascader *cascade.Coordinator) UserService {
	return &userService{repo: repo, tokens: tokens, uploader: up, cascader: cascader}
}

// Register 注册新用户
func (s *userService) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	// 用户名统一小写存储，唯一性对大小写不敏感
	in.Username = strings.ToLower(strings.TrimSpace(in.Username))

	// 1. 用户名/邮箱查重（唯一索引兜底并发竞争）
	if _, err := s.repo.GetByUsernameOrEmail(ctx, in.Username); err == nil {
		return nil, ErrUserExists
	} else if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, err
	}
	if _, err := s.repo.GetByUsernameOrEmail(ctx, in.Email); err == nil {
		return nil, ErrUserExists
	} else if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, err
	}

	// 2. 密码哈希
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Username: in.Username,
		Email:    in.Email,
		FullName: in.FullName,
		Password: string(hash),
	}

	// 3. 上传头像和封面（头像必填，封面可选）
	if in.Avatar != nil {
		asset, err := s.uploader.Upload(in.Avatar, uploader.KindImage)
		if err != nil {
			return nil, err
		}
		user.Avatar = asset
	}
	if in.Cover != nil {
		asset, err := s.uploader.Upload(in.Cover, uploader.KindImage)
		if err != nil {
			return nil, err
		}
		user.CoverImage = asset
	}

	if err := s.repo.Create(ctx, user); err != nil {
		// 入库失败时回收刚上传的对象，避免孤儿资源
		s.discardAsset(user.Avatar)
		s.discardAsset(user.CoverImage)
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrUserExists
		}
		return nil, err
	}
	return user, nil
}

func (s *userService) discardAsset(asset base.Asset) {
	if asset.IsZero() {
		return
	}
	if err := s.uploader.Delete(asset.Key, uploader.KindImage); err != nil {
		logger.Log.Warn("failed to delete orphaned image asset",
			zap.String("key", asset.Key), zap.Error(err))
	}
}

// Login 用户名或邮箱登录
func (s *userService) Login(ctx context.Context, identifier, password string) (*model.User, *TokenPair, error) {
	user, err := s.repo.GetByUsernameOrEmail(ctx, identifier)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, nil, ErrInvalidCredentials
	}

	pair, err := s.issueTokens(ctx, user.ID)
	if err != nil {
		return nil, nil, err
	}
	return user, pair, nil
}

// RefreshTokens 用刷新令牌换新令牌对（旋转：旧刷新令牌随之作废）
func (s *userService) RefreshTokens(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := s.tokens.ParseRefreshToken(refreshToken)
	if err != nil {
		return nil, ErrInvalidRefresh
	}
	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return nil, ErrInvalidRefresh
	}

	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrInvalidRefresh
		}
		return nil, err
	}
	// 必须和库里持久化的那一枚一致，登出或旋转后旧令牌立即失效
	if user.RefreshToken == "" || user.RefreshToken != refreshToken {
		return nil, ErrInvalidRefresh
	}

	return s.issueTokens(ctx, user.ID)
}

func (s *userService) issueTokens(ctx context.Context, userID primitive.ObjectID) (*TokenPair, error) {
	access, err := s.tokens.GenerateAccessToken(userID.Hex())
	if err != nil {
		return nil, err
	}
	refresh, err := s.tokens.GenerateRefreshToken(userID.Hex())
	if err != nil {
		return nil, err
	}
	if err := s.repo.SetRefreshToken(ctx, userID, refresh); err != nil {
		return nil, err
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// Logout 清除持久化的刷新令牌
func (s *userService) Logout(ctx context.Context, userID primitive.ObjectID) error {
	return s.repo.SetRefreshToken(ctx, userID, "")
}

// GetByID 获取当前用户
func (s *userService) GetByID(ctx context.Context, id primitive.ObjectID) (*model.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// ChangePassword 修改密码（校验旧密码）
func (s *userService) ChangePassword(ctx context.Context, userID primitive.ObjectID, oldPassword, newPassword string) error {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrUserNotFound
		}
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(oldPassword)); err != nil {
		return ErrWrongPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	_, err = s.repo.UpdateFields(ctx, userID, bson.M{"password": string(hash)})
	return err
}

// UpdateAccount 更新姓名和邮箱
func (s *userService) UpdateAccount(ctx context.Context, userID primitive.ObjectID, fullName, email string) (*model.User, error) {
	fields := bson.M{}
	if fullName != "" {
		fields["fullName"] = fullName
	}
	if email != "" {
		fields["email"] = email
	}
	user, err := s.repo.UpdateFields(ctx, userID, fields)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrUserExists
		}
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// UpdateAvatar 更新头像，成功后删除旧对象
func (s *userService) UpdateAvatar(ctx context.Context, userID primitive.ObjectID, file *multipart.FileHeader) (*model.User, error) {
	return s.replaceImage(ctx, userID, file, "avatar", func(u *model.User) base.Asset { return u.Avatar })
}

// UpdateCover 更新封面，成功后删除旧对象
func (s *userService) UpdateCover(ctx context.Context, userID primitive.ObjectID, file *multipart.FileHeader) (*model.User, error) {
	return s.replaceImage(ctx, userID, file, "coverImage", func(u *model.User) base.Asset { return u.CoverImage })
}

func (s *userService) replaceImage(ctx context.Context, userID primitive.ObjectID,
	file *multipart.FileHeader, field string, old func(*model.User) base.Asset) (*model.User, error) {
	current, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	asset, err := s.uploader.Upload(file, uploader.KindImage)
	if err != nil {
		return nil, err
	}

	user, err := s.repo.UpdateFields(ctx, userID, bson.M{field: asset})
	if err != nil {
		return nil, err
	}

	// 旧对象删除失败不影响本次更新，但要留下痕迹
	if prev := old(current); !prev.IsZero() {
		if err := s.uploader.Delete(prev.Key, uploader.KindImage); err != nil {
			logger.Log.Warn("failed to delete replaced image asset",
				zap.String("key", prev.Key), zap.Error(err))
		}
	}
	return user, nil
}

// ChannelProfile 频道主页，用户名查找对大小写不敏感
func (s *userService) ChannelProfile(ctx context.Context, username string, viewer primitive.ObjectID) (*model.ChannelProfile, error) {
	profile, err := s.repo.ChannelProfile(ctx, strings.ToLower(username), viewer)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return profile, nil
}

// WatchHistory 观看历史
func (s *userService) WatchHistory(ctx context.Context, userID primitive.ObjectID) ([]videoModel.WithOwner, error) {
	history, err := s.repo.WatchHistory(ctx, userID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return history, nil
}

// DeleteAccount 注销账号，级联清理名下全部数据
func (s *userService) DeleteAccount(ctx context.Context, userID primitive.ObjectID) error {
	return s.cascader.DeleteUser(ctx, userID)
}
