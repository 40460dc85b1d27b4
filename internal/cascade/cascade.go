// Package cascade 集中定义实体删除的级联图。
// 底层文档库没有外键约束，删除 User/Video/Comment/Tweet 时由这里的
// 协调器按固定顺序清理所有会悬挂的关联记录和远端资源，
// 每一步都是幂等的：目标已不存在视为成功。
package cascade

import (
	"context"
	"errors"
	"fmt"

	commentModel "vidtube/internal/domain/comment/model"
	commentRepo "vidtube/internal/domain/comment/repository"
	likeModel "vidtube/internal/domain/like/model"
	likeRepo "vidtube/internal/domain/like/repository"
	playlistRepo "vidtube/internal/domain/playlist/repository"
	subRepo "vidtube/internal/domain/subscription/repository"
	tweetModel "vidtube/internal/domain/tweet/model"
	tweetRepo "vidtube/internal/domain/tweet/repository"
	userModel "vidtube/internal/domain/user/model"
	userRepo "vidtube/internal/domain/user/repository"
	videoModel "vidtube/internal/domain/video/model"
	videoRepo "vidtube/internal/domain/video/repository"
	"vidtube/internal/pkg/uploader"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

var (
	// ErrNotFound 目标实体不存在
	ErrNotFound = errors.New("entity not found")
	// ErrNotOwner 操作者不是实体属主
	ErrNotOwner = errors.New("actor does not own entity")
)

// UserStore 级联删除所需的用户存储能力
type UserStore interface {
	Claim(ctx context.Context, id primitive.ObjectID) (*userModel.User, error)
	PullWatchHistoryAll(ctx context.Context, videoID primitive.ObjectID) (int64, error)
}

// VideoStore 级联删除所需的视频存储能力
type VideoStore interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*videoModel.Video, error)
	FindByOwner(ctx context.Context, owner primitive.ObjectID) ([]videoModel.Video, error)
	Claim(ctx context.Context, id, owner primitive.ObjectID) (*videoModel.Video, error)
}

// CommentStore 级联删除所需的评论存储能力
type CommentStore interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*commentModel.Comment, error)
	FindByOwner(ctx context.Context, owner primitive.ObjectID) ([]commentModel.Comment, error)
	FindByVideo(ctx context.Context, videoID primitive.ObjectID) ([]commentModel.Comment, error)
	PullReply(ctx context.Context, parentID, replyID primitive.ObjectID) error
	Claim(ctx context.Context, id, owner primitive.ObjectID) (*commentModel.Comment, error)
}

// TweetStore 级联删除所需的动态存储能力
type TweetStore interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*tweetModel.Tweet, error)
	FindByOwner(ctx context.Context, owner primitive.ObjectID) ([]tweetModel.Tweet, error)
	Claim(ctx context.Context, id, owner primitive.ObjectID) (*tweetModel.Tweet, error)
}

// LikeStore 级联删除所需的点赞存储能力
type LikeStore interface {
	DeleteByUser(ctx context.Context, userID primitive.ObjectID) (int64, error)
	DeleteAllForTarget(ctx context.Context, target likeModel.TargetRef) (int64, error)
}

// SubscriptionStore 级联删除所需的订阅存储能力
type SubscriptionStore interface {
	DeleteByUser(ctx context.Context, userID primitive.ObjectID) (int64, error)
}

// PlaylistStore 级联删除所需的播放列表存储能力
type PlaylistStore interface {
	DeleteByOwner(ctx context.Context, owner primitive.ObjectID) (int64, error)
	PullVideoFromAll(ctx context.Context, videoID primitive.ObjectID) (int64, error)
}

// AssetDeleter 对象存储删除能力
type AssetDeleter interface {
	Delete(key string, kind uploader.Kind) error
}

// Coordinator 级联删除协调器，四种根实体各对应一个入口
type Coordinator struct {
	users     UserStore
	videos    VideoStore
	comments  CommentStore
	tweets    TweetStore
	likes     LikeStore
	subs      SubscriptionStore
	playlists PlaylistStore
	assets    AssetDeleter
	log       *zap.Logger
}

// New 用具体仓库装配协调器
func New(db *mongo.Database, assets AssetDeleter, log *zap.Logger) *Coordinator {
	return NewWithStores(
		userRepo.NewUserRepository(db),
		videoRepo.NewVideoRepository(db),
		commentRepo.NewCommentRepository(db),
		tweetRepo.NewTweetRepository(db),
		likeRepo.NewLikeRepository(db),
		subRepo.NewSubscriptionRepository(db),
		playlistRepo.NewPlaylistRepository(db),
		assets, log,
	)
}

// NewWithStores 注入存储接口（测试用）
func NewWithStores(users UserStore, videos VideoStore, comments CommentStore, tweets TweetStore,
	likes LikeStore, subs SubscriptionStore, playlists PlaylistStore, assets AssetDeleter, log *zap.Logger) *Coordinator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Coordinator{
		users: users, videos: videos, comments: comments, tweets: tweets,
		likes: likes, subs: subs, playlists: playlists, assets: assets, log: log,
	}
}

// DeleteUser 删除用户及其全部资产：
// 视频（各自级联）→ 点赞 → 评论（各自级联）→ 动态（各自级联）→
// 订阅关系 → 播放列表 → 头像/封面对象。
// 对象删除失败会返回错误（此时用户文档已删除，见设计说明）。
func (c *Coordinator) DeleteUser(ctx context.Context, id primitive.ObjectID) error {
	user, err := c.users.Claim(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrNotFound
		}
		return err
	}

	videos, err := c.videos.FindByOwner(ctx, id)
	if err != nil {
		c.logStep("user", id, "find owned videos", err)
	}
	for i := range videos {
		// 先原子取走视频文档本身，再做它的级联清理；已被并发删除的跳过
		v, err := c.videos.Claim(ctx, videos[i].ID, primitive.NilObjectID)
		if err != nil {
			continue
		}
		c.finishVideo(ctx, v)
	}

	if _, err := c.likes.DeleteByUser(ctx, id); err != nil {
		c.logStep("user", id, "delete likes by user", err)
	}

	comments, err := c.comments.FindByOwner(ctx, id)
	if err != nil {
		c.logStep("user", id, "find owned comments", err)
	}
	for i := range comments {
		// 前面的视频级联可能已经删除了这些评论，Claim 失败按已删除处理
		cm, err := c.comments.Claim(ctx, comments[i].ID, primitive.NilObjectID)
		if err != nil {
			continue
		}
		c.finishComment(ctx, cm)
	}

	tweets, err := c.tweets.FindByOwner(ctx, id)
	if err != nil {
		c.logStep("user", id, "find owned tweets", err)
	}
	for i := range tweets {
		tw, err := c.tweets.Claim(ctx, tweets[i].ID, primitive.NilObjectID)
		if err != nil {
			continue
		}
		c.finishTweet(ctx, tw)
	}

	if _, err := c.subs.DeleteByUser(ctx, id); err != nil {
		c.logStep("user", id, "delete subscriptions", err)
	}
	if _, err := c.playlists.DeleteByOwner(ctx, id); err != nil {
		c.logStep("user", id, "delete playlists", err)
	}

	var assetErr error
	if !user.Avatar.IsZero() {
		if err := c.assets.Delete(user.Avatar.Key, uploader.KindImage); err != nil {
			c.logStep("user", id, "delete avatar asset", err)
			assetErr = err
		}
	}
	if !user.CoverImage.IsZero() {
		if err := c.assets.Delete(user.CoverImage.Key, uploader.KindImage); err != nil {
			c.logStep("user", id, "delete cover asset", err)
			assetErr = err
		}
	}
	if assetErr != nil {
		return fmt.Errorf("user deleted but asset cleanup failed: %w", assetErr)
	}
	return nil
}

// DeleteVideo 属主删除视频。owner 为零值表示系统级联，不校验属主。
func (c *Coordinator) DeleteVideo(ctx context.Context, id, owner primitive.ObjectID) error {
	video, err := c.videos.Claim(ctx, id, owner)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return c.claimFailure(ctx, owner, func() error {
				_, err := c.videos.GetByID(ctx, id)
				return err
			})
		}
		return err
	}
	c.finishVideo(ctx, video)
	return nil
}

// finishVideo 视频文档删除后的清理步骤
func (c *Coordinator) finishVideo(ctx context.Context, video *videoModel.Video) {
	id := video.ID

	comments, err := c.comments.FindByVideo(ctx, id)
	if err != nil {
		c.logStep("video", id, "find comments", err)
	}
	for i := range comments {
		cm, err := c.comments.Claim(ctx, comments[i].ID, primitive.NilObjectID)
		if err != nil {
			continue
		}
		c.finishComment(ctx, cm)
	}

	if _, err := c.likes.DeleteAllForTarget(ctx, likeModel.TargetRef{Kind: likeModel.TargetVideo, ID: id}); err != nil {
		c.logStep("video", id, "delete likes", err)
	}
	if _, err := c.users.PullWatchHistoryAll(ctx, id); err != nil {
		c.logStep("video", id, "pull watch history", err)
	}
	if _, err := c.playlists.PullVideoFromAll(ctx, id); err != nil {
		c.logStep("video", id, "pull from playlists", err)
	}

	// 对象删除失败只记录，不重试也不回滚（孤儿资源可接受）
	if !video.VideoFile.IsZero() {
		if err := c.assets.Delete(video.VideoFile.Key, uploader.KindVideo); err != nil {
			c.logStep("video", id, "delete video asset", err)
		}
	}
	if !video.Thumbnail.IsZero() {
		if err := c.assets.Delete(video.Thumbnail.Key, uploader.KindImage); err != nil {
			c.logStep("video", id, "delete thumbnail asset", err)
		}
	}
}

// DeleteComment 属主删除评论。owner 为零值表示系统级联。
func (c *Coordinator) DeleteComment(ctx context.Context, id, owner primitive.ObjectID) error {
	comment, err := c.comments.Claim(ctx, id, owner)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return c.claimFailure(ctx, owner, func() error {
				_, err := c.comments.GetByID(ctx, id)
				return err
			})
		}
		return err
	}
	c.finishComment(ctx, comment)
	return nil
}

// finishComment 评论文档删除后的清理步骤：
// 点赞 → 从父评论摘除 → 一层回复及回复上的点赞
func (c *Coordinator) finishComment(ctx context.Context, comment *commentModel.Comment) {
	id := comment.ID

	if _, err := c.likes.DeleteAllForTarget(ctx, likeModel.TargetRef{Kind: likeModel.TargetComment, ID: id}); err != nil {
		c.logStep("comment", id, "delete likes", err)
	}

	if comment.ParentComment != nil {
		if err := c.comments.PullReply(ctx, *comment.ParentComment, id); err != nil {
			c.logStep("comment", id, "pull from parent replies", err)
		}
	}

	for _, replyID := range comment.Replies {
		reply, err := c.comments.Claim(ctx, replyID, primitive.NilObjectID)
		if err != nil {
			continue
		}
		if _, err := c.likes.DeleteAllForTarget(ctx, likeModel.TargetRef{Kind: likeModel.TargetComment, ID: reply.ID}); err != nil {
			c.logStep("comment", reply.ID, "delete reply likes", err)
		}
	}
}

// DeleteTweet 属主删除动态。owner 为零值表示系统级联。
func (c *Coordinator) DeleteTweet(ctx context.Context, id, owner primitive.ObjectID) error {
	tweet, err := c.tweets.Claim(ctx, id, owner)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return c.claimFailure(ctx, owner, func() error {
				_, err := c.tweets.GetByID(ctx, id)
				return err
			})
		}
		return err
	}
	c.finishTweet(ctx, tweet)
	return nil
}

func (c *Coordinator) finishTweet(ctx context.Context, tweet *tweetModel.Tweet) {
	if _, err := c.likes.DeleteAllForTarget(ctx, likeModel.TargetRef{Kind: likeModel.TargetTweet, ID: tweet.ID}); err != nil {
		c.logStep("tweet", tweet.ID, "delete likes", err)
	}
}

// claimFailure 区分"不存在"和"不是属主"：
// 带属主条件的 Claim 落空后查一次无条件存在性
func (c *Coordinator) claimFailure(ctx context.Context, owner primitive.ObjectID, lookup func() error) error {
	if owner == primitive.NilObjectID {
		// 系统级联中目标已被并发删除，按成功处理
		return nil
	}
	if err := lookup(); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrNotFound
		}
		return err
	}
	return ErrNotOwner
}

func (c *Coordinator) logStep(kind string, id primitive.ObjectID, step string, err error) {
	c.log.Error("cascade step failed",
		zap.String("entity", kind),
		zap.String("id", id.Hex()),
		zap.String("step", step),
		zap.Error(err),
	)
}
