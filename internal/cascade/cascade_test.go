package cascade

import (
	"context"
	"errors"
	"testing"

	commentModel "vidtube/internal/domain/comment/model"
	likeModel "vidtube/internal/domain/like/model"
	tweetModel "vidtube/internal/domain/tweet/model"
	userModel "vidtube/internal/domain/user/model"
	videoModel "vidtube/internal/domain/video/model"
	"vidtube/internal/pkg/uploader"
	base "vidtube/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type mockUserStore struct{ mock.Mock }

func (m *mockUserStore) Claim(ctx context.Context, id primitive.ObjectID) (*userModel.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*userModel.User), args.Error(1)
}

func (m *mockUserStore) PullWatchHistoryAll(ctx context.Context, videoID primitive.ObjectID) (int64, error) {
	args := m.Called(ctx, videoID)
	return args.Get(0).(int64), args.Error(1)
}

type mockVideoStore struct{ mock.Mock }

func (m *mockVideoStore) GetByID(ctx context.Context, id primitive.ObjectID) (*videoModel.Video, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*videoModel.Video), args.Error(1)
}

func (m *mockVideoStore) FindByOwner(ctx context.Context, owner primitive.ObjectID) ([]videoModel.Video, error) {
	args := m.Called(ctx, owner)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]videoModel.Video), args.Error(1)
}

func (m *mockVideoStore) Claim(ctx context.Context, id, owner primitive.ObjectID) (*videoModel.Video, error) {
	args := m.Called(ctx, id, owner)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*videoModel.Video), args.Error(1)
}

type mockCommentStore struct{ mock.Mock }

func (m *mockCommentStore) GetByID(ctx context.Context, id primitive.ObjectID) (*commentModel.Comment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*commentModel.Comment), args.Error(1)
}

func (m *mockCommentStore) FindByOwner(ctx context.Context, owner primitive.ObjectID) ([]commentModel.Comment, error) {
	args := m.Called(ctx, owner)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]commentModel.Comment), args.Error(1)
}

func (m *mockCommentStore) FindByVideo(ctx context.Context, videoID primitive.ObjectID) ([]commentModel.Comment, error) {
	args := m.Called(ctx, videoID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]commentModel.Comment), args.Error(1)
}

func (m *mockCommentStore) PullReply(ctx context.Context, parentID, replyID primitive.ObjectID) error {
	args := m.Called(ctx, parentID, replyID)
	return args.Error(0)
}

func (m *mockCommentStore) Claim(ctx context.Context, id, owner primitive.ObjectID) (*commentModel.Comment, error) {
	args := m.Called(ctx, id, owner)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*commentModel.Comment), args.Error(1)
}

type mockTweetStore struct{ mock.Mock }

func (m *mockTweetStore) GetByID(ctx context.Context, id primitive.ObjectID) (*tweetModel.Tweet, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tweetModel.Tweet), args.Error(1)
}

func (m *mockTweetStore) FindByOwner(ctx context.Context, owner primitive.ObjectID) ([]tweetModel.Tweet, error) {
	args := m.Called(ctx, owner)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]tweetModel.Tweet), args.Error(1)
}

func (m *mockTweetStore) Claim(ctx context.Context, id, owner primitive.ObjectID) (*tweetModel.Tweet, error) {
	args := m.Called(ctx, id, owner)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tweetModel.Tweet), args.Error(1)
}

type mockLikeStore struct{ mock.Mock }

func (m *mockLikeStore) DeleteByUser(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockLikeStore) DeleteAllForTarget(ctx context.Context, target likeModel.TargetRef) (int64, error) {
	args := m.Called(ctx, target)
	return args.Get(0).(int64), args.Error(1)
}

type mockSubscriptionStore struct{ mock.Mock }

func (m *mockSubscriptionStore) DeleteByUser(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

type mockPlaylistStore struct{ mock.Mock }

func (m *mockPlaylistStore) DeleteByOwner(ctx context.Context, owner primitive.ObjectID) (int64, error) {
	args := m.Called(ctx, owner)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockPlaylistStore) PullVideoFromAll(ctx context.Context, videoID primitive.ObjectID) (int64, error) {
	args := m.Called(ctx, videoID)
	return args.Get(0).(int64), args.Error(1)
}

type mockAssetDeleter struct{ mock.Mock }

func (m *mockAssetDeleter) Delete(key string, kind uploader.Kind) error {
	args := m.Called(key, kind)
	return args.Error(0)
}

type fixture struct {
	users     *mockUserStore
	videos    *mockVideoStore
	comments  *mockCommentStore
	tweets    *mockTweetStore
	likes     *mockLikeStore
	subs      *mockSubscriptionStore
	playlists *mockPlaylistStore
	assets    *mockAssetDeleter
	coord     *Coordinator
}

func newFixture() *fixture {
	f := &fixture{
		users:     new(mockUserStore),
		videos:    new(mockVideoStore),
		comments:  new(mockCommentStore),
		tweets:    new(mockTweetStore),
		likes:     new(mockLikeStore),
		subs:      new(mockSubscriptionStore),
		playlists: new(mockPlaylistStore),
		assets:    new(mockAssetDeleter),
	}
	f.coord = NewWithStores(f.users, f.videos, f.comments, f.tweets,
		f.likes, f.subs, f.playlists, f.assets, nil)
	return f
}

func (f *fixture) assertExpectations(t *testing.T) {
	f.users.AssertExpectations(t)
	f.videos.AssertExpectations(t)
	f.comments.AssertExpectations(t)
	f.tweets.AssertExpectations(t)
	f.likes.AssertExpectations(t)
	f.subs.AssertExpectations(t)
	f.playlists.AssertExpectations(t)
	f.assets.AssertExpectations(t)
}

func videoTarget(id primitive.ObjectID) likeModel.TargetRef {
	return likeModel.TargetRef{Kind: likeModel.TargetVideo, ID: id}
}

func commentTarget(id primitive.ObjectID) likeModel.TargetRef {
	return likeModel.TargetRef{Kind: likeModel.TargetComment, ID: id}
}

func TestDeleteVideoCascadesCommentsRepliesAndLikes(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	owner := primitive.NewObjectID()
	videoID := primitive.NewObjectID()
	topID := primitive.NewObjectID()
	replyID := primitive.NewObjectID()

	video := &videoModel.Video{
		ID: videoID, Owner: owner,
		VideoFile: base.Asset{URL: "https://oss/videos/a.mp4", Key: "videos/a.mp4"},
		Thumbnail: base.Asset{URL: "https://oss/images/a.jpg", Key: "images/a.jpg"},
	}
	top := commentModel.Comment{ID: topID, Video: videoID, Replies: []primitive.ObjectID{replyID}}
	reply := commentModel.Comment{ID: replyID, Video: videoID, ParentComment: &topID}

	f.videos.On("Claim", ctx, videoID, owner).Return(video, nil)
	f.comments.On("FindByVideo", ctx, videoID).Return([]commentModel.Comment{top, reply}, nil)

	// 父评论先被摘走并级联掉它的回复
	f.comments.On("Claim", ctx, topID, primitive.NilObjectID).Return(&top, nil)
	f.likes.On("DeleteAllForTarget", ctx, commentTarget(topID)).Return(int64(2), nil)
	f.comments.On("Claim", ctx, replyID, primitive.NilObjectID).Return(&reply, nil).Once()
	f.likes.On("DeleteAllForTarget", ctx, commentTarget(replyID)).Return(int64(1), nil)

	// 轮到回复自身时它已经被删除，跳过
	f.comments.On("Claim", ctx, replyID, primitive.NilObjectID).Return(nil, mongo.ErrNoDocuments).Once()

	f.likes.On("DeleteAllForTarget", ctx, videoTarget(videoID)).Return(int64(5), nil)
	f.users.On("PullWatchHistoryAll", ctx, videoID).Return(int64(3), nil)
	f.playlists.On("PullVideoFromAll", ctx, videoID).Return(int64(1), nil)
	f.assets.On("Delete", "videos/a.mp4", uploader.KindVideo).Return(nil)
	f.assets.On("Delete", "images/a.jpg", uploader.KindImage).Return(nil)

	err := f.coord.DeleteVideo(ctx, videoID, owner)
	assert.NoError(t, err)
	f.assertExpectations(t)
}

func TestDeleteVideoNotOwner(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	videoID := primitive.NewObjectID()
	stranger := primitive.NewObjectID()

	f.videos.On("Claim", ctx, videoID, stranger).Return(nil, mongo.ErrNoDocuments)
	f.videos.On("GetByID", ctx, videoID).Return(&videoModel.Video{ID: videoID}, nil)

	err := f.coord.DeleteVideo(ctx, videoID, stranger)
	assert.ErrorIs(t, err, ErrNotOwner)

	// 越权时不得触碰任何关联数据
	f.comments.AssertNotCalled(t, "FindByVideo", mock.Anything, mock.Anything)
	f.likes.AssertNotCalled(t, "DeleteAllForTarget", mock.Anything, mock.Anything)
	f.assets.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestDeleteVideoNotFound(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	videoID := primitive.NewObjectID()
	owner := primitive.NewObjectID()

	f.videos.On("Claim", ctx, videoID, owner).Return(nil, mongo.ErrNoDocuments)
	f.videos.On("GetByID", ctx, videoID).Return(nil, mongo.ErrNoDocuments)

	err := f.coord.DeleteVideo(ctx, videoID, owner)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteVideoAssetFailureIsNotFatal(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	owner := primitive.NewObjectID()
	videoID := primitive.NewObjectID()
	video := &videoModel.Video{
		ID: videoID, Owner: owner,
		VideoFile: base.Asset{URL: "https://oss/videos/b.mp4", Key: "videos/b.mp4"},
	}

	f.videos.On("Claim", ctx, videoID, owner).Return(video, nil)
	f.comments.On("FindByVideo", ctx, videoID).Return([]commentModel.Comment{}, nil)
	f.likes.On("DeleteAllForTarget", ctx, videoTarget(videoID)).Return(int64(0), nil)
	f.users.On("PullWatchHistoryAll", ctx, videoID).Return(int64(0), nil)
	f.playlists.On("PullVideoFromAll", ctx, videoID).Return(int64(0), nil)
	f.assets.On("Delete", "videos/b.mp4", uploader.KindVideo).Return(errors.New("oss unreachable"))

	err := f.coord.DeleteVideo(ctx, videoID, owner)
	assert.NoError(t, err)
	f.assertExpectations(t)
}

func TestDeleteCommentPullsFromParent(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	owner := primitive.NewObjectID()
	parentID := primitive.NewObjectID()
	replyID := primitive.NewObjectID()
	reply := &commentModel.Comment{ID: replyID, Owner: owner, ParentComment: &parentID}

	f.comments.On("Claim", ctx, replyID, owner).Return(reply, nil)
	f.likes.On("DeleteAllForTarget", ctx, commentTarget(replyID)).Return(int64(1), nil)
	f.comments.On("PullReply", ctx, parentID, replyID).Return(nil)

	err := f.coord.DeleteComment(ctx, replyID, owner)
	assert.NoError(t, err)
	f.assertExpectations(t)
}

func TestDeleteCommentRemovesRepliesOwnedByOthers(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	owner := primitive.NewObjectID()
	otherUser := primitive.NewObjectID()
	parentID := primitive.NewObjectID()
	replyID := primitive.NewObjectID()

	parent := &commentModel.Comment{ID: parentID, Owner: owner, Replies: []primitive.ObjectID{replyID}}
	reply := &commentModel.Comment{ID: replyID, Owner: otherUser, ParentComment: &parentID}

	f.comments.On("Claim", ctx, parentID, owner).Return(parent, nil)
	f.likes.On("DeleteAllForTarget", ctx, commentTarget(parentID)).Return(int64(0), nil)
	// 回复属主不同也会被系统级联删除
	f.comments.On("Claim", ctx, replyID, primitive.NilObjectID).Return(reply, nil)
	f.likes.On("DeleteAllForTarget", ctx, commentTarget(replyID)).Return(int64(2), nil)

	err := f.coord.DeleteComment(ctx, parentID, owner)
	assert.NoError(t, err)
	f.assertExpectations(t)
}

func TestDeleteTweetRemovesLikes(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	owner := primitive.NewObjectID()
	tweetID := primitive.NewObjectID()

	f.tweets.On("Claim", ctx, tweetID, owner).Return(&tweetModel.Tweet{ID: tweetID, Owner: owner}, nil)
	f.likes.On("DeleteAllForTarget", ctx, likeModel.TargetRef{Kind: likeModel.TargetTweet, ID: tweetID}).
		Return(int64(4), nil)

	err := f.coord.DeleteTweet(ctx, tweetID, owner)
	assert.NoError(t, err)
	f.assertExpectations(t)
}

func TestDeleteUserFullBlastRadius(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	userID := primitive.NewObjectID()
	videoID := primitive.NewObjectID()
	commentID := primitive.NewObjectID()
	tweetID := primitive.NewObjectID()

	user := &userModel.User{
		ID:         userID,
		Avatar:     base.Asset{URL: "https://oss/images/av.png", Key: "images/av.png"},
		CoverImage: base.Asset{URL: "https://oss/images/cv.png", Key: "images/cv.png"},
	}
	video := videoModel.Video{ID: videoID, Owner: userID,
		VideoFile: base.Asset{URL: "https://oss/videos/v.mp4", Key: "videos/v.mp4"}}
	comment := commentModel.Comment{ID: commentID, Owner: userID, Video: videoID}
	tweet := tweetModel.Tweet{ID: tweetID, Owner: userID}

	f.users.On("Claim", ctx, userID).Return(user, nil)

	// 名下视频的文档被取走后各自走完整级联
	f.videos.On("FindByOwner", ctx, userID).Return([]videoModel.Video{video}, nil)
	f.videos.On("Claim", ctx, videoID, primitive.NilObjectID).Return(&video, nil)
	f.comments.On("FindByVideo", ctx, videoID).Return([]commentModel.Comment{comment}, nil)
	f.comments.On("Claim", ctx, commentID, primitive.NilObjectID).Return(&comment, nil).Once()
	f.likes.On("DeleteAllForTarget", ctx, commentTarget(commentID)).Return(int64(0), nil)
	f.likes.On("DeleteAllForTarget", ctx, videoTarget(videoID)).Return(int64(0), nil)
	f.users.On("PullWatchHistoryAll", ctx, videoID).Return(int64(0), nil)
	f.playlists.On("PullVideoFromAll", ctx, videoID).Return(int64(0), nil)
	f.assets.On("Delete", "videos/v.mp4", uploader.KindVideo).Return(nil)

	f.likes.On("DeleteByUser", ctx, userID).Return(int64(7), nil)

	// 用户自己的评论在视频级联时已被删除，再次 Claim 落空即跳过
	f.comments.On("FindByOwner", ctx, userID).Return([]commentModel.Comment{comment}, nil)
	f.comments.On("Claim", ctx, commentID, primitive.NilObjectID).Return(nil, mongo.ErrNoDocuments).Once()

	f.tweets.On("FindByOwner", ctx, userID).Return([]tweetModel.Tweet{tweet}, nil)
	f.tweets.On("Claim", ctx, tweetID, primitive.NilObjectID).Return(&tweet, nil)
	f.likes.On("DeleteAllForTarget", ctx, likeModel.TargetRef{Kind: likeModel.TargetTweet, ID: tweetID}).
		Return(int64(0), nil)

	f.subs.On("DeleteByUser", ctx, userID).Return(int64(2), nil)
	f.playlists.On("DeleteByOwner", ctx, userID).Return(int64(1), nil)
	f.assets.On("Delete", "images/av.png", uploader.KindImage).Return(nil)
	f.assets.On("Delete", "images/cv.png", uploader.KindImage).Return(nil)

	err := f.coord.DeleteUser(ctx, userID)
	assert.NoError(t, err)
	f.assertExpectations(t)
}

func TestDeleteUserRemovesVideoDocuments(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	userID := primitive.NewObjectID()
	videoID := primitive.NewObjectID()
	video := videoModel.Video{ID: videoID, Owner: userID}

	f.users.On("Claim", ctx, userID).Return(&userModel.User{ID: userID}, nil)
	f.videos.On("FindByOwner", ctx, userID).Return([]videoModel.Video{video}, nil)
	// 视频文档必须被取走，只清理关联数据不够
	f.videos.On("Claim", ctx, videoID, primitive.NilObjectID).Return(&video, nil)
	f.comments.On("FindByVideo", ctx, videoID).Return([]commentModel.Comment{}, nil)
	f.likes.On("DeleteAllForTarget", ctx, videoTarget(videoID)).Return(int64(0), nil)
	f.users.On("PullWatchHistoryAll", ctx, videoID).Return(int64(0), nil)
	f.playlists.On("PullVideoFromAll", ctx, videoID).Return(int64(0), nil)

	f.likes.On("DeleteByUser", ctx, userID).Return(int64(0), nil)
	f.comments.On("FindByOwner", ctx, userID).Return([]commentModel.Comment{}, nil)
	f.tweets.On("FindByOwner", ctx, userID).Return([]tweetModel.Tweet{}, nil)
	f.subs.On("DeleteByUser", ctx, userID).Return(int64(0), nil)
	f.playlists.On("DeleteByOwner", ctx, userID).Return(int64(0), nil)

	err := f.coord.DeleteUser(ctx, userID)
	assert.NoError(t, err)
	f.videos.AssertCalled(t, "Claim", ctx, videoID, primitive.NilObjectID)
	f.assertExpectations(t)
}

func TestDeleteUserSkipsConcurrentlyDeletedVideo(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	userID := primitive.NewObjectID()
	videoID := primitive.NewObjectID()

	f.users.On("Claim", ctx, userID).Return(&userModel.User{ID: userID}, nil)
	f.videos.On("FindByOwner", ctx, userID).Return([]videoModel.Video{{ID: videoID, Owner: userID}}, nil)
	f.videos.On("Claim", ctx, videoID, primitive.NilObjectID).Return(nil, mongo.ErrNoDocuments)

	f.likes.On("DeleteByUser", ctx, userID).Return(int64(0), nil)
	f.comments.On("FindByOwner", ctx, userID).Return([]commentModel.Comment{}, nil)
	f.tweets.On("FindByOwner", ctx, userID).Return([]tweetModel.Tweet{}, nil)
	f.subs.On("DeleteByUser", ctx, userID).Return(int64(0), nil)
	f.playlists.On("DeleteByOwner", ctx, userID).Return(int64(0), nil)

	err := f.coord.DeleteUser(ctx, userID)
	assert.NoError(t, err)

	// 取走落空说明别人已经删了，它的级联不再重复执行
	f.comments.AssertNotCalled(t, "FindByVideo", mock.Anything, mock.Anything)
	f.likes.AssertNotCalled(t, "DeleteAllForTarget", mock.Anything, mock.Anything)
}

func TestDeleteUserNotFound(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	userID := primitive.NewObjectID()
	f.users.On("Claim", ctx, userID).Return(nil, mongo.ErrNoDocuments)

	err := f.coord.DeleteUser(ctx, userID)
	assert.ErrorIs(t, err, ErrNotFound)
	f.videos.AssertNotCalled(t, "FindByOwner", mock.Anything, mock.Anything)
}

func TestDeleteUserAssetFailureSurfaces(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	userID := primitive.NewObjectID()
	user := &userModel.User{
		ID:     userID,
		Avatar: base.Asset{URL: "https://oss/images/av.png", Key: "images/av.png"},
	}

	f.users.On("Claim", ctx, userID).Return(user, nil)
	f.videos.On("FindByOwner", ctx, userID).Return([]videoModel.Video{}, nil)
	f.likes.On("DeleteByUser", ctx, userID).Return(int64(0), nil)
	f.comments.On("FindByOwner", ctx, userID).Return([]commentModel.Comment{}, nil)
	f.tweets.On("FindByOwner", ctx, userID).Return([]tweetModel.Tweet{}, nil)
	f.subs.On("DeleteByUser", ctx, userID).Return(int64(0), nil)
	f.playlists.On("DeleteByOwner", ctx, userID).Return(int64(0), nil)
	f.assets.On("Delete", "images/av.png", uploader.KindImage).Return(errors.New("oss unreachable"))

	err := f.coord.DeleteUser(ctx, userID)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "asset cleanup failed")
}
