package model

import (
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TargetKind 点赞目标类型
type TargetKind string

const (
	TargetVideo   TargetKind = "video"
	TargetComment TargetKind = "comment"
	TargetTweet   TargetKind = "tweet"
)

// Valid 目标类型是否合法
func (k TargetKind) Valid() bool {
	switch k {
	case TargetVideo, TargetComment, TargetTweet:
		return true
	}
	return false
}

// TargetRef 带类型标签的点赞目标
type TargetRef struct {
	Kind TargetKind
	ID   primitive.ObjectID
}

// ErrInvalidTarget 目标类型非法
var ErrInvalidTarget = errors.New("invalid like target kind")

// Like 点赞模型
// video/comment/tweet 三个字段互斥，构造时保证恰好一个被设置，
// 存储层按目标字段建 partial unique 索引保证 (likedBy, target) 唯一
type Like struct {
	ID        primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Video     *primitive.ObjectID `bson:"video,omitempty" json:"video,omitempty"`
	Comment   *primitive.ObjectID `bson:"comment,omitempty" json:"comment,omitempty"`
	Tweet     *primitive.ObjectID `bson:"tweet,omitempty" json:"tweet,omitempty"`
	LikedBy   primitive.ObjectID  `bson:"likedBy" json:"likedBy"`
	CreatedAt time.Time           `bson:"createdAt" json:"createdAt"`
}

// New 构造点赞记录，目标类型在这里而不是约定里被强制
func New(likedBy primitive.ObjectID, target TargetRef) (*Like, error) {
	l := &Like{LikedBy: likedBy, CreatedAt: time.Now()}
	switch target.Kind {
	case TargetVideo:
		l.Video = &target.ID
	case TargetComment:
		l.Comment = &target.ID
	case TargetTweet:
		l.Tweet = &target.ID
	default:
		return nil, ErrInvalidTarget
	}
	return l, nil
}

// Target 返回点赞目标
func (l *Like) Target() TargetRef {
	switch {
	case l.Video != nil:
		return TargetRef{Kind: TargetVideo, ID: *l.Video}
	case l.Comment != nil:
		return TargetRef{Kind: TargetComment, ID: *l.Comment}
	case l.Tweet != nil:
		return TargetRef{Kind: TargetTweet, ID: *l.Tweet}
	}
	return TargetRef{}
}
