package model

import (
	"time"

	base "vidtube/pkg/model"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Comment 评论模型
// 两层结构：顶层评论 parentComment 为空，回复的 parentComment 指向顶层评论，
// 回复本身不允许再被回复
type Comment struct {
	ID            primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Content       string               `bson:"content" json:"content"`
	Video         primitive.ObjectID   `bson:"video" json:"video"`
	Owner         primitive.ObjectID   `bson:"owner" json:"owner"`
	ParentComment *primitive.ObjectID  `bson:"parentComment,omitempty" json:"parentComment,omitempty"`
	Replies       []primitive.ObjectID `bson:"replies" json:"replies"`
	CreatedAt     time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time            `bson:"updatedAt" json:"updatedAt"`
}

// IsReply 是否为回复
func (c *Comment) IsReply() bool {
	return c.ParentComment != nil
}

// WithMeta 列表聚合结果：作者摘要 + 点赞数 + 回复数
type WithMeta struct {
	Comment    `bson:",inline"`
	OwnerInfo  base.OwnerSnippet `bson:"ownerInfo" json:"ownerInfo"`
	LikeCount  int64             `bson:"likeCount" json:"likeCount"`
	ReplyCount int64             `bson:"replyCount" json:"replyCount"`
}
