package model

import (
	"time"

	base "vidtube/pkg/model"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Subscription 订阅关系：subscriber 订阅 channel
type Subscription struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Subscriber primitive.ObjectID `bson:"subscriber" json:"subscriber"`
	Channel    primitive.ObjectID `bson:"channel" json:"channel"`
	CreatedAt  time.Time          `bson:"createdAt" json:"createdAt"`
}

// UserEntry 订阅列表聚合结果中的用户摘要
type UserEntry struct {
	User         base.OwnerSnippet `bson:"user" json:"user"`
	SubscribedAt time.Time         `bson:"createdAt" json:"subscribedAt"`
}
