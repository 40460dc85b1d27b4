package model

import (
	"time"

	base "vidtube/pkg/model"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User 用户模型
type User struct {
	ID           primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Username     string               `bson:"username" json:"username"`
	Email        string               `bson:"email" json:"email"`
	FullName     string               `bson:"fullName" json:"fullName"`
	Password     string               `bson:"password" json:"-"` // bcrypt 哈希，不返回给前端
	Avatar       base.Asset           `bson:"avatar" json:"avatar"`
	CoverImage   base.Asset           `bson:"coverImage,omitempty" json:"coverImage"`
	WatchHistory []primitive.ObjectID `bson:"watchHistory" json:"watchHistory"`
	RefreshToken string               `bson:"refreshToken,omitempty" json:"-"`
	CreatedAt    time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time            `bson:"updatedAt" json:"updatedAt"`
}

// ChannelProfile 频道主页聚合结果（含订阅统计）
type ChannelProfile struct {
	ID                primitive.ObjectID `bson:"_id" json:"id"`
	Username          string             `bson:"username" json:"username"`
	FullName          string             `bson:"fullName" json:"fullName"`
	Avatar            base.Asset         `bson:"avatar" json:"avatar"`
	CoverImage        base.Asset         `bson:"coverImage" json:"coverImage"`
	SubscriberCount   int64              `bson:"subscriberCount" json:"subscriberCount"`
	SubscribedToCount int64              `bson:"subscribedToCount" json:"subscribedToCount"`
	IsSubscribed      bool               `bson:"isSubscribed" json:"isSubscribed"`
	CreatedAt         time.Time          `bson:"createdAt" json:"createdAt"`
}
