package model

import (
	"time"

	videoModel "vidtube/internal/domain/video/model"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Playlist 播放列表，videos 为有序集合（无重复）
type Playlist struct {
	ID          primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Name        string               `bson:"name" json:"name"`
	Description string               `bson:"description" json:"description"`
	Owner       primitive.ObjectID   `bson:"owner" json:"owner"`
	Videos      []primitive.ObjectID `bson:"videos" json:"videos"`
	CreatedAt   time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time            `bson:"updatedAt" json:"updatedAt"`
}

// WithVideos 聚合结果：视频引用展开为完整文档
type WithVideos struct {
	Playlist   `bson:",inline"`
	VideoItems []videoModel.Video `bson:"videoItems" json:"videoItems"`
}
