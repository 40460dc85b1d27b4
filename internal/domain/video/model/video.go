package model

import (
	"strings"
	"time"

	base "vidtube/pkg/model"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Category 视频分类
type Category string

const (
	CategoryMusic         Category = "music"
	CategoryGaming        Category = "gaming"
	CategoryEducation     Category = "education"
	CategoryEntertainment Category = "entertainment"
	CategoryNews          Category = "news"
	CategorySports        Category = "sports"
	CategoryTech          Category = "tech"
	CategoryOther         Category = "other"
)

var categories = map[Category]struct{}{
	CategoryMusic: {}, CategoryGaming: {}, CategoryEducation: {}, CategoryEntertainment: {},
	CategoryNews: {}, CategorySports: {}, CategoryTech: {}, CategoryOther: {},
}

// Valid 分类是否合法
func (c Category) Valid() bool {
	_, ok := categories[c]
	return ok
}

// Video 视频模型
type Video struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Owner       primitive.ObjectID `bson:"owner" json:"owner"`
	VideoFile   base.Asset         `bson:"videoFile" json:"videoFile"`
	Thumbnail   base.Asset         `bson:"thumbnail" json:"thumbnail"`
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description" json:"description"`
	Duration    float64            `bson:"duration" json:"duration"` // 秒
	Views       int64              `bson:"views" json:"views"`
	IsPublished bool               `bson:"isPublished" json:"isPublished"`
	Category    Category           `bson:"category" json:"category"`
	Tags        []string           `bson:"tags" json:"tags"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// WithOwner 列表聚合结果，附带作者摘要
type WithOwner struct {
	Video     `bson:",inline"`
	OwnerInfo base.OwnerSnippet `bson:"ownerInfo" json:"ownerInfo"`
}

// NormalizeTags 去重并统一为小写
func NormalizeTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
