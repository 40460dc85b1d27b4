package model

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Asset 远程资源引用（OSS），url 对外展示，key 用于删除对象
type Asset struct {
	URL string `bson:"url" json:"url"`
	Key string `bson:"key" json:"-"`
}

// IsZero 资源是否为空引用
func (a Asset) IsZero() bool {
	return a.URL == "" && a.Key == ""
}

// OwnerSnippet $lookup 后嵌入的作者信息摘要
type OwnerSnippet struct {
	ID       primitive.ObjectID `bson:"_id" json:"id"`
	Username string             `bson:"username" json:"username"`
	FullName string             `bson:"fullName" json:"fullName"`
	Avatar   Asset              `bson:"avatar" json:"avatar"`
}

// ParseID 解析请求路径中的 ObjectID，非法返回错误
func ParseID(hex string) (primitive.ObjectID, error) {
	return primitive.ObjectIDFromHex(hex)
}

// ContainsID 判断 id 是否在列表中
func ContainsID(ids []primitive.ObjectID, id primitive.ObjectID) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
