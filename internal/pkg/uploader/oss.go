package uploader

import (
	"fmt"
	"mime/multipart"
	"path/filepath"
	"time"

	"vidtube/internal/pkg/config"
	base "vidtube/pkg/model"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
	"github.com/google/uuid"
)

// Kind 资源类型提示，决定对象前缀
type Kind string

const (
	KindImage Kind = "image"
	KindVideo Kind = "video"
)

func (k Kind) prefix() string {
	if k == KindVideo {
		return "videos"
	}
	return "images"
}

// Uploader 对象存储接口
type Uploader interface {
	Upload(file *multipart.FileHeader, kind Kind) (base.Asset, error)
	Delete(key string, kind Kind) error
}

// AliyunOSSUploader 阿里云 OSS 实现
type AliyunOSSUploader struct {
	bucket *oss.Bucket
	config config.OSSConfig
}

// New 创建 OSS 上传器
func New(cfg config.OSSConfig) (*AliyunOSSUploader, error) {
	client, err := oss.New(cfg.Endpoint, cfg.AccessKeyID, cfg.AccessKeySecret)
	if err != nil {
		return nil, err
	}

	bucket, err := client.Bucket(cfg.BucketName)
	if err != nil {
		return nil, err
	}

	return &AliyunOSSUploader{
		bucket: bucket,
		config: cfg,
	}, nil
}

// Upload 上传文件，对象名: <prefix>/YYYYMMDD/uuid.ext
func (u *AliyunOSSUploader) Upload(file *multipart.FileHeader, kind Kind) (base.Asset, error) {
	src, err := file.Open()
	if err != nil {
		return base.Asset{}, err
	}
	defer src.Close()

	ext := filepath.Ext(file.Filename)
	key := fmt.Sprintf("%s/%s/%s%s", kind.prefix(), time.Now().Format("20060102"), uuid.New().String(), ext)

	if err := u.bucket.PutObject(key, src); err != nil {
		return base.Asset{}, err
	}

	// 假定 bucket 为 public-read 或走 CDN，直接拼接公开 URL
	url := fmt.Sprintf("https://%s.%s/%s", u.config.BucketName, u.config.Endpoint, key)
	return base.Asset{URL: url, Key: key}, nil
}

// Delete 删除对象，kind 仅作为资源类型提示
func (u *AliyunOSSUploader) Delete(key string, kind Kind) error {
	if key == "" {
		return nil
	}
	return u.bucket.DeleteObject(key)
}
