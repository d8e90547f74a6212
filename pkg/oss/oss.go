package oss

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/minio/minio-go/v7"
)

// Storage 上传文件后返回可公开访问的地址
type Storage interface {
	PutFile(ctx context.Context, objectName, path, contentType string) (string, error)
	PutBytes(ctx context.Context, objectName string, data []byte, contentType string) (string, error)
	Remove(ctx context.Context, objectName string) error
}

type MinioStorage struct {
	client  *minio.Client
	bucket  string
	baseURL string
}

const location = "us-east-1"

func (s *MinioStorage) ensureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("check bucket error: %w", err)
	}
	if exists {
		return nil
	}
	if err = s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{Region: location}); err != nil {
		return fmt.Errorf("create bucket error: %w", err)
	}
	return nil
}

func (s *MinioStorage) PutFile(ctx context.Context, objectName, path, contentType string) (string, error) {
	_, err := s.client.FPutObject(ctx, s.bucket, objectName, path, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", err
	}
	return ObjectURL(s.baseURL, s.bucket, objectName), nil
}

func (s *MinioStorage) PutBytes(ctx context.Context, objectName string, data []byte, contentType string) (string, error) {
	_, err := s.client.PutObject(ctx, s.bucket, objectName, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", err
	}
	return ObjectURL(s.baseURL, s.bucket, objectName), nil
}

func (s *MinioStorage) Remove(ctx context.Context, objectName string) error {
	return s.client.RemoveObject(ctx, s.bucket, objectName, minio.RemoveObjectOptions{})
}

// PublicBaseURL 未配置外部地址时直接使用 endpoint
func PublicBaseURL(configured, endpoint string, useSSL bool) string {
	if configured != "" {
		return strings.TrimRight(configured, "/")
	}
	scheme := "http"
	if useSSL {
		scheme = "https"
	}
	return scheme + "://" + endpoint
}

func ObjectURL(baseURL, bucket, objectName string) string {
	return fmt.Sprintf("%s/%s/%s", baseURL, bucket, strings.TrimLeft(objectName, "/"))
}

// GifObjectName gifs/{uid}/{id}.gif
func GifObjectName(uid int64, id string) string {
	return fmt.Sprintf("gifs/%d/%s.gif", uid, id)
}

func ThumbnailObjectName(uid int64, id string) string {
	return fmt.Sprintf("thumbnails/%d/%s.jpg", uid, id)
}

// AvatarObjectName 同一用户的新头像以内容摘要区分, 旧地址不会被缓存命中
func AvatarObjectName(uid int64, digest, contentType string) (string, error) {
	var suffix string
	switch contentType {
	case "image/jpeg", "image/jpg":
		suffix = ".jpg"
	case "image/png":
		suffix = ".png"
	case "image/gif":
		suffix = ".gif"
	case "image/webp":
		suffix = ".webp"
	default:
		return "", fmt.Errorf("unsupported image format: %s", contentType)
	}
	return fmt.Sprintf("avatars/%d/%s%s", uid, digest, suffix), nil
}
