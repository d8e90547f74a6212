package oss

import (
	"context"

	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/pkg/errors"

	"ytgify.com/config"
)

// Store 全局对象存储, 测试时可替换为内存实现
var Store Storage

func InitMinio() error {
	cfg := config.ConfigInfo.Minio
	hlog.Infof("Initializing MinIO client with endpoint: %s, bucket: %s", cfg.Endpoint, cfg.Bucket)

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		hlog.Errorf("Failed to create MinIO client: %v", err)
		return err
	}

	s := &MinioStorage{
		client:  client,
		bucket:  cfg.Bucket,
		baseURL: PublicBaseURL(cfg.PublicBaseURL, cfg.Endpoint, cfg.UseSSL),
	}
	if err = s.ensureBucket(context.Background()); err != nil {
		return errors.WithMessage(err, "ensure bucket")
	}
	Store = s
	hlog.Info("Connect Minio Success")
	return nil
}
