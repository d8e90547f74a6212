package cache

import (
	"context"

	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/redis/go-redis/v9"

	"ytgify.com/config"
)

// RDB 进程内共享的 redis 客户端
var RDB *redis.Client

func Init() error {
	RDB = redis.NewClient(&redis.Options{
		Addr:     config.ConfigInfo.Redis.Addr,
		Password: config.ConfigInfo.Redis.Password,
		DB:       config.ConfigInfo.Redis.DB,
	})
	if err := RDB.Ping(context.Background()).Err(); err != nil {
		hlog.Errorf("redis ping %s failed: %v", config.ConfigInfo.Redis.Addr, err)
		return err
	}
	hlog.Info("Connect Redis Success")
	return nil
}
