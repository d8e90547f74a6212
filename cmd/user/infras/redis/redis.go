package redis

import (
	"context"
	"time"

	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/redis/go-redis/v9"

	"ytgify.com/pkg/cache"
)

// DenyToken 缓存已注销的 jti 直到其过期
func DenyToken(ctx context.Context, jti string, exp time.Time) error {
	if redisDB == nil {
		return nil
	}
	ttl := time.Until(exp)
	if ttl <= 0 {
		return nil
	}
	return redisDB.Set(ctx, cache.Key(cache.JwtDenyKey, jti), 1, ttl).Err()
}

// IsTokenDenied 第二个返回值表示缓存是否可用, 不可用时调用方需回源数据库
func IsTokenDenied(ctx context.Context, jti string) (denied bool, ok bool) {
	if redisDB == nil {
		return false, false
	}
	err := redisDB.Get(ctx, cache.Key(cache.JwtDenyKey, jti)).Err()
	switch err {
	case nil:
		return true, true
	case redis.Nil:
		return false, true
	default:
		hlog.CtxWarnf(ctx, "Redis get deny key failed: %v", err)
		return false, false
	}
}
