package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/redis/go-redis/v9"

	"ytgify.com/cmd/hashtag/dal/db"
	"ytgify.com/pkg/cache"
)

// GetTrending 读取缓存的热门话题, 未命中或 redis 不可用时返回 false
func GetTrending(ctx context.Context, limit int) ([]*db.TrendingHashtag, bool) {
	if redisDB == nil {
		return nil, false
	}
	data, err := redisDB.Get(ctx, cache.Key(cache.TrendingHashtagsKey, limit)).Bytes()
	if err != nil {
		if err != redis.Nil {
			hlog.CtxWarnf(ctx, "Redis get trending hashtags failed: %v", err)
		}
		return nil, false
	}
	var list []*db.TrendingHashtag
	if err := json.Unmarshal(data, &list); err != nil {
		hlog.CtxWarnf(ctx, "Decode trending hashtags failed: %v", err)
		return nil, false
	}
	return list, true
}

func SetTrending(ctx context.Context, limit int, list []*db.TrendingHashtag, ttl time.Duration) error {
	if redisDB == nil {
		return nil
	}
	data, err := json.Marshal(list)
	if err != nil {
		return err
	}
	return redisDB.Set(ctx, cache.Key(cache.TrendingHashtagsKey, limit), data, ttl).Err()
}
