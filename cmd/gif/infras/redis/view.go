package redis

import (
	"context"
	"strconv"
	"time"

	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/redis/go-redis/v9"

	"ytgify.com/pkg/cache"
)

// MarkViewed 同一观看者在 window 内第一次浏览时返回 true.
// redis 不可用时不去重
func MarkViewed(ctx context.Context, gifID int64, viewerKey string, window time.Duration) (bool, error) {
	if redisDB == nil {
		return true, nil
	}
	ok, err := redisDB.SetNX(ctx, cache.Key(cache.ViewDedupKey, gifID, viewerKey), 1, window).Result()
	if err != nil {
		hlog.CtxWarnf(ctx, "Redis setnx view key failed: %v", err)
		return true, err
	}
	return ok, nil
}

// BufferView 浏览数先累加在 redis, 由 worker 定期刷入数据库.
// redis 不可用时返回 false, 调用方直接写库
func BufferView(ctx context.Context, gifID int64) (bool, error) {
	if redisDB == nil {
		return false, nil
	}
	pipe := redisDB.TxPipeline()
	pipe.Incr(ctx, cache.Key(cache.ViewBufferKey, gifID))
	pipe.SAdd(ctx, cache.ViewDirtySetKey, gifID)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, err
	}
	return true, nil
}

// DrainViews 取走所有缓冲的浏览数. 先移出脏集合再 GETDEL, 期间新增的浏览会在下一轮被取走
func DrainViews(ctx context.Context) (map[int64]int64, error) {
	res := make(map[int64]int64)
	if redisDB == nil {
		return res, nil
	}
	members, err := redisDB.SMembers(ctx, cache.ViewDirtySetKey).Result()
	if err != nil {
		return nil, err
	}
	for _, m := range members {
		id, err := strconv.ParseInt(m, 10, 64)
		if err != nil {
			redisDB.SRem(ctx, cache.ViewDirtySetKey, m)
			continue
		}
		if err := redisDB.SRem(ctx, cache.ViewDirtySetKey, m).Err(); err != nil {
			return res, err
		}
		n, err := redisDB.GetDel(ctx, cache.Key(cache.ViewBufferKey, id)).Int64()
		if err == redis.Nil {
			continue
		}
		if err != nil {
			return res, err
		}
		res[id] += n
	}
	return res, nil
}

// RestoreViews 刷库失败时把取走的计数放回缓冲
func RestoreViews(ctx context.Context, counts map[int64]int64) {
	if redisDB == nil {
		return
	}
	for id, n := range counts {
		pipe := redisDB.TxPipeline()
		pipe.IncrBy(ctx, cache.Key(cache.ViewBufferKey, id), n)
		pipe.SAdd(ctx, cache.ViewDirtySetKey, id)
		if _, err := pipe.Exec(ctx); err != nil {
			hlog.CtxErrorf(ctx, "Restore %d buffered views of gif %d failed: %v", n, id, err)
		}
	}
}
