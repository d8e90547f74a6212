package redis

import (
	"context"
	"strconv"

	"github.com/redis/go-redis/v9"

	"ytgify.com/pkg/cache"
)

// StoreTrending 用新的榜单整体替换 trending:gifs
func StoreTrending(ctx context.Context, scores map[int64]float64, size int) error {
	if redisDB == nil {
		return nil
	}
	tmp := cache.TrendingGifsKey + ":tmp"
	members := make([]redis.Z, 0, len(scores))
	for id, s := range scores {
		if s <= 0 {
			continue
		}
		members = append(members, redis.Z{Score: s, Member: id})
	}
	pipe := redisDB.TxPipeline()
	pipe.Del(ctx, tmp)
	if len(members) == 0 {
		pipe.Del(ctx, cache.TrendingGifsKey)
		_, err := pipe.Exec(ctx)
		return err
	}
	pipe.ZAdd(ctx, tmp, members...)
	if size > 0 && len(members) > size {
		// 只保留分数最高的 size 个
		pipe.ZRemRangeByRank(ctx, tmp, 0, int64(len(members)-size-1))
	}
	pipe.Rename(ctx, tmp, cache.TrendingGifsKey)
	_, err := pipe.Exec(ctx)
	return err
}

// TrendingIDs 按分数从高到低返回整个榜单, 榜单长度受 trending.size 限制
func TrendingIDs(ctx context.Context) ([]int64, error) {
	if redisDB == nil {
		return nil, nil
	}
	vals, err := redisDB.ZRevRange(ctx, cache.TrendingGifsKey, 0, -1).Result()
	if err != nil {
		return nil, err
	}
	ids := make([]int64, 0, len(vals))
	for _, v := range vals {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// RemoveTrending 删除 gif 或改为非公开后立即移出榜单
func RemoveTrending(ctx context.Context, gifID int64) error {
	if redisDB == nil {
		return nil
	}
	return redisDB.ZRem(ctx, cache.TrendingGifsKey, gifID).Err()
}
