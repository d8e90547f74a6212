package redis

import (
	"context"
	"strconv"
	"time"

	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/redis/go-redis/v9"

	"ytgify.com/cmd/model"
	"ytgify.com/pkg/cache"
)

// user:likes:{uid} 是 zset, member 为 gif id, score 为点赞时间.
// 占位成员保证没有点赞的用户也能命中缓存
const placeholder = "-"

// LikedSet 从缓存判断 ids 中哪些被点赞. 缓存未预热或不可用时 ok 为 false
func LikedSet(ctx context.Context, userID int64, gifIDs []int64) (res map[int64]bool, ok bool) {
	if redisDB == nil {
		return nil, false
	}
	key := cache.Key(cache.UserLikesKey, userID)
	n, err := redisDB.Exists(ctx, key).Result()
	if err != nil || n == 0 {
		if err != nil {
			hlog.CtxWarnf(ctx, "Redis exists %s failed: %v", key, err)
		}
		return nil, false
	}
	pipe := redisDB.Pipeline()
	cmds := make([]*redis.FloatCmd, len(gifIDs))
	for i, id := range gifIDs {
		cmds[i] = pipe.ZScore(ctx, key, strconv.FormatInt(id, 10))
	}
	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		hlog.CtxWarnf(ctx, "Redis zscore %s failed: %v", key, err)
		return nil, false
	}
	res = make(map[int64]bool, len(gifIDs))
	for i, id := range gifIDs {
		if cmds[i].Err() == nil {
			res[id] = true
		}
	}
	return res, true
}

// WarmLikes 用数据库中的点赞重建缓存
func WarmLikes(ctx context.Context, userID int64, likes []*model.Like, ttl time.Duration) error {
	if redisDB == nil {
		return nil
	}
	key := cache.Key(cache.UserLikesKey, userID)
	members := make([]redis.Z, 0, len(likes)+1)
	members = append(members, redis.Z{Score: 0, Member: placeholder})
	for _, l := range likes {
		members = append(members, redis.Z{Score: float64(l.CreatedAt.Unix()), Member: l.GifID})
	}
	pipe := redisDB.TxPipeline()
	pipe.Del(ctx, key)
	pipe.ZAdd(ctx, key, members...)
	pipe.Expire(ctx, key, ttl)
	_, err := pipe.Exec(ctx)
	return err
}

// AddLike 缓存已预热时追加, 否则等下次读取时预热
func AddLike(ctx context.Context, userID, gifID int64, at time.Time) error {
	return touch(ctx, userID, func(pipe redis.Pipeliner, key string) {
		pipe.ZAdd(ctx, key, redis.Z{Score: float64(at.Unix()), Member: gifID})
	})
}

func RemoveLike(ctx context.Context, userID, gifID int64) error {
	return touch(ctx, userID, func(pipe redis.Pipeliner, key string) {
		pipe.ZRem(ctx, key, gifID)
	})
}

func touch(ctx context.Context, userID int64, fn func(redis.Pipeliner, string)) error {
	if redisDB == nil {
		return nil
	}
	key := cache.Key(cache.UserLikesKey, userID)
	n, err := redisDB.Exists(ctx, key).Result()
	if err != nil || n == 0 {
		return err
	}
	pipe := redisDB.TxPipeline()
	fn(pipe, key)
	_, err = pipe.Exec(ctx)
	return err
}

// Invalidate 写库后缓存更新失败时删除, 避免读到旧数据
func Invalidate(ctx context.Context, userID int64) {
	if redisDB == nil {
		return
	}
	if err := redisDB.Del(ctx, cache.Key(cache.UserLikesKey, userID)).Err(); err != nil {
		hlog.CtxErrorf(ctx, "Redis del user likes %d failed: %v", userID, err)
	}
}
