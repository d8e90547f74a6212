package lock

import (
	"context"

	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"ytgify.com/pkg/cache"
	"ytgify.com/pkg/constants"
)

var rs *redsync.Redsync

// Init 基于 redis 客户端初始化分布式锁, client 为 nil 时关闭
func Init(client redis.UniversalClient) {
	if client == nil {
		rs = nil
		return
	}
	rs = redsync.New(goredis.NewPool(client))
}

// WithLock 在 key 对应的锁内执行 fn, 未初始化时直接执行
func WithLock(ctx context.Context, key string, fn func() error) error {
	if rs == nil {
		return fn()
	}
	m := rs.NewMutex(cache.Key(cache.LockKey, key),
		redsync.WithExpiry(constants.LockExpiry),
		redsync.WithTries(16),
	)
	if err := m.LockContext(ctx); err != nil {
		return errors.WithMessagef(err, "acquire lock %s", key)
	}
	defer m.UnlockContext(context.WithoutCancel(ctx)) //nolint:errcheck

	return fn()
}

// TryLock 不等待, 锁被占用时返回 false, redis 出错时同时返回错误. 用于多实例下只让一个进程执行的周期任务
func TryLock(ctx context.Context, key string, fn func() error) (bool, error) {
	if rs == nil {
		return true, fn()
	}
	m := rs.NewMutex(cache.Key(cache.LockKey, key),
		redsync.WithExpiry(constants.LockExpiry),
		redsync.WithTries(1),
	)
	if err := m.TryLockContext(ctx); err != nil {
		var taken *redsync.ErrTaken
		if errors.As(err, &taken) || errors.Is(err, redsync.ErrFailed) {
			return false, nil
		}
		hlog.CtxWarnf(ctx, "try lock %s failed: %v", key, err)
		return false, errors.WithMessagef(err, "try lock %s", key)
	}
	defer m.UnlockContext(context.WithoutCancel(ctx)) //nolint:errcheck

	return true, fn()
}
