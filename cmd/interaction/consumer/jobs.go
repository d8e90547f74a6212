package main

import (
	"context"
	"time"

	"github.com/cloudwego/hertz/pkg/common/hlog"

	gifservice "ytgify.com/cmd/gif/service"
	hashtagservice "ytgify.com/cmd/hashtag/service"
	userservice "ytgify.com/cmd/user/service"
	"ytgify.com/config"
	"ytgify.com/pkg/constants"
	"ytgify.com/pkg/lock"
)

const defaultRefreshInterval = 5 * time.Minute

// job 周期任务, 多个 worker 实例之间用锁保证同一时刻只有一个在执行
type job struct {
	name     string
	interval time.Duration
	run      func(ctx context.Context) error
}

func jobs() []job {
	refresh := config.ConfigInfo.Trending.RefreshInterval
	if refresh <= 0 {
		refresh = defaultRefreshInterval
	}
	return []job{
		{name: "trending_refresh", interval: refresh, run: refreshTrending},
		{name: "view_flush", interval: constants.ViewFlushPeriod, run: flushViews},
		{name: "hashtag_refresh", interval: constants.HashtagCacheTTL / 2, run: refreshHashtags},
		{name: "jwt_purge", interval: time.Hour, run: purgeTokens},
	}
}

func refreshTrending(ctx context.Context) error {
	_, err := gifservice.NewTrendingService(ctx).Refresh()
	return err
}

func flushViews(ctx context.Context) error {
	_, err := gifservice.NewViewService(ctx).FlushViews()
	return err
}

func refreshHashtags(ctx context.Context) error {
	_, err := hashtagservice.NewHashtagService(ctx).Refresh(hashtagservice.DefaultTrendingLimit)
	return err
}

func purgeTokens(ctx context.Context) error {
	n, err := userservice.NewTokenService(ctx).PurgeExpired()
	if err == nil && n > 0 {
		hlog.CtxInfof(ctx, "purged %d expired jwt denylist rows", n)
	}
	return err
}

// runOnce 抢到锁才执行, 返回是否执行
func (j job) runOnce(ctx context.Context) bool {
	ran, err := lock.TryLock(ctx, "job:"+j.name, func() error { return j.run(ctx) })
	if err != nil {
		hlog.CtxErrorf(ctx, "job %s failed: %v", j.name, err)
	}
	return ran
}

// schedule 启动后立即执行一次, 之后按间隔执行直到 ctx 取消
func (j job) schedule(ctx context.Context) {
	j.runOnce(ctx)
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			j.runOnce(ctx)
		}
	}
}
