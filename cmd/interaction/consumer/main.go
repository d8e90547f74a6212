package main

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/cloudwego/hertz/pkg/common/hlog"

	gifdb "ytgify.com/cmd/gif/dal/db"
	gifredis "ytgify.com/cmd/gif/infras/redis"
	hashtagdb "ytgify.com/cmd/hashtag/dal/db"
	hashtagredis "ytgify.com/cmd/hashtag/infras/redis"
	"ytgify.com/cmd/interaction/dal/db"
	"ytgify.com/cmd/interaction/infras/redis"
	notificationdb "ytgify.com/cmd/notification/dal/db"
	userdb "ytgify.com/cmd/user/dal/db"
	userredis "ytgify.com/cmd/user/infras/redis"
	"ytgify.com/config"
	"ytgify.com/config/jaeger"
	"ytgify.com/config/pprof"
	"ytgify.com/pkg/cache"
	"ytgify.com/pkg/constants"
	"ytgify.com/pkg/lock"
	"ytgify.com/pkg/mq"
	"ytgify.com/pkg/realtime"
	"ytgify.com/pkg/search"
	"ytgify.com/pkg/utils"
)

func Init(ctx context.Context) {
	config.Init()
	pprof.Load(os.Getenv("WORKER_PPROF_ADDR"))
	if err := utils.InitSnowflake(config.ConfigInfo.Server.WorkerNodeID); err != nil {
		hlog.Fatalf("Failed to init snowflake node %d: %v", config.ConfigInfo.Server.WorkerNodeID, err)
	}

	db.Init()
	gifdb.Init()
	hashtagdb.Init()
	userdb.Init()
	notificationdb.Init()

	if err := cache.Init(); err != nil {
		hlog.Fatalf("Failed to connect redis: %v", err)
	}
	redis.Load()
	gifredis.Load()
	hashtagredis.Load()
	userredis.Load()
	lock.Init(cache.RDB)
	realtime.Default = realtime.NewRedisPublisher(cache.RDB)

	if err := search.Init(ctx); err != nil {
		hlog.Warnf("elasticsearch unavailable, indexing disabled: %v", err)
	}
	hlog.Info("Dependencies initialized successfully")
}

func main() {
	hlog.SetLevel(hlog.LevelInfo)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	Init(ctx)
	closer := jaeger.Init(constants.WorkerServiceName, config.ConfigInfo.Jaeger.Agent)
	defer closer.Close()

	consumer, err := mq.NewConsumer(config.ConfigInfo.RabbitMq.URL())
	if err != nil {
		hlog.Fatalf("Failed to create consumer: %v", err)
	}
	defer consumer.Close()

	handler := NewEventHandler(cache.RDB, search.Default)
	start := []struct {
		name string
		fn   func() error
	}{
		{mq.LikeEventQueue, func() error { return consumer.ConsumeLikeEvents(ctx, handler) }},
		{mq.CommentEventQueue, func() error { return consumer.ConsumeCommentEvents(ctx, handler) }},
		{mq.FollowEventQueue, func() error { return consumer.ConsumeFollowEvents(ctx, handler) }},
		{mq.GifEventQueue, func() error { return consumer.ConsumeGifEvents(ctx, handler) }},
		{mq.NotificationEventQueue, func() error { return consumer.ConsumeNotificationEvents(ctx, handler) }},
	}
	for _, s := range start {
		if err := s.fn(); err != nil {
			hlog.Fatalf("Failed to start %s consumer: %v", s.name, err)
		}
		hlog.Infof("%s consumer started", s.name)
	}

	var wg sync.WaitGroup
	for _, j := range jobs() {
		wg.Add(1)
		go func(j job) {
			defer wg.Done()
			j.schedule(ctx)
		}(j)
		hlog.Infof("job %s scheduled every %s", j.name, j.interval)
	}

	hlog.Info("Worker started successfully, waiting for messages...")

	// 等待中断信号
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan
	hlog.Info("Shutting down worker...")

	cancel()
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(10 * time.Second):
		hlog.Warn("periodic jobs did not stop in time")
	}
	hlog.Info("Worker stopped")
}
