package main

import (
	"context"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/middlewares/server/recovery"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/hertz-contrib/cors"

	"ytgify.com/cmd/api/handlers"
	"ytgify.com/cmd/api/handlers/stream"
	webs "ytgify.com/cmd/api/router/websocket"
	collectiondb "ytgify.com/cmd/collection/dal/db"
	gifdb "ytgify.com/cmd/gif/dal/db"
	gifredis "ytgify.com/cmd/gif/infras/redis"
	hashtagdb "ytgify.com/cmd/hashtag/dal/db"
	hashtagredis "ytgify.com/cmd/hashtag/infras/redis"
	interactiondb "ytgify.com/cmd/interaction/dal/db"
	interactionredis "ytgify.com/cmd/interaction/infras/redis"
	notificationdb "ytgify.com/cmd/notification/dal/db"
	relationdb "ytgify.com/cmd/relation/dal/db"
	userdb "ytgify.com/cmd/user/dal/db"
	userredis "ytgify.com/cmd/user/infras/redis"
	"ytgify.com/config"
	"ytgify.com/config/jaeger"
	"ytgify.com/config/pprof"
	"ytgify.com/pkg/bound"
	"ytgify.com/pkg/cache"
	"ytgify.com/pkg/constants"
	"ytgify.com/pkg/errno"
	"ytgify.com/pkg/jwt"
	"ytgify.com/pkg/lock"
	"ytgify.com/pkg/metrics"
	"ytgify.com/pkg/middleware"
	"ytgify.com/pkg/mq"
	"ytgify.com/pkg/oss"
	"ytgify.com/pkg/ratelimit"
	"ytgify.com/pkg/realtime"
	"ytgify.com/pkg/search"
	"ytgify.com/pkg/utils"
)

func Init(ctx context.Context) {
	config.Init()
	pprof.Load(config.ConfigInfo.Server.PprofAddr)
	if err := utils.InitSnowflake(config.ConfigInfo.Server.NodeID); err != nil {
		hlog.Fatalf("Failed to init snowflake node %d: %v", config.ConfigInfo.Server.NodeID, err)
	}

	userdb.Init()
	gifdb.Init()
	hashtagdb.Init()
	interactiondb.Init()
	relationdb.Init()
	collectiondb.Init()
	notificationdb.Init()

	// redis 不可用时各模块退化为只读数据库
	if err := cache.Init(); err != nil {
		hlog.Warnf("redis unavailable, running without cache: %v", err)
	} else {
		userredis.Load()
		gifredis.Load()
		hashtagredis.Load()
		interactionredis.Load()
		lock.Init(cache.RDB)
		realtime.Default = realtime.NewRedisPublisher(cache.RDB)
		go func() {
			if err := stream.Hub.Run(ctx, cache.RDB); err != nil {
				hlog.Errorf("realtime hub stopped: %v", err)
			}
		}()
	}

	if err := oss.InitMinio(); err != nil {
		hlog.Warnf("minio unavailable, storing uploads in memory: %v", err)
		oss.Store = oss.NewMemoryStorage()
	}
	if err := search.Init(ctx); err != nil {
		hlog.Warnf("elasticsearch unavailable, search falls back to database: %v", err)
	}
	if p, err := mq.NewProducer(config.ConfigInfo.RabbitMq.URL()); err != nil {
		hlog.Warnf("rabbitmq unavailable, events are dropped: %v", err)
	} else {
		handlers.Producer = p
	}

	if err := jwt.Init(); err != nil {
		hlog.Fatalf("Failed to init jwt: %v", err)
	}
	if err := ratelimit.Init(); err != nil {
		hlog.Fatalf("Failed to init rate limit: %v", err)
	}
	bound.StartSampler(ctx, time.Second)
	hlog.Info("Dependencies initialized successfully")
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	Init(ctx)
	closer := jaeger.Init(constants.ApiServiceName, config.ConfigInfo.Jaeger.Agent)
	defer closer.Close()

	maxBody := config.ConfigInfo.Server.MaxBodyMB
	if maxBody <= 0 {
		maxBody = 32
	}
	r := server.New(
		server.WithHostPorts(config.ConfigInfo.Server.Addr),
		server.WithHandleMethodNotAllowed(true),
		server.WithMaxRequestBodySize(maxBody<<20),
	)

	// 配置 CORS
	r.Use(cors.New(cors.Config{
		AllowOrigins:     config.ConfigInfo.Server.AllowOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// 错误处理
	r.Use(recovery.Recovery(recovery.WithRecoveryHandler(
		func(ctx context.Context, c *app.RequestContext, err interface{}, stack []byte) {
			hlog.SystemLogger().CtxErrorf(ctx, "[Recovery] err=%v\nstack=%s", err, stack)
			c.JSON(consts.StatusInternalServerError, handlers.Response{
				Code:    errno.ServiceErrCode,
				Message: "Internal server error",
			})
		})))
	r.Use(middleware.Tracing(), metrics.Middleware())

	// 探活和指标不参与降载
	r.GET("/health", bound.HealthHandler(config.ConfigInfo.RateLimit.CPUThreshold))
	r.GET("/metrics", metrics.Handler())
	r.Use(bound.CPUShedder(config.ConfigInfo.RateLimit.CPUThreshold))

	// 注册路由
	register(r)

	// 启动 WebSocket 服务
	ws := server.Default(
		server.WithHostPorts(config.ConfigInfo.Server.WsAddr),
	)
	ws.NoHijackConnPool = true
	webs.WebsocketRegister(ws)

	// 启动 WebSocket 和 HTTP 服务
	go ws.Spin()
	r.Spin()
	stream.Hub.Close()
}
