package ratelimit

import (
	"context"
	"strconv"
	"sync"

	sentinel "github.com/alibaba/sentinel-golang/api"
	"github.com/alibaba/sentinel-golang/core/base"
	"github.com/alibaba/sentinel-golang/core/flow"
	"github.com/alibaba/sentinel-golang/core/hotspot"
	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/pkg/errors"

	"ytgify.com/config"
	"ytgify.com/pkg/constants"
	"ytgify.com/pkg/errno"
	"ytgify.com/pkg/metrics"
)

// 受保护的资源
const (
	ResourceAPI           = "api"
	ResourceLogin         = "auth:login"
	ResourceRegister      = "auth:register"
	ResourceGifCreate     = "gif:create"
	ResourceCommentCreate = "comment:create"
)

var initOnce sync.Once

// Init 初始化 sentinel 并加载规则
func Init() error {
	var err error
	initOnce.Do(func() {
		err = sentinel.InitDefault()
	})
	if err != nil {
		return errors.WithMessage(err, "init sentinel")
	}
	return LoadRules(config.ConfigInfo.RateLimit.APIQPS, map[string]int64{
		ResourceLogin:         config.ConfigInfo.RateLimit.LoginQPS,
		ResourceRegister:      config.ConfigInfo.RateLimit.RegisterQPS,
		ResourceGifCreate:     config.ConfigInfo.RateLimit.UploadQPS,
		ResourceCommentCreate: config.ConfigInfo.RateLimit.CommentQPS,
	})
}

// LoadRules installs a global flow rule for the api and per-key hot
// parameter rules for the given resources. Non-positive thresholds are skipped.
func LoadRules(apiQPS float64, perKey map[string]int64) error {
	if apiQPS > 0 {
		_, err := flow.LoadRules([]*flow.Rule{{
			Resource:               ResourceAPI,
			TokenCalculateStrategy: flow.Direct,
			ControlBehavior:        flow.Reject,
			Threshold:              apiQPS,
			StatIntervalInMs:       1000,
		}})
		if err != nil {
			return errors.WithMessage(err, "load flow rules")
		}
	}

	rules := make([]*hotspot.Rule, 0, len(perKey))
	for res, qps := range perKey {
		if qps <= 0 {
			continue
		}
		rules = append(rules, &hotspot.Rule{
			Resource:        res,
			MetricType:      hotspot.QPS,
			ControlBehavior: hotspot.Reject,
			ParamIndex:      0,
			Threshold:       qps,
			DurationInSec:   1,
		})
	}
	if _, err := hotspot.LoadRules(rules); err != nil {
		return errors.WithMessage(err, "load hotspot rules")
	}
	hlog.Infof("rate limit rules loaded: api=%v, keyed=%d", apiQPS, len(rules))
	return nil
}

// Allow 进入资源, 被限流时返回 false
func Allow(resource string, args ...interface{}) bool {
	opts := []sentinel.EntryOption{sentinel.WithTrafficType(base.Inbound)}
	if len(args) > 0 {
		opts = append(opts, sentinel.WithArgs(args...))
	}
	e, b := sentinel.Entry(resource, opts...)
	if b != nil {
		metrics.RateLimitedTotal.WithLabelValues(resource).Inc()
		return false
	}
	e.Exit()
	return true
}

// KeyFunc 取限流维度
type KeyFunc func(ctx context.Context, c *app.RequestContext) string

func ByIP(_ context.Context, c *app.RequestContext) string {
	return c.ClientIP()
}

// ByUser 需在鉴权中间件之后使用, 匿名请求退化为按 IP 限流
func ByUser(ctx context.Context, c *app.RequestContext) string {
	if v, ok := c.Get(constants.IdentityKey); ok {
		if id, ok := v.(int64); ok && id > 0 {
			return "u:" + strconv.FormatInt(id, 10)
		}
	}
	return "ip:" + ByIP(ctx, c)
}

// Global 全局流控
func Global() app.HandlerFunc {
	return func(ctx context.Context, c *app.RequestContext) {
		if !Allow(ResourceAPI) {
			abort(c, errno.TooManyRequestsErr)
			return
		}
		c.Next(ctx)
	}
}

// Limit 按 key 对单个资源限流
func Limit(resource string, key KeyFunc) app.HandlerFunc {
	return func(ctx context.Context, c *app.RequestContext) {
		if !Allow(resource, key(ctx, c)) {
			hlog.CtxWarnf(ctx, "rate limited: %s %s", resource, key(ctx, c))
			abort(c, errno.TooManyRequestsErr)
			return
		}
		c.Next(ctx)
	}
}

func abort(c *app.RequestContext, e errno.ErrNo) {
	c.AbortWithStatusJSON(errno.HTTPStatus(e), map[string]interface{}{
		"code":    e.ErrCode,
		"message": e.ErrMsg,
		"data":    nil,
	})
}
