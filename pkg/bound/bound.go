package bound

import (
	"context"
	"math"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/shirou/gopsutil/cpu"
	"github.com/shirou/gopsutil/mem"

	"ytgify.com/pkg/errno"
	"ytgify.com/pkg/metrics"
)

// cpuPercent 最近一次采样的 CPU 使用率, 以 float64 bits 存储
var cpuPercent atomic.Uint64

func load() float64 {
	return math.Float64frombits(cpuPercent.Load())
}

func store(v float64) {
	cpuPercent.Store(math.Float64bits(v))
}

// StartSampler 每个 interval 采样一次 CPU, ctx 结束时退出
func StartSampler(ctx context.Context, interval time.Duration) {
	go func() {
		for {
			percents, err := cpu.PercentWithContext(ctx, interval, false)
			if ctx.Err() != nil {
				return
			}
			if err != nil || len(percents) == 0 {
				hlog.Warnf("cpu sample failed: %v", err)
				time.Sleep(interval)
				continue
			}
			store(percents[0])
		}
	}()
}

// CPUShedder 超过阈值时直接返回 503
func CPUShedder(threshold float64) app.HandlerFunc {
	return func(ctx context.Context, c *app.RequestContext) {
		if threshold > 0 && load() > threshold {
			metrics.RateLimitedTotal.WithLabelValues("cpu").Inc()
			e := errno.ServiceBusyErr
			c.AbortWithStatusJSON(errno.HTTPStatus(e), map[string]interface{}{
				"code":    e.ErrCode,
				"message": e.ErrMsg,
				"data":    nil,
			})
			return
		}
		c.Next(ctx)
	}
}

type HealthReport struct {
	Status        string  `json:"status"`
	CPUPercent    float64 `json:"cpu_percent"`
	MemoryPercent float64 `json:"memory_percent"`
	Goroutines    int     `json:"goroutines"`
	Time          string  `json:"time"`
}

// Report 汇总进程与主机状态
func Report(threshold float64) HealthReport {
	r := HealthReport{
		Status:     "ok",
		CPUPercent: load(),
		Goroutines: runtime.NumGoroutine(),
		Time:       time.Now().UTC().Format(time.RFC3339),
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		r.MemoryPercent = vm.UsedPercent
	}
	if threshold > 0 && r.CPUPercent > threshold {
		r.Status = "busy"
	}
	return r
}

func HealthHandler(threshold float64) app.HandlerFunc {
	return func(ctx context.Context, c *app.RequestContext) {
		r := Report(threshold)
		status := http.StatusOK
		if r.Status != "ok" {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, r)
	}
}
