// Package metrics holds the prometheus collectors of the api and the worker.
package metrics

import (
	"context"
	"strconv"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// LikesTotal counts like toggles, by resulting action.
	LikesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ytgify_likes_total",
		Help: "Total number of like toggles, by action (like/unlike).",
	}, []string{"action"})

	GifUploadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ytgify_gif_uploads_total",
		Help: "Total number of gif uploads, by kind (original/remix) and result.",
	}, []string{"kind", "result"})

	EventsPublishedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ytgify_events_published_total",
		Help: "Total number of events published to the broker, by exchange and result.",
	}, []string{"exchange", "result"})

	EventsConsumedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ytgify_events_consumed_total",
		Help: "Total number of events handled by the worker, by queue and result.",
	}, []string{"queue", "result"})

	RateLimitedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ytgify_rate_limited_total",
		Help: "Total number of requests rejected by rate limiting or load shedding, by resource.",
	}, []string{"resource"})

	WebsocketClients = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "ytgify_websocket_clients",
		Help: "Current number of connected websocket clients.",
	})

	RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ytgify_http_request_duration_seconds",
		Help:    "HTTP request latency, by method, route and status.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
)

// Result maps an error to a low-cardinality label value.
func Result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// Middleware observes request latency labelled by the matched route pattern.
func Middleware() app.HandlerFunc {
	return func(ctx context.Context, c *app.RequestContext) {
		start := time.Now()
		c.Next(ctx)
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		RequestDuration.WithLabelValues(
			string(c.Method()),
			route,
			strconv.Itoa(c.Response.StatusCode()),
		).Observe(time.Since(start).Seconds())
	}
}

// Handler serves the default registry.
func Handler() app.HandlerFunc {
	return adaptor.HertzHandler(promhttp.Handler())
}
