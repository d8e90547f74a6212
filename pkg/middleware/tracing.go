package middleware

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/opentracing/opentracing-go"
	"github.com/opentracing/opentracing-go/ext"
)

// Tracing 为每个请求开启一个 server span, 上游传入的 span context 会被延续
func Tracing() app.HandlerFunc {
	return func(ctx context.Context, c *app.RequestContext) {
		tracer := opentracing.GlobalTracer()
		carrier := opentracing.HTTPHeadersCarrier{}
		c.Request.Header.VisitAll(func(k, v []byte) {
			carrier.Set(string(k), string(v))
		})

		opts := []opentracing.StartSpanOption{ext.SpanKindRPCServer}
		if parent, err := tracer.Extract(opentracing.HTTPHeaders, carrier); err == nil {
			opts = append(opts, opentracing.ChildOf(parent))
		}
		span := tracer.StartSpan(string(c.Method())+" "+routeName(c), opts...)
		defer span.Finish()

		ext.HTTPMethod.Set(span, string(c.Method()))
		ext.HTTPUrl.Set(span, string(c.Request.URI().Path()))

		c.Next(opentracing.ContextWithSpan(ctx, span))

		status := c.Response.StatusCode()
		ext.HTTPStatusCode.Set(span, uint16(status))
		if status >= 500 {
			ext.Error.Set(span, true)
		}
	}
}

func routeName(c *app.RequestContext) string {
	if p := c.FullPath(); p != "" {
		return p
	}
	return string(c.Request.URI().Path())
}
