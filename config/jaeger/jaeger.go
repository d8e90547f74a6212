package jaeger

import (
	"io"

	"github.com/opentracing/opentracing-go"
	"github.com/sirupsen/logrus"
	jaegercfg "github.com/uber/jaeger-client-go/config"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Init installs a jaeger tracer as the opentracing global tracer. An empty
// agent address leaves the noop tracer in place.
func Init(service, agent string) io.Closer {
	if agent == "" {
		logrus.Info("jaeger agent not configured, tracing disabled")
		return nopCloser{}
	}
	cfg := jaegercfg.Configuration{
		ServiceName: service,
		Sampler: &jaegercfg.SamplerConfig{
			Type:  "const",
			Param: 1,
		},
		Reporter: &jaegercfg.ReporterConfig{
			LogSpans:           false,
			LocalAgentHostPort: agent,
		},
	}
	tracer, closer, err := cfg.NewTracer()
	if err != nil {
		logrus.Errorf("failed to init jaeger tracer: %v", err)
		return nopCloser{}
	}
	opentracing.SetGlobalTracer(tracer)
	logrus.Infof("jaeger tracer initialized for %s -> %s", service, agent)
	return closer
}
