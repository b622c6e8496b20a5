// Package metrics exposes request counters and latencies for the gRPC services.
package metrics

import (
	"context"
	"net/http"
	"path"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"google.golang.org/grpc"
	"google.golang.org/grpc/status"
)

type Metrics struct {
	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
	gatherer prometheus.Gatherer
}

// New registers the collectors on reg. Pass prometheus.DefaultRegisterer in production.
func New(reg prometheus.Registerer, gatherer prometheus.Gatherer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "aerostore",
			Name:      "grpc_requests_total",
			Help:      "Handled gRPC requests by service, method and status code.",
		}, []string{"service", "method", "code"}),
		latency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "aerostore",
			Name:      "grpc_request_duration_seconds",
			Help:      "gRPC request latency by service and method.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"service", "method"}),
		gatherer: gatherer,
	}
}

func splitMethod(fullMethod string) (string, string) {
	service, method := path.Split(fullMethod)
	return path.Clean(service)[1:], method
}

func (m *Metrics) UnaryServerInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)

		service, method := splitMethod(info.FullMethod)
		m.requests.WithLabelValues(service, method, status.Code(err).String()).Inc()
		m.latency.WithLabelValues(service, method).Observe(time.Since(start).Seconds())
		return resp, err
	}
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
