package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// Metrics methods are safe to call on a nil receiver, which records nothing.
type Metrics struct {
	HTTPRequests   metric.Int64Counter
	HTTPDuration   metric.Float64Histogram
	PostsCreated   metric.Int64Counter
	PostsResolved  metric.Int64Counter
	AssistRequests metric.Int64Counter
}

func Setup(serviceName string) (*Metrics, http.Handler, error) {
	exporter, err := prometheus.New()
	if err != nil {
		return nil, nil, err
	}

	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(exporter))
	otel.SetMeterProvider(provider)

	meter := provider.Meter(serviceName)

	m := &Metrics{}

	m.HTTPRequests, err = meter.Int64Counter(
		"astra_http_requests_total",
		metric.WithDescription("Total number of HTTP requests"),
	)
	if err != nil {
		return nil, nil, err
	}

	m.HTTPDuration, err = meter.Float64Histogram(
		"astra_http_duration_seconds",
		metric.WithDescription("HTTP request duration in seconds"),
	)
	if err != nil {
		return nil, nil, err
	}

	m.PostsCreated, err = meter.Int64Counter(
		"astra_posts_created_total",
		metric.WithDescription("Total number of scheduled posts created"),
	)
	if err != nil {
		return nil, nil, err
	}

	m.PostsResolved, err = meter.Int64Counter(
		"astra_posts_resolved_total",
		metric.WithDescription("Total number of posts that reached a terminal status"),
	)
	if err != nil {
		return nil, nil, err
	}

	m.AssistRequests, err = meter.Int64Counter(
		"astra_assist_requests_total",
		metric.WithDescription("Total number of generative assist requests"),
	)
	if err != nil {
		return nil, nil, err
	}

	return m, promhttp.Handler(), nil
}

func (m *Metrics) RecordHTTPRequest(ctx context.Context, method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labels := metric.WithAttributes(
		attribute.String("method", method),
		attribute.String("path", path),
		attribute.Int("status", status),
	)

	m.HTTPRequests.Add(ctx, 1, labels)
	m.HTTPDuration.Record(ctx, duration.Seconds(), labels)
}

func (m *Metrics) RecordPostCreated(ctx context.Context, platforms int) {
	if m == nil {
		return
	}
	m.PostsCreated.Add(ctx, 1, metric.WithAttributes(attribute.Int("platforms", platforms)))
}

func (m *Metrics) RecordPostsResolved(ctx context.Context, source string, count int) {
	if m == nil || count == 0 {
		return
	}
	m.PostsResolved.Add(ctx, int64(count), metric.WithAttributes(attribute.String("source", source)))
}

func (m *Metrics) RecordAssist(ctx context.Context, kind string, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.AssistRequests.Add(ctx, 1, metric.WithAttributes(
		attribute.String("kind", kind),
		attribute.String("outcome", outcome),
	))
}
