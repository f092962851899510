package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	export "go.opentelemetry.io/otel/sdk/export/metric"
	"go.opentelemetry.io/otel/sdk/metric/aggregator/histogram"
	controller "go.opentelemetry.io/otel/sdk/metric/controller/basic"
	processor "go.opentelemetry.io/otel/sdk/metric/processor/basic"
	selector "go.opentelemetry.io/otel/sdk/metric/selector/simple"
)

// NewExporter builds the prometheus exporter. Its ServeHTTP is the /metrics
// handler and its MeterProvider should be installed globally.
func NewExporter() (*prometheus.Exporter, error) {
	config := prometheus.Config{}
	c := controller.New(
		processor.New(
			selector.NewWithHistogramDistribution(
				histogram.WithExplicitBoundaries(config.DefaultHistogramBoundaries),
			),
			export.CumulativeExportKindSelector(),
			processor.WithMemory(true),
		),
	)

	return prometheus.New(config, c)
}

// Metrics holds the instruments recorded by the HTTP and domain layers.
type Metrics struct {
	completed metric.Int64Counter
	duration  metric.Float64ValueRecorder
	events    metric.Int64Counter
}

func New(meter metric.Meter) *Metrics {
	m := metric.Must(meter)

	return &Metrics{
		completed: m.NewInt64Counter(
			"http/server/completed_count",
			metric.WithDescription("Count of completed requests, by HTTP method, route and response status"),
		),
		duration: m.NewFloat64ValueRecorder(
			"http/server/duration_ms",
			metric.WithDescription("Request duration in milliseconds"),
		),
		events: m.NewInt64Counter(
			"blog/events_count",
			metric.WithDescription("Count of blog domain events, by type"),
		),
	}
}

// Middleware records one completed request per call.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}

		labels := []attribute.KeyValue{
			attribute.String("method", r.Method),
			attribute.String("route", route),
			attribute.String("status", strconv.Itoa(ww.Status())),
		}

		m.completed.Add(r.Context(), 1, labels...)
		m.duration.Record(r.Context(), float64(time.Since(start).Microseconds())/1000, labels...)
	})
}

// Event counts a domain event such as article.published.
func (m *Metrics) Event(ctx context.Context, name string) {
	m.events.Add(ctx, 1, attribute.String("type", name))
}
