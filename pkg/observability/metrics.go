package observability

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"hexagonal-todo/pkg/errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Outcome labels an operation result
func Outcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.IsUserError(err):
		return "user_error"
	default:
		return "internal"
	}
}

// CloudWatchAPI is the slice of the CloudWatch client metrics use
type CloudWatchAPI interface {
	PutMetricData(ctx context.Context, params *cloudwatch.PutMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error)
}

// CloudWatchMetrics publishes operation metrics with PutMetricData
type CloudWatchMetrics struct {
	namespace string
	client    CloudWatchAPI
	logger    *zap.Logger
}

// NewCloudWatchMetrics creates a CloudWatch recorder
func NewCloudWatchMetrics(namespace string, client CloudWatchAPI, logger *zap.Logger) *CloudWatchMetrics {
	return &CloudWatchMetrics{
		namespace: namespace,
		client:    client,
		logger:    logger,
	}
}

// RecordOperation records latency and count for an operation
func (m *CloudWatchMetrics) RecordOperation(ctx context.Context, operation string, duration time.Duration, err error) {
	if m.client == nil {
		return
	}

	dimensions := []types.Dimension{
		{Name: aws.String("Operation"), Value: aws.String(operation)},
		{Name: aws.String("Outcome"), Value: aws.String(Outcome(err))},
	}
	now := aws.Time(time.Now())

	input := &cloudwatch.PutMetricDataInput{
		Namespace: aws.String(m.namespace),
		MetricData: []types.MetricDatum{
			{
				MetricName: aws.String("OperationLatency"),
				Dimensions: dimensions,
				Value:      aws.Float64(float64(duration.Milliseconds())),
				Unit:       types.StandardUnitMilliseconds,
				Timestamp:  now,
			},
			{
				MetricName: aws.String("OperationCount"),
				Dimensions: dimensions,
				Value:      aws.Float64(1),
				Unit:       types.StandardUnitCount,
				Timestamp:  now,
			},
		},
	}

	// Metrics never fail the operation
	if _, putErr := m.client.PutMetricData(ctx, input); putErr != nil {
		m.logger.Warn("Failed to send metrics", zap.Error(putErr))
	}
}

// Collector holds the Prometheus metrics for the service
type Collector struct {
	registry *prometheus.Registry

	HTTPRequests      *prometheus.CounterVec
	HTTPDuration      *prometheus.HistogramVec
	Operations        *prometheus.CounterVec
	OperationDuration *prometheus.HistogramVec
}

// NewCollector creates a collector on its own registry
func NewCollector(namespace string) *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		Operations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "todo_operations_total",
				Help:      "Total number of todo operations by outcome",
			},
			[]string{"operation", "outcome"},
		),
		OperationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "todo_operation_duration_seconds",
				Help:      "Todo operation duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}

	c.registry.MustRegister(c.HTTPRequests, c.HTTPDuration, c.Operations, c.OperationDuration)
	return c
}

// RecordOperation implements the metrics recorder port
func (c *Collector) RecordOperation(_ context.Context, operation string, duration time.Duration, err error) {
	c.Operations.WithLabelValues(operation, Outcome(err)).Inc()
	c.OperationDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// Registry exposes the underlying registry
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the registry in the exposition format
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// Middleware counts requests by route pattern
func (c *Collector) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		c.HTTPRequests.WithLabelValues(r.Method, route, strconv.Itoa(ww.Status())).Inc()
		c.HTTPDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}
