package observability

import (
	"context"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"hexagonal-todo/pkg/errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeCloudWatch struct {
	inputs []*cloudwatch.PutMetricDataInput
	err    error
}

func (f *fakeCloudWatch) PutMetricData(_ context.Context, in *cloudwatch.PutMetricDataInput, _ ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error) {
	f.inputs = append(f.inputs, in)
	return &cloudwatch.PutMetricDataOutput{}, f.err
}

func TestOutcome(t *testing.T) {
	assert.Equal(t, "success", Outcome(nil))
	assert.Equal(t, "user_error", Outcome(errors.NewUserError("m", "bad")))
	assert.Equal(t, "internal", Outcome(errors.NewInternalError("m", "down")))
	assert.Equal(t, "internal", Outcome(stderrors.New("raw")))
}

func TestCloudWatchMetrics(t *testing.T) {
	client := &fakeCloudWatch{}
	metrics := NewCloudWatchMetrics("Todo/test", client, zap.NewNop())

	metrics.RecordOperation(context.Background(), "createTodo", 42*time.Millisecond, nil)

	require.Len(t, client.inputs, 1)
	input := client.inputs[0]
	assert.Equal(t, "Todo/test", aws.ToString(input.Namespace))
	require.Len(t, input.MetricData, 2)
	assert.Equal(t, "OperationLatency", aws.ToString(input.MetricData[0].MetricName))
	assert.Equal(t, 42.0, aws.ToFloat64(input.MetricData[0].Value))
	assert.Equal(t, "success", aws.ToString(input.MetricData[0].Dimensions[1].Value))

	// a failing put is swallowed
	client.err = stderrors.New("throttled")
	metrics.RecordOperation(context.Background(), "createTodo", time.Millisecond, errors.NewUserError("m", "bad"))
	assert.Len(t, client.inputs, 2)
}

func TestCollector(t *testing.T) {
	c := NewCollector("todo_test")

	c.RecordOperation(context.Background(), "getTodo", time.Millisecond, nil)
	c.RecordOperation(context.Background(), "getTodo", time.Millisecond, errors.NewUserError("m", "bad"))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.Operations.WithLabelValues("getTodo", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.Operations.WithLabelValues("getTodo", "user_error")))

	router := chi.NewRouter()
	router.Use(c.Middleware)
	router.Get("/api/v1/todos/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	router.Handle("/metrics", c.Handler())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/todos/abc", nil))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.HTTPRequests.WithLabelValues("GET", "/api/v1/todos/{id}", "418")))

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "todo_test_todo_operations_total")
}

func TestTracerDisabledRunsFunction(t *testing.T) {
	tracer := NewTracer("todo", false)
	called := false
	err := tracer.TraceFunction(context.Background(), "op", func(context.Context) error {
		called = true
		return nil
	})
	require.NoError(t, err)
	assert.True(t, called)

	next := http.HandlerFunc(func(http.ResponseWriter, *http.Request) {})
	assert.NotNil(t, tracer.Middleware(next))
}
