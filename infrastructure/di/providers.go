package di

import (
	"context"
	"strings"
	"time"

	"hexagonal-todo/application/ports"
	"hexagonal-todo/application/services"
	"hexagonal-todo/domain/core/validators"
	"hexagonal-todo/domain/events"
	"hexagonal-todo/infrastructure/config"
	"hexagonal-todo/infrastructure/messaging/eventbridge"
	"hexagonal-todo/infrastructure/messaging/sqs"
	"hexagonal-todo/infrastructure/persistence/dynamodb"
	"hexagonal-todo/pkg/auth"
	"hexagonal-todo/pkg/observability"
	"hexagonal-todo/pkg/utils"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	awscloudwatch "github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awseventbridge "github.com/aws/aws-sdk-go-v2/service/eventbridge"
	awssqs "github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-xray-sdk-go/instrumentation/awsv2"
	"go.uber.org/zap"
)

// ProvideLogLevel parses the configured level into a level that can be
// changed at runtime
func ProvideLogLevel(cfg *config.Config) (zap.AtomicLevel, error) {
	return zap.ParseAtomicLevel(cfg.LogLevel)
}

// ProvideLogger creates a new logger instance tagged with the app and
// environment names
func ProvideLogger(cfg *config.Config, level zap.AtomicLevel) (*zap.Logger, error) {
	var zapCfg zap.Config
	if cfg.IsProduction() {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}
	zapCfg.Level = level

	logger, err := zapCfg.Build()
	if err != nil {
		return nil, err
	}

	return logger.With(
		zap.String("appName", cfg.AppName),
		zap.String("envName", cfg.Environment),
	), nil
}

// ProvideAWSConfig creates AWS configuration. Static credentials are used
// when configured, the default chain otherwise.
func ProvideAWSConfig(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.AWSRegion),
	}
	if cfg.AWSAccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AWSAccessKeyID, cfg.AWSSecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, err
	}

	if cfg.EnableTracing {
		awsv2.AWSV2Instrumentor(&awsCfg.APIOptions)
	}
	return awsCfg, nil
}

// ProvideDynamoDBClient creates a DynamoDB client
func ProvideDynamoDBClient(awsCfg aws.Config, cfg *config.Config) *awsdynamodb.Client {
	return awsdynamodb.NewFromConfig(awsCfg, func(o *awsdynamodb.Options) {
		o.Region = cfg.DynamoRegion
		if cfg.DynamoEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.DynamoEndpoint)
		}
	})
}

// ProvideSQSClient creates an SQS client
func ProvideSQSClient(awsCfg aws.Config, cfg *config.Config) *awssqs.Client {
	return awssqs.NewFromConfig(awsCfg, func(o *awssqs.Options) {
		o.Region = cfg.SQSRegion
		if cfg.SQSEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.SQSEndpoint)
		}
	})
}

// ProvideEventBridgeClient creates an EventBridge client
func ProvideEventBridgeClient(awsCfg aws.Config) *awseventbridge.Client {
	return awseventbridge.NewFromConfig(awsCfg)
}

// ProvideCloudWatchClient creates a CloudWatch client
func ProvideCloudWatchClient(awsCfg aws.Config) *awscloudwatch.Client {
	return awscloudwatch.NewFromConfig(awsCfg)
}

// ProvideClock creates the clock todo timestamps are read from
func ProvideClock(cfg *config.Config) (utils.Clock, error) {
	return utils.NewZonedClock(cfg.Timezone)
}

// ProvideTodoRepository creates the todo document store
func ProvideTodoRepository(client *awsdynamodb.Client, cfg *config.Config, logger *zap.Logger) ports.TodoRepository {
	return dynamodb.NewTodoRepository(client, cfg.TodoTableName, logger)
}

// ProvideEventQueue creates the queue todo events travel on. Undecodable
// messages are handed to the relay, which drops them, rather than
// blocking the rest of their batch.
func ProvideEventQueue(client *awssqs.Client, cfg *config.Config, logger *zap.Logger) ports.MessageQueue[events.TodoEvent] {
	return sqs.NewQueue[events.TodoEvent](client, cfg.TodoQueue, ReceiveOptions(cfg), logger).SkipUndecodable()
}

// ReceiveOptions maps the polling configuration onto queue options
func ReceiveOptions(cfg *config.Config) ports.ReceiveOptions {
	return ports.ReceiveOptions{
		VisibilityTimeout: int32(cfg.SQSVisibilityTimeout),
		WaitTimeSeconds:   int32(cfg.SQSWaitTimeSeconds),
		MaxMessages:       int32(cfg.SQSMaxMessages),
	}
}

// ProvideEventPublisher publishes through the queue when events are
// enabled and drops them otherwise
func ProvideEventPublisher(queue ports.MessageQueue[events.TodoEvent], cfg *config.Config, logger *zap.Logger) ports.EventPublisher {
	if !cfg.EnableEvents {
		return ports.NoopPublisher{}
	}
	return sqs.NewNotifier(queue, sqs.DefaultBreakerConfig(cfg.AppName+"-events"), logger)
}

// ProvideEventSink creates the EventBridge sink the relay forwards to
func ProvideEventSink(client *awseventbridge.Client, cfg *config.Config, logger *zap.Logger) ports.EventSink {
	return eventbridge.NewSink(client, cfg.EventBusName, logger)
}

// ProvideCollector creates the Prometheus collector
func ProvideCollector(cfg *config.Config) *observability.Collector {
	return observability.NewCollector(metricName(cfg.AppName))
}

// ProvideMetrics always records to Prometheus and adds CloudWatch when
// metrics are enabled
func ProvideMetrics(
	client *awscloudwatch.Client,
	collector *observability.Collector,
	cfg *config.Config,
	logger *zap.Logger,
) ports.MetricsRecorder {
	if !cfg.EnableMetrics {
		return collector
	}
	return metricsFanout{
		collector,
		observability.NewCloudWatchMetrics(cfg.MetricsNamespace, client, logger),
	}
}

// metricsFanout records each measurement on every recorder
type metricsFanout []ports.MetricsRecorder

func (f metricsFanout) RecordOperation(ctx context.Context, operation string, duration time.Duration, err error) {
	for _, r := range f {
		r.RecordOperation(ctx, operation, duration, err)
	}
}

// ProvideTracer creates the X-Ray tracer
func ProvideTracer(cfg *config.Config) *observability.Tracer {
	return observability.NewTracer(cfg.AppName, cfg.EnableTracing)
}

// ProvideJWTValidator returns nil when no secret is configured, which
// leaves the API unauthenticated
func ProvideJWTValidator(cfg *config.Config) (*auth.JWTValidator, error) {
	if cfg.JWTSecret == "" {
		return nil, nil
	}
	return auth.NewJWTValidator(cfg.JWTSecret, cfg.JWTIssuer)
}

// ProvideTodoValidator creates the todo validator
func ProvideTodoValidator(clock utils.Clock) *validators.TodoValidator {
	return validators.NewTodoValidator(clock)
}

// ProvideTodoService creates the todo use cases
func ProvideTodoService(
	validator *validators.TodoValidator,
	repo ports.TodoRepository,
	publisher ports.EventPublisher,
	metrics ports.MetricsRecorder,
	tracer *observability.Tracer,
	clock utils.Clock,
	logger *zap.Logger,
) *services.TodoService {
	return services.NewTodoService(validator, repo, publisher, metrics, tracer, clock, logger)
}

// metricName makes s usable as a Prometheus namespace
func metricName(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			return r
		default:
			return '_'
		}
	}, s)
}
