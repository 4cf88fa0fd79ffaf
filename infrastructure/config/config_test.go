package config

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// clearEnv blanks every variable the loader reads so the host
// environment cannot leak into a test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"CONFIG_FILE", "APP_NAME", "ENVIRONMENT", "NODE_ENV", "PORT", "SERVER_ADDRESS",
		"IS_LAMBDA", "AWS_LAMBDA_FUNCTION_NAME", "AWS_REGION", "AWS_ACCESS_KEY_ID",
		"AWS_ACCESS_SECRET_KEY", "AWS_SECRET_ACCESS_KEY", "AWS_DYNAMO_REGION",
		"AWS_DYNAMO_ENDPOINT", "AWS_DYNAMO_TODO_TABLE_NAME", "AWS_SQS_REGION",
		"AWS_SQS_ENDPOINT", "AWS_SQS_TODO_QUEUE_NAME", "SQS_MAX_MESSAGES",
		"SQS_VISIBILITY_TIMEOUT", "SQS_WAIT_TIME_SECONDS", "TIMEZONE", "LOG_LEVEL",
		"ENABLE_EVENTS", "EVENT_BUS_NAME", "JWT_SECRET", "JWT_ISSUER", "ENABLE_METRICS",
		"METRICS_NAMESPACE", "ENABLE_TRACING", "ENABLE_CORS", "ALLOWED_ORIGINS",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "hexagonal-boilerplate", cfg.AppName)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, ":3000", cfg.ServerAddress)
	assert.Equal(t, "todos", cfg.TodoTableName)
	assert.Equal(t, "todo", cfg.TodoQueue)
	assert.Equal(t, "America/Sao_Paulo", cfg.Timezone)
	assert.Equal(t, "http://localhost:4566", cfg.DynamoEndpoint)
	assert.Equal(t, "dummy", cfg.AWSAccessKeyID)
	assert.Equal(t, 1, cfg.SQSMaxMessages)
	assert.Equal(t, 20, cfg.SQSVisibilityTimeout)
	assert.Equal(t, 10, cfg.SQSWaitTimeSeconds)
	assert.Equal(t, "hexagonal-boilerplate/development", cfg.MetricsNamespace)
	assert.False(t, cfg.IsLambda)
}

func TestLoadConfigEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("NODE_ENV", "staging")
	t.Setenv("PORT", "8080")
	t.Setenv("AWS_DYNAMO_TODO_TABLE_NAME", "todos-staging")
	t.Setenv("AWS_SQS_TODO_QUEUE_NAME", "https://sqs.us-east-1.amazonaws.com/123/todo")
	t.Setenv("SQS_MAX_MESSAGES", "5")
	t.Setenv("AWS_LAMBDA_FUNCTION_NAME", "todo-resolver")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example,https://b.example")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "staging", cfg.Environment)
	assert.Equal(t, ":8080", cfg.ServerAddress)
	assert.Equal(t, "todos-staging", cfg.TodoTableName)
	assert.Equal(t, "https://sqs.us-east-1.amazonaws.com/123/todo", cfg.TodoQueue)
	assert.Equal(t, 5, cfg.SQSMaxMessages)
	assert.True(t, cfg.IsLambda)
	assert.Empty(t, cfg.DynamoEndpoint)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
}

func TestLoadConfigFileOverlay(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("app_name: todo-file\ntimezone: UTC\nlog_level: debug\n"), 0o600))
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("LOG_LEVEL", "warn")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "todo-file", cfg.AppName)
	assert.Equal(t, "UTC", cfg.Timezone)
	assert.Equal(t, "warn", cfg.LogLevel, "environment wins over the file")
	assert.Equal(t, path, cfg.ConfigFile)
}

func TestLoadConfigRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{name: "unknown timezone", env: map[string]string{"TIMEZONE": "Mars/Olympus"}, want: "timezone"},
		{name: "batch too large", env: map[string]string{"SQS_MAX_MESSAGES": "11"}, want: "sqs_max_messages must be at most 10"},
		{name: "bad log level", env: map[string]string{"LOG_LEVEL": "loud"}, want: "log_level must be one of"},
		{name: "unknown environment", env: map[string]string{"NODE_ENV": "qa"}, want: "environment must be one of"},
		{name: "placeholder credentials in production", env: map[string]string{"NODE_ENV": "production", "AWS_ACCESS_KEY_ID": "dummy"}, want: "placeholder AWS credentials"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := LoadConfig()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadConfigEventsNeedBus(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("enable_events: true\nevent_bus_name: \"\"\n"), 0o600))

	_, err := LoadFrom(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "event_bus_name is required")
}

func TestLoadConfigMissingFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestWatcherReloadsOnWrite(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log_level: info\n"), 0o600))

	cfg, err := LoadFrom(path)
	require.NoError(t, err)

	w, err := NewWatcher(cfg, zap.NewNop())
	require.NoError(t, err)
	defer w.Stop()

	var seen atomic.Value
	w.OnChange(func(c *Config) { seen.Store(c.LogLevel) })

	require.NoError(t, os.WriteFile(path, []byte("log_level: debug\n"), 0o600))

	require.Eventually(t, func() bool {
		v, _ := seen.Load().(string)
		return v == "debug"
	}, 5*time.Second, 50*time.Millisecond)
	assert.Equal(t, "debug", w.Current().LogLevel)
}

func TestWatcherWithoutFileIsInert(t *testing.T) {
	w, err := NewWatcher(Defaults(), zap.NewNop())
	require.NoError(t, err)
	w.Stop()
	w.Stop()
	assert.Equal(t, "info", w.Current().LogLevel)
}
