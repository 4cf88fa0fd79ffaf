package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	_ "time/tzdata"

	"hexagonal-todo/pkg/utils"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration
type Config struct {
	// Application
	AppName       string `yaml:"app_name" validate:"required"`
	Environment   string `yaml:"environment" validate:"required,oneof=development test staging production"`
	ServerAddress string `yaml:"server_address" validate:"required"`
	IsLambda      bool   `yaml:"is_lambda"`

	// AWS configuration
	AWSRegion          string `yaml:"aws_region" validate:"required"`
	AWSAccessKeyID     string `yaml:"aws_access_key_id"`
	AWSSecretAccessKey string `yaml:"aws_secret_access_key"`

	// DynamoDB
	DynamoRegion   string `yaml:"dynamo_region" validate:"required"`
	DynamoEndpoint string `yaml:"dynamo_endpoint" validate:"omitempty,url"`
	TodoTableName  string `yaml:"todo_table_name" validate:"required"`

	// SQS
	SQSRegion            string `yaml:"sqs_region" validate:"required"`
	SQSEndpoint          string `yaml:"sqs_endpoint" validate:"omitempty,url"`
	TodoQueue            string `yaml:"todo_queue" validate:"required"`
	SQSMaxMessages       int    `yaml:"sqs_max_messages" validate:"min=1,max=10"`
	SQSVisibilityTimeout int    `yaml:"sqs_visibility_timeout" validate:"min=0,max=43200"`
	SQSWaitTimeSeconds   int    `yaml:"sqs_wait_time_seconds" validate:"min=0,max=20"`

	// Time
	Timezone string `yaml:"timezone" validate:"required,timezone"`

	// Logging
	LogLevel string `yaml:"log_level" validate:"oneof=debug info warn error"`

	// Events
	EnableEvents bool   `yaml:"enable_events"`
	EventBusName string `yaml:"event_bus_name" validate:"required_if=EnableEvents true"`

	// Authentication
	JWTSecret string `yaml:"jwt_secret"`
	JWTIssuer string `yaml:"jwt_issuer"`

	// Feature flags
	EnableMetrics    bool     `yaml:"enable_metrics"`
	MetricsNamespace string   `yaml:"metrics_namespace"`
	EnableTracing    bool     `yaml:"enable_tracing"`
	EnableCORS       bool     `yaml:"enable_cors"`
	AllowedOrigins   []string `yaml:"allowed_origins"`

	// ConfigFile is the YAML overlay this config was read from
	ConfigFile string `yaml:"-"`
}

const localstackEndpoint = "http://localhost:4566"

// Defaults returns the configuration used when nothing is set
func Defaults() *Config {
	return &Config{
		AppName:              "hexagonal-boilerplate",
		Environment:          "development",
		ServerAddress:        ":3000",
		AWSRegion:            "us-east-1",
		DynamoRegion:         "us-east-1",
		TodoTableName:        "todos",
		SQSRegion:            "us-east-1",
		TodoQueue:            "todo",
		SQSMaxMessages:       1,
		SQSVisibilityTimeout: 20,
		SQSWaitTimeSeconds:   10,
		Timezone:             "America/Sao_Paulo",
		LogLevel:             "info",
		EventBusName:         "todo-events",
		JWTIssuer:            "hexagonal-todo",
		EnableCORS:           true,
		AllowedOrigins:       []string{"*"},
	}
}

// LoadConfig loads configuration from defaults, the optional CONFIG_FILE
// YAML overlay, and environment variables, in that order of precedence
func LoadConfig() (*Config, error) {
	return LoadFrom(os.Getenv("CONFIG_FILE"))
}

// LoadFrom loads configuration using path as the YAML overlay. An empty
// path skips the file.
func LoadFrom(path string) (*Config, error) {
	cfg := Defaults()

	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
		cfg.ConfigFile = path
	}

	cfg.applyEnv()

	// Validate required configuration
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadFile overlays the YAML file onto cfg
func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

// applyEnv overrides fields from environment variables. The current
// value of each field is the fallback.
func (c *Config) applyEnv() {
	c.AppName = getEnv("APP_NAME", c.AppName)
	c.Environment = getEnv("ENVIRONMENT", getEnv("NODE_ENV", c.Environment))
	if port := os.Getenv("PORT"); port != "" {
		c.ServerAddress = ":" + port
	}
	c.ServerAddress = getEnv("SERVER_ADDRESS", c.ServerAddress)
	c.IsLambda = getEnvBool("IS_LAMBDA", c.IsLambda || os.Getenv("AWS_LAMBDA_FUNCTION_NAME") != "")

	c.AWSRegion = getEnv("AWS_REGION", c.AWSRegion)
	c.AWSAccessKeyID = getEnv("AWS_ACCESS_KEY_ID", c.AWSAccessKeyID)
	c.AWSSecretAccessKey = getEnv("AWS_ACCESS_SECRET_KEY", getEnv("AWS_SECRET_ACCESS_KEY", c.AWSSecretAccessKey))

	c.DynamoRegion = getEnv("AWS_DYNAMO_REGION", c.DynamoRegion)
	c.DynamoEndpoint = getEnv("AWS_DYNAMO_ENDPOINT", c.DynamoEndpoint)
	c.TodoTableName = getEnv("AWS_DYNAMO_TODO_TABLE_NAME", c.TodoTableName)

	c.SQSRegion = getEnv("AWS_SQS_REGION", c.SQSRegion)
	c.SQSEndpoint = getEnv("AWS_SQS_ENDPOINT", c.SQSEndpoint)
	c.TodoQueue = getEnv("AWS_SQS_TODO_QUEUE_NAME", c.TodoQueue)
	c.SQSMaxMessages = getEnvInt("SQS_MAX_MESSAGES", c.SQSMaxMessages)
	c.SQSVisibilityTimeout = getEnvInt("SQS_VISIBILITY_TIMEOUT", c.SQSVisibilityTimeout)
	c.SQSWaitTimeSeconds = getEnvInt("SQS_WAIT_TIME_SECONDS", c.SQSWaitTimeSeconds)

	c.Timezone = getEnv("TIMEZONE", c.Timezone)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)

	c.EnableEvents = getEnvBool("ENABLE_EVENTS", c.EnableEvents)
	c.EventBusName = getEnv("EVENT_BUS_NAME", c.EventBusName)

	c.JWTSecret = getEnv("JWT_SECRET", c.JWTSecret)
	c.JWTIssuer = getEnv("JWT_ISSUER", c.JWTIssuer)

	c.EnableMetrics = getEnvBool("ENABLE_METRICS", c.EnableMetrics)
	c.MetricsNamespace = getEnv("METRICS_NAMESPACE", c.MetricsNamespace)
	c.EnableTracing = getEnvBool("ENABLE_TRACING", c.EnableTracing)
	c.EnableCORS = getEnvBool("ENABLE_CORS", c.EnableCORS)
	if origins := os.Getenv("ALLOWED_ORIGINS"); origins != "" {
		c.AllowedOrigins = strings.Split(origins, ",")
	}

	// Local development talks to localstack unless told otherwise
	if c.IsDevelopment() {
		if c.DynamoEndpoint == "" {
			c.DynamoEndpoint = localstackEndpoint
		}
		if c.AWSAccessKeyID == "" {
			c.AWSAccessKeyID = "dummy"
			c.AWSSecretAccessKey = "dummy"
		}
	}
	if c.MetricsNamespace == "" {
		c.MetricsNamespace = fmt.Sprintf("%s/%s", c.AppName, c.Environment)
	}
}

// Validate checks if all required configuration is present
func (c *Config) Validate() error {
	if err := utils.ValidateStruct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if c.IsProduction() && c.AWSAccessKeyID == "dummy" {
		return fmt.Errorf("invalid configuration: placeholder AWS credentials in production")
	}
	return nil
}

// IsDevelopment checks if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction checks if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool gets a boolean environment variable with a default value
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value == "true" || value == "1" || value == "yes"
}

// getEnvInt gets an integer environment variable with a default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}
