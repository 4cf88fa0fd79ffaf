package di

import (
	"hexagonal-todo/application/ports"
	"hexagonal-todo/application/services"
	"hexagonal-todo/domain/events"
	"hexagonal-todo/infrastructure/config"
	"hexagonal-todo/pkg/auth"
	"hexagonal-todo/pkg/observability"
	"hexagonal-todo/pkg/utils"

	"go.uber.org/zap"
)

// Container holds all application dependencies
type Container struct {
	Config       *config.Config
	LogLevel     zap.AtomicLevel
	Logger       *zap.Logger
	Clock        utils.Clock
	TodoRepo     ports.TodoRepository
	EventQueue   ports.MessageQueue[events.TodoEvent]
	Publisher    ports.EventPublisher
	EventSink    ports.EventSink
	Collector    *observability.Collector
	Metrics      ports.MetricsRecorder
	Tracer       *observability.Tracer
	JWTValidator *auth.JWTValidator
	TodoService  *services.TodoService
}

// WatchConfig applies log level changes from the config file while the
// process runs. The returned stop function releases the watcher.
func (c *Container) WatchConfig() (stop func(), err error) {
	watcher, err := config.NewWatcher(c.Config, c.Logger)
	if err != nil {
		return nil, err
	}
	watcher.OnChange(func(next *config.Config) {
		if err := c.LogLevel.UnmarshalText([]byte(next.LogLevel)); err != nil {
			c.Logger.Warn("Ignoring invalid log level", zap.String("level", next.LogLevel))
		}
	})
	return watcher.Stop, nil
}
