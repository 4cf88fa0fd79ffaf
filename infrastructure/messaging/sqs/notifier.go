package sqs

import (
	"context"
	stderrors "errors"
	"time"

	"hexagonal-todo/application/ports"
	"hexagonal-todo/domain/events"
	"hexagonal-todo/pkg/errors"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

const methodPublishEvent = "messaging.sqs.publishEvent"

// BreakerConfig tunes the circuit breaker guarding the event queue
type BreakerConfig struct {
	Name             string
	MaxRequests      uint32
	Interval         time.Duration
	Timeout          time.Duration
	FailureThreshold float64
	MinRequests      uint32
}

// DefaultBreakerConfig returns the breaker settings used in production
func DefaultBreakerConfig(name string) BreakerConfig {
	return BreakerConfig{
		Name:             name,
		MaxRequests:      5,
		Interval:         30 * time.Second,
		Timeout:          60 * time.Second,
		FailureThreshold: 0.8,
		MinRequests:      5,
	}
}

// Notifier publishes todo events onto a queue. While the breaker is open
// publishes fail fast without calling the queue.
type Notifier struct {
	queue   ports.MessageQueue[events.TodoEvent]
	breaker *gobreaker.CircuitBreaker
	logger  *zap.Logger
}

// NewNotifier creates a notifier over queue
func NewNotifier(queue ports.MessageQueue[events.TodoEvent], cfg BreakerConfig, logger *zap.Logger) *Notifier {
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("Circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})

	return &Notifier{
		queue:   queue,
		breaker: breaker,
		logger:  logger,
	}
}

// Publish sends event through the breaker
func (n *Notifier) Publish(ctx context.Context, event events.TodoEvent) error {
	messageID, err := n.breaker.Execute(func() (interface{}, error) {
		return n.queue.Send(ctx, event)
	})
	if err != nil {
		if stderrors.Is(err, gobreaker.ErrOpenState) || stderrors.Is(err, gobreaker.ErrTooManyRequests) {
			return errors.NewInternalError(methodPublishEvent, "event queue unavailable").WithCause(err)
		}
		return errors.Raise(err, methodPublishEvent, errors.ClassInternal)
	}

	n.logger.Debug("Todo event published",
		zap.String("action", event.Action),
		zap.String("todoID", event.Todo.ID),
		zap.Any("messageID", messageID),
	)
	return nil
}

// State exposes the breaker state
func (n *Notifier) State() gobreaker.State {
	return n.breaker.State()
}
