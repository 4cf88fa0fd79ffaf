package worker

import (
	"context"
	"time"

	"hexagonal-todo/application/ports"
	"hexagonal-todo/domain/events"
	"hexagonal-todo/infrastructure/messaging/sqs"

	"go.uber.org/zap"
)

const defaultErrorBackoff = 5 * time.Second

// Relay moves todo events from the queue to the event sink. A message is
// acknowledged only after its batch was forwarded, so a failed forward is
// redelivered once the visibility timeout lapses.
type Relay struct {
	queue   ports.MessageQueue[events.TodoEvent]
	sink    ports.EventSink
	opts    ports.ReceiveOptions
	backoff time.Duration
	logger  *zap.Logger
}

// NewRelay creates a relay polling with opts
func NewRelay(queue ports.MessageQueue[events.TodoEvent], sink ports.EventSink, opts ports.ReceiveOptions, logger *zap.Logger) *Relay {
	return &Relay{
		queue:   queue,
		sink:    sink,
		opts:    opts,
		backoff: defaultErrorBackoff,
		logger:  logger,
	}
}

// WithBackoff sets the pause after a failed poll
func (r *Relay) WithBackoff(d time.Duration) *Relay {
	r.backoff = d
	return r
}

// Run polls until ctx is cancelled
func (r *Relay) Run(ctx context.Context) error {
	r.logger.Info("Starting event relay",
		zap.Int32("maxMessages", r.opts.MaxMessages),
		zap.Int32("waitTimeSeconds", r.opts.WaitTimeSeconds),
	)

	for {
		if ctx.Err() != nil {
			r.logger.Info("Event relay shutting down")
			return nil
		}

		if _, err := r.PollOnce(ctx); err != nil {
			if ctx.Err() != nil {
				continue
			}
			r.logger.Error("Event relay poll failed", zap.Error(err))
			select {
			case <-ctx.Done():
			case <-time.After(r.backoff):
			}
		}
	}
}

// PollOnce receives one batch, forwards it and acknowledges it. It
// returns the number of events forwarded; an empty poll is not an error.
func (r *Relay) PollOnce(ctx context.Context) (int, error) {
	messages, err := r.queue.Receive(ctx, r.opts)
	if err != nil {
		if sqs.IsEmptyPoll(err) {
			r.logger.Debug("Event relay idle")
			return 0, nil
		}
		return 0, err
	}

	batch := make([]events.TodoEvent, 0, len(messages))
	for _, msg := range messages {
		if msg.Body == nil {
			// unreadable bodies would be redelivered forever
			r.logger.Warn("Dropping unreadable message",
				zap.String("messageId", msg.MessageID),
				zap.NamedError("decodeError", msg.DecodeErr),
			)
			r.ack(ctx, msg)
			continue
		}
		batch = append(batch, *msg.Body)
	}
	if len(batch) == 0 {
		return 0, nil
	}

	if err := r.sink.Forward(ctx, batch); err != nil {
		return 0, err
	}

	for _, msg := range messages {
		if msg.Body != nil {
			r.ack(ctx, msg)
		}
	}

	r.logger.Info("Relayed todo events", zap.Int("count", len(batch)))
	return len(batch), nil
}

func (r *Relay) ack(ctx context.Context, msg ports.QueueMessage[events.TodoEvent]) {
	result, err := r.queue.DeleteMessage(ctx, msg.ReceiptHandle)
	if err != nil {
		r.logger.Warn("Failed to delete message",
			zap.String("messageId", msg.MessageID),
			zap.Int("retryCount", result.RetryCount),
			zap.Error(err),
		)
	}
}
