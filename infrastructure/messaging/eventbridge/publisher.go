package eventbridge

import (
	"context"
	"encoding/json"
	"fmt"

	"hexagonal-todo/domain/events"
	"hexagonal-todo/pkg/errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge/types"
	"go.uber.org/zap"
)

const methodForward = "messaging.eventbridge.forward"

// maxBatchSize is the PutEvents entry limit
const maxBatchSize = 10

// EventBridgeAPI is the slice of the EventBridge client the sink uses
type EventBridgeAPI interface {
	PutEvents(ctx context.Context, params *eventbridge.PutEventsInput, optFns ...func(*eventbridge.Options)) (*eventbridge.PutEventsOutput, error)
}

var _ EventBridgeAPI = (*eventbridge.Client)(nil)

// Sink forwards relayed todo events to an EventBridge bus
type Sink struct {
	client       EventBridgeAPI
	eventBusName string
	source       string
	logger       *zap.Logger
}

// NewSink creates a sink for eventBusName
func NewSink(client EventBridgeAPI, eventBusName string, logger *zap.Logger) *Sink {
	return &Sink{
		client:       client,
		eventBusName: eventBusName,
		source:       events.SourceTodoService,
		logger:       logger,
	}
}

// Forward puts the batch on the bus in chunks of ten
func (s *Sink) Forward(ctx context.Context, batch []events.TodoEvent) error {
	for i := 0; i < len(batch); i += maxBatchSize {
		end := i + maxBatchSize
		if end > len(batch) {
			end = len(batch)
		}
		if err := s.put(ctx, batch[i:end]); err != nil {
			return err
		}
	}
	return nil
}

func (s *Sink) put(ctx context.Context, batch []events.TodoEvent) error {
	entries := make([]types.PutEventsRequestEntry, 0, len(batch))
	for _, event := range batch {
		detail, err := json.Marshal(event)
		if err != nil {
			return errors.Raise(err, methodForward, errors.ClassInternal)
		}
		entries = append(entries, types.PutEventsRequestEntry{
			EventBusName: aws.String(s.eventBusName),
			Source:       aws.String(s.source),
			DetailType:   aws.String(event.GetEventType()),
			Detail:       aws.String(string(detail)),
			Time:         aws.Time(event.GetTimestamp()),
			Resources:    []string{fmt.Sprintf("todo/%s", event.GetAggregateID())},
		})
	}

	result, err := s.client.PutEvents(ctx, &eventbridge.PutEventsInput{Entries: entries})
	if err != nil {
		return errors.Raise(err, methodForward, errors.ClassInternal)
	}

	if result.FailedEntryCount > 0 {
		for i, entry := range result.Entries {
			if entry.ErrorCode != nil {
				s.logger.Error("Failed to forward event",
					zap.String("action", batch[i].Action),
					zap.String("todoID", batch[i].Todo.ID),
					zap.String("errorCode", aws.ToString(entry.ErrorCode)),
					zap.String("errorMessage", aws.ToString(entry.ErrorMessage)),
				)
			}
		}
		return errors.NewInternalError(methodForward, fmt.Sprintf("%d events failed to forward", result.FailedEntryCount))
	}

	s.logger.Debug("Events forwarded to EventBridge",
		zap.Int("count", len(entries)),
		zap.String("eventBus", s.eventBusName),
	)
	return nil
}
