package ports

import (
	"context"
	"time"

	"hexagonal-todo/domain/core/entities"
	"hexagonal-todo/domain/events"
)

// Key addresses a single document by its key attributes
type Key = map[string]any

// Document is an untyped attribute map
type Document = map[string]any

// DocumentStore defines key-addressed persistence for records of type T.
// This is a port in hexagonal architecture; the store backing it is hidden.
type DocumentStore[T any] interface {
	// Get returns nil when no record exists for key
	Get(ctx context.Context, key Key) (*T, error)

	// Put inserts or replaces the full item
	Put(ctx context.Context, item T) (T, error)

	// Update applies a "set f = :f, ..." expression. Values are keyed by
	// bare field name; only the changed attributes come back.
	Update(ctx context.Context, key Key, expression string, values Document) (Document, error)

	// Delete removes the record for key
	Delete(ctx context.Context, key Key) error
}

// QueueMessage is one received message with its decoded body
type QueueMessage[T any] struct {
	MessageID     string            `json:"messageId"`
	ReceiptHandle string            `json:"receiptHandle"`
	Body          *T                `json:"body"`
	Attributes    map[string]string `json:"attributes,omitempty"`
	// DecodeErr is set when the body was present but could not be decoded
	DecodeErr error `json:"-"`
}

// ReceiveOptions tunes a long poll. Zero values fall back to the queue defaults.
type ReceiveOptions struct {
	VisibilityTimeout int32
	WaitTimeSeconds   int32
	MaxMessages       int32
}

// DeleteResult carries the backend's delivery metadata for an acknowledgement
type DeleteResult struct {
	Error      bool   `json:"error"`
	RetryCount int    `json:"retryCount"`
	RequestID  string `json:"requestId"`
}

// MessageQueue defines a polling message transport for bodies of type T
type MessageQueue[T any] interface {
	// Send returns the backend message id
	Send(ctx context.Context, body T) (string, error)

	// Receive fails when the poll returns no messages
	Receive(ctx context.Context, opts ReceiveOptions) ([]QueueMessage[T], error)

	// DeleteMessage acknowledges a message by receipt handle
	DeleteMessage(ctx context.Context, receiptHandle string) (DeleteResult, error)
}

// TodoRepository is the todo flavour of DocumentStore
type TodoRepository = DocumentStore[entities.Todo]

// EventPublisher notifies other components of completed mutations
type EventPublisher interface {
	Publish(ctx context.Context, event events.TodoEvent) error
}

// NoopPublisher drops every event
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, events.TodoEvent) error { return nil }

// EventSink receives relayed todo events downstream of the queue
type EventSink interface {
	Forward(ctx context.Context, batch []events.TodoEvent) error
}

// MetricsRecorder records per-operation outcomes
type MetricsRecorder interface {
	RecordOperation(ctx context.Context, operation string, duration time.Duration, err error)
}

// NoopMetrics discards measurements
type NoopMetrics struct{}

func (NoopMetrics) RecordOperation(context.Context, string, time.Duration, error) {}

// TodoUseCases is the inbound port every surface drives
type TodoUseCases interface {
	GetTodo(ctx context.Context, id string) (*entities.Todo, error)
	CreateTodo(ctx context.Context, input *entities.CreateInput, owner string) (*entities.Todo, error)
	UpdateTodo(ctx context.Context, id string, input entities.UpdateInput, owner string) (*entities.Todo, error)
	DeleteTodo(ctx context.Context, id string, owner string) (*entities.Todo, error)
}
