package worker

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"hexagonal-todo/application/ports"
	"hexagonal-todo/domain/core/entities"
	"hexagonal-todo/domain/events"
	"hexagonal-todo/infrastructure/messaging/sqs"
	"hexagonal-todo/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeQueue struct {
	receiveFn func(ctx context.Context, opts ports.ReceiveOptions) ([]ports.QueueMessage[events.TodoEvent], error)
	deleted   []string
	gotOpts   ports.ReceiveOptions
}

func (f *fakeQueue) Send(context.Context, events.TodoEvent) (string, error) {
	return "", nil
}

func (f *fakeQueue) Receive(ctx context.Context, opts ports.ReceiveOptions) ([]ports.QueueMessage[events.TodoEvent], error) {
	f.gotOpts = opts
	return f.receiveFn(ctx, opts)
}

func (f *fakeQueue) DeleteMessage(_ context.Context, receiptHandle string) (ports.DeleteResult, error) {
	f.deleted = append(f.deleted, receiptHandle)
	return ports.DeleteResult{RequestID: "req"}, nil
}

type fakeSink struct {
	batches [][]events.TodoEvent
	err     error
}

func (f *fakeSink) Forward(_ context.Context, batch []events.TodoEvent) error {
	f.batches = append(f.batches, batch)
	return f.err
}

func message(id string, withBody bool) ports.QueueMessage[events.TodoEvent] {
	msg := ports.QueueMessage[events.TodoEvent]{MessageID: id, ReceiptHandle: "rh-" + id}
	if withBody {
		event := events.NewTodoEvent(events.ActionTaskCreated, "application.todo.createTodo", entities.Todo{ID: id}, time.Now())
		msg.Body = &event
	}
	return msg
}

func emptyPoll() error {
	return errors.NewInternalError("messaging.sqs.receiveMessage", sqs.ErrNoMessages.Error()).WithCause(sqs.ErrNoMessages)
}

func TestPollOnceForwardsThenDeletes(t *testing.T) {
	queue := &fakeQueue{
		receiveFn: func(context.Context, ports.ReceiveOptions) ([]ports.QueueMessage[events.TodoEvent], error) {
			return []ports.QueueMessage[events.TodoEvent]{message("a", true), message("b", true)}, nil
		},
	}
	sink := &fakeSink{}
	opts := ports.ReceiveOptions{MaxMessages: 10, WaitTimeSeconds: 20}

	n, err := NewRelay(queue, sink, opts, zap.NewNop()).PollOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	require.Len(t, sink.batches, 1)
	assert.Len(t, sink.batches[0], 2)
	assert.Equal(t, []string{"rh-a", "rh-b"}, queue.deleted)
	assert.Equal(t, opts, queue.gotOpts)
}

func TestPollOnceKeepsMessagesWhenForwardFails(t *testing.T) {
	queue := &fakeQueue{
		receiveFn: func(context.Context, ports.ReceiveOptions) ([]ports.QueueMessage[events.TodoEvent], error) {
			return []ports.QueueMessage[events.TodoEvent]{message("a", true)}, nil
		},
	}
	sink := &fakeSink{err: stderrors.New("bus unavailable")}

	_, err := NewRelay(queue, sink, ports.ReceiveOptions{}, zap.NewNop()).PollOnce(context.Background())
	require.Error(t, err)
	assert.Empty(t, queue.deleted)
}

func TestPollOnceEmptyPollIsIdle(t *testing.T) {
	queue := &fakeQueue{
		receiveFn: func(context.Context, ports.ReceiveOptions) ([]ports.QueueMessage[events.TodoEvent], error) {
			return nil, emptyPoll()
		},
	}
	sink := &fakeSink{}

	n, err := NewRelay(queue, sink, ports.ReceiveOptions{}, zap.NewNop()).PollOnce(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Empty(t, sink.batches)
}

func TestPollOnceDropsBodilessMessages(t *testing.T) {
	queue := &fakeQueue{
		receiveFn: func(context.Context, ports.ReceiveOptions) ([]ports.QueueMessage[events.TodoEvent], error) {
			return []ports.QueueMessage[events.TodoEvent]{message("a", false), message("b", true)}, nil
		},
	}
	sink := &fakeSink{}

	n, err := NewRelay(queue, sink, ports.ReceiveOptions{}, zap.NewNop()).PollOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, []string{"rh-a", "rh-b"}, queue.deleted)
}

func TestPollOnceDropsUndecodableMessages(t *testing.T) {
	poison := message("bad", false)
	poison.DecodeErr = stderrors.New("invalid character 'n'")
	queue := &fakeQueue{
		receiveFn: func(context.Context, ports.ReceiveOptions) ([]ports.QueueMessage[events.TodoEvent], error) {
			return []ports.QueueMessage[events.TodoEvent]{message("a", true), poison, message("b", true)}, nil
		},
	}
	sink := &fakeSink{}

	n, err := NewRelay(queue, sink, ports.ReceiveOptions{}, zap.NewNop()).PollOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	require.Len(t, sink.batches, 1)
	assert.Len(t, sink.batches[0], 2)
	assert.Equal(t, []string{"rh-bad", "rh-a", "rh-b"}, queue.deleted)
}

func TestRunStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	polls := 0
	queue := &fakeQueue{
		receiveFn: func(context.Context, ports.ReceiveOptions) ([]ports.QueueMessage[events.TodoEvent], error) {
			polls++
			if polls == 3 {
				cancel()
			}
			if polls == 2 {
				return nil, stderrors.New("network down")
			}
			return nil, emptyPoll()
		},
	}

	done := make(chan error, 1)
	go func() {
		done <- NewRelay(queue, &fakeSink{}, ports.ReceiveOptions{}, zap.NewNop()).WithBackoff(time.Millisecond).Run(ctx)
	}()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("relay did not stop")
	}
	assert.Equal(t, 3, polls)
}
