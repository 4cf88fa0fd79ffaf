package services

import (
	"context"
	"time"

	"hexagonal-todo/application/ports"
	"hexagonal-todo/domain/core/entities"
	"hexagonal-todo/domain/core/validators"
	"hexagonal-todo/domain/events"
	"hexagonal-todo/pkg/errors"
	"hexagonal-todo/pkg/observability"
	"hexagonal-todo/pkg/utils"

	"go.uber.org/zap"
)

const (
	methodGetTodo    = "application.todo.getTodo"
	methodCreateTodo = "application.todo.createTodo"
	methodUpdateTodo = "application.todo.updateTodo"
	methodDeleteTodo = "application.todo.deleteTodo"
)

const (
	msgItemNotFound = "item not found"

	// updateExpression always writes all five mutable fields
	updateExpression = "set taskOrder = :taskOrder, taskDescription = :taskDescription, " +
		"taskStatus = :taskStatus, taskPriority = :taskPriority, updatedAt = :updatedAt"
)

// TodoService implements the todo use cases on top of the repository port.
// Every mutation reads before it writes; there is no concurrency token, so
// the last writer wins.
type TodoService struct {
	validator *validators.TodoValidator
	repo      ports.TodoRepository
	publisher ports.EventPublisher
	metrics   ports.MetricsRecorder
	tracer    *observability.Tracer
	clock     utils.Clock
	logger    *zap.Logger
}

var _ ports.TodoUseCases = (*TodoService)(nil)

// NewTodoService creates a new todo service
func NewTodoService(
	validator *validators.TodoValidator,
	repo ports.TodoRepository,
	publisher ports.EventPublisher,
	metrics ports.MetricsRecorder,
	tracer *observability.Tracer,
	clock utils.Clock,
	logger *zap.Logger,
) *TodoService {
	if publisher == nil {
		publisher = ports.NoopPublisher{}
	}
	if metrics == nil {
		metrics = ports.NoopMetrics{}
	}
	return &TodoService{
		validator: validator,
		repo:      repo,
		publisher: publisher,
		metrics:   metrics,
		tracer:    tracer,
		clock:     clock,
		logger:    logger,
	}
}

// GetTodo returns the todo for id, or nil when it does not exist
func (s *TodoService) GetTodo(ctx context.Context, id string) (todo *entities.Todo, err error) {
	defer s.observe(ctx, "getTodo", time.Now(), &err)

	err = s.tracer.TraceFunction(ctx, methodGetTodo, func(ctx context.Context) error {
		var getErr error
		todo, getErr = s.find(ctx, id)
		return getErr
	})
	if err != nil {
		return nil, err
	}
	return todo, nil
}

// find reads a todo without recording a getTodo operation, so mutations
// only count once in metrics
func (s *TodoService) find(ctx context.Context, id string) (*entities.Todo, error) {
	todo, err := s.repo.Get(ctx, entities.KeyFor(id))
	if err != nil {
		return nil, errors.Raise(err, methodGetTodo, errors.ClassInternal)
	}
	return todo, nil
}

// CreateTodo validates input and stores the new todo
func (s *TodoService) CreateTodo(ctx context.Context, input *entities.CreateInput, owner string) (created *entities.Todo, err error) {
	defer s.observe(ctx, "createTodo", time.Now(), &err)

	err = s.tracer.TraceFunction(ctx, methodCreateTodo, func(ctx context.Context) error {
		todo, err := s.validator.ValidateCreate(input, owner)
		if err != nil {
			return err
		}
		saved, err := s.repo.Put(ctx, *todo)
		if err != nil {
			return err
		}
		created = &saved
		return nil
	})
	if err != nil {
		return nil, errors.Raise(err, methodCreateTodo, errors.ClassInternal)
	}

	s.emit(ctx, events.ActionTaskCreated, methodCreateTodo, *created)
	return created, nil
}

// UpdateTodo applies a partial patch to an existing todo and returns the
// original merged with the attributes the store reports as changed
func (s *TodoService) UpdateTodo(ctx context.Context, id string, input entities.UpdateInput, owner string) (updated *entities.Todo, err error) {
	defer s.observe(ctx, "updateTodo", time.Now(), &err)

	err = s.tracer.TraceFunction(ctx, methodUpdateTodo, func(ctx context.Context) error {
		original, err := s.find(ctx, id)
		if err != nil {
			return err
		}
		if original == nil {
			return errors.NewUserError(methodUpdateTodo, msgItemNotFound)
		}

		mutation, err := s.validator.ValidateUpdate(input, original, owner)
		if err != nil {
			return err
		}

		changed, err := s.repo.Update(ctx, entities.KeyFor(id), updateExpression, mutation.Values())
		if err != nil {
			return err
		}

		merged := original.Merge(changed)
		updated = &merged
		return nil
	})
	if err != nil {
		return nil, errors.Raise(err, methodUpdateTodo, errors.ClassInternal)
	}

	s.emit(ctx, events.ActionTaskUpdated, methodUpdateTodo, *updated)
	return updated, nil
}

// DeleteTodo removes an existing todo and returns it as it was
func (s *TodoService) DeleteTodo(ctx context.Context, id string, owner string) (deleted *entities.Todo, err error) {
	defer s.observe(ctx, "deleteTodo", time.Now(), &err)

	err = s.tracer.TraceFunction(ctx, methodDeleteTodo, func(ctx context.Context) error {
		original, err := s.find(ctx, id)
		if err != nil {
			return err
		}
		if original == nil {
			return errors.NewUserError(methodDeleteTodo, validators.MsgNoDataForID)
		}

		snapshot, err := s.validator.ValidateDelete(original, owner)
		if err != nil {
			return err
		}

		if err := s.repo.Delete(ctx, entities.KeyFor(id)); err != nil {
			return err
		}
		deleted = snapshot
		return nil
	})
	if err != nil {
		return nil, errors.Raise(err, methodDeleteTodo, errors.ClassInternal)
	}

	s.emit(ctx, events.ActionTaskDeleted, methodDeleteTodo, *deleted)
	return deleted, nil
}

// emit logs the mutation and hands it to the publisher. A failed publish
// never fails the mutation that already happened.
func (s *TodoService) emit(ctx context.Context, action, method string, todo entities.Todo) {
	s.logger.Info(action,
		zap.String("action", action),
		zap.String("method", method),
		zap.Any("data", todo),
	)
	s.tracer.AddAnnotation(ctx, "todoId", todo.ID)

	event := events.NewTodoEvent(action, method, todo, s.clock.Now())
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("Failed to publish todo event",
			zap.String("action", action),
			zap.String("todoId", todo.ID),
			zap.Error(err),
		)
	}
}

func (s *TodoService) observe(ctx context.Context, operation string, start time.Time, err *error) {
	s.metrics.RecordOperation(ctx, operation, time.Since(start), *err)
}
