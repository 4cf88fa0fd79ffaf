package events

import (
	"time"

	"hexagonal-todo/domain/core/entities"
)

// Action names logged and published for todo mutations
const (
	ActionTaskCreated = "TASK_CREATED"
	ActionTaskUpdated = "TASK_UPDATED"
	ActionTaskDeleted = "TASK_DELETED"
)

// SourceTodoService is the event source reported to subscribers
const SourceTodoService = "hexagonal-todo.service"

// TodoEvent records a completed todo mutation
type TodoEvent struct {
	Action     string        `json:"action"`
	Method     string        `json:"method"`
	Todo       entities.Todo `json:"data"`
	OccurredAt time.Time     `json:"occurredAt"`
}

// NewTodoEvent creates a TodoEvent
func NewTodoEvent(action, method string, todo entities.Todo, at time.Time) TodoEvent {
	return TodoEvent{
		Action:     action,
		Method:     method,
		Todo:       todo,
		OccurredAt: at,
	}
}

func (e TodoEvent) GetAggregateID() string  { return e.Todo.ID }
func (e TodoEvent) GetEventType() string    { return e.Action }
func (e TodoEvent) GetTimestamp() time.Time { return e.OccurredAt }
