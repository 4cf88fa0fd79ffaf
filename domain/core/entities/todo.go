package entities

import (
	"encoding/json"
	"math"
)

// Status is the lifecycle state of a todo
type Status string

const (
	StatusNew                 Status = "NEW"
	StatusInProgress          Status = "IN_PROGRESS"
	StatusWaitingTransmission Status = "WAITING_TRANSMISSION"
	StatusClosed              Status = "CLOSED"
	StatusCanceled            Status = "CANCELED"
)

// Valid reports whether s is a known status
func (s Status) Valid() bool {
	switch s {
	case StatusNew, StatusInProgress, StatusWaitingTransmission, StatusClosed, StatusCanceled:
		return true
	}
	return false
}

// Priority ranks a todo
type Priority string

const (
	PriorityLow      Priority = "LOW"
	PriorityModerate Priority = "MODERATE"
	PriorityHigh     Priority = "HIGH"
	PriorityUrgent   Priority = "URGENT"
)

// Valid reports whether p is a known priority
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityModerate, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// Field names shared by the wire format, the store and the update expression
const (
	FieldID              = "id"
	FieldTaskOrder       = "taskOrder"
	FieldTaskDescription = "taskDescription"
	FieldTaskOwner       = "taskOwner"
	FieldTaskStatus      = "taskStatus"
	FieldTaskPriority    = "taskPriority"
	FieldCreatedAt       = "createdAt"
	FieldUpdatedAt       = "updatedAt"
)

// MutableFields is the allow-list an update payload is checked against
var MutableFields = []string{FieldTaskOrder, FieldTaskDescription, FieldTaskStatus, FieldTaskPriority}

// IsMutable reports whether field may appear in an update payload
func IsMutable(field string) bool {
	for _, f := range MutableFields {
		if f == field {
			return true
		}
	}
	return false
}

// Todo is the persisted task record
type Todo struct {
	ID              string   `json:"id" dynamodbav:"id"`
	TaskOrder       int      `json:"taskOrder" dynamodbav:"taskOrder"`
	TaskDescription string   `json:"taskDescription" dynamodbav:"taskDescription"`
	TaskOwner       string   `json:"taskOwner" dynamodbav:"taskOwner"`
	TaskStatus      Status   `json:"taskStatus" dynamodbav:"taskStatus"`
	TaskPriority    Priority `json:"taskPriority" dynamodbav:"taskPriority"`
	CreatedAt       string   `json:"createdAt" dynamodbav:"createdAt"`
	UpdatedAt       string   `json:"updatedAt" dynamodbav:"updatedAt"`
}

// Key returns the store key for the todo
func (t Todo) Key() map[string]any {
	return KeyFor(t.ID)
}

// KeyFor builds the store key for id
func KeyFor(id string) map[string]any {
	return map[string]any{FieldID: id}
}

// Merge overlays store-returned changes onto t. Only mutable fields and
// updatedAt are taken; values of the wrong shape are ignored.
func (t Todo) Merge(changes map[string]any) Todo {
	merged := t
	if v, ok := changes[FieldTaskOrder]; ok {
		if n, ok := AsInt(v); ok {
			merged.TaskOrder = n
		}
	}
	if v, ok := changes[FieldTaskDescription].(string); ok {
		merged.TaskDescription = v
	}
	if v, ok := changes[FieldTaskStatus].(string); ok {
		merged.TaskStatus = Status(v)
	}
	if v, ok := changes[FieldTaskPriority].(string); ok {
		merged.TaskPriority = Priority(v)
	}
	if v, ok := changes[FieldUpdatedAt].(string); ok {
		merged.UpdatedAt = v
	}
	return merged
}

// CreateInput is the caller payload for a new todo
type CreateInput struct {
	TaskOrder       *int      `json:"taskOrder,omitempty"`
	TaskDescription string    `json:"taskDescription,omitempty"`
	TaskStatus      *Status   `json:"taskStatus,omitempty"`
	TaskPriority    *Priority `json:"taskPriority,omitempty"`
}

// IsEmpty reports whether no field was supplied
func (in *CreateInput) IsEmpty() bool {
	return in == nil ||
		(in.TaskOrder == nil && in.TaskDescription == "" && in.TaskStatus == nil && in.TaskPriority == nil)
}

// UpdateInput is a partial patch keyed by field name
type UpdateInput map[string]any

// Mutation is the validated update, without the immutable fields
type Mutation struct {
	TaskOrder       int      `json:"taskOrder"`
	TaskDescription string   `json:"taskDescription"`
	TaskStatus      Status   `json:"taskStatus"`
	TaskPriority    Priority `json:"taskPriority"`
	UpdatedAt       string   `json:"updatedAt"`
}

// Values returns the expression values keyed by bare field name
func (m Mutation) Values() map[string]any {
	return map[string]any{
		FieldTaskOrder:       m.TaskOrder,
		FieldTaskDescription: m.TaskDescription,
		FieldTaskStatus:      string(m.TaskStatus),
		FieldTaskPriority:    string(m.TaskPriority),
		FieldUpdatedAt:       m.UpdatedAt,
	}
}

// MaxSafeInteger is the largest order that survives a round trip through
// the store, which hands numbers back as float64
const MaxSafeInteger = 1<<53 - 1

// AsInt converts decoded numeric values to int. Fractional values and
// values outside the safe integer range are rejected.
func AsInt(v any) (int, bool) {
	var i int64
	switch n := v.(type) {
	case int:
		i = int64(n)
	case int32:
		i = int64(n)
	case int64:
		i = n
	case float64:
		if n != math.Trunc(n) || math.Abs(n) > MaxSafeInteger {
			return 0, false
		}
		i = int64(n)
	case json.Number:
		parsed, err := n.Int64()
		if err != nil {
			return 0, false
		}
		i = parsed
	default:
		return 0, false
	}
	if i > MaxSafeInteger || i < -MaxSafeInteger {
		return 0, false
	}
	return int(i), true
}
