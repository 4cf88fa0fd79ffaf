package validators

import (
	"fmt"

	"hexagonal-todo/domain/core/entities"
	"hexagonal-todo/pkg/errors"
	"hexagonal-todo/pkg/utils"

	"github.com/google/uuid"
)

const (
	methodValidateCreate = "domain.todo.validateCreate"
	methodValidateUpdate = "domain.todo.validateUpdate"
	methodValidateDelete = "domain.todo.validateDelete"
)

// Messages returned to callers on rejected input
const (
	MsgMissingData       = "invalid entry on field data, missing information"
	MsgMissingDesc       = "invalid entry on field data, missing information about taskDescription"
	MsgInvalidProperties = "invalid entry on field data, missing information or invalid properties"
	MsgOwnerMissing      = "owner is missing"
	MsgNoDataForID       = "no data for this id"
)

// IDGenerator returns a fresh todo identifier
type IDGenerator func() string

// TodoValidator applies the todo create, update and delete rules.
// It has no side effects beyond reading the clock and the id generator.
type TodoValidator struct {
	clock utils.Clock
	newID IDGenerator
}

// NewTodoValidator creates a validator issuing uuid v4 identifiers
func NewTodoValidator(clock utils.Clock) *TodoValidator {
	return &TodoValidator{
		clock: clock,
		newID: uuid.NewString,
	}
}

// WithIDGenerator replaces the identifier source
func (v *TodoValidator) WithIDGenerator(gen IDGenerator) *TodoValidator {
	v.newID = gen
	return v
}

// ValidateCreate builds a full todo from input. Defaults are applied
// first, caller fields next, and system fields last.
func (v *TodoValidator) ValidateCreate(input *entities.CreateInput, owner string) (*entities.Todo, error) {
	if input.IsEmpty() {
		return nil, errors.NewUserError(methodValidateCreate, MsgMissingData)
	}
	if input.TaskDescription == "" {
		return nil, errors.NewUserError(methodValidateCreate, MsgMissingDesc)
	}
	if owner == "" {
		return nil, errors.NewUserError(methodValidateCreate, MsgOwnerMissing)
	}
	if input.TaskPriority != nil && !input.TaskPriority.Valid() {
		return nil, invalidValue(methodValidateCreate, "priority", *input.TaskPriority)
	}
	if input.TaskStatus != nil && !input.TaskStatus.Valid() {
		return nil, invalidValue(methodValidateCreate, "status", *input.TaskStatus)
	}
	if input.TaskOrder != nil && (*input.TaskOrder < 0 || *input.TaskOrder > entities.MaxSafeInteger) {
		return nil, invalidValue(methodValidateCreate, "order", *input.TaskOrder)
	}

	todo := &entities.Todo{
		TaskOrder:    0,
		TaskPriority: entities.PriorityLow,
		TaskStatus:   entities.StatusNew,
	}

	todo.TaskDescription = input.TaskDescription
	if input.TaskOrder != nil {
		todo.TaskOrder = *input.TaskOrder
	}
	if input.TaskPriority != nil {
		todo.TaskPriority = *input.TaskPriority
	}
	if input.TaskStatus != nil {
		todo.TaskStatus = *input.TaskStatus
	}

	now := utils.NowISO8601(v.clock)
	todo.TaskOwner = owner
	todo.CreatedAt = now
	todo.UpdatedAt = now
	todo.ID = v.newID()

	return todo, nil
}

// ValidateUpdate checks input against the mutable allow-list and returns
// original merged with input under a fresh updatedAt. Existence and key
// checks run before the owner check, field contents last.
func (v *TodoValidator) ValidateUpdate(input entities.UpdateInput, original *entities.Todo, owner string) (*entities.Mutation, error) {
	if original == nil {
		return nil, errors.NewUserError(methodValidateUpdate, MsgNoDataForID)
	}
	if len(input) == 0 {
		return nil, errors.NewUserError(methodValidateUpdate, MsgInvalidProperties)
	}
	for key := range input {
		if !entities.IsMutable(key) {
			return nil, errors.NewUserError(methodValidateUpdate, MsgInvalidProperties)
		}
	}
	if owner == "" {
		return nil, errors.NewUserError(methodValidateUpdate, MsgOwnerMissing)
	}

	merged := *original
	// allow-list order keeps the reported field deterministic
	for _, field := range entities.MutableFields {
		raw, ok := input[field]
		if !ok {
			continue
		}
		if err := applyField(&merged, field, raw); err != nil {
			return nil, err
		}
	}

	return &entities.Mutation{
		TaskOrder:       merged.TaskOrder,
		TaskDescription: merged.TaskDescription,
		TaskStatus:      merged.TaskStatus,
		TaskPriority:    merged.TaskPriority,
		UpdatedAt:       utils.NowISO8601(v.clock),
	}, nil
}

// ValidateDelete gates deletion on existence and owner presence
func (v *TodoValidator) ValidateDelete(original *entities.Todo, owner string) (*entities.Todo, error) {
	if original == nil {
		return nil, errors.NewUserError(methodValidateDelete, MsgNoDataForID)
	}
	if owner == "" {
		return nil, errors.NewUserError(methodValidateDelete, MsgOwnerMissing)
	}
	return original, nil
}

func applyField(todo *entities.Todo, field string, raw any) error {
	switch field {
	case entities.FieldTaskOrder:
		n, ok := entities.AsInt(raw)
		if !ok || n < 0 {
			return invalidValue(methodValidateUpdate, "order", raw)
		}
		todo.TaskOrder = n
	case entities.FieldTaskDescription:
		s, ok := raw.(string)
		if !ok || s == "" {
			return invalidValue(methodValidateUpdate, "description", raw)
		}
		todo.TaskDescription = s
	case entities.FieldTaskStatus:
		s, ok := raw.(string)
		if !ok || !entities.Status(s).Valid() {
			return invalidValue(methodValidateUpdate, "status", raw)
		}
		todo.TaskStatus = entities.Status(s)
	case entities.FieldTaskPriority:
		s, ok := raw.(string)
		if !ok || !entities.Priority(s).Valid() {
			return invalidValue(methodValidateUpdate, "priority", raw)
		}
		todo.TaskPriority = entities.Priority(s)
	}
	return nil
}

func invalidValue(method, field string, got any) error {
	return errors.NewUserError(method, fmt.Sprintf("invalid value for %s: got %v", field, got))
}
