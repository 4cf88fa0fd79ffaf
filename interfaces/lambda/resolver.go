package lambda

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"hexagonal-todo/application/ports"
	"hexagonal-todo/domain/core/entities"
	"hexagonal-todo/domain/core/validators"
	"hexagonal-todo/pkg/common"
	"hexagonal-todo/pkg/errors"
	"hexagonal-todo/pkg/observability"

	"github.com/aws/aws-lambda-go/lambdacontext"
	"go.uber.org/zap"
)

const methodResolver = "lambda.todo"

// Field names the resolver dispatches on
const (
	FieldGetTodo    = "getTodo"
	FieldCreateTodo = "createTodo"
	FieldUpdateTodo = "updateTodo"
	FieldDeleteTodo = "deleteTodo"
)

// Arguments carries the resolver inputs. Data stays raw until the field
// is known.
type Arguments struct {
	ID   string          `json:"id,omitempty"`
	User string          `json:"user,omitempty"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Event is the field-dispatch payload sent by AppSync
type Event struct {
	Field     string    `json:"field"`
	Arguments Arguments `json:"arguments"`
}

type resolveFunc func(ctx context.Context, args Arguments) (*entities.Todo, error)

// Resolver dispatches AppSync field events to the todo use cases
type Resolver struct {
	todos     ports.TodoUseCases
	tracer    *observability.Tracer
	logger    *zap.Logger
	resolvers map[string]resolveFunc
}

// NewResolver creates a resolver over todos
func NewResolver(todos ports.TodoUseCases, tracer *observability.Tracer, logger *zap.Logger) *Resolver {
	r := &Resolver{
		todos:  todos,
		tracer: tracer,
		logger: logger,
	}
	r.resolvers = map[string]resolveFunc{
		FieldGetTodo:    r.getTodo,
		FieldCreateTodo: r.createTodo,
		FieldUpdateTodo: r.updateTodo,
		FieldDeleteTodo: r.deleteTodo,
	}
	return r
}

// Handle runs the resolver named by event.Field. A missing todo on
// getTodo resolves to nil.
func (r *Resolver) Handle(ctx context.Context, event Event) (*entities.Todo, error) {
	resolve, ok := r.resolvers[event.Field]
	if !ok {
		return nil, errors.NewInternalError(methodResolver, fmt.Sprintf("No resolver for %s", event.Field))
	}

	fields := []zap.Field{
		zap.String("field", event.Field),
		zap.Bool("coldStart", common.IsColdStart(ctx)),
	}
	if lc, ok := lambdacontext.FromContext(ctx); ok {
		fields = append(fields,
			zap.String("function", lambdacontext.FunctionName),
			zap.String("requestID", lc.AwsRequestID),
		)
	}
	r.logger.Info("Resolver running", fields...)

	var result *entities.Todo
	method := fmt.Sprintf("%s.%s", methodResolver, event.Field)
	err := r.tracer.TraceFunction(ctx, method, func(ctx context.Context) error {
		var err error
		result, err = resolve(ctx, event.Arguments)
		return err
	})
	if err != nil {
		r.logger.Error("Resolver failed", append(fields, zap.Error(err))...)
		return nil, errors.Raise(err, method, errors.ClassInternal)
	}
	return result, nil
}

func (r *Resolver) getTodo(ctx context.Context, args Arguments) (*entities.Todo, error) {
	return r.todos.GetTodo(ctx, args.ID)
}

func (r *Resolver) createTodo(ctx context.Context, args Arguments) (*entities.Todo, error) {
	var input *entities.CreateInput
	if err := decodeData(args.Data, &input); err != nil {
		return nil, errors.NewUserError(methodResolver+"."+FieldCreateTodo, validators.MsgInvalidProperties).WithCause(err)
	}
	return r.todos.CreateTodo(ctx, input, args.User)
}

func (r *Resolver) updateTodo(ctx context.Context, args Arguments) (*entities.Todo, error) {
	var input entities.UpdateInput
	if err := decodeData(args.Data, &input); err != nil {
		return nil, errors.NewUserError(methodResolver+"."+FieldUpdateTodo, validators.MsgInvalidProperties).WithCause(err)
	}
	return r.todos.UpdateTodo(ctx, args.ID, input, args.User)
}

func (r *Resolver) deleteTodo(ctx context.Context, args Arguments) (*entities.Todo, error) {
	return r.todos.DeleteTodo(ctx, args.ID, args.User)
}

// decodeData keeps numbers as json.Number. Absent or null data leaves
// dst untouched.
func decodeData(raw json.RawMessage, dst interface{}) error {
	if len(raw) == 0 {
		return nil
	}
	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.UseNumber()
	return decoder.Decode(dst)
}
