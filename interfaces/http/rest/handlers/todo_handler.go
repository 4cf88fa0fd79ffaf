package handlers

import (
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"

	"hexagonal-todo/application/ports"
	"hexagonal-todo/domain/core/entities"
	"hexagonal-todo/domain/core/validators"
	"hexagonal-todo/pkg/common"
	"hexagonal-todo/pkg/errors"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const (
	methodGetTodo    = "interfaces.http.todo.getTodo"
	methodCreateTodo = "interfaces.http.todo.createTodo"
	methodUpdateTodo = "interfaces.http.todo.updateTodo"
	methodDeleteTodo = "interfaces.http.todo.deleteTodo"

	msgIDNotFound = "id not found"
)

// TodoHandler handles todo-related HTTP requests
type TodoHandler struct {
	todos        ports.TodoUseCases
	errorHandler *errors.ErrorHandler
	logger       *zap.Logger
}

// NewTodoHandler creates a new todo handler
func NewTodoHandler(todos ports.TodoUseCases, errorHandler *errors.ErrorHandler, logger *zap.Logger) *TodoHandler {
	return &TodoHandler{
		todos:        todos,
		errorHandler: errorHandler,
		logger:       logger,
	}
}

// CreateTodoRequest is the body of POST /todos
type CreateTodoRequest struct {
	Data *entities.CreateInput `json:"data"`
	User string                `json:"user"`
}

// UpdateTodoRequest is the body of PUT /todos/{id}
type UpdateTodoRequest struct {
	Data entities.UpdateInput `json:"data"`
	User string               `json:"user"`
}

// DeleteTodoRequest is the body of DELETE /todos/{id}
type DeleteTodoRequest struct {
	User string `json:"user"`
}

// Ping handles GET /ping
func (h *TodoHandler) Ping(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, "pong")
}

// GetTodo handles GET /todos/{id}
func (h *TodoHandler) GetTodo(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	todo, err := h.todos.GetTodo(r.Context(), id)
	if err != nil {
		h.errorHandler.Handle(w, r, errors.Raise(err, methodGetTodo, errors.ClassInternal))
		return
	}
	if todo == nil {
		h.errorHandler.Handle(w, r, errors.NewUserError(methodGetTodo, msgIDNotFound))
		return
	}

	h.respondJSON(w, http.StatusOK, todo)
}

// CreateTodo handles POST /todos
func (h *TodoHandler) CreateTodo(w http.ResponseWriter, r *http.Request) {
	var req CreateTodoRequest
	if err := decodeBody(r, &req, false); err != nil {
		h.errorHandler.Handle(w, r, errors.NewUserError(methodCreateTodo, validators.MsgInvalidProperties).WithCause(err))
		return
	}

	owner := common.ResolveOwner(r.Context(), req.User)
	todo, err := h.todos.CreateTodo(r.Context(), req.Data, owner)
	if err != nil {
		h.errorHandler.Handle(w, r, errors.Raise(err, methodCreateTodo, errors.ClassInternal))
		return
	}

	h.respondJSON(w, http.StatusOK, todo)
}

// UpdateTodo handles PUT /todos/{id}
func (h *TodoHandler) UpdateTodo(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req UpdateTodoRequest
	// numbers stay json.Number so fractional orders are caught by validation
	if err := decodeBody(r, &req, true); err != nil {
		h.errorHandler.Handle(w, r, errors.NewUserError(methodUpdateTodo, validators.MsgInvalidProperties).WithCause(err))
		return
	}

	owner := common.ResolveOwner(r.Context(), req.User)
	todo, err := h.todos.UpdateTodo(r.Context(), id, req.Data, owner)
	if err != nil {
		h.errorHandler.Handle(w, r, errors.Raise(err, methodUpdateTodo, errors.ClassInternal))
		return
	}

	h.respondJSON(w, http.StatusOK, todo)
}

// DeleteTodo handles DELETE /todos/{id}. The owner may come from the
// body or, for clients that cannot send a DELETE body, the user query
// parameter.
func (h *TodoHandler) DeleteTodo(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req DeleteTodoRequest
	if err := decodeBody(r, &req, false); err != nil {
		h.errorHandler.Handle(w, r, errors.NewUserError(methodDeleteTodo, validators.MsgInvalidProperties).WithCause(err))
		return
	}
	if req.User == "" {
		req.User = r.URL.Query().Get("user")
	}

	owner := common.ResolveOwner(r.Context(), req.User)
	todo, err := h.todos.DeleteTodo(r.Context(), id, owner)
	if err != nil {
		h.errorHandler.Handle(w, r, errors.Raise(err, methodDeleteTodo, errors.ClassInternal))
		return
	}

	h.respondJSON(w, http.StatusOK, todo)
}

// decodeBody reads a JSON body into dst. An empty body leaves dst zero.
func decodeBody(r *http.Request, dst interface{}, useNumber bool) error {
	if r.Body == nil {
		return nil
	}
	decoder := json.NewDecoder(r.Body)
	if useNumber {
		decoder.UseNumber()
	}
	if err := decoder.Decode(dst); err != nil && !stderrors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func (h *TodoHandler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	if err := common.RespondJSON(w, status, data); err != nil {
		h.logger.Error("Failed to encode response", zap.Error(err))
	}
}
