package rest

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"hexagonal-todo/domain/core/entities"
	"hexagonal-todo/pkg/auth"
	"hexagonal-todo/pkg/errors"
	"hexagonal-todo/pkg/observability"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeTodos struct {
	getFn    func(ctx context.Context, id string) (*entities.Todo, error)
	createFn func(ctx context.Context, input *entities.CreateInput, owner string) (*entities.Todo, error)
	updateFn func(ctx context.Context, id string, input entities.UpdateInput, owner string) (*entities.Todo, error)
	deleteFn func(ctx context.Context, id string, owner string) (*entities.Todo, error)
}

func (f *fakeTodos) GetTodo(ctx context.Context, id string) (*entities.Todo, error) {
	return f.getFn(ctx, id)
}

func (f *fakeTodos) CreateTodo(ctx context.Context, input *entities.CreateInput, owner string) (*entities.Todo, error) {
	return f.createFn(ctx, input, owner)
}

func (f *fakeTodos) UpdateTodo(ctx context.Context, id string, input entities.UpdateInput, owner string) (*entities.Todo, error) {
	return f.updateFn(ctx, id, input, owner)
}

func (f *fakeTodos) DeleteTodo(ctx context.Context, id string, owner string) (*entities.Todo, error) {
	return f.deleteFn(ctx, id, owner)
}

func newTestRouter(todos *fakeTodos, validator *auth.JWTValidator) http.Handler {
	return NewRouter(todos, validator, observability.NewCollector("todo_test"), nil, Options{EnableCORS: true, AllowedOrigins: []string{"*"}}, zap.NewNop()).Setup()
}

func serve(t *testing.T, h http.Handler, method, target, body string, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestPing(t *testing.T) {
	rec := serve(t, newTestRouter(&fakeTodos{}, nil), http.MethodGet, "/api/v1/ping", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `"pong"`, rec.Body.String())
}

func TestHealthAndMetrics(t *testing.T) {
	router := newTestRouter(&fakeTodos{}, nil)

	rec := serve(t, router, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"healthy"}`, rec.Body.String())

	rec = serve(t, router, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "todo_test_http_requests_total")
}

func TestGetTodo(t *testing.T) {
	todos := &fakeTodos{
		getFn: func(_ context.Context, id string) (*entities.Todo, error) {
			if id == "t1" {
				return &entities.Todo{ID: "t1", TaskDescription: "buy milk"}, nil
			}
			return nil, nil
		},
	}
	router := newTestRouter(todos, nil)

	rec := serve(t, router, http.MethodGet, "/api/v1/todos/t1", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	var got entities.Todo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "buy milk", got.TaskDescription)

	rec = serve(t, router, http.MethodGet, "/api/v1/todos/missing", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var body errors.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "id not found", body.Message)
	assert.Equal(t, "USER_ERROR", body.InternalName)
	assert.Equal(t, "interfaces.http.todo.getTodo", body.Method)
}

func TestErrorStatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantBody   string
	}{
		{name: "user error", err: errors.NewUserError("application.todo.createTodo", "owner is missing"), wantStatus: http.StatusBadRequest, wantBody: "owner is missing"},
		{name: "internal error", err: errors.NewInternalError("persistence.dynamodb.putDocument", "throttled"), wantStatus: http.StatusInternalServerError, wantBody: "throttled"},
		{name: "raw error", err: stderrors.New("boom"), wantStatus: http.StatusInternalServerError, wantBody: "boom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			todos := &fakeTodos{
				createFn: func(context.Context, *entities.CreateInput, string) (*entities.Todo, error) {
					return nil, tt.err
				},
			}
			rec := serve(t, newTestRouter(todos, nil), http.MethodPost, "/api/v1/todos", `{"data":{"taskDescription":"x"},"user":"bob"}`)
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.wantBody)
		})
	}
}

func TestCreateTodoPassesBody(t *testing.T) {
	var gotOwner string
	var gotInput *entities.CreateInput
	todos := &fakeTodos{
		createFn: func(_ context.Context, input *entities.CreateInput, owner string) (*entities.Todo, error) {
			gotOwner, gotInput = owner, input
			return &entities.Todo{ID: "t1", TaskDescription: input.TaskDescription, TaskOwner: owner}, nil
		},
	}

	rec := serve(t, newTestRouter(todos, nil), http.MethodPost, "/api/v1/todos", `{"data":{"taskDescription":"buy milk","taskPriority":"HIGH"},"user":"bob"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "bob", gotOwner)
	require.NotNil(t, gotInput)
	require.NotNil(t, gotInput.TaskPriority)
	assert.Equal(t, entities.PriorityHigh, *gotInput.TaskPriority)
}

func TestMalformedBodyIsUserError(t *testing.T) {
	todos := &fakeTodos{
		createFn: func(context.Context, *entities.CreateInput, string) (*entities.Todo, error) {
			t.Fatal("service must not be called")
			return nil, nil
		},
	}

	rec := serve(t, newTestRouter(todos, nil), http.MethodPost, "/api/v1/todos", `{"data":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid entry on field data")
}

func TestUpdateTodoKeepsNumbers(t *testing.T) {
	var gotInput entities.UpdateInput
	todos := &fakeTodos{
		updateFn: func(_ context.Context, id string, input entities.UpdateInput, owner string) (*entities.Todo, error) {
			gotInput = input
			return &entities.Todo{ID: id, TaskOwner: owner}, nil
		},
	}

	rec := serve(t, newTestRouter(todos, nil), http.MethodPut, "/api/v1/todos/t1", `{"data":{"taskOrder":2.5},"user":"bob"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, json.Number("2.5"), gotInput["taskOrder"])
}

func TestDeleteTodoOwnerFromQuery(t *testing.T) {
	var gotOwner string
	todos := &fakeTodos{
		deleteFn: func(_ context.Context, id string, owner string) (*entities.Todo, error) {
			gotOwner = owner
			return &entities.Todo{ID: id}, nil
		},
	}

	rec := serve(t, newTestRouter(todos, nil), http.MethodDelete, "/api/v1/todos/t1?user=carol", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "carol", gotOwner)
}

func TestTokenSubjectOverridesBodyUser(t *testing.T) {
	validator, err := auth.NewJWTValidator("secret", "hexagonal-todo")
	require.NoError(t, err)
	token, err := validator.IssueToken("alice", time.Minute)
	require.NoError(t, err)

	var gotOwner string
	todos := &fakeTodos{
		createFn: func(_ context.Context, input *entities.CreateInput, owner string) (*entities.Todo, error) {
			gotOwner = owner
			return &entities.Todo{ID: "t1", TaskOwner: owner}, nil
		},
	}
	router := newTestRouter(todos, validator)
	body := `{"data":{"taskDescription":"x"},"user":"mallory"}`

	rec := serve(t, router, http.MethodPost, "/api/v1/todos", body, "Authorization", "Bearer "+token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "alice", gotOwner)

	rec = serve(t, router, http.MethodPost, "/api/v1/todos", body)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = serve(t, router, http.MethodPost, "/api/v1/todos", body, "Authorization", "Bearer nope")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// ping stays public
	rec = serve(t, router, http.MethodGet, "/api/v1/ping", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}
