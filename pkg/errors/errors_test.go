package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRaise(t *testing.T) {
	t.Run("nil stays nil", func(t *testing.T) {
		assert.NoError(t, Raise(nil, "a.b", ClassInternal))
	})

	t.Run("plain error is classified", func(t *testing.T) {
		err := Raise(errors.New("boom"), "persistence.dynamodb.getDocument", ClassInternal)

		appErr := GetAppError(err)
		require.NotNil(t, appErr)
		assert.Equal(t, "Error", appErr.Name)
		assert.Equal(t, "boom", appErr.Message)
		assert.Equal(t, "persistence.dynamodb.getDocument", appErr.Method)
		assert.Equal(t, ClassInternal, appErr.Class)
		assert.NotEmpty(t, appErr.StackTrace)
	})

	t.Run("classified error passes through unchanged", func(t *testing.T) {
		inner := NewUserError("domain.todo.validateCreate", "owner is missing")
		err := Raise(inner, "application.todo.createTodo", ClassInternal)

		assert.Same(t, inner, err)
		assert.True(t, IsUserError(err))
	})

	t.Run("wrapped classified error passes through unchanged", func(t *testing.T) {
		inner := NewUserError("domain.todo.validateCreate", "owner is missing")
		wrapped := fmt.Errorf("create: %w", inner)

		err := Raise(wrapped, "application.todo.createTodo", ClassInternal)
		assert.Equal(t, wrapped, err)
		assert.Equal(t, ClassUserError, ClassOf(err))
	})

	t.Run("backend error code becomes the name", func(t *testing.T) {
		apiErr := &smithy.GenericAPIError{Code: "ResourceNotFoundException", Message: "table missing"}
		err := Raise(apiErr, "persistence.dynamodb.putDocument", ClassInternal)

		appErr := GetAppError(err)
		require.NotNil(t, appErr)
		assert.Equal(t, "ResourceNotFoundException", appErr.Name)
		assert.ErrorIs(t, err, apiErr)
	})
}

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(NewUserError("m", "bad")))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(NewInternalError("m", "down")))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(errors.New("raw")))
}

func TestErrorHandler(t *testing.T) {
	handler := NewErrorHandler(zap.NewNop(), false)

	t.Run("user error", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/todos/1", nil)

		handler.Handle(rec, req, NewUserError("interfaces.http.todo.getTodo", "id not found"))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		var body ErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "id not found", body.Message)
		assert.Equal(t, "USER_ERROR", body.InternalName)
		assert.Equal(t, "interfaces.http.todo.getTodo", body.Method)
		assert.Empty(t, body.Stack)
	})

	t.Run("internal error", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)

		handler.Handle(rec, req, NewInternalError("m", "down"))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Contains(t, rec.Body.String(), `"internalName":"INTERNAL"`)
	})

	t.Run("unclassified error writes raw message", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)

		handler.Handle(rec, req, errors.New("something odd"))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		var body string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "something odd", body)
	})

	t.Run("debug includes stack", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)

		NewErrorHandler(zap.NewNop(), true).Handle(rec, req, NewInternalError("m", "down"))

		var body ErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.NotEmpty(t, body.Stack)
	})
}
