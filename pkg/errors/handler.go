package errors

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// ErrorResponse is the body written for a classified error
type ErrorResponse struct {
	Name         string `json:"name"`
	Message      string `json:"message"`
	Method       string `json:"method"`
	InternalName string `json:"internalName"`
	Stack        string `json:"stack,omitempty"`
}

// ErrorHandler writes errors as HTTP responses
type ErrorHandler struct {
	logger *zap.Logger
	debug  bool
}

// NewErrorHandler creates a new error handler
func NewErrorHandler(logger *zap.Logger, debug bool) *ErrorHandler {
	return &ErrorHandler{
		logger: logger,
		debug:  debug,
	}
}

// Handle processes an error and sends an HTTP response
func (h *ErrorHandler) Handle(w http.ResponseWriter, r *http.Request, err error) {
	if err == nil {
		return
	}

	appErr := GetAppError(err)
	if appErr == nil {
		// Unclassified failures surface their raw message
		h.logger.Error("Unhandled error",
			zap.Error(err),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("requestID", middleware.GetReqID(r.Context())),
		)
		h.sendJSON(w, http.StatusInternalServerError, err.Error())
		return
	}

	status := appErr.HTTPStatus()
	response := ErrorResponse{
		Name:         appErr.Name,
		Message:      appErr.Message,
		Method:       appErr.Method,
		InternalName: string(appErr.Class),
	}
	if h.debug {
		response.Stack = appErr.StackTrace
	}

	h.logError(r, appErr, status)
	h.sendJSON(w, status, response)
}

// logError logs an application error with appropriate level
func (h *ErrorHandler) logError(r *http.Request, err *AppError, status int) {
	fields := []zap.Field{
		zap.String("internalName", string(err.Class)),
		zap.String("errorMethod", err.Method),
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Int("status", status),
		zap.String("requestID", middleware.GetReqID(r.Context())),
	}
	if err.Cause != nil {
		fields = append(fields, zap.Error(err.Cause))
	}

	if status >= http.StatusInternalServerError {
		h.logger.Error(err.Message, fields...)
		return
	}
	h.logger.Warn(err.Message, fields...)
}

func (h *ErrorHandler) sendJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("Failed to encode error response", zap.Error(err))
	}
}
