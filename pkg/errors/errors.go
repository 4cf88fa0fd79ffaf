package errors

import (
	"errors"
	"fmt"
	"net/http"
	"runtime"
	"strings"
)

// ErrorClass classifies a failure as caller-caused or system-caused
type ErrorClass string

const (
	// ClassInternal marks storage, queue and other unexpected failures
	ClassInternal ErrorClass = "INTERNAL"
	// ClassUserError marks invalid input and not-found-on-mutate failures
	ClassUserError ErrorClass = "USER_ERROR"
)

// AppError is the structured error every public operation returns
type AppError struct {
	Name       string     `json:"name"`
	Message    string     `json:"message"`
	Method     string     `json:"method"`
	Class      ErrorClass `json:"internalName"`
	Cause      error      `json:"-"`
	StackTrace string     `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Class, e.Message)
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// HTTPStatus maps the error class onto a response status
func (e *AppError) HTTPStatus() int {
	if e.Class == ClassUserError {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// captureStackTrace captures the current stack trace
func captureStackTrace() string {
	const depth = 32
	var pcs [depth]uintptr
	n := runtime.Callers(3, pcs[:])
	frames := runtime.CallersFrames(pcs[:n])

	var b strings.Builder
	for {
		frame, more := frames.Next()
		fmt.Fprintf(&b, "%s:%d %s\n", frame.File, frame.Line, frame.Function)
		if !more {
			break
		}
	}
	return b.String()
}

// NewUserError creates a USER_ERROR raised at method
func NewUserError(method, message string) *AppError {
	return &AppError{
		Name:       "Error",
		Message:    message,
		Method:     method,
		Class:      ClassUserError,
		StackTrace: captureStackTrace(),
	}
}

// NewInternalError creates an INTERNAL error raised at method
func NewInternalError(method, message string) *AppError {
	return &AppError{
		Name:       "Error",
		Message:    message,
		Method:     method,
		Class:      ClassInternal,
		StackTrace: captureStackTrace(),
	}
}

// WithCause wraps an underlying error
func (e *AppError) WithCause(err error) *AppError {
	e.Cause = err
	return e
}

// Raise classifies err at method. An error that already carries an
// AppError in its chain is returned as is, so the innermost
// classification always wins.
func Raise(err error, method string, class ErrorClass) error {
	if err == nil {
		return nil
	}
	if IsAppError(err) {
		return err
	}
	return &AppError{
		Name:       errorName(err),
		Message:    err.Error(),
		Method:     method,
		Class:      class,
		Cause:      err,
		StackTrace: captureStackTrace(),
	}
}

// errorName prefers the backend error code (smithy API errors expose one)
func errorName(err error) string {
	var coded interface{ ErrorCode() string }
	if errors.As(err, &coded) && coded.ErrorCode() != "" {
		return coded.ErrorCode()
	}
	return "Error"
}

// IsAppError checks if an error is an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// GetAppError extracts AppError from an error chain
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return nil
}

// ClassOf returns the class of err, or "" when it was never classified
func ClassOf(err error) ErrorClass {
	if appErr := GetAppError(err); appErr != nil {
		return appErr.Class
	}
	return ""
}

// IsUserError checks if an error is a USER_ERROR
func IsUserError(err error) bool {
	return ClassOf(err) == ClassUserError
}

// IsInternal checks if an error is an INTERNAL error
func IsInternal(err error) bool {
	return ClassOf(err) == ClassInternal
}

// HTTPStatus returns the response status for any error
func HTTPStatus(err error) int {
	if appErr := GetAppError(err); appErr != nil {
		return appErr.HTTPStatus()
	}
	return http.StatusInternalServerError
}
