package util

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind 错误分类，决定返回给调用方的 HTTP 状态码
type ErrorKind string

const (
	KindValidation           ErrorKind = "validation"
	KindUnauthenticated      ErrorKind = "unauthenticated"
	KindNotFound             ErrorKind = "not_found"
	KindConflict             ErrorKind = "conflict"
	KindMalformedModelOutput ErrorKind = "malformed_model_output"
	KindProviderUnavailable  ErrorKind = "provider_unavailable"
	KindProviderTimeout      ErrorKind = "provider_timeout"
	KindRateLimited          ErrorKind = "rate_limited"
	KindPersistence          ErrorKind = "persistence_failure"
)

type AppError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Err }

// Is 同类错误视为相等，便于 errors.Is(err, ErrSessionNotFound) 之类的判断
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Message == "" || t.Message == e.Message)
}

var (
	ErrMissingRequiredField = &AppError{Kind: KindValidation, Message: "missing required field"}
	ErrInvalidRange         = &AppError{Kind: KindValidation, Message: "value out of range"}
	ErrUnauthenticated      = &AppError{Kind: KindUnauthenticated, Message: "unauthenticated"}
	ErrSessionNotFound      = &AppError{Kind: KindNotFound, Message: "session not found"}
	ErrCourseNotFound       = &AppError{Kind: KindNotFound, Message: "course not found"}
	ErrRevisionConflict     = &AppError{Kind: KindConflict, Message: "outline was modified by another request"}
	ErrSessionClosed        = &AppError{Kind: KindConflict, Message: "session already completed"}
)

func MissingField(field string) error {
	return &AppError{Kind: KindValidation, Message: ErrMissingRequiredField.Message, Err: fmt.Errorf("%s is required", field)}
}

func InvalidRange(field string, detail string) error {
	return &AppError{Kind: KindValidation, Message: ErrInvalidRange.Message, Err: fmt.Errorf("%s %s", field, detail)}
}

func Validation(message string) error {
	return &AppError{Kind: KindValidation, Message: message}
}

func MalformedModelOutput(err error) error {
	return &AppError{Kind: KindMalformedModelOutput, Message: "model returned malformed output", Err: err}
}

func ProviderUnavailable(err error) error {
	return &AppError{Kind: KindProviderUnavailable, Message: "generation provider unavailable", Err: err}
}

func ProviderTimeout(err error) error {
	return &AppError{Kind: KindProviderTimeout, Message: "generation provider timed out", Err: err}
}

func Persistence(op string, err error) error {
	return &AppError{Kind: KindPersistence, Message: op + " failed", Err: err}
}

// KindOf 取出错误分类，未分类的错误按持久化错误处理
func KindOf(err error) ErrorKind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindPersistence
}

func StatusFor(err error) int {
	switch KindOf(err) {
	case KindValidation:
		return http.StatusBadRequest
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage 返回给调用方的错误信息，不暴露底层细节
func PublicMessage(err error) string {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		return "internal server error"
	}
	if appErr.Kind == KindValidation && appErr.Err != nil {
		return appErr.Err.Error()
	}
	return appErr.Message
}
