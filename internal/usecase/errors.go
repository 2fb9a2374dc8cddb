package usecase

import (
	"errors"
	"net/http"
)

// エラーの種類（HTTPステータスと機械可読コードを持つ）
type ErrorKind string

const (
	KindValidation   ErrorKind = "validation"
	KindUnauthorized ErrorKind = "unauthorized"
	KindForbidden    ErrorKind = "forbidden"
	KindNotFound     ErrorKind = "not_found"
	KindConflict     ErrorKind = "conflict"
	KindInternal     ErrorKind = "internal"
)

const internalMessage = "Internal server error."

func (k ErrorKind) Status() int {
	switch k {
	case KindValidation:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func (k ErrorKind) Code() string {
	switch k {
	case KindValidation:
		return "VALIDATION_ERROR"
	case KindUnauthorized:
		return "UNAUTHORIZED"
	case KindForbidden:
		return "FORBIDDEN"
	case KindNotFound:
		return "NOT_FOUND"
	case KindConflict:
		return "CONFLICT"
	default:
		return "INTERNAL"
	}
}

// usecaseが返すエラー
// Messageはクライアントに返す文言。Errは原因（ログ用、クライアントには返さない）
type AppError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return string(e.Kind) + ": " + e.Message + ": " + e.Err.Error()
	}
	return string(e.Kind) + ": " + e.Message
}

func (e *AppError) Unwrap() error { return e.Err }

func NewAppError(kind ErrorKind, message string) error {
	return &AppError{Kind: kind, Message: message}
}

func AsAppError(err error) (*AppError, bool) {
	var ae *AppError
	ok := errors.As(err, &ae)
	return ae, ok
}

func errValidation(msg string) error   { return NewAppError(KindValidation, msg) }
func errUnauthorized(msg string) error { return NewAppError(KindUnauthorized, msg) }
func errForbidden(msg string) error    { return NewAppError(KindForbidden, msg) }
func errNotFound(msg string) error     { return NewAppError(KindNotFound, msg) }
func errConflict(msg string) error     { return NewAppError(KindConflict, msg) }

// 500（原因は包んで残す）
func errInternal(err error) error {
	if ae, ok := AsAppError(err); ok {
		return ae
	}
	return &AppError{Kind: KindInternal, Message: internalMessage, Err: err}
}
